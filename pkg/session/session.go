// Package session 提供连接会话抽象，使用 UUID string 作为会话标识。
// 每个会话对应一条 TCP 连接，承载恰好一个请求帧。
package session

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lk2023060901/xremote/pkg/logger"
)

// Session 会话接口
type Session interface {
	ID() string
	RemoteAddr() net.Addr
	OpenedAt() time.Time
	// Context 携带 conn_id/remote_addr 日志字段，会话关闭后取消
	Context() context.Context
	// Write 写回响应，受传输层写超时约束
	Write(p []byte) error
	Close() error
	IsClosed() bool
}

// Info 会话快照，用于管理接口
type Info struct {
	ID         string    `json:"id"`
	RemoteAddr string    `json:"remote_addr"`
	OpenedAt   time.Time `json:"opened_at"`
}

// BaseSession Session 的公共部分，由具体传输嵌入
type BaseSession struct {
	id         string
	remoteAddr net.Addr
	openedAt   time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewBaseSession 创建基础会话并分配 UUID
func NewBaseSession(remoteAddr net.Addr) *BaseSession {
	id := uuid.NewString()
	addr := ""
	if remoteAddr != nil {
		addr = remoteAddr.String()
	}
	ctx, cancel := context.WithCancel(logger.WithConn(context.Background(), id, addr))
	return &BaseSession{
		id:         id,
		remoteAddr: remoteAddr,
		openedAt:   time.Now(),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (s *BaseSession) ID() string               { return s.id }
func (s *BaseSession) RemoteAddr() net.Addr     { return s.remoteAddr }
func (s *BaseSession) OpenedAt() time.Time      { return s.openedAt }
func (s *BaseSession) Context() context.Context { return s.ctx }
func (s *BaseSession) IsClosed() bool           { return s.closed.Load() }

// MarkClosed 标记关闭并取消 context，返回是否为首次关闭
func (s *BaseSession) MarkClosed() bool {
	first := false
	s.closeOnce.Do(func() {
		first = true
		s.closed.Store(true)
		s.cancel()
	})
	return first
}

// Snapshot 导出会话快照
func Snapshot(s Session) Info {
	info := Info{ID: s.ID(), OpenedAt: s.OpenedAt()}
	if addr := s.RemoteAddr(); addr != nil {
		info.RemoteAddr = addr.String()
	}
	return info
}
