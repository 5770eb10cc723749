package tcp

import (
	"net"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xremote/pkg/session"
	"github.com/panjf2000/gnet/v2"
)

// NetSession 基于 net.Conn 的会话
type NetSession struct {
	*session.BaseSession
	conn         net.Conn
	writeTimeout time.Duration
}

// NewNetSession 创建 net.Conn 会话
func NewNetSession(conn net.Conn, writeTimeout time.Duration) *NetSession {
	return &NetSession{
		BaseSession:  session.NewBaseSession(conn.RemoteAddr()),
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

// Write 带写超时地写出全部数据
func (s *NetSession) Write(p []byte) error {
	if s.IsClosed() {
		return ErrSessionClosed
	}
	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	if _, err := s.conn.Write(p); err != nil {
		if isTimeout(err) {
			return errors.Wrapf(ErrWriteTimeout, "write: %v", err)
		}
		return errors.Wrap(err, "write")
	}
	return nil
}

// Close 关闭会话，可重复调用
func (s *NetSession) Close() error {
	if !s.MarkClosed() {
		return nil
	}
	return s.conn.Close()
}

// GnetSession 基于 gnet.Conn 的会话。
// 入站缓冲只在所属事件循环中访问，其余状态可跨协程读取。
type GnetSession struct {
	*session.BaseSession
	conn         gnet.Conn
	writeTimeout time.Duration

	buf        []byte
	dispatched atomic.Bool
}

// NewGnetSession 创建 gnet 会话
func NewGnetSession(conn gnet.Conn, writeTimeout time.Duration) *GnetSession {
	return &GnetSession{
		BaseSession:  session.NewBaseSession(conn.RemoteAddr()),
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

// Write 通过事件循环异步写出，并等待写完成或超时
func (s *GnetSession) Write(p []byte) error {
	if s.IsClosed() {
		return ErrSessionClosed
	}

	done := make(chan error, 1)
	if err := s.conn.AsyncWrite(p, func(_ gnet.Conn, err error) error {
		done <- err
		return nil
	}); err != nil {
		return errors.Wrap(err, "async write")
	}

	var timeout <-chan time.Time
	if s.writeTimeout > 0 {
		timer := time.NewTimer(s.writeTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case err := <-done:
		if err != nil {
			return errors.Wrap(err, "async write")
		}
		return nil
	case <-timeout:
		return ErrWriteTimeout
	case <-s.Context().Done():
		return ErrSessionClosed
	}
}

// Close 请求事件循环关闭连接，真正的清理在 OnClose 中完成
func (s *GnetSession) Close() error {
	if s.IsClosed() {
		return nil
	}
	return s.conn.Close()
}

// Dispatched 帧是否已交给工作协程
func (s *GnetSession) Dispatched() bool {
	return s.dispatched.Load()
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

var (
	_ session.Session = (*NetSession)(nil)
	_ session.Session = (*GnetSession)(nil)
)
