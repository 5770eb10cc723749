package session

import "github.com/lk2023060901/xremote/pkg/protocol"

// SessionHandler 会话事件处理器，由传输层在工作协程中同步调用
type SessionHandler interface {
	// OnOpened 连接建立
	OnOpened(s Session)
	// OnRequest 收到完整且合法的请求帧，返回后传输层关闭连接
	OnRequest(s Session, req *protocol.Request)
	// OnError 帧错误或读超时，连接随后关闭且不回写
	OnError(s Session, err error)
	// OnClosed 连接关闭，err 为关闭原因
	OnClosed(s Session, err error)
}

// NopSessionHandler SessionHandler 的空实现
type NopSessionHandler struct{}

func (n *NopSessionHandler) OnOpened(s Session)                         {}
func (n *NopSessionHandler) OnRequest(s Session, req *protocol.Request) {}
func (n *NopSessionHandler) OnError(s Session, err error)               {}
func (n *NopSessionHandler) OnClosed(s Session, err error)              {}

var _ SessionHandler = (*NopSessionHandler)(nil)

// Acceptor 监听并接受连接
type Acceptor interface {
	Start() error
	Stop() error
	Addr() string
}
