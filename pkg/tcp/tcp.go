// Package tcp 实现远程控制协议的 TCP 传输：一条连接承载一帧请求。
package tcp

import (
	"github.com/lk2023060901/xremote/pkg/session"
)

// Server 监听器公共接口
type Server interface {
	session.Acceptor
	// Running 正在处理请求的工作协程数
	Running() int
	Manager() session.SessionManager
}

// New 按 cfg.Engine 创建监听器，默认 gnet
func New(cfg *ServerConfig, handler session.SessionHandler, opts ...Option) (Server, error) {
	if cfg != nil && cfg.Engine == EngineNet {
		a, err := NewNetAcceptor(cfg, handler, opts...)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
	a, err := NewAcceptor(cfg, handler, opts...)
	if err != nil {
		return nil, err
	}
	return a, nil
}

var (
	_ Server = (*Acceptor)(nil)
	_ Server = (*NetAcceptor)(nil)
)
