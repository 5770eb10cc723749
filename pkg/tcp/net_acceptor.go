package tcp

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xremote/pkg/protocol"
	"github.com/lk2023060901/xremote/pkg/session"
)

// NetAcceptor 基于标准库 net.Listener 的阻塞式监听器，
// 每条连接在工作池中读取一帧、处理并关闭。
type NetAcceptor struct {
	*server
	listener net.Listener
	wg       sync.WaitGroup
	started  atomic.Bool
	stopped  atomic.Bool
}

// NewNetAcceptor 创建 NetAcceptor
func NewNetAcceptor(cfg *ServerConfig, handler session.SessionHandler, opts ...Option) (*NetAcceptor, error) {
	srv, err := newServer(cfg, handler, opts...)
	if err != nil {
		return nil, err
	}
	return &NetAcceptor{server: srv}, nil
}

// Start 绑定地址并在后台接受连接，绑定失败同步返回
func (a *NetAcceptor) Start() error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrServerAlreadyStarted
	}
	if err := a.startPool(); err != nil {
		return err
	}

	ln, err := net.Listen(a.config.Network, a.config.Addr)
	if err != nil {
		_ = a.releasePool()
		return errors.Wrapf(err, "listen %s", a.config.Addr)
	}
	a.listener = ln

	a.logger.Info("tcp listener started", "engine", EngineNet, "addr", ln.Addr().String(), "workers", a.config.Workers)

	a.wg.Add(1)
	go a.acceptLoop()
	return nil
}

// GracefulStop 停止接受新连接，并等待进行中的请求结束
func (a *NetAcceptor) GracefulStop() error {
	return a.stop(false)
}

// Stop 停止接受新连接，并立即关闭所有在线连接
func (a *NetAcceptor) Stop() error {
	return a.stop(true)
}

func (a *NetAcceptor) stop(force bool) error {
	if !a.started.Load() {
		return ErrServerNotStarted
	}
	if !a.stopped.CompareAndSwap(false, true) {
		return nil
	}

	err := a.listener.Close()
	a.wg.Wait()
	if force {
		a.manager.Range(func(s session.Session) bool {
			_ = s.Close()
			return true
		})
	}
	if perr := a.releasePool(); perr != nil {
		err = errors.CombineErrors(err, perr)
	}
	a.logger.Info("tcp listener stopped", "addr", a.Addr(), "force", force)
	return err
}

// Addr 实际监听地址，未启动时返回配置地址
func (a *NetAcceptor) Addr() string {
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return a.config.Addr
}

func (a *NetAcceptor) acceptLoop() {
	defer a.wg.Done()

	var backoff time.Duration
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			if a.stopped.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			// 临时错误（如 fd 耗尽）退避重试
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff < time.Second {
				backoff *= 2
			}
			a.logger.Warn("accept failed", "error", err, "retry_in", backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		sess := NewNetSession(conn, a.config.WriteTimeout)
		if err := a.open(sess); err != nil {
			a.reject(sess, err)
			a.closed(sess, err)
			continue
		}

		if err := a.submit(func() { a.serveConn(sess) }); err != nil {
			a.reject(sess, err)
			a.closed(sess, err)
		}
	}
}

func (a *NetAcceptor) serveConn(sess *NetSession) {
	var cause error
	defer func() { a.closed(sess, cause) }()

	_ = sess.conn.SetReadDeadline(time.Now().Add(a.config.ReadTimeout))
	req, err := protocol.ReadRequestLimit(sess.conn, a.config.MaxFrame())
	if err != nil && isTimeout(err) {
		err = errors.Wrapf(ErrReadTimeout, "read frame: %v", err)
	}
	cause = err
	a.serve(sess, req, err)
}

var _ session.Acceptor = (*NetAcceptor)(nil)
