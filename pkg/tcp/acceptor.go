package tcp

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xremote/pkg/config"
	"github.com/lk2023060901/xremote/pkg/protocol"
	"github.com/lk2023060901/xremote/pkg/session"
	"github.com/panjf2000/gnet/v2"
)

// Acceptor 基于 gnet 事件循环的监听器。
// 事件循环负责缓冲入站字节直到帧完整，解码后的请求交给工作池处理。
type Acceptor struct {
	gnet.BuiltinEventEngine
	*server

	engine  gnet.Engine
	booted  chan struct{}
	runErr  chan error
	started atomic.Bool
	stopped atomic.Bool
}

// NewAcceptor 创建 gnet 监听器
func NewAcceptor(cfg *ServerConfig, handler session.SessionHandler, opts ...Option) (*Acceptor, error) {
	srv, err := newServer(cfg, handler, opts...)
	if err != nil {
		return nil, err
	}
	return &Acceptor{
		server: srv,
		booted: make(chan struct{}),
		runErr: make(chan error, 1),
	}, nil
}

// gnetOptions 由配置生成 gnet 选项
func (a *Acceptor) gnetOptions() []gnet.Option {
	noDelay := gnet.TCPDelay
	if config.BoolValue(a.config.TCPNoDelay, true) {
		noDelay = gnet.TCPNoDelay
	}
	opts := []gnet.Option{
		gnet.WithMulticore(config.BoolValue(a.config.Multicore, true)),
		gnet.WithReusePort(a.config.ReusePort),
		gnet.WithReuseAddr(config.BoolValue(a.config.ReuseAddr, true)),
		gnet.WithTCPKeepAlive(a.config.TCPKeepAlive),
		gnet.WithTCPNoDelay(noDelay),
		gnet.WithTicker(true),
		gnet.WithLogger(gnetLogger{a.logger}),
	}
	if a.config.NumEventLoop > 0 {
		opts = append(opts, gnet.WithNumEventLoop(a.config.NumEventLoop))
	}
	return opts
}

// Start 启动事件循环，等待 OnBoot 或启动失败
func (a *Acceptor) Start() error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrServerAlreadyStarted
	}
	if err := a.startPool(); err != nil {
		return err
	}

	opts := a.gnetOptions()
	protoAddr := fmt.Sprintf("%s://%s", a.config.Network, a.config.Addr)
	go func() {
		a.runErr <- gnet.Run(a, protoAddr, opts...)
	}()

	select {
	case err := <-a.runErr:
		_ = a.releasePool()
		if err == nil {
			err = errors.New("gnet engine exited during boot")
		}
		return errors.Wrapf(err, "listen %s", a.config.Addr)
	case <-a.booted:
		a.logger.Info("tcp listener started", "engine", EngineGnet, "addr", a.config.Addr, "workers", a.config.Workers)
		return nil
	case <-time.After(5 * time.Second):
		return errors.Newf("gnet engine did not boot on %s", a.config.Addr)
	}
}

// Stop 停止事件循环，所有连接随之关闭
func (a *Acceptor) Stop() error {
	if !a.started.Load() {
		return ErrServerNotStarted
	}
	if !a.stopped.CompareAndSwap(false, true) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.config.StopTimeout)
	defer cancel()

	err := a.engine.Stop(ctx)
	if perr := a.releasePool(); perr != nil {
		err = errors.CombineErrors(err, perr)
	}
	a.logger.Info("tcp listener stopped", "addr", a.config.Addr)
	return err
}

// Addr 配置的监听地址
func (a *Acceptor) Addr() string {
	return a.config.Addr
}

func (a *Acceptor) OnBoot(eng gnet.Engine) gnet.Action {
	a.engine = eng
	close(a.booted)
	return gnet.None
}

func (a *Acceptor) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	sess := NewGnetSession(c, a.config.WriteTimeout)
	c.SetContext(sess)

	if err := a.open(sess); err != nil {
		a.logger.WarnContext(sess.Context(), "connection rejected", "error", err)
		a.handler.OnError(sess, err)
		sess.dispatched.Store(true)
		return nil, gnet.Close
	}
	return nil, gnet.None
}

func (a *Acceptor) OnTraffic(c gnet.Conn) gnet.Action {
	sess, ok := c.Context().(*GnetSession)
	if !ok {
		return gnet.Close
	}

	data, _ := c.Next(-1)
	// 单连接单请求，帧交出后的数据直接丢弃
	if sess.Dispatched() {
		return gnet.None
	}
	sess.buf = append(sess.buf, data...)

	size, ok := protocol.FrameSize(sess.buf)
	if !ok {
		return gnet.None
	}
	if size > a.config.MaxFrame() {
		if !sess.dispatched.CompareAndSwap(false, true) {
			return gnet.None
		}
		a.handler.OnError(sess, errors.Wrapf(protocol.ErrFrameTooLarge, "%d > %d", size, a.config.MaxFrame()))
		return gnet.Close
	}
	if len(sess.buf) < size {
		return gnet.None
	}

	// 与 OnTick 的超时巡检竞争
	if !sess.dispatched.CompareAndSwap(false, true) {
		return gnet.None
	}
	req, err := protocol.Decode(sess.buf[:size])
	sess.buf = nil

	if serr := a.submit(func() { a.serve(sess, req, err) }); serr != nil {
		a.logger.WarnContext(sess.Context(), "connection rejected", "error", serr)
		a.handler.OnError(sess, serr)
		return gnet.Close
	}
	return gnet.None
}

func (a *Acceptor) OnClose(c gnet.Conn, err error) gnet.Action {
	sess, ok := c.Context().(*GnetSession)
	if !ok {
		return gnet.None
	}

	// 对端在帧完整之前断开
	if sess.dispatched.CompareAndSwap(false, true) {
		a.handler.OnError(sess, errors.Wrapf(protocol.ErrTruncatedFrame, "peer closed after %d bytes", len(sess.buf)))
	}

	sess.MarkClosed()
	a.closed(sess, err)
	return gnet.None
}

// OnTick 巡检未在读超时内发完整帧的连接
func (a *Acceptor) OnTick() (time.Duration, gnet.Action) {
	deadline := time.Now().Add(-a.config.ReadTimeout)
	a.manager.Range(func(s session.Session) bool {
		gs, ok := s.(*GnetSession)
		if !ok || gs.IsClosed() || !gs.OpenedAt().Before(deadline) {
			return true
		}
		if gs.dispatched.CompareAndSwap(false, true) {
			a.handler.OnError(gs, ErrReadTimeout)
			_ = gs.Close()
		}
		return true
	})
	return a.config.TickInterval, gnet.None
}

var _ session.Acceptor = (*Acceptor)(nil)
