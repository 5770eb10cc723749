package tcp

import (
	"fmt"
	"runtime/debug"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xremote/pkg/config"
	"github.com/lk2023060901/xremote/pkg/logger"
	"github.com/lk2023060901/xremote/pkg/protocol"
	"github.com/lk2023060901/xremote/pkg/session"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"
)

// Option 服务端选项
type Option func(*options)

type options struct {
	manager session.SessionManager
	logger  logger.Logger
}

// WithManager 指定会话管理器，默认使用独立的 BaseSessionManager
func WithManager(m session.SessionManager) Option {
	return func(o *options) { o.manager = m }
}

// WithLogger 指定日志器
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// server 两种引擎共用的准入与请求处理流程
type server struct {
	config  *ServerConfig
	handler session.SessionHandler
	manager session.SessionManager
	logger  logger.Logger
	pool    *ants.Pool
	limiter *rate.Limiter
}

func newServer(cfg *ServerConfig, handler session.SessionHandler, opts ...Option) (*server, error) {
	merged, err := config.MergeConfig(DefaultServerConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.manager == nil {
		o.manager = session.NewBaseSessionManager()
	}
	if o.logger == nil {
		o.logger = logger.NewNoop()
	}
	if handler == nil {
		handler = &session.NopSessionHandler{}
	}

	s := &server{
		config:  merged,
		handler: handler,
		manager: o.manager,
		logger:  o.logger.Named("tcp"),
	}

	if merged.AcceptRate > 0 {
		burst := merged.AcceptBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(merged.AcceptRate), burst)
	}

	return s, nil
}

// startPool 创建非阻塞工作池，池满时 Submit 立即返回 ants.ErrPoolOverload
func (s *server) startPool() error {
	pool, err := ants.NewPool(s.config.Workers,
		ants.WithNonblocking(true),
		ants.WithLogger(antsLogger{s.logger}),
		ants.WithPanicHandler(func(p interface{}) {
			s.logger.Error("worker panic escaped handler", "panic", fmt.Sprint(p))
		}),
	)
	if err != nil {
		return errors.Wrap(err, "create worker pool")
	}
	s.pool = pool
	return nil
}

func (s *server) releasePool() error {
	if s.pool == nil {
		return nil
	}
	if err := s.pool.ReleaseTimeout(s.config.StopTimeout); err != nil {
		return errors.Wrap(err, "release worker pool")
	}
	return nil
}

// Running 正在处理请求的工作协程数
func (s *server) Running() int {
	if s.pool == nil {
		return 0
	}
	return s.pool.Running()
}

// Manager 会话管理器
func (s *server) Manager() session.SessionManager {
	return s.manager
}

// open 登记会话并检查限流
func (s *server) open(sess session.Session) error {
	s.manager.Add(sess)
	s.handler.OnOpened(sess)

	if s.limiter != nil && !s.limiter.Allow() {
		return ErrRateLimited
	}
	return nil
}

// closed 会话关闭后的收尾，每个会话只调用一次
func (s *server) closed(sess session.Session, err error) {
	s.manager.Remove(sess.ID())
	s.handler.OnClosed(sess, err)
}

// submit 在工作池中处理请求，池满返回 ErrServerBusy
func (s *server) submit(task func()) error {
	if err := s.pool.Submit(task); err != nil {
		if errors.Is(err, ants.ErrPoolOverload) {
			return errors.Wrapf(ErrServerBusy, "submit: %v", err)
		}
		return errors.Wrap(err, "submit")
	}
	return nil
}

// serve 把一次解码结果交给处理器，结束后关闭连接
func (s *server) serve(sess session.Session, req *protocol.Request, decodeErr error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(sess.Context(), "handler panic recovered",
				"panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			s.handler.OnError(sess, errors.Wrapf(ErrHandlerPanic, "%v", r))
		}
		_ = sess.Close()
	}()

	if decodeErr != nil {
		s.handler.OnError(sess, decodeErr)
		return
	}
	s.handler.OnRequest(sess, req)
}

// reject 准入失败时通知处理器并关闭
func (s *server) reject(sess session.Session, err error) {
	s.logger.WarnContext(sess.Context(), "connection rejected", "error", err)
	s.handler.OnError(sess, err)
	_ = sess.Close()
}
