// Package web 提供基于 gin 的管理 HTTP 服务。
package web

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xremote/pkg/config"
	"github.com/lk2023060901/xremote/pkg/logger"
	"github.com/lk2023060901/xremote/pkg/web/middleware"
)

// Server 管理 HTTP 服务
type Server struct {
	engine *gin.Engine
	config *Config
	logger logger.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	done     chan struct{}
}

// NewServer 创建管理服务，路由通过 Router 注册
func NewServer(cfg *Config, l logger.Logger) (*Server, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	if l == nil {
		l = logger.Default()
	}
	l = l.Named("web.server")

	gin.SetMode(merged.Mode)
	engine := gin.New()
	engine.Use(middleware.Recovery(l))
	engine.Use(middleware.Logger(l))
	engine.Use(middleware.RateLimit(l, merged.RateLimit.RequestsPerSecond, merged.RateLimit.Burst, merged.RateLimit.SkipPaths...))

	return &Server{
		engine: engine,
		config: merged,
		logger: l,
	}, nil
}

// Router 返回 Gin 引擎，用于注册路由
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Handler 返回 http.Handler 接口
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start 监听并在后台提供服务
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return ErrServerAlreadyStarted
	}

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return errors.Wrapf(err, "web: listen %s", s.config.Addr)
	}

	srv := &http.Server{
		Handler:        s.engine,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server exited", "error", err)
		}
	}()

	s.server = srv
	s.listener = ln
	s.done = done
	s.logger.Info("admin http server started", "addr", ln.Addr().String())
	return nil
}

// Stop 优雅关闭，超过 ShutdownTimeout 后强制关闭
func (s *Server) Stop() error {
	s.mu.Lock()
	srv, done := s.server, s.done
	s.server, s.listener, s.done = nil, nil, nil
	s.mu.Unlock()

	if srv == nil {
		return ErrServerNotStarted
	}

	ctx := context.Background()
	if s.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}

	err := srv.Shutdown(ctx)
	if err != nil {
		err = errors.CombineErrors(errors.Wrap(err, "web: shutdown"), srv.Close())
	}
	<-done
	s.logger.Info("admin http server stopped")
	return err
}

// Addr 实际监听地址，未启动时返回配置地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}
