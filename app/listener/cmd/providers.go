package main

import (
	"github.com/lk2023060901/xremote/app/listener/internal/config"
	"github.com/lk2023060901/xremote/app/listener/internal/metrics"
	"github.com/lk2023060901/xremote/pkg/app"
	"github.com/lk2023060901/xremote/pkg/dispatch"
	"github.com/lk2023060901/xremote/pkg/logger"
	"github.com/lk2023060901/xremote/pkg/metrics/system"
	"github.com/lk2023060901/xremote/pkg/platform"
	"github.com/lk2023060901/xremote/pkg/prometheus"
	"github.com/lk2023060901/xremote/pkg/session"
	"github.com/lk2023060901/xremote/pkg/tcp"
	"github.com/lk2023060901/xremote/pkg/web"
)

func providePrometheusConfig(cfg *config.Config) *prometheus.Config {
	return &cfg.Prometheus
}

func providePlatformConfig(cfg *config.Config) *platform.Config {
	return &cfg.Dispatch.Shutdown
}

func provideDispatchConfig(cfg *config.Config) *dispatch.Config {
	return &dispatch.Config{Target: cfg.Dispatch.Target}
}

func provideHandlerConfig(cfg *config.Config) *config.HandlerConfig {
	return &cfg.Handler
}

// provideSystemCollector 创建资源采集器并导出为指标
func provideSystemCollector(cfg *config.Config, promClient *prometheus.Client) (*system.Collector, error) {
	c, err := system.New(cfg.Metrics.SystemInterval)
	if err != nil {
		return nil, err
	}
	if err := metrics.RegisterSystem(promClient, c); err != nil {
		return nil, err
	}
	return c, nil
}

// provideTCPServer 创建 TCP 监听并导出工作协程数
func provideTCPServer(
	cfg *config.Config,
	h session.SessionHandler,
	mgr session.SessionManager,
	promClient *prometheus.Client,
	l logger.Logger,
) (tcp.Server, error) {
	srv, err := tcp.New(&cfg.TCP, h, tcp.WithManager(mgr), tcp.WithLogger(l))
	if err != nil {
		return nil, err
	}
	if err := metrics.RegisterWorkers(promClient, srv.Running); err != nil {
		return nil, err
	}
	return srv, nil
}

// provideAdminServer 未启用时返回 nil
func provideAdminServer(
	cfg *config.Config,
	mgr session.SessionManager,
	promClient *prometheus.Client,
	collector *system.Collector,
	l logger.Logger,
) (*web.Server, error) {
	if !cfg.Admin.IsEnabled() {
		return nil, nil
	}
	srv, err := web.NewServer(&cfg.Admin, l)
	if err != nil {
		return nil, err
	}
	admin := &web.Admin{
		Sessions: mgr,
		Metrics:  promClient.Handler(),
		System:   func() any { return collector.GetStats() },
	}
	admin.Register(srv.Router())
	return srv, nil
}

func provideAppOptions(l logger.Logger) []app.Option {
	return []app.Option{
		app.WithName(app.AppName),
		app.WithLogger(l),
	}
}

// provideAppComponents 组装服务，按 采集器、TCP 监听、管理 HTTP 的顺序启动
func provideAppComponents(collector *system.Collector, tcpServer tcp.Server, adminServer *web.Server) app.Components {
	comps := app.Components{
		Servers: []app.Server{collector, tcpServer},
	}
	if adminServer != nil {
		comps.Servers = append(comps.Servers, adminServer)
	}
	return comps
}
