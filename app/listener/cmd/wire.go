//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/lk2023060901/xremote/app/listener/internal/config"
	"github.com/lk2023060901/xremote/app/listener/internal/handler"
	"github.com/lk2023060901/xremote/app/listener/internal/metrics"
	"github.com/lk2023060901/xremote/pkg/app"
	"github.com/lk2023060901/xremote/pkg/dispatch"
	"github.com/lk2023060901/xremote/pkg/logger"
	"github.com/lk2023060901/xremote/pkg/platform"
	"github.com/lk2023060901/xremote/pkg/prometheus"
	"github.com/lk2023060901/xremote/pkg/session"
)

func InitApp(cfg *config.Config, l logger.Logger) (*app.BaseApp, func(), error) {
	panic(wire.Build(
		// 1. 基础框架 (BaseApp)
		app.ProviderSet,

		// 2. Prometheus 客户端与业务指标
		providePrometheusConfig,
		prometheus.New,
		metrics.New,

		// 3. 平台能力
		providePlatformConfig,
		platform.New,
		wire.Bind(new(dispatch.Platform), new(*platform.OS)),

		// 4. 分发器
		provideDispatchConfig,
		dispatch.New,
		wire.Bind(new(handler.Dispatcher), new(*dispatch.Dispatcher)),

		// 5. 连接处理器
		provideHandlerConfig,
		handler.NewListenerHandler,
		wire.Bind(new(session.SessionHandler), new(*handler.ListenerHandler)),

		// 6. 会话管理与 TCP 监听
		session.NewBaseSessionManager,
		wire.Bind(new(session.SessionManager), new(*session.BaseSessionManager)),
		provideTCPServer,

		// 7. 资源采集
		provideSystemCollector,

		// 8. 管理 HTTP
		provideAdminServer,

		// 9. 组装
		provideAppOptions,
		provideAppComponents,
		app.InitApp,
	))
}
