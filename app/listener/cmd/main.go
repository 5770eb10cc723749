package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lk2023060901/xremote/app/listener/internal/config"
	"github.com/lk2023060901/xremote/pkg/app"
	"github.com/lk2023060901/xremote/pkg/logger"
	"github.com/lk2023060901/xremote/pkg/sentry"
	"github.com/spf13/pflag"
)

func main() {
	// 1. 命令行参数，带 "." 的参数会覆盖同名配置项
	pflag.String("tcp.addr", "", "listen address, e.g. 0.0.0.0:6969")
	pflag.String("tcp.engine", "", "transport engine: gnet or net")
	pflag.Bool("handler.echo", true, "echo the decoded request back to the client")
	pflag.Bool("dispatch.shutdown.dry_run", false, "log shutdown commands instead of running them")
	pflag.String("admin.addr", "", "admin http listen address")
	pflag.String("log.level", "", "log level")
	showVersion := pflag.BoolP("version", "v", false, "print version and exit")

	// 2. 加载配置
	var cfg config.Config
	loaded, err := app.LoadConfig(&cfg, app.LoadOptions{Defaults: config.Defaults()})
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *showVersion {
		fmt.Println(app.GetInfo())
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	// 3. 错误上报（可选）
	var reporter *sentry.Client
	if cfg.Sentry.Enabled() {
		if cfg.Sentry.Release == "" {
			cfg.Sentry.Release = app.Version
		}
		c, err := sentry.New(&cfg.Sentry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "init sentry: %v\n", err)
			os.Exit(1)
		}
		reporter = c
		defer reporter.Close()
	}

	// 4. 初始化主日志
	l, err := newLogger(&cfg.Log, reporter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer l.Sync()
	logger.SetDefault(l)

	// 配置文件热更新日志等级
	if loaded.FileLoaded {
		if err := config.WatchReload(loaded.Manager, l, l.Named("config")); err != nil {
			l.Warn("config watch disabled", "error", err)
		}
	}

	// 5. 通过 Wire 初始化应用
	application, cleanup, err := InitApp(&cfg, l)
	if err != nil {
		l.Error("failed to initialize application", "error", err)
		return
	}
	defer cleanup()

	// 6. 运行服务
	if err := application.Run(); err != nil {
		l.Error("application exited with error", "error", err)
		if reporter != nil {
			reporter.Flush(2 * time.Second)
		}
	}
}

func newLogger(cfg *logger.Config, reporter *sentry.Client) (*logger.BaseLogger, error) {
	if cfg.OutputPath != "" {
		cfg.EnableFile = true
	}
	opts := []logger.Option{logger.WithGlobalFields("app", app.AppName)}
	if reporter != nil {
		opts = append(opts, logger.WithHooks(sentry.LoggerHook(reporter)))
	}
	return logger.New(cfg, opts...)
}
