// Package config 定义 listener 服务的完整配置。
package config

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xremote/pkg/dispatch"
	"github.com/lk2023060901/xremote/pkg/logger"
	"github.com/lk2023060901/xremote/pkg/platform"
	"github.com/lk2023060901/xremote/pkg/prometheus"
	"github.com/lk2023060901/xremote/pkg/sentry"
	"github.com/lk2023060901/xremote/pkg/tcp"
	"github.com/lk2023060901/xremote/pkg/web"
)

// Config listener 服务配置
type Config struct {
	Log        logger.Config     `mapstructure:"log"`
	TCP        tcp.ServerConfig  `mapstructure:"tcp"`
	Dispatch   DispatchConfig    `mapstructure:"dispatch"`
	Handler    HandlerConfig     `mapstructure:"handler"`
	Sentry     sentry.Config     `mapstructure:"sentry"`
	Admin      web.Config        `mapstructure:"admin"`
	Prometheus prometheus.Config `mapstructure:"prometheus"`
	Metrics    MetricsConfig     `mapstructure:"metrics"`
}

// MetricsConfig 业务指标配置
type MetricsConfig struct {
	// 主机与进程资源采集间隔
	SystemInterval time.Duration `mapstructure:"system_interval"`
}

// DispatchConfig 动作分发配置
type DispatchConfig struct {
	Target   dispatch.TargetConfig `mapstructure:"target"`
	Shutdown platform.Config       `mapstructure:"shutdown"`
}

// HandlerConfig 连接处理配置
type HandlerConfig struct {
	// Echo 处理完成后回写请求的 JSON，未设置时开启
	Echo *bool `mapstructure:"echo"`
}

// EchoEnabled 是否回显
func (c HandlerConfig) EchoEnabled() bool {
	return c.Echo == nil || *c.Echo
}

// Defaults 返回最低优先级的默认值，供 app.LoadConfig 使用。
// 只列出标量键，使环境变量与命令行能够覆盖它们。
func Defaults() map[string]any {
	srv := tcp.DefaultServerConfig()
	target := dispatch.DefaultConfig().Target
	admin := web.DefaultConfig()
	logCfg := logger.DefaultConfig()
	prom := prometheus.DefaultConfig()

	return map[string]any{
		"log.level":          string(logCfg.Level),
		"log.format":         string(logCfg.Format),
		"log.enable_console": logCfg.ConsoleEnabled(),

		"tcp.addr":           srv.Addr,
		"tcp.network":        srv.Network,
		"tcp.engine":         srv.Engine,
		"tcp.read_timeout":   srv.ReadTimeout,
		"tcp.write_timeout":  srv.WriteTimeout,
		"tcp.max_frame_size": srv.MaxFrameSize,
		"tcp.workers":        srv.Workers,
		"tcp.accept_rate":    srv.AcceptRate,
		"tcp.accept_burst":   srv.AcceptBurst,
		"tcp.multicore":      *srv.Multicore,
		"tcp.reuse_addr":     *srv.ReuseAddr,
		"tcp.tcp_keep_alive": srv.TCPKeepAlive,
		"tcp.tcp_no_delay":   *srv.TCPNoDelay,
		"tcp.tick_interval":  srv.TickInterval,
		"tcp.stop_timeout":   srv.StopTimeout,

		"dispatch.target.executable":     target.Executable,
		"dispatch.target.process_name":   target.ProcessName,
		"dispatch.shutdown.default_delay": 0,
		"dispatch.shutdown.dry_run":       false,

		"handler.echo": true,

		"sentry.dsn": "",

		"admin.enabled": *admin.Enabled,
		"admin.addr":    admin.Addr,

		"prometheus.namespace": prom.Namespace,

		"metrics.system_interval": 5 * time.Second,
	}
}

// Validate 启动前检查分发目标，其余组件构造时各自合并默认值并校验
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil listener config")
	}
	if c.Dispatch.Target.Executable == "" || c.Dispatch.Target.ProcessName == "" {
		return errors.New("config: dispatch.target.executable and dispatch.target.process_name are required")
	}
	if c.Dispatch.Shutdown.DefaultDelay < 0 {
		return errors.Newf("config: dispatch.shutdown.default_delay must be >= 0, got %d", c.Dispatch.Shutdown.DefaultDelay)
	}
	return nil
}
