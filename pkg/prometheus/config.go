package prometheus

import "github.com/lk2023060901/xremote/pkg/config"

// Config Prometheus 配置
type Config struct {
	// 命名空间，指标名前缀
	Namespace string `mapstructure:"namespace" json:"namespace" yaml:"namespace" validate:"required"`
	// 子系统（可选）
	Subsystem string `mapstructure:"subsystem" json:"subsystem" yaml:"subsystem"`
	// 是否注册 Go 运行时采集器
	EnableGoCollector *bool `mapstructure:"enable_go_collector" json:"enable_go_collector" yaml:"enable_go_collector"`
	// 是否注册进程采集器
	EnableProcessCollector *bool `mapstructure:"enable_process_collector" json:"enable_process_collector" yaml:"enable_process_collector"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Namespace:              "xremote",
		EnableGoCollector:      config.Bool(true),
		EnableProcessCollector: config.Bool(true),
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil || c.Namespace == "" {
		return ErrInvalidConfig
	}
	return nil
}
