package sentry

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lk2023060901/xremote/pkg/config"
)

// Config Sentry 配置，DSN 为空时不启用
type Config struct {
	DSN         string `mapstructure:"dsn" json:"dsn" yaml:"dsn"`
	Environment string `mapstructure:"environment" json:"environment" yaml:"environment"`
	Release     string `mapstructure:"release" json:"release" yaml:"release"`
	ServerName  string `mapstructure:"server_name" json:"server_name" yaml:"server_name"`

	// 错误采样率 (0.0-1.0)
	SampleRate       float64 `mapstructure:"sample_rate" json:"sample_rate" yaml:"sample_rate"`
	AttachStacktrace *bool   `mapstructure:"attach_stacktrace" json:"attach_stacktrace" yaml:"attach_stacktrace"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout"`
	Debug           bool          `mapstructure:"debug" json:"debug" yaml:"debug"`

	Tags map[string]string `mapstructure:"tags" json:"tags" yaml:"tags"`

	// BeforeSend 上报前回调，返回 nil 丢弃事件
	BeforeSend func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event `mapstructure:"-" json:"-" yaml:"-"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Environment:      "production",
		SampleRate:       1.0,
		AttachStacktrace: config.Bool(true),
		ShutdownTimeout:  2 * time.Second,
		Tags:             make(map[string]string),
	}
}

// Enabled 是否配置了 DSN
func (c *Config) Enabled() bool {
	return c != nil && c.DSN != ""
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.DSN == "" {
		return ErrInvalidDSN
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return ErrInvalidConfig
	}
	return nil
}

func (c *Config) toClientOptions() sentry.ClientOptions {
	return sentry.ClientOptions{
		Dsn:              c.DSN,
		Environment:      c.Environment,
		Release:          c.Release,
		ServerName:       c.ServerName,
		SampleRate:       c.SampleRate,
		AttachStacktrace: config.BoolValue(c.AttachStacktrace, true),
		Debug:            c.Debug,
		BeforeSend:       c.BeforeSend,
	}
}
