package web

import (
	"net"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xremote/pkg/config"
)

// Config 管理 HTTP 服务配置
type Config struct {
	// 是否启用，未设置时默认启用
	Enabled *bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	// 监听地址，默认只绑定回环地址
	Addr string `mapstructure:"addr" json:"addr" yaml:"addr" validate:"required"`
	// gin 模式：debug, release, test
	Mode            string        `mapstructure:"mode" json:"mode" yaml:"mode" validate:"oneof=debug release test"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" json:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit" json:"rate_limit" yaml:"rate_limit"`
}

// RateLimitConfig 管理接口限流，RequestsPerSecond 为 0 时不限流
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" json:"requests_per_second" yaml:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" json:"burst" yaml:"burst" validate:"gte=0"`
	// 不参与限流的路径
	SkipPaths []string `mapstructure:"skip_paths" json:"skip_paths" yaml:"skip_paths"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	enabled := true
	return &Config{
		Enabled:         &enabled,
		Addr:            "127.0.0.1:6970",
		Mode:            gin.ReleaseMode,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		RateLimit: RateLimitConfig{
			Burst:     20,
			SkipPaths: []string{"/healthz"},
		},
	}
}

// IsEnabled 是否启用管理服务
func (c *Config) IsEnabled() bool {
	return c != nil && (c.Enabled == nil || *c.Enabled)
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}
	if err := config.NewValidator().Validate(c); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "%v", err)
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "addr %q: %v", c.Addr, err)
	}
	return nil
}
