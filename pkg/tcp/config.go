package tcp

import (
	"net"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xremote/pkg/config"
	"github.com/lk2023060901/xremote/pkg/protocol"
)

const (
	EngineGnet = "gnet"
	EngineNet  = "net"
)

// ServerConfig 服务端配置
type ServerConfig struct {
	// 监听地址
	Addr string `mapstructure:"addr" json:"addr" yaml:"addr" validate:"required"`
	// 网络类型，tcp/tcp4/tcp6
	Network string `mapstructure:"network" json:"network" yaml:"network" validate:"oneof=tcp tcp4 tcp6"`
	// 传输引擎，gnet 事件循环或标准库阻塞模型
	Engine string `mapstructure:"engine" json:"engine" yaml:"engine" validate:"oneof=gnet net"`

	// 建立连接后等待完整帧的最长时间
	ReadTimeout time.Duration `mapstructure:"read_timeout" json:"read_timeout" yaml:"read_timeout" validate:"gt=0"`
	// 回显写超时
	WriteTimeout time.Duration `mapstructure:"write_timeout" json:"write_timeout" yaml:"write_timeout" validate:"gt=0"`
	// 允许的最大帧长度（含 3 字节头部）
	MaxFrameSize int `mapstructure:"max_frame_size" json:"max_frame_size" yaml:"max_frame_size" validate:"gte=3"`

	// 并发处理连接的工作协程数，池满时新连接被拒绝
	Workers int `mapstructure:"workers" json:"workers" yaml:"workers" validate:"gte=1"`
	// 每秒接受的新连接数，0 表示不限
	AcceptRate float64 `mapstructure:"accept_rate" json:"accept_rate" yaml:"accept_rate" validate:"gte=0"`
	// 限流突发量
	AcceptBurst int `mapstructure:"accept_burst" json:"accept_burst" yaml:"accept_burst" validate:"gte=0"`

	// gnet 调优，默认开启的开关为 *bool 以便显式关闭
	Multicore    *bool         `mapstructure:"multicore" json:"multicore" yaml:"multicore"`
	NumEventLoop int           `mapstructure:"num_event_loop" json:"num_event_loop" yaml:"num_event_loop"`
	ReusePort    bool          `mapstructure:"reuse_port" json:"reuse_port" yaml:"reuse_port"`
	ReuseAddr    *bool         `mapstructure:"reuse_addr" json:"reuse_addr" yaml:"reuse_addr"`
	TCPKeepAlive time.Duration `mapstructure:"tcp_keep_alive" json:"tcp_keep_alive" yaml:"tcp_keep_alive"`
	TCPNoDelay   *bool         `mapstructure:"tcp_no_delay" json:"tcp_no_delay" yaml:"tcp_no_delay"`
	// 读超时巡检间隔
	TickInterval time.Duration `mapstructure:"tick_interval" json:"tick_interval" yaml:"tick_interval" validate:"gt=0"`

	// 优雅停止时等待工作协程的最长时间
	StopTimeout time.Duration `mapstructure:"stop_timeout" json:"stop_timeout" yaml:"stop_timeout"`
}

// DefaultServerConfig 返回默认服务端配置
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:         "0.0.0.0:6969",
		Network:      "tcp",
		Engine:       EngineGnet,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Second,
		MaxFrameSize: 1024,
		Workers:      256,
		AcceptBurst:  32,
		Multicore:    config.Bool(true),
		ReuseAddr:    config.Bool(true),
		TCPKeepAlive: 30 * time.Second,
		TCPNoDelay:   config.Bool(true),
		TickInterval: time.Second,
		StopTimeout:  5 * time.Second,
	}
}

// Validate 验证服务端配置
func (c *ServerConfig) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}
	if err := config.NewValidator().Validate(c); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "%v", err)
	}
	// 端口允许为 0，由系统分配
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "addr %q: %v", c.Addr, err)
	}
	return nil
}

// MaxFrame 实际生效的帧上限，不会超过协议允许的最大帧
func (c *ServerConfig) MaxFrame() int {
	if limit := protocol.HeaderSize + protocol.MaxPayloadSize; c.MaxFrameSize > limit {
		return limit
	}
	return c.MaxFrameSize
}

// ClientConfig 客户端配置
type ClientConfig struct {
	// 服务端地址
	Addr    string `mapstructure:"addr" json:"addr" yaml:"addr" validate:"required"`
	Network string `mapstructure:"network" json:"network" yaml:"network"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout" json:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" json:"write_timeout" yaml:"write_timeout"`
	// 回显最大读取长度
	MaxResponseSize int64 `mapstructure:"max_response_size" json:"max_response_size" yaml:"max_response_size"`
}

// DefaultClientConfig 返回默认客户端配置
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Addr:            "127.0.0.1:6969",
		Network:         "tcp",
		DialTimeout:     5 * time.Second,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    5 * time.Second,
		MaxResponseSize: 64 * 1024,
	}
}

// Validate 验证客户端配置
func (c *ClientConfig) Validate() error {
	if c == nil || c.Addr == "" {
		return errors.Wrap(ErrInvalidConfig, "addr is required")
	}
	if c.Network == "" {
		c.Network = "tcp"
	}
	return nil
}
