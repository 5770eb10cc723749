package platform

// Config 平台能力配置，对应 dispatch.shutdown
type Config struct {
	// DefaultDelay 请求未携带延迟时的关机延迟（秒），0 为立即
	DefaultDelay int `mapstructure:"default_delay" json:"default_delay" yaml:"default_delay" validate:"gte=0"`
	// DryRun 只记录关机命令而不执行
	DryRun bool `mapstructure:"dry_run" json:"dry_run" yaml:"dry_run"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{}
}
