package config

// Option 配置选项函数
type Option func(*manager)

// WithDefaults 设置最低优先级的默认值，key 使用 "." 分隔的路径
func WithDefaults(defaults map[string]any) Option {
	return func(m *manager) {
		for key, value := range defaults {
			m.v.SetDefault(key, value)
		}
	}
}
