package config

import (
	"os"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Manager 配置管理器接口
type Manager interface {
	// LoadFile 加载配置文件，文件不存在时返回 ErrConfigFileNotFound
	LoadFile(path string) error
	// BindEnv 绑定环境变量，prefix 为 "XREMOTE" 时 tcp.addr 对应 XREMOTE_TCP_ADDR
	BindEnv(prefix string)
	// BindFlags 绑定命令行参数，flag 名即配置 key（如 tcp.addr）
	BindFlags(fs *pflag.FlagSet) error
	// Unmarshal 解析整个配置到结构体
	Unmarshal(v any) error
	// UnmarshalKey 解析指定路径的配置
	UnmarshalKey(key string, v any) error
	Get(key string) any
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	IsSet(key string) bool
	AllSettings() map[string]any
	// Watch 监听配置文件变化
	Watch(callback func(fsnotify.Event)) error
}

type manager struct {
	v         *viper.Viper
	mu        sync.RWMutex
	callbacks []func(fsnotify.Event)
	watching  bool
}

// NewManager 创建配置管理器
func NewManager(opts ...Option) Manager {
	m := &manager{
		v: viper.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *manager) LoadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrConfigFileNotFound, "%s", path)
		}
		return errors.Wrapf(err, "stat config file %s", path)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.v.SetConfigFile(path)
	if err := m.v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	return nil
}

func (m *manager) BindEnv(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prefix != "" {
		m.v.SetEnvPrefix(prefix)
	}
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.v.AutomaticEnv()
}

func (m *manager) BindFlags(fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		// 仅绑定形如 section.key 的 flag，--config 之类不进入配置树
		if !strings.Contains(f.Name, ".") {
			return
		}
		if err := m.v.BindPFlag(f.Name, f); err != nil {
			bindErr = errors.CombineErrors(bindErr, errors.Wrapf(err, "bind flag %s", f.Name))
		}
	})
	return bindErr
}

func (m *manager) Unmarshal(v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.v.Unmarshal(v, viper.DecodeHook(decodeHook())); err != nil {
		return errors.Wrap(err, "unmarshal config")
	}
	return nil
}

func (m *manager) UnmarshalKey(key string, v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.v.UnmarshalKey(key, v, viper.DecodeHook(decodeHook())); err != nil {
		return errors.Wrapf(err, "unmarshal key %s", key)
	}
	return nil
}

func (m *manager) Get(key string) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.Get(key)
}

func (m *manager) GetString(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.GetString(key)
}

func (m *manager) GetInt(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.GetInt(key)
}

func (m *manager) GetBool(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.GetBool(key)
}

func (m *manager) IsSet(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.IsSet(key)
}

func (m *manager) AllSettings() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.AllSettings()
}

func (m *manager) Watch(callback func(fsnotify.Event)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.v.ConfigFileUsed() == "" {
		return errors.Wrap(ErrConfigFileNotFound, "watch requires a loaded config file")
	}

	m.callbacks = append(m.callbacks, callback)
	if m.watching {
		return nil
	}
	m.watching = true

	m.v.OnConfigChange(func(e fsnotify.Event) {
		m.mu.RLock()
		callbacks := append([]func(fsnotify.Event){}, m.callbacks...)
		m.mu.RUnlock()

		for _, cb := range callbacks {
			cb(e)
		}
	})
	m.v.WatchConfig()
	return nil
}

// decodeHook 支持 "10s" 形式的 duration 与逗号分隔的切片
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}
