package config

import (
	"github.com/fsnotify/fsnotify"
	pkgconfig "github.com/lk2023060901/xremote/pkg/config"
	"github.com/lk2023060901/xremote/pkg/logger"
)

// LevelSetter 可在运行时调整等级的日志器
type LevelSetter interface {
	SetLevel(level logger.Level)
	Level() logger.Level
}

// WatchReload 监听配置文件，变更后重新应用 log.level。
// 其余配置项只在启动时生效。
func WatchReload(m pkgconfig.Manager, target LevelSetter, l logger.Logger) error {
	return m.Watch(func(e fsnotify.Event) {
		var cfg Config
		if err := m.Unmarshal(&cfg); err != nil {
			l.Warn("reload config failed", "file", e.Name, "error", err)
			return
		}
		if cfg.Log.Level == "" || cfg.Log.Level == target.Level() {
			return
		}
		old := target.Level()
		target.SetLevel(cfg.Log.Level)
		l.Info("log level reloaded", "from", string(old), "to", string(cfg.Log.Level))
	})
}
