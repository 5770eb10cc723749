// Package platform 提供 dispatch.Platform 的操作系统实现。
package platform

import (
	"github.com/lk2023060901/xremote/pkg/config"
	"github.com/lk2023060901/xremote/pkg/dispatch"
	"github.com/lk2023060901/xremote/pkg/logger"
)

// OS 组合三种平台能力
type OS struct {
	*Spawner
	*Terminator
	*ShutdownScheduler
}

// New 创建操作系统平台实现
func New(cfg *Config, l logger.Logger) (*OS, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := config.NewValidator().Validate(merged); err != nil {
		return nil, err
	}
	if l == nil {
		l = logger.NewNoop()
	}
	l = l.Named("platform")

	return &OS{
		Spawner:           NewSpawner(l),
		Terminator:        NewTerminator(),
		ShutdownScheduler: NewShutdownScheduler(merged, nil, l),
	}, nil
}

var _ dispatch.Platform = (*OS)(nil)
