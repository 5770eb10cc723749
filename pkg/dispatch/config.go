package dispatch

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config 分发器配置
type Config struct {
	// Target 目标程序
	Target TargetConfig `mapstructure:"target" json:"target" yaml:"target"`
}

// TargetConfig 目标程序配置
type TargetConfig struct {
	// Executable 启动时使用的可执行文件路径
	Executable string `mapstructure:"executable" json:"executable" yaml:"executable" validate:"required"`
	// ProcessName 结束进程时匹配的进程名
	ProcessName string `mapstructure:"process_name" json:"process_name" yaml:"process_name" validate:"required"`
}

// DefaultConfig 返回当前平台的默认配置
func DefaultConfig() *Config {
	if runtime.GOOS == "windows" {
		return &Config{
			Target: TargetConfig{
				Executable:  filepath.Join(os.Getenv("LOCALAPPDATA"), "Programs", "Opera GX", "launcher.exe"),
				ProcessName: "opera.exe",
			},
		}
	}
	return &Config{
		Target: TargetConfig{
			Executable:  "opera",
			ProcessName: "opera",
		},
	}
}
