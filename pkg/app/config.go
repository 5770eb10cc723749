package app

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xremote/pkg/config"
	"github.com/spf13/pflag"
)

const (
	// EnvPrefix 环境变量前缀，XREMOTE_TCP_ADDR 对应 tcp.addr
	EnvPrefix = "XREMOTE"
	// EnvConfigPath 指定配置文件路径的环境变量
	EnvConfigPath = EnvPrefix + "_CONFIG"
)

// LoadOptions LoadConfig 的输入
type LoadOptions struct {
	// FlagSet 为空时使用 pflag.CommandLine
	FlagSet *pflag.FlagSet
	// Args 为 nil 时使用 os.Args[1:]
	Args []string
	// Defaults 最低优先级的默认值，key 为 tcp.addr 形式
	Defaults map[string]any
}

// LoadResult 记录最终生效的来源
type LoadResult struct {
	ConfigPath string
	FileLoaded bool
	Manager    config.Manager
}

// LoadConfig 按 命令行 > 环境变量 > 配置文件 > 默认值 的优先级解析到 target。
// 配置文件是可选的：未显式指定且默认路径不存在时只使用默认值；
// 通过 --config 或 XREMOTE_CONFIG 显式指定却不存在时返回错误。
func LoadConfig(target any, lo LoadOptions) (*LoadResult, error) {
	fs := lo.FlagSet
	if fs == nil {
		fs = pflag.CommandLine
	}
	args := lo.Args
	if args == nil {
		args = os.Args[1:]
	}

	if fs.Lookup("config") == nil {
		fs.StringP("config", "c", defaultConfigPath(), "path to config file")
	}
	if fs.Lookup("log.output_path") == nil {
		fs.String("log.output_path", "", "log file path, enables file output")
	}

	if !fs.Parsed() {
		if err := fs.Parse(args); err != nil {
			return nil, errors.Wrap(err, "parse flags")
		}
	}

	configPath, _ := fs.GetString("config")
	explicit := fs.Changed("config")
	if !explicit {
		if env := os.Getenv(EnvConfigPath); env != "" {
			configPath = env
			explicit = true
		}
	}

	mgr := config.NewManager(config.WithDefaults(lo.Defaults))
	result := &LoadResult{ConfigPath: configPath, Manager: mgr}

	if err := mgr.LoadFile(configPath); err != nil {
		if !errors.Is(err, config.ErrConfigFileNotFound) || explicit {
			return nil, err
		}
	} else {
		result.FileLoaded = true
	}

	mgr.BindEnv(EnvPrefix)
	if err := mgr.BindFlags(fs); err != nil {
		return nil, err
	}

	if err := mgr.Unmarshal(target); err != nil {
		return nil, err
	}

	return result, nil
}

// GetExecDir 可执行文件所在目录（处理符号链接）
func GetExecDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	realPath, err := filepath.EvalSymlinks(execPath)
	if err != nil {
		return filepath.Dir(execPath), nil
	}
	return filepath.Dir(realPath), nil
}

func defaultConfigPath() string {
	dir, err := GetExecDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "config.yaml")
}
