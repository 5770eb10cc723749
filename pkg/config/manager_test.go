package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type managerTestConfig struct {
	TCP struct {
		Addr        string        `mapstructure:"addr"`
		ReadTimeout time.Duration `mapstructure:"read_timeout"`
		Workers     int           `mapstructure:"workers"`
	} `mapstructure:"tcp"`
	Handler struct {
		Echo bool `mapstructure:"echo"`
	} `mapstructure:"handler"`
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const testYAML = `
tcp:
  addr: "127.0.0.1:7000"
  read_timeout: 3s
  workers: 16
handler:
  echo: false
`

func TestManagerLoadFile(t *testing.T) {
	mgr := NewManager()
	require.NoError(t, mgr.LoadFile(writeConfigFile(t, testYAML)))

	var cfg managerTestConfig
	require.NoError(t, mgr.Unmarshal(&cfg))
	assert.Equal(t, "127.0.0.1:7000", cfg.TCP.Addr)
	assert.Equal(t, 3*time.Second, cfg.TCP.ReadTimeout)
	assert.Equal(t, 16, cfg.TCP.Workers)
	assert.False(t, cfg.Handler.Echo)

	assert.True(t, mgr.IsSet("tcp.workers"))
	assert.Equal(t, 16, mgr.GetInt("tcp.workers"))
	assert.Equal(t, "127.0.0.1:7000", mgr.GetString("tcp.addr"))
	assert.False(t, mgr.GetBool("handler.echo"))
	assert.Contains(t, mgr.AllSettings(), "tcp")
}

func TestManagerLoadFileMissing(t *testing.T) {
	err := NewManager().LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestManagerUnmarshalKey(t *testing.T) {
	mgr := NewManager()
	require.NoError(t, mgr.LoadFile(writeConfigFile(t, testYAML)))

	var tcp struct {
		Addr        string        `mapstructure:"addr"`
		ReadTimeout time.Duration `mapstructure:"read_timeout"`
	}
	require.NoError(t, mgr.UnmarshalKey("tcp", &tcp))
	assert.Equal(t, 3*time.Second, tcp.ReadTimeout)
}

func TestManagerPrecedence(t *testing.T) {
	mgr := NewManager(WithDefaults(map[string]any{
		"tcp.addr":         "0.0.0.0:6969",
		"tcp.read_timeout": 10 * time.Second,
		"tcp.workers":      64,
		"handler.echo":     true,
	}))
	require.NoError(t, mgr.LoadFile(writeConfigFile(t, "tcp:\n  workers: 16\n")))

	t.Setenv("XREMOTE_TCP_READ_TIMEOUT", "2s")
	mgr.BindEnv("XREMOTE")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("tcp.addr", "", "listen address")
	fs.String("config", "", "ignored")
	require.NoError(t, fs.Parse([]string{"--tcp.addr=127.0.0.1:9000"}))
	require.NoError(t, mgr.BindFlags(fs))

	var cfg managerTestConfig
	require.NoError(t, mgr.Unmarshal(&cfg))
	assert.Equal(t, "127.0.0.1:9000", cfg.TCP.Addr)
	assert.Equal(t, 2*time.Second, cfg.TCP.ReadTimeout)
	assert.Equal(t, 16, cfg.TCP.Workers)
	assert.True(t, cfg.Handler.Echo)
	assert.False(t, mgr.IsSet("config"))
}

func TestManagerWatchRequiresFile(t *testing.T) {
	err := NewManager().Watch(func(fsnotify.Event) {})
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}
