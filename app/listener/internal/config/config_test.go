package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lk2023060901/xremote/pkg/app"
	pkgconfig "github.com/lk2023060901/xremote/pkg/config"
	"github.com/lk2023060901/xremote/pkg/logger"
	"github.com/lk2023060901/xremote/pkg/tcp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) *Config {
	t.Helper()
	t.Setenv(app.EnvConfigPath, "")
	var cfg Config
	fs := pflag.NewFlagSet("listener", pflag.ContinueOnError)
	fs.String("tcp.addr", "", "listen address")
	fs.String("tcp.engine", "", "transport engine")
	_, err := app.LoadConfig(&cfg, app.LoadOptions{
		FlagSet:  fs,
		Args:     append([]string{}, args...),
		Defaults: Defaults(),
	})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return &cfg
}

func TestDefaults(t *testing.T) {
	var cfg Config
	fs := pflag.NewFlagSet("listener", pflag.ContinueOnError)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	_, err := app.LoadConfig(&cfg, app.LoadOptions{
		FlagSet:  fs,
		Args:     []string{"--config", path},
		Defaults: Defaults(),
	})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:6969", cfg.TCP.Addr)
	assert.Equal(t, "gnet", cfg.TCP.Engine)
	assert.Equal(t, 10*time.Second, cfg.TCP.ReadTimeout)
	assert.Equal(t, 1024, cfg.TCP.MaxFrameSize)
	assert.Equal(t, time.Second, cfg.TCP.TickInterval)
	assert.True(t, cfg.Handler.EchoEnabled())
	assert.False(t, cfg.Dispatch.Shutdown.DryRun)
	assert.NotEmpty(t, cfg.Dispatch.Target.Executable)
	assert.Equal(t, "127.0.0.1:6970", cfg.Admin.Addr)
	assert.True(t, cfg.Admin.IsEnabled())
	assert.False(t, cfg.Sentry.Enabled())
	assert.Equal(t, "debug", string(cfg.Log.Level))
	assert.Equal(t, 5*time.Second, cfg.Metrics.SystemInterval)
	require.NoError(t, cfg.Validate())
}

func TestOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tcp:
  addr: 127.0.0.1:7000
  read_timeout: 3s
handler:
  echo: false
dispatch:
  target:
    executable: /opt/browser/launcher
    process_name: browser
  shutdown:
    default_delay: 60
    dry_run: true
`), 0o644))

	t.Setenv("XREMOTE_TCP_ENGINE", "net")

	var cfg Config
	fs := pflag.NewFlagSet("listener", pflag.ContinueOnError)
	fs.String("tcp.addr", "", "listen address")
	_, err := app.LoadConfig(&cfg, app.LoadOptions{
		FlagSet:  fs,
		Args:     []string{"--config", path, "--tcp.addr", "127.0.0.1:7100"},
		Defaults: Defaults(),
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7100", cfg.TCP.Addr)
	assert.Equal(t, "net", cfg.TCP.Engine)
	assert.Equal(t, 3*time.Second, cfg.TCP.ReadTimeout)
	assert.False(t, cfg.Handler.EchoEnabled())
	assert.Equal(t, "/opt/browser/launcher", cfg.Dispatch.Target.Executable)
	assert.Equal(t, "browser", cfg.Dispatch.Target.ProcessName)
	assert.Equal(t, 60, cfg.Dispatch.Shutdown.DefaultDelay)
	assert.True(t, cfg.Dispatch.Shutdown.DryRun)
}

func TestValidate(t *testing.T) {
	cfg := load(t)
	require.NoError(t, cfg.Validate())

	cfg.Dispatch.Target.ProcessName = ""
	assert.Error(t, cfg.Validate())

	cfg = load(t)
	cfg.Dispatch.Shutdown.DefaultDelay = -1
	assert.Error(t, cfg.Validate())

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

func TestSwitchesTurnOff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  enable_console: false
  enable_stacktrace: false
  enable_file: true
  output_path: /tmp/listener.log
  rotation:
    compress: false
tcp:
  multicore: false
  reuse_addr: false
  tcp_no_delay: false
prometheus:
  enable_go_collector: false
  enable_process_collector: false
sentry:
  attach_stacktrace: false
admin:
  enabled: false
`), 0o644))

	var cfg Config
	fs := pflag.NewFlagSet("listener", pflag.ContinueOnError)
	_, err := app.LoadConfig(&cfg, app.LoadOptions{
		FlagSet:  fs,
		Args:     []string{"--config", path},
		Defaults: Defaults(),
	})
	require.NoError(t, err)

	switches := map[string]*bool{
		"log.enable_console":                  cfg.Log.EnableConsole,
		"log.enable_stacktrace":               cfg.Log.EnableStacktrace,
		"log.rotation.compress":               cfg.Log.Rotation.Compress,
		"tcp.multicore":                       cfg.TCP.Multicore,
		"tcp.reuse_addr":                      cfg.TCP.ReuseAddr,
		"tcp.tcp_no_delay":                    cfg.TCP.TCPNoDelay,
		"prometheus.enable_go_collector":      cfg.Prometheus.EnableGoCollector,
		"prometheus.enable_process_collector": cfg.Prometheus.EnableProcessCollector,
		"sentry.attach_stacktrace":            cfg.Sentry.AttachStacktrace,
		"admin.enabled":                       cfg.Admin.Enabled,
	}
	for key, v := range switches {
		require.NotNil(t, v, key)
		assert.False(t, *v, key)
	}

	// 组件合并默认值后仍保持关闭
	srv, err := pkgconfig.MergeConfig(tcp.DefaultServerConfig(), &cfg.TCP)
	require.NoError(t, err)
	assert.False(t, pkgconfig.BoolValue(srv.Multicore, true))
	assert.False(t, pkgconfig.BoolValue(srv.ReuseAddr, true))
	assert.False(t, pkgconfig.BoolValue(srv.TCPNoDelay, true))

	logCfg, err := pkgconfig.MergeConfig(logger.DefaultConfig(), &cfg.Log)
	require.NoError(t, err)
	assert.False(t, logCfg.ConsoleEnabled())
}

type levelRecorder struct {
	mu    sync.Mutex
	level logger.Level
}

func (r *levelRecorder) SetLevel(level logger.Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.level = level
}

func (r *levelRecorder) Level() logger.Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.level
}

func TestWatchReloadLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644))

	var cfg Config
	res, err := app.LoadConfig(&cfg, app.LoadOptions{
		FlagSet:  pflag.NewFlagSet("listener", pflag.ContinueOnError),
		Args:     []string{"--config", path},
		Defaults: Defaults(),
	})
	require.NoError(t, err)
	require.True(t, res.FileLoaded)

	rec := &levelRecorder{level: cfg.Log.Level}
	require.NoError(t, WatchReload(res.Manager, rec, logger.NewNoop()))

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))
	require.Eventually(t, func() bool {
		return rec.Level() == logger.DebugLevel
	}, 3*time.Second, 20*time.Millisecond)
}
