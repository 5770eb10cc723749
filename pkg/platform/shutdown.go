package platform

import (
	"context"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xremote/pkg/dispatch"
	"github.com/lk2023060901/xremote/pkg/logger"
)

// ShutdownScheduler 调用系统 shutdown 命令
type ShutdownScheduler struct {
	config *Config
	runner Runner
	goos   string
	logger logger.Logger
}

// NewShutdownScheduler 创建 ShutdownScheduler，runner 为 nil 时使用 ExecRunner
func NewShutdownScheduler(cfg *Config, runner Runner, l logger.Logger) *ShutdownScheduler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if runner == nil {
		runner = ExecRunner
	}
	if l == nil {
		l = logger.NewNoop()
	}
	return &ShutdownScheduler{
		config: cfg,
		runner: runner,
		goos:   runtime.GOOS,
		logger: l,
	}
}

// ScheduleShutdown 安排关机，delaySeconds 为 nil 时使用 DefaultDelay
func (s *ShutdownScheduler) ScheduleShutdown(ctx context.Context, delaySeconds *int) error {
	delay := s.config.DefaultDelay
	if delaySeconds != nil {
		delay = *delaySeconds
	}
	if delay < 0 {
		return errors.Wrapf(ErrNegativeDelay, "%d", delay)
	}

	name, args := ShutdownCommand(s.goos, delay)
	if s.config.DryRun {
		s.logger.WarnContext(ctx, "dry run, shutdown not executed",
			"command", name+" "+strings.Join(args, " "), "delay", time.Duration(delay)*time.Second)
		return nil
	}

	out, err := s.runner.Run(ctx, name, args...)
	if err != nil {
		return errors.Wrapf(err, "%s %s: %s", name, strings.Join(args, " "), strings.TrimSpace(string(out)))
	}

	s.logger.WarnContext(ctx, "host shutdown scheduled", "delay", time.Duration(delay)*time.Second)
	return nil
}

// ShutdownCommand 按操作系统构造关机命令。
// Unix 的 shutdown 以分钟为单位，秒数向上取整。
func ShutdownCommand(goos string, delaySeconds int) (string, []string) {
	switch goos {
	case "windows":
		return "shutdown", []string{"/s", "/t", strconv.Itoa(delaySeconds)}
	default:
		if delaySeconds <= 0 {
			return "shutdown", []string{"-h", "now"}
		}
		minutes := (delaySeconds + 59) / 60
		return "shutdown", []string{"-h", "+" + strconv.Itoa(minutes)}
	}
}

var _ dispatch.ShutdownScheduler = (*ShutdownScheduler)(nil)
