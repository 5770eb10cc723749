package platform

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xremote/pkg/dispatch"
	"github.com/shirou/gopsutil/v3/process"
)

// Terminator 基于 gopsutil 枚举并结束进程
type Terminator struct{}

// NewTerminator 创建 Terminator
func NewTerminator() *Terminator {
	return &Terminator{}
}

// ListProcesses 返回进程名与 name 相同（不区分大小写）的进程
func (t *Terminator) ListProcesses(ctx context.Context, name string) ([]dispatch.ProcessHandle, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "enumerate processes")
	}

	var matches []dispatch.ProcessHandle
	for _, p := range procs {
		pname, err := p.NameWithContext(ctx)
		if err != nil {
			// 进程在枚举期间退出或无权限读取
			continue
		}
		if MatchProcessName(pname, name) {
			matches = append(matches, dispatch.ProcessHandle{PID: p.Pid, Name: pname})
		}
	}
	return matches, nil
}

// Kill 强制结束进程
func (t *Terminator) Kill(ctx context.Context, h dispatch.ProcessHandle) error {
	p, err := process.NewProcessWithContext(ctx, h.PID)
	if err != nil {
		return errors.Wrapf(ErrProcessNotFound, "pid %d: %v", h.PID, err)
	}
	if err := p.KillWithContext(ctx); err != nil {
		return errors.Wrapf(err, "kill pid %d", h.PID)
	}
	return nil
}

// MatchProcessName 进程名比较，忽略大小写
func MatchProcessName(actual, want string) bool {
	return want != "" && strings.EqualFold(actual, want)
}

var _ dispatch.Terminator = (*Terminator)(nil)
