package platform

import (
	"context"
	"os/exec"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xremote/pkg/dispatch"
	"github.com/lk2023060901/xremote/pkg/logger"
)

// Spawner 以独立子进程启动可执行文件，不等待其结束
type Spawner struct {
	logger logger.Logger
}

// NewSpawner 创建 Spawner
func NewSpawner(l logger.Logger) *Spawner {
	if l == nil {
		l = logger.NewNoop()
	}
	return &Spawner{logger: l}
}

// Spawn 启动进程。子进程生命周期与请求无关，因此不绑定 ctx
func (s *Spawner) Spawn(ctx context.Context, path string) (dispatch.ProcessHandle, error) {
	if path == "" {
		return dispatch.ProcessHandle{}, ErrEmptyPath
	}

	cmd := exec.Command(path)
	cmd.Dir = filepath.Dir(path)
	if err := cmd.Start(); err != nil {
		return dispatch.ProcessHandle{}, errors.Wrapf(err, "start %s", path)
	}

	h := dispatch.ProcessHandle{PID: int32(cmd.Process.Pid), Name: filepath.Base(path)}
	s.logger.InfoContext(ctx, "process spawned", "pid", h.PID, "path", path)

	// 回收子进程，避免僵尸进程
	go func() {
		err := cmd.Wait()
		s.logger.Debug("spawned process exited", "pid", h.PID, "error", err)
	}()

	return h, nil
}

var _ dispatch.Spawner = (*Spawner)(nil)
