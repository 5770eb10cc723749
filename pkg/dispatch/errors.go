package dispatch

import "github.com/cockroachdb/errors"

var (
	// ErrUnsupportedCommand (content_type, action) 组合没有对应动作
	ErrUnsupportedCommand = errors.New("dispatch: unsupported command")
	// ErrSpawnFailed 启动进程失败
	ErrSpawnFailed = errors.New("dispatch: spawn failed")
	// ErrListFailed 枚举进程失败
	ErrListFailed = errors.New("dispatch: list processes failed")
	// ErrKillFailed 结束进程失败
	ErrKillFailed = errors.New("dispatch: kill failed")
	// ErrScheduleFailed 安排关机失败
	ErrScheduleFailed = errors.New("dispatch: schedule shutdown failed")
	// ErrNilRequest 请求为空
	ErrNilRequest = errors.New("dispatch: nil request")
)
