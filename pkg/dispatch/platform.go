package dispatch

import "context"

// ProcessHandle 进程句柄
type ProcessHandle struct {
	PID  int32  `json:"pid"`
	Name string `json:"name"`
}

// Spawner 启动目标程序
type Spawner interface {
	// Spawn 启动可执行文件，不等待其退出
	Spawn(ctx context.Context, path string) (ProcessHandle, error)
}

// Terminator 查找并结束进程
type Terminator interface {
	// ListProcesses 返回名称匹配的全部进程
	ListProcesses(ctx context.Context, name string) ([]ProcessHandle, error)
	// Kill 结束进程，不等待其退出
	Kill(ctx context.Context, h ProcessHandle) error
}

// ShutdownScheduler 安排主机关机
type ShutdownScheduler interface {
	// ScheduleShutdown delaySeconds 为 nil 时使用实现方的默认延迟
	ScheduleShutdown(ctx context.Context, delaySeconds *int) error
}

// Platform 分发器依赖的全部系统能力
type Platform interface {
	Spawner
	Terminator
	ShutdownScheduler
}
