// Package system 周期采集本进程与主机的资源使用情况。
package system

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Collector 系统指标收集器
type Collector struct {
	interval time.Duration
	proc     *process.Process

	mu     sync.RWMutex
	stats  Stats
	cancel context.CancelFunc
	done   chan struct{}
}

// Stats 系统统计数据
type Stats struct {
	// 进程 CPU 使用率 (0-100 × 核数)
	CPUPercent float64 `json:"cpu_percent"`
	// 进程常驻内存占主机内存的比例 (0-100)
	MemoryPercent float64 `json:"memory_percent"`
	MemoryBytes   uint64  `json:"memory_bytes"`
	Goroutines    int     `json:"goroutines"`

	// 主机整体
	HostCPUPercent    float64 `json:"host_cpu_percent"`
	HostMemoryPercent float64 `json:"host_memory_percent"`
	HostUptime        uint64  `json:"host_uptime_seconds"`
	Hostname          string  `json:"hostname"`

	UpdatedAt time.Time `json:"updated_at"`
}

// New 创建收集器，interval <= 0 时为 5s
func New(interval time.Duration) (*Collector, error) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Collector{interval: interval, proc: proc}, nil
}

// Start 立即采集一次并启动定期采集，实现 app.Server
func (c *Collector) Start() error {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.mu.Unlock()

	c.collect(ctx)

	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.collect(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop 停止采集
func (c *Collector) Stop() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}

// collect 执行一次采集，单项失败时保留零值
func (c *Collector) collect(ctx context.Context) {
	stats := Stats{
		Goroutines: runtime.NumGoroutine(),
		UpdatedAt:  time.Now(),
	}

	if p, err := c.proc.CPUPercentWithContext(ctx); err == nil {
		stats.CPUPercent = p
	}
	vm, vmErr := mem.VirtualMemoryWithContext(ctx)
	if vmErr == nil {
		stats.HostMemoryPercent = vm.UsedPercent
	}
	if info, err := c.proc.MemoryInfoWithContext(ctx); err == nil {
		stats.MemoryBytes = info.RSS
		if vmErr == nil && vm.Total > 0 {
			stats.MemoryPercent = float64(info.RSS) / float64(vm.Total) * 100
		}
	}
	if ps, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(ps) > 0 {
		stats.HostCPUPercent = ps[0]
	}
	if hi, err := host.InfoWithContext(ctx); err == nil {
		stats.HostUptime = hi.Uptime
		stats.Hostname = hi.Hostname
	}

	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()
}

// GetStats 获取最近一次采集结果
func (c *Collector) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}
