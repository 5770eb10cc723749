// Package metrics listener 服务指标。
package metrics

import (
	"time"

	"github.com/lk2023060901/xremote/pkg/metrics/system"
	"github.com/lk2023060901/xremote/pkg/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ListenerMetrics listener 服务指标
type ListenerMetrics struct {
	// 请求总数（按域、动作、结果）
	RequestsTotal *prom.CounterVec
	// 分发耗时（按副作用）
	DispatchDuration *prom.HistogramVec
	// 未进入分发的连接（按原因）
	ConnectionErrors *prom.CounterVec
	// 当前活跃连接数
	ActiveConnections *prom.GaugeVec
}

// New 创建并注册指标
func New(c *prometheus.Client) (*ListenerMetrics, error) {
	m := &ListenerMetrics{}
	var err error

	if m.RequestsTotal, err = c.NewCounter("requests_total",
		"已分发的请求数", []string{"content_type", "action", "result"}); err != nil {
		return nil, err
	}
	if m.DispatchDuration, err = c.NewHistogram("dispatch_duration_seconds",
		"分发耗时（秒）", []string{"effect"},
		[]float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}); err != nil {
		return nil, err
	}
	if m.ConnectionErrors, err = c.NewCounter("connection_errors_total",
		"帧错误、超时与准入拒绝次数", []string{"reason"}); err != nil {
		return nil, err
	}
	if m.ActiveConnections, err = c.NewGauge("active_connections",
		"当前活跃连接数", nil); err != nil {
		return nil, err
	}
	return m, nil
}

// RegisterWorkers 导出正在运行的工作协程数
func RegisterWorkers(c *prometheus.Client, running func() int) error {
	return c.NewGaugeFunc("workers_running", "正在处理请求的工作协程数", func() float64 {
		return float64(running())
	})
}

// RegisterSystem 导出主机与进程资源使用率
func RegisterSystem(c *prometheus.Client, collector *system.Collector) error {
	gauges := []struct {
		name, help string
		fn         func(system.Stats) float64
	}{
		{"process_cpu_percent", "进程 CPU 使用率", func(s system.Stats) float64 { return s.CPUPercent }},
		{"process_memory_percent", "进程内存占主机内存比例", func(s system.Stats) float64 { return s.MemoryPercent }},
		{"host_cpu_percent", "主机 CPU 使用率", func(s system.Stats) float64 { return s.HostCPUPercent }},
		{"host_memory_percent", "主机内存使用率", func(s system.Stats) float64 { return s.HostMemoryPercent }},
	}
	for _, g := range gauges {
		fn := g.fn
		if err := c.NewGaugeFunc(g.name, g.help, func() float64 {
			return fn(collector.GetStats())
		}); err != nil {
			return err
		}
	}
	return nil
}

// RecordRequest 记录一次分发
func (m *ListenerMetrics) RecordRequest(contentType, action, result, effect string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(contentType, action, result).Inc()
	m.DispatchDuration.WithLabelValues(effect).Observe(d.Seconds())
}

// RecordConnectionError 记录未进入分发的连接
func (m *ListenerMetrics) RecordConnectionError(reason string) {
	if m == nil {
		return
	}
	m.ConnectionErrors.WithLabelValues(reason).Inc()
}

// IncrConnection 增加连接数
func (m *ListenerMetrics) IncrConnection() {
	if m == nil {
		return
	}
	m.ActiveConnections.WithLabelValues().Inc()
}

// DecrConnection 减少连接数
func (m *ListenerMetrics) DecrConnection() {
	if m == nil {
		return
	}
	m.ActiveConnections.WithLabelValues().Dec()
}
