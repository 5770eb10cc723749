// Package prometheus 封装独立的 Prometheus Registry 与指标注册。
package prometheus

import (
	"net/http"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xremote/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Client Prometheus 客户端，指标只注册到自己的 Registry
type Client struct {
	config   *Config
	registry *prometheus.Registry

	mu    sync.Mutex
	names map[string]struct{}
}

// New 创建 Prometheus 客户端
func New(cfg *Config) (*Client, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:   merged,
		registry: prometheus.NewRegistry(),
		names:    make(map[string]struct{}),
	}

	if config.BoolValue(merged.EnableGoCollector, true) {
		c.registry.MustRegister(collectors.NewGoCollector())
	}
	if config.BoolValue(merged.EnableProcessCollector, true) {
		c.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	return c, nil
}

// Registry 底层 Registry
func (c *Client) Registry() *prometheus.Registry {
	return c.registry
}

// Handler 指标导出 HTTP Handler
func (c *Client) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// NewCounter 创建并注册 CounterVec
func (c *Client) NewCounter(name, help string, labels []string) (*prometheus.CounterVec, error) {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	return vec, c.register(name, vec)
}

// NewGauge 创建并注册 GaugeVec
func (c *Client) NewGauge(name, help string, labels []string) (*prometheus.GaugeVec, error) {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	return vec, c.register(name, vec)
}

// NewGaugeFunc 注册按需取值的 Gauge
func (c *Client) NewGaugeFunc(name, help string, fn func() float64) error {
	g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
	}, fn)
	return c.register(name, g)
}

// NewHistogram 创建并注册 HistogramVec，buckets 为空时使用默认分桶
func (c *Client) NewHistogram(name, help string, labels []string, buckets []float64) (*prometheus.HistogramVec, error) {
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	return vec, c.register(name, vec)
}

func (c *Client) register(name string, collector prometheus.Collector) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.names[name]; ok {
		return errors.Wrapf(ErrMetricExists, "%s", name)
	}
	if err := c.registry.Register(collector); err != nil {
		return errors.Wrapf(err, "register %s", name)
	}
	c.names[name] = struct{}{}
	return nil
}
