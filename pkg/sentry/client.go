// Package sentry 将错误上报到 Sentry，使用独立 Hub 避免污染全局状态。
package sentry

import (
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/lk2023060901/xremote/pkg/config"
)

// Stats 上报统计
type Stats struct {
	EventsTotal    uint64 `json:"events_total"`
	EventsCaptured uint64 `json:"events_captured"`
}

// Client Sentry 客户端
type Client struct {
	hub    *sentry.Hub
	config *Config
	closed atomic.Bool

	eventsTotal    atomic.Uint64
	eventsCaptured atomic.Uint64
}

// New 创建 Sentry 客户端
func New(cfg *Config) (*Client, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	client, err := sentry.NewClient(merged.toClientOptions())
	if err != nil {
		return nil, errors.Wrap(err, "create sentry client")
	}

	hub := sentry.NewHub(client, sentry.NewScope())
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for key, value := range merged.Tags {
			scope.SetTag(key, value)
		}
	})

	return &Client{hub: hub, config: merged}, nil
}

// CaptureError 上报错误，tags 只作用于本次事件
func (c *Client) CaptureError(err error, tags map[string]string, extra map[string]interface{}) *sentry.EventID {
	if c.closed.Load() || err == nil {
		return nil
	}
	c.eventsTotal.Add(1)

	var id *sentry.EventID
	c.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		if len(extra) > 0 {
			scope.SetContext("fields", extra)
		}
		id = c.hub.CaptureException(err)
	})
	if id != nil {
		c.eventsCaptured.Add(1)
	}
	return id
}

// RecoverWithContext 上报已恢复的 panic
func (c *Client) RecoverWithContext(recovered interface{}) *sentry.EventID {
	if c.closed.Load() || recovered == nil {
		return nil
	}
	c.eventsTotal.Add(1)

	id := c.hub.Recover(recovered)
	if id != nil {
		c.eventsCaptured.Add(1)
	}
	return id
}

// Flush 等待事件发送完成
func (c *Client) Flush(timeout time.Duration) bool {
	return c.hub.Flush(timeout)
}

// Close 刷新并关闭
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return ErrClientClosed
	}
	c.hub.Flush(c.config.ShutdownTimeout)
	return nil
}

// Stats 统计信息
func (c *Client) Stats() Stats {
	return Stats{
		EventsTotal:    c.eventsTotal.Load(),
		EventsCaptured: c.eventsCaptured.Load(),
	}
}
