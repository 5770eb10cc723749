// Package handler 处理每条连接上的唯一请求：分发动作并按配置回显。
package handler

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xremote/app/listener/internal/config"
	"github.com/lk2023060901/xremote/app/listener/internal/metrics"
	"github.com/lk2023060901/xremote/pkg/dispatch"
	"github.com/lk2023060901/xremote/pkg/logger"
	"github.com/lk2023060901/xremote/pkg/protocol"
	"github.com/lk2023060901/xremote/pkg/session"
	"github.com/lk2023060901/xremote/pkg/tcp"
)

const (
	ResultOK          = "ok"
	ResultUnsupported = "unsupported"
	ResultFailed      = "failed"
)

// Dispatcher 请求分发
type Dispatcher interface {
	Dispatch(ctx context.Context, req *protocol.Request) (*dispatch.Result, error)
}

// ListenerHandler 实现 session.SessionHandler
type ListenerHandler struct {
	logger     logger.Logger
	dispatcher Dispatcher
	metrics    *metrics.ListenerMetrics
	echo       bool
}

// NewListenerHandler 创建连接处理器，m 可以为 nil
func NewListenerHandler(cfg *config.HandlerConfig, d Dispatcher, m *metrics.ListenerMetrics, l logger.Logger) *ListenerHandler {
	if l == nil {
		l = logger.NewNoop()
	}
	echo := true
	if cfg != nil {
		echo = cfg.EchoEnabled()
	}
	return &ListenerHandler{
		logger:     l.Named("listener.handler"),
		dispatcher: d,
		metrics:    m,
		echo:       echo,
	}
}

func (h *ListenerHandler) OnOpened(s session.Session) {
	h.metrics.IncrConnection()
	h.logger.DebugContext(s.Context(), "client connected")
}

func (h *ListenerHandler) OnClosed(s session.Session, err error) {
	h.metrics.DecrConnection()
	h.logger.DebugContext(s.Context(), "client disconnected",
		"error", err, "duration", time.Since(s.OpenedAt()).String())
}

// OnRequest 分发后回显；动作失败不影响回显
func (h *ListenerHandler) OnRequest(s session.Session, req *protocol.Request) {
	ctx := s.Context()
	action := req.Action()
	h.logger.InfoContext(ctx, "request received",
		"content_type", req.ContentType.String(),
		"info", req.Info.String(),
		"action", action.String(),
		"payload", req.Payload,
	)

	// 动作不随连接关闭而取消，客户端发完即断开时仍会执行
	start := time.Now()
	res, err := h.dispatcher.Dispatch(context.WithoutCancel(ctx), req)
	elapsed := time.Since(start)

	effect := dispatch.EffectNone
	if res != nil {
		effect = res.Effect
	}
	result := ResultOK
	switch {
	case err == nil:
		h.logger.InfoContext(ctx, "request dispatched",
			"effect", effect.String(), "elapsed", elapsed.String())
	case errors.Is(err, dispatch.ErrUnsupportedCommand):
		result = ResultUnsupported
		h.logger.WarnContext(ctx, "unsupported command",
			"content_type", req.ContentType.String(), "action", action.String())
	default:
		result = ResultFailed
		h.logger.ErrorContext(ctx, "dispatch failed", "effect", effect.String(), "error", err)
	}
	h.metrics.RecordRequest(req.ContentType.String(), action.String(), result, effect.String(), elapsed)

	if !h.echo {
		return
	}
	body, err := req.JSON()
	if err != nil {
		h.logger.ErrorContext(ctx, "encode echo failed", "error", err)
		return
	}
	if err := s.Write(body); err != nil {
		h.logger.WarnContext(ctx, "write echo failed", "error", err)
	}
}

// OnError 帧错误、超时与准入拒绝，连接随后被关闭且不回写
func (h *ListenerHandler) OnError(s session.Session, err error) {
	reason := Reason(err)
	h.metrics.RecordConnectionError(reason)

	if reason == "panic" {
		h.logger.ErrorContext(s.Context(), "connection aborted", "reason", reason, "error", err)
		return
	}
	h.logger.WarnContext(s.Context(), "connection dropped", "reason", reason, "error", err)
}

// Reason 把连接错误归类为指标标签
func Reason(err error) string {
	switch {
	case errors.Is(err, protocol.ErrTruncatedFrame):
		return "truncated"
	case errors.Is(err, protocol.ErrInvalidEncoding):
		return "invalid_encoding"
	case errors.Is(err, protocol.ErrFrameTooLarge):
		return "too_large"
	case errors.Is(err, tcp.ErrReadTimeout):
		return "timeout"
	case errors.Is(err, tcp.ErrServerBusy):
		return "busy"
	case errors.Is(err, tcp.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, tcp.ErrHandlerPanic):
		return "panic"
	default:
		return "other"
	}
}

var _ session.SessionHandler = (*ListenerHandler)(nil)
