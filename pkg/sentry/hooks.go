package sentry

import (
	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xremote/pkg/logger"
	"go.uber.org/zap/zapcore"
)

// LoggerHook 将 error 及以上级别的日志转发到 Sentry。
// 日志携带 error 字段时上报该错误，否则以日志消息构造错误。
func LoggerHook(c *Client) logger.Hook {
	return logger.HookFunc(func(entry zapcore.Entry, fields []zapcore.Field) bool {
		if c == nil || entry.Level < zapcore.ErrorLevel {
			return true
		}

		enc := zapcore.NewMapObjectEncoder()
		var cause error
		for _, f := range fields {
			if f.Type == zapcore.ErrorType {
				if err, ok := f.Interface.(error); ok && cause == nil {
					cause = err
				}
			}
			f.AddTo(enc)
		}

		if cause == nil {
			cause = errors.New(entry.Message)
		} else {
			cause = errors.WithMessage(cause, entry.Message)
		}

		tags := map[string]string{"logger": entry.LoggerName}
		if id, ok := enc.Fields["conn_id"].(string); ok {
			tags["conn_id"] = id
		}
		c.CaptureError(cause, tags, enc.Fields)
		return true
	})
}
