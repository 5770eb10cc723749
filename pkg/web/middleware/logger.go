package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xremote/pkg/logger"
)

// Logger 适配 pkg/logger 的 Gin 访问日志中间件
func Logger(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"status", status,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"ip", c.ClientIP(),
			"latency", time.Since(start).String(),
		}

		if len(c.Errors) > 0 {
			for _, e := range c.Errors.Errors() {
				l.ErrorContext(c.Request.Context(), e, fields...)
			}
			return
		}
		if status >= 400 {
			l.WarnContext(c.Request.Context(), "http request", fields...)
		} else {
			l.DebugContext(c.Request.Context(), "http request", fields...)
		}
	}
}
