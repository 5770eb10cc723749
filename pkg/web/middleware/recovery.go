package middleware

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xremote/pkg/logger"
)

// Recovery 适配 pkg/logger 的异常恢复中间件
func Recovery(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err, ok := r.(error)
			if !ok {
				err = errors.Newf("panic: %v", r)
			}

			httpRequest, _ := httputil.DumpRequest(c.Request, false)
			// 客户端已断开，无法再写响应
			if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
				l.Warn("http broken pipe", "error", err, "request", string(httpRequest))
				_ = c.Error(err)
				c.Abort()
				return
			}

			l.Error("http recovery from panic",
				"error", err,
				"request", string(httpRequest),
				"panic", fmt.Sprint(r),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": "internal server error",
				"data":    nil,
			})
		}()
		c.Next()
	}
}
