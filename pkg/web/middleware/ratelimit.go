package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xremote/pkg/logger"
	"golang.org/x/time/rate"
)

// RateLimit 全局令牌桶限流，超出时直接拒绝
func RateLimit(l logger.Logger, rps float64, burst int, skipPaths ...string) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		if !limiter.Allow() {
			l.Warn("rate limit exceeded", "path", c.Request.URL.Path, "ip", c.ClientIP())
			c.Header("Retry-After", strconv.Itoa(1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "too many requests",
				"data":    nil,
			})
			return
		}
		c.Next()
	}
}
