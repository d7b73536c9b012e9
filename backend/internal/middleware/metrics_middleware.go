package middleware

import (
	"time"

	"weekend-at-joes/backend/internal/infra/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 按路由模板记录请求数与耗时，避免把路径参数带进标签。
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
