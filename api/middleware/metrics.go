package middleware

import (
	"strconv"
	"time"

	"github.com/anoixa/image-gallery/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsSkipPaths 不记录指标的路径
var MetricsSkipPaths = []string{"/metrics", "/health"}

// Metrics 记录 Prometheus 请求指标
func Metrics() gin.HandlerFunc {
	skip := make(map[string]struct{}, len(MetricsSkipPaths))
	for _, p := range MetricsSkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		startTime := time.Now()
		c.Next()

		// 使用路由模板避免高基数
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(startTime).Seconds())
	}
}
