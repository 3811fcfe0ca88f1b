package middleware

import (
	"net/http"

	"github.com/anoixa/image-gallery/api/common"
	"github.com/anoixa/image-gallery/internal/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

// ConcurrencyLimiter 限制同时处理的请求数，探活与指标接口不占名额
type ConcurrencyLimiter struct {
	sem    *semaphore.Weighted
	exempt map[string]struct{}
}

// NewConcurrencyLimiter 并发限制器
func NewConcurrencyLimiter(maxConcurrency int64, exemptPaths ...string) *ConcurrencyLimiter {
	exempt := make(map[string]struct{}, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = struct{}{}
	}
	return &ConcurrencyLimiter{
		sem:    semaphore.NewWeighted(maxConcurrency),
		exempt: exempt,
	}
}

// Middleware 超出上限立即返回 503
func (cl *ConcurrencyLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := cl.exempt[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		if !cl.sem.TryAcquire(1) {
			metrics.HTTPRejectedTotal.WithLabelValues("server", "busy").Inc()
			c.Header("Retry-After", "1")
			common.RespondErrorAbort(c, http.StatusServiceUnavailable, "Server is busy, please try again later")
			return
		}
		defer cl.sem.Release(1)

		c.Next()
	}
}
