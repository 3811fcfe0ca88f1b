package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anoixa/image-gallery/api/common"
	"github.com/anoixa/image-gallery/internal/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// IPRateLimiter 按客户端 IP 的令牌桶限流，scope 区分 api 与图片回源两组路由
type IPRateLimiter struct {
	scope      string
	limit      rate.Limit
	burst      int
	expireTime time.Duration
	clients    sync.Map
	stopChan   chan struct{}
	stopOnce   sync.Once
}

// NewIPRateLimiter 创建限流器并启动过期客户端清理
func NewIPRateLimiter(scope string, rps float64, burst int, expireTime time.Duration) *IPRateLimiter {
	if expireTime <= 0 {
		expireTime = 10 * time.Minute
	}
	rl := &IPRateLimiter{
		scope:      scope,
		limit:      rate.Limit(rps),
		burst:      burst,
		expireTime: expireTime,
		stopChan:   make(chan struct{}),
	}

	go rl.cleanupStaleClients()

	return rl
}

func (rl *IPRateLimiter) client(ip string) *clientLimiter {
	if val, ok := rl.clients.Load(ip); ok {
		return val.(*clientLimiter)
	}
	val, _ := rl.clients.LoadOrStore(ip, &clientLimiter{
		limiter: rate.NewLimiter(rl.limit, rl.burst),
	})
	return val.(*clientLimiter)
}

// Middleware 超出配额返回 429 并给出 Retry-After
func (rl *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cl := rl.client(c.ClientIP())
		cl.lastSeen.Store(time.Now().UnixNano())

		if !cl.limiter.Allow() {
			metrics.HTTPRejectedTotal.WithLabelValues(rl.scope, "rate_limit").Inc()
			c.Header("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
			common.RespondErrorAbort(c, http.StatusTooManyRequests, "Too many requests")
			return
		}

		c.Next()
	}
}

// retryAfterSeconds 补满一个令牌所需的秒数，至少 1 秒
func (rl *IPRateLimiter) retryAfterSeconds() int {
	if rl.limit <= 0 || rl.limit == rate.Inf {
		return 1
	}
	return max(1, int(math.Ceil(1/float64(rl.limit))))
}

// StopCleanup 停止后台清理，可重复调用
func (rl *IPRateLimiter) StopCleanup() {
	rl.stopOnce.Do(func() {
		close(rl.stopChan)
	})
}

func (rl *IPRateLimiter) cleanupStaleClients() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictBefore(time.Now().Add(-rl.expireTime))
		case <-rl.stopChan:
			return
		}
	}
}

// evictBefore 删除在 cutoff 之前最后出现的客户端
func (rl *IPRateLimiter) evictBefore(cutoff time.Time) int {
	evicted := 0
	rl.clients.Range(func(key, value any) bool {
		if value.(*clientLimiter).lastSeen.Load() < cutoff.UnixNano() {
			rl.clients.Delete(key)
			evicted++
		}
		return true
	})
	return evicted
}
