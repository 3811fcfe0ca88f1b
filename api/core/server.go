package core

import (
	"net/http"
	"time"

	"github.com/anoixa/image-gallery/api/handler/images"
	"github.com/anoixa/image-gallery/api/middleware"
	"github.com/anoixa/image-gallery/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ServerDependencies 服务器依赖项
type ServerDependencies struct {
	ImageHandler  *images.Handler
	HealthHandler *HealthHandler
}

// 启动gin
func setupRouter(cfg *config.Config, deps *ServerDependencies) (*gin.Engine, func()) {
	router := gin.New()

	// 全局中间件
	// 仅在开发版本时启用 gin 日志
	if config.IsDevelopment() {
		router.Use(gin.Logger())
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg)))

	_ = router.SetTrustedProxies(nil)

	// 限制上传文件大小
	maxUpload := int64(cfg.UploadMaxSizeMB) << 20
	if maxUpload <= 0 {
		maxUpload = 50 << 20
	}
	router.MaxMultipartMemory = 8 << 20

	// 并发限制
	concurrency := cfg.ConcurrencyLimit
	if concurrency <= 0 {
		concurrency = 100
	}
	router.Use(middleware.NewConcurrencyLimiter(concurrency, "/health", "/metrics").Middleware())

	// 请求体大小限制（多留 1MB 给 multipart 头部）
	router.Use(middleware.MaxBytesReader(maxUpload + 1<<20))

	// 请求ID追踪
	router.Use(middleware.RequestID())

	// 监控指标
	router.Use(middleware.Metrics())

	// 速率限制
	apiRateLimiter := middleware.NewIPRateLimiter("api", cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	imageRateLimiter := middleware.NewIPRateLimiter("images", cfg.RateLimitImageRPS, cfg.RateLimitImageBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		apiRateLimiter.StopCleanup()
		imageRateLimiter.StopCleanup()
	}

	RegisterRoutes(router, &RouterDependencies{
		ImageHandler:     deps.ImageHandler,
		HealthHandler:    deps.HealthHandler,
		APIRateLimiter:   apiRateLimiter,
		ImageRateLimiter: imageRateLimiter,
	})

	return router, cleanup
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}

	origins := cfg.AllowOrigins()
	if len(origins) == 1 && origins[0] == "*" {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	return c
}

// StartServer 创建 http.Server
func StartServer(cfg *config.Config, deps *ServerDependencies) (*http.Server, func()) {
	router, clean := setupRouter(cfg, deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, clean
}
