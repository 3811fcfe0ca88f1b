package core

import (
	"net/http"

	"github.com/anoixa/image-gallery/api/common"
	"github.com/anoixa/image-gallery/api/handler/images"
	"github.com/anoixa/image-gallery/api/middleware"
	"github.com/anoixa/image-gallery/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDependencies 路由注册依赖
type RouterDependencies struct {
	ImageHandler     *images.Handler
	HealthHandler    *HealthHandler
	APIRateLimiter   *middleware.IPRateLimiter
	ImageRateLimiter *middleware.IPRateLimiter
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *RouterDependencies) {
	// 基础路由
	registerBasicRoutes(router, deps)

	// 公共图片访问
	registerPublicRoutes(router, deps)

	// 图库接口
	registerGalleryRoutes(router, deps)
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *RouterDependencies) {
	router.GET("/", func(c *gin.Context) {
		common.RespondMessage(c, "Hello World!")
	})

	if deps.HealthHandler != nil {
		router.GET("/health", deps.HealthHandler.Handle)
	}

	router.GET("/version", func(c *gin.Context) {
		common.RespondJSON(c, http.StatusOK, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerPublicRoutes 注册公共图片路由
func registerPublicRoutes(router *gin.Engine, deps *RouterDependencies) {
	publicGroup := router.Group("/images")
	if deps.ImageRateLimiter != nil {
		publicGroup.Use(deps.ImageRateLimiter.Middleware())
	}
	{
		publicGroup.GET("/:filename", deps.ImageHandler.GetImage)  // GET /images/{filename}
		publicGroup.HEAD("/:filename", deps.ImageHandler.GetImage) // HEAD /images/{filename}
	}
}

// registerGalleryRoutes 注册上传、搜索、修改、删除与重置接口
func registerGalleryRoutes(router *gin.Engine, deps *RouterDependencies) {
	apiGroup := router.Group("")
	apiGroup.Use(func(c *gin.Context) { // 接口响应禁止缓存
		c.Header("Cache-Control", "no-store")
		c.Next()
	})
	if deps.APIRateLimiter != nil {
		apiGroup.Use(deps.APIRateLimiter.Middleware())
	}
	{
		apiGroup.POST("/upload", deps.ImageHandler.UploadImage)      // POST /upload
		apiGroup.GET("/search", deps.ImageHandler.SearchImages)      // GET /search?q=
		apiGroup.PATCH("/image/:id", deps.ImageHandler.UpdateImage)  // PATCH /image/{id}
		apiGroup.DELETE("/image/:id", deps.ImageHandler.DeleteImage) // DELETE /image/{id}
		apiGroup.GET("/reset", deps.ImageHandler.ResetImages)        // GET /reset
	}
}
