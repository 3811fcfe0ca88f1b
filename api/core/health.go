package core

import (
	"context"
	"net/http"
	"time"

	"github.com/anoixa/image-gallery/config"
	"github.com/anoixa/image-gallery/database"
	"github.com/anoixa/image-gallery/search"
	"github.com/anoixa/image-gallery/storage"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

const healthCheckTimeout = 3 * time.Second

// HealthHandler 健康检查
type HealthHandler struct {
	gateway  search.Gateway
	storage  storage.Provider
	database database.Provider
}

// NewHealthHandler 创建健康检查处理器，database 可以为 nil
func NewHealthHandler(gateway search.Gateway, provider storage.Provider, db database.Provider) *HealthHandler {
	return &HealthHandler{gateway: gateway, storage: provider, database: db}
}

// Handle GET /health
func (h *HealthHandler) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := gin.H{
		"search":   checkSearchHealth(ctx, h.gateway),
		"storage":  checkStorageHealth(ctx, h.storage),
		"database": checkDatabaseHealth(ctx, h.database),
	}

	httpStatus := http.StatusOK
	status := "ok"
	for _, result := range checks {
		if r, ok := result.(string); ok && r != "ok" && r != "disabled" {
			httpStatus = http.StatusServiceUnavailable
			status = "degraded"
			break
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":  status,
		"uptime":  time.Since(startTime).Round(time.Second).String(),
		"version": config.Version,
		"checks":  checks,
	})
}

func checkSearchHealth(ctx context.Context, gateway search.Gateway) string {
	if gateway == nil {
		return "not initialized"
	}
	if err := gateway.Health(ctx); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkDatabaseHealth(ctx context.Context, provider database.Provider) string {
	if provider == nil {
		return "disabled"
	}
	if err := provider.Ping(ctx); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkStorageHealth(ctx context.Context, provider storage.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if err := provider.Health(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
