package cache

import (
	"fmt"
	"log"

	"github.com/anoixa/image-gallery/config"
)

// NewProvider 根据配置创建缓存提供者
// cache_type 为 none 时返回 nil，调用方需处理未启用缓存的情况
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.CacheType {
	case "none", "disabled":
		log.Println("[Cache] Search cache disabled")
		return nil, nil

	case "", "memory":
		maxSizeMB := cfg.CacheMaxSizeMB
		if maxSizeMB <= 0 {
			maxSizeMB = 64
		}
		provider, err := NewMemory(MemoryConfig{
			NumCounters: 100000,
			MaxCost:     maxSizeMB << 20,
			BufferItems: 64,
			Metrics:     false,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create memory cache: %w", err)
		}
		log.Printf("[Cache] Using memory cache (%d MB)", maxSizeMB)
		return provider, nil

	case "redis":
		provider, err := NewRedisCache(RedisConfig{
			Address:      cfg.CacheRedisAddr,
			Password:     cfg.CacheRedisPassword,
			DB:           cfg.CacheRedisDB,
			PoolSize:     10,
			MinIdleConns: 2,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.CacheRedisAddr, err)
		}
		log.Printf("[Cache] Using redis cache at %s", cfg.CacheRedisAddr)
		return provider, nil

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}
