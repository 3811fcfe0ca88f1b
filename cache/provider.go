package cache

import (
	"context"
	"errors"
	"time"
)

// Provider 字节级缓存后端，序列化由调用方负责
type Provider interface {
	// Get 读取缓存，未命中返回 ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入缓存，ttl <= 0 表示不过期
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
	Name() string
}

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("cache miss")

// IsCacheMiss 判断是否为缓存未命中
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}
