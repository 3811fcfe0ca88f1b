package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Memory 基于 ristretto 的进程内缓存，按字节数计算容量
type Memory struct {
	client *ristretto.Cache
}

// MemoryConfig 内存缓存配置
type MemoryConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

// NewMemory 创建内存缓存
func NewMemory(cfg MemoryConfig) (*Memory, error) {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Memory{client: client}, nil
}

// Set 写入后等待缓冲区落地，保证紧接着的 Get 能读到
// 条目超过容量时 ristretto 会直接丢弃，不视为错误
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if m.client.SetWithTTL(key, value, int64(len(value)), ttl) {
		m.client.Wait()
	}
	return nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	value, found := m.client.Get(key)
	if !found {
		return nil, ErrCacheMiss
	}
	data, ok := value.([]byte)
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.client.Del(key)
	return nil
}

func (m *Memory) Close() error {
	m.client.Close()
	return nil
}

func (m *Memory) Name() string {
	return "memory"
}
