package cache

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/anoixa/image-gallery/database/models"
)

// SearchCache 搜索结果缓存
// 每次写操作递增代数，旧代数的键不再被读取
// 代数只在本进程内递增，其他进程（含 CLI 的 reset/reindex）的写操作要等过期时间到后才可见
type SearchCache struct {
	provider   Provider
	ttl        time.Duration
	generation atomic.Uint64
}

// NewSearchCache 创建搜索结果缓存，provider 为 nil 时所有操作均为空操作
func NewSearchCache(provider Provider, ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SearchCache{provider: provider, ttl: ttl}
}

// Enabled 是否启用了缓存
func (c *SearchCache) Enabled() bool {
	return c != nil && c.provider != nil
}

// Generation 当前代数，搜索开始前读取并在 Put 时传回
func (c *SearchCache) Generation() uint64 {
	if c == nil {
		return 0
	}
	return c.generation.Load()
}

func (c *SearchCache) key(generation uint64, index, query string, limit int64) string {
	return searchKeys.Versioned(generation, index, query, strconv.FormatInt(limit, 10))
}

// Get 读取缓存的搜索结果
func (c *SearchCache) Get(ctx context.Context, index, query string, limit int64) ([]*models.ImageRecord, bool) {
	if !c.Enabled() {
		return nil, false
	}

	data, err := c.provider.Get(ctx, c.key(c.generation.Load(), index, query, limit))
	if err != nil {
		if !IsCacheMiss(err) {
			log.Printf("[SearchCache] Get failed: %v", err)
		}
		return nil, false
	}

	records := make([]*models.ImageRecord, 0)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false
	}
	return records, true
}

// Put 写入搜索结果
// generation 与当前代数不一致说明搜索期间发生过写操作，结果可能已过时，直接丢弃
func (c *SearchCache) Put(ctx context.Context, generation uint64, index, query string, limit int64, records []*models.ImageRecord) {
	if !c.Enabled() || generation != c.generation.Load() {
		return
	}
	if records == nil {
		records = []*models.ImageRecord{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := c.provider.Set(ctx, c.key(generation, index, query, limit), data, c.ttl); err != nil {
		log.Printf("[SearchCache] Set failed: %v", err)
	}
}

// Invalidate 使当前所有缓存的搜索结果失效
func (c *SearchCache) Invalidate() {
	if c == nil {
		return
	}
	c.generation.Add(1)
}
