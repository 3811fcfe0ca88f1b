package gallery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/image-gallery/cache"
	"github.com/anoixa/image-gallery/database/models"
	"github.com/anoixa/image-gallery/internal/metrics"
	"github.com/anoixa/image-gallery/search"
	"github.com/anoixa/image-gallery/utils"
	"golang.org/x/sync/singleflight"
)

// QueryService 带自修复的搜索
type QueryService struct {
	gateway search.Gateway
	cache   *cache.SearchCache
	index   string
	limit   int64
	repairs singleflight.Group
}

// NewQueryService 创建查询服务
func NewQueryService(gateway search.Gateway, searchCache *cache.SearchCache, opts Options) *QueryService {
	opts = opts.withDefaults()
	return &QueryService{
		gateway: gateway,
		cache:   searchCache,
		index:   opts.Index,
		limit:   opts.SearchLimit,
	}
}

// Search 按创建时间倒序搜索
// 首次失败时修复索引（创建索引并声明 createdAt 可排序）后重试一次，重试仍失败返回 ErrSearchUnavailable
func (s *QueryService) Search(ctx context.Context, query string) ([]*models.ImageRecord, error) {
	start := time.Now()
	defer func() {
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}()

	if records, ok := s.cache.Get(ctx, s.index, query, s.limit); ok {
		metrics.SearchesTotal.WithLabelValues("cache_hit").Inc()
		return records, nil
	}

	generation := s.cache.Generation()
	records, err := s.search(ctx, query)
	if err == nil {
		metrics.SearchesTotal.WithLabelValues("hit").Inc()
		s.cache.Put(ctx, generation, s.index, query, s.limit, records)
		return records, nil
	}

	if !shouldRepair(ctx, err) {
		metrics.SearchesTotal.WithLabelValues("unavailable").Inc()
		return nil, fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
	}

	log.Printf("[Search] Search failed, attempting to repair index %s: %v", s.index, err)
	if repairErr := s.repair(ctx); repairErr != nil {
		log.Printf("[Search] Index repair failed: %v", repairErr)
	}

	records, err = s.search(ctx, query)
	if err != nil {
		log.Printf("[Search] Search still failed after repairing index: %v", err)
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
	}

	metrics.SearchesTotal.WithLabelValues("repaired").Inc()
	s.cache.Put(ctx, generation, s.index, query, s.limit, records)
	return records, nil
}

func (s *QueryService) search(ctx context.Context, query string) ([]*models.ImageRecord, error) {
	records, err := s.gateway.Search(ctx, s.index, query, search.SearchOptions{
		Limit: s.limit,
		Sort:  []string{search.SortCreatedAtDesc},
	})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*models.ImageRecord{}
	}
	return records, nil
}

// shouldRepair 引擎不可达或调用方已取消时修复没有意义
func shouldRepair(ctx context.Context, err error) bool {
	if ctx.Err() != nil || utils.IsContextDone(err) {
		return false
	}
	return !errors.Is(err, search.ErrIndexUnavailable)
}

// repair 并发请求共享同一次修复
func (s *QueryService) repair(ctx context.Context) error {
	_, err, _ := s.repairs.Do(s.index, func() (interface{}, error) {
		err := ensureIndex(context.WithoutCancel(ctx), s.gateway, s.index)
		if err != nil {
			metrics.IndexRepairsTotal.WithLabelValues("failed").Inc()
		} else {
			metrics.IndexRepairsTotal.WithLabelValues("succeeded").Inc()
		}
		return nil, err
	})
	return err
}

// EnsureIndex 创建索引并声明排序字段，已存在的索引视为成功
func (s *QueryService) EnsureIndex(ctx context.Context) error {
	return ensureIndex(ctx, s.gateway, s.index)
}

func ensureIndex(ctx context.Context, gateway search.Gateway, index string) error {
	if err := gateway.CreateIndex(ctx, index, DefaultPrimaryKey); err != nil && !errors.Is(err, search.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	if err := gateway.UpdateSortableAttributes(ctx, index, []string{search.SortField}); err != nil {
		return fmt.Errorf("update sortable attributes of %s: %w", index, err)
	}
	return nil
}
