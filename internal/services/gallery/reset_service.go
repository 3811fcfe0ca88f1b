package gallery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/anoixa/image-gallery/cache"
	"github.com/anoixa/image-gallery/internal/metrics"
	"github.com/anoixa/image-gallery/search"
	"github.com/anoixa/image-gallery/storage"
	"github.com/anoixa/image-gallery/utils"
	"golang.org/x/sync/errgroup"
)

// ResetResult 重置结果
type ResetResult struct {
	Deleted int
	Failed  int
}

// ResetService 清空索引与全部已存储的图片
type ResetService struct {
	storage     storage.Provider
	gateway     search.Gateway
	journal     Journal
	cache       *cache.SearchCache
	index       string
	concurrency int
}

// NewResetService 创建重置服务
func NewResetService(
	provider storage.Provider,
	gateway search.Gateway,
	journal Journal,
	searchCache *cache.SearchCache,
	opts Options,
) *ResetService {
	opts = opts.withDefaults()
	return &ResetService{
		storage:     provider,
		gateway:     gateway,
		journal:     journal,
		cache:       searchCache,
		index:       opts.Index,
		concurrency: opts.ResetConcurrency,
	}
}

// Reset 删除索引后删除所有文件
// 索引不存在不是错误，单个文件删除失败只记录日志；只有无法枚举文件时返回错误
func (s *ResetService) Reset(ctx context.Context) (*ResetResult, error) {
	ctx = context.WithoutCancel(ctx)
	metrics.ResetsTotal.Inc()

	if err := s.gateway.DeleteIndex(ctx, s.index); err != nil && !errors.Is(err, search.ErrIndexNotFound) {
		log.Printf("[Reset] Failed to delete index %s: %v", s.index, err)
	}
	s.cache.Invalidate()

	list, remove := s.storage.ListWithContext, s.storage.DeleteWithContext
	if sweeper, ok := s.storage.(storage.Sweeper); ok {
		list, remove = sweeper.SweepListWithContext, sweeper.SweepDeleteWithContext
	}

	names, err := list(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read images directory: %w", err)
	}

	deleted, failed := deleteBlobs(ctx, remove, names, s.concurrency)

	if s.journal != nil {
		if _, err := s.journal.Clear(ctx); err != nil {
			log.Printf("[Reset] Failed to clear ingestion journal: %v", err)
		}
	}

	log.Printf("[Reset] Index %s dropped, %d files deleted, %d failed", s.index, deleted, failed)
	return &ResetResult{Deleted: deleted, Failed: failed}, nil
}

// deleteBlobs 并发删除文件，失败不中断其余删除
func deleteBlobs(ctx context.Context, remove func(context.Context, string) error, names []string, limit int) (int, int) {
	var deleted, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(limit)
	for _, name := range names {
		g.Go(func() error {
			if err := remove(ctx, name); err != nil && !errors.Is(err, storage.ErrNotFound) {
				log.Printf("[Reset] Error deleting file %s: %v", utils.SanitizeLogFilename(name), err)
				failed.Add(1)
				metrics.BlobDeletionsTotal.WithLabelValues("failed").Inc()
				return nil
			}
			deleted.Add(1)
			metrics.BlobDeletionsTotal.WithLabelValues("deleted").Inc()
			return nil
		})
	}
	_ = g.Wait()

	return int(deleted.Load()), int(failed.Load())
}
