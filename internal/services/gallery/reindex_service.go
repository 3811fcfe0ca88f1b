package gallery

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/anoixa/image-gallery/cache"
	"github.com/anoixa/image-gallery/database/models"
	"github.com/anoixa/image-gallery/internal/metrics"
	"github.com/anoixa/image-gallery/search"
	"github.com/anoixa/image-gallery/storage"
	"github.com/anoixa/image-gallery/utils"
)

// ErrJournalDisabled 未启用上传日志
var ErrJournalDisabled = errors.New("ingestion journal is disabled")

// ReindexResult 重建结果
type ReindexResult struct {
	Indexed int
	Missing int
	Failed  int
	Pruned  int
}

// ReindexService 根据上传日志修复文件与索引不一致
type ReindexService struct {
	storage   storage.Provider
	gateway   search.Gateway
	inspector *Inspector
	journal   Journal
	cache     *cache.SearchCache
	index     string
}

// NewReindexService 创建重建服务
func NewReindexService(
	provider storage.Provider,
	gateway search.Gateway,
	journal Journal,
	searchCache *cache.SearchCache,
	opts Options,
) *ReindexService {
	opts = opts.withDefaults()
	return &ReindexService{
		storage:   provider,
		gateway:   gateway,
		inspector: NewInspector(provider),
		journal:   journal,
		cache:     searchCache,
		index:     opts.Index,
	}
}

// Reindex 为建立索引阶段失败的上传补建文档
// prune 为 true 时同时删除无法解析的孤儿文件
func (s *ReindexService) Reindex(ctx context.Context, prune bool) (*ReindexResult, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}

	entries, err := s.journal.ListFailedAtStage(ctx, string(StageIndexed))
	if err != nil {
		return nil, fmt.Errorf("list failed ingestions: %w", err)
	}

	result := &ReindexResult{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		s.reindexEntry(ctx, entry, result)
	}
	if result.Indexed > 0 {
		s.cache.Invalidate()
	}

	if prune {
		if err := s.prune(ctx, result); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (s *ReindexService) reindexEntry(ctx context.Context, entry *models.Ingestion, result *ReindexResult) {
	name := utils.SanitizeLogFilename(entry.StoredFilename)

	dims, err := s.inspector.Inspect(ctx, entry.StoredFilename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Printf("[Reindex] Blob %s no longer exists, dropping journal entry %d", name, entry.ID)
			if err := s.journal.Delete(ctx, entry.ID); err != nil {
				log.Printf("[Reindex] Failed to delete journal entry %d: %v", entry.ID, err)
			}
			result.Missing++
			return
		}
		log.Printf("[Reindex] Failed to inspect %s: %v", name, err)
		result.Failed++
		metrics.ReindexedTotal.WithLabelValues("failed").Inc()
		return
	}

	record := BuildRecord(entry.OriginalName, entry.StoredFilename, dims, entry.CreatedAt)
	if err := s.gateway.AddDocuments(ctx, s.index, []*models.ImageRecord{record}); err != nil {
		log.Printf("[Reindex] Failed to index %s: %v", name, err)
		result.Failed++
		metrics.ReindexedTotal.WithLabelValues("failed").Inc()
		return
	}

	if err := s.journal.MarkDone(ctx, entry.ID, record.ID); err != nil {
		log.Printf("[Reindex] Indexed %s but failed to update journal entry %d: %v", name, entry.ID, err)
	}
	result.Indexed++
	metrics.ReindexedTotal.WithLabelValues("indexed").Inc()
}

// prune 删除元数据阶段失败留下的孤儿文件
func (s *ReindexService) prune(ctx context.Context, result *ReindexResult) error {
	entries, err := s.journal.ListFailedAtStage(ctx, string(StageInspected))
	if err != nil {
		return fmt.Errorf("list orphaned blobs: %w", err)
	}

	for _, entry := range entries {
		if err := s.storage.DeleteWithContext(ctx, entry.StoredFilename); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Printf("[Reindex] Failed to prune %s: %v", utils.SanitizeLogFilename(entry.StoredFilename), err)
			result.Failed++
			metrics.BlobDeletionsTotal.WithLabelValues("failed").Inc()
			continue
		}
		if err := s.journal.Delete(ctx, entry.ID); err != nil {
			log.Printf("[Reindex] Failed to delete journal entry %d: %v", entry.ID, err)
		}
		result.Pruned++
		metrics.BlobDeletionsTotal.WithLabelValues("deleted").Inc()
		metrics.ReindexedTotal.WithLabelValues("pruned").Inc()
	}
	return nil
}
