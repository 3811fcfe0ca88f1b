package gallery

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/image-gallery/cache"
	"github.com/anoixa/image-gallery/database/models"
	"github.com/anoixa/image-gallery/search"
)

// ErrInvalidID 文档 ID 为空
var ErrInvalidID = errors.New("invalid image id")

// RecordService 修改或删除已索引的文档
// 删除文档不会删除对应的文件
type RecordService struct {
	gateway search.Gateway
	cache   *cache.SearchCache
	index   string
}

// NewRecordService 创建文档服务
func NewRecordService(gateway search.Gateway, searchCache *cache.SearchCache, opts Options) *RecordService {
	opts = opts.withDefaults()
	return &RecordService{
		gateway: gateway,
		cache:   searchCache,
		index:   opts.Index,
	}
}

// Update 合并更新，仅修改 patch 中设置的字段
func (s *RecordService) Update(ctx context.Context, id string, patch models.ImagePatch) error {
	if id == "" {
		return ErrInvalidID
	}
	if err := s.gateway.UpdateDocuments(ctx, s.index, []map[string]any{patch.Document(id)}); err != nil {
		return fmt.Errorf("update image %s: %w", id, err)
	}
	s.cache.Invalidate()
	return nil
}

// Delete 删除文档
func (s *RecordService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidID
	}
	if err := s.gateway.DeleteDocument(ctx, s.index, id); err != nil {
		return fmt.Errorf("delete image %s: %w", id, err)
	}
	s.cache.Invalidate()
	return nil
}
