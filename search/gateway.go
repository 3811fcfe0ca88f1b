// Package search 封装全文搜索引擎的索引与查询操作
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anoixa/image-gallery/database/models"
)

var (
	// ErrIndexUnavailable 搜索引擎不可达或超时
	ErrIndexUnavailable = errors.New("search engine unavailable")
	// ErrIndexNotFound 索引不存在
	ErrIndexNotFound = errors.New("index not found")
	// ErrIndexMisconfigured 索引配置不满足查询要求（如排序字段未声明为可排序）
	ErrIndexMisconfigured = errors.New("index misconfigured")
	// ErrIndexExists 创建已存在的索引
	ErrIndexExists = errors.New("index already exists")
)

// SortField 排序字段
const SortField = "createdAt"

// SortCreatedAtDesc 按创建时间倒序
const SortCreatedAtDesc = SortField + ":desc"

// SearchOptions 查询参数
type SearchOptions struct {
	Limit int64
	Sort  []string
}

// Gateway 搜索引擎网关
// 写操作对已存在的 id 执行覆盖（Add）或合并（Update），对不存在的索引自动创建
type Gateway interface {
	// CreateIndex 创建索引，已存在时返回 ErrIndexExists
	CreateIndex(ctx context.Context, index, primaryKey string) error

	// DeleteIndex 删除索引，不存在时返回 ErrIndexNotFound
	DeleteIndex(ctx context.Context, index string) error

	// AddDocuments 写入完整文档，同 id 覆盖
	AddDocuments(ctx context.Context, index string, records []*models.ImageRecord) error

	// UpdateDocuments 合并更新文档，仅覆盖文档中出现的字段
	UpdateDocuments(ctx context.Context, index string, docs []map[string]any) error

	// DeleteDocument 删除单个文档
	DeleteDocument(ctx context.Context, index, id string) error

	// Search 全文检索
	Search(ctx context.Context, index, query string, opts SearchOptions) ([]*models.ImageRecord, error)

	// UpdateSortableAttributes 设置可排序字段
	UpdateSortableAttributes(ctx context.Context, index string, attrs []string) error

	// Health 检查搜索引擎健康状态
	Health(ctx context.Context) error

	// Name 返回引擎名称
	Name() string
}

// sortSpec 解析后的排序规则
type sortSpec struct {
	Field string
	Desc  bool
}

// parseSort 解析 "field:asc|desc" 形式的排序规则
func parseSort(rules []string) ([]sortSpec, error) {
	specs := make([]sortSpec, 0, len(rules))
	for _, rule := range rules {
		field, dir, ok := strings.Cut(rule, ":")
		if !ok || field == "" {
			return nil, fmt.Errorf("%w: invalid sort rule %q", ErrIndexMisconfigured, rule)
		}
		switch dir {
		case "asc":
			specs = append(specs, sortSpec{Field: field})
		case "desc":
			specs = append(specs, sortSpec{Field: field, Desc: true})
		default:
			return nil, fmt.Errorf("%w: invalid sort direction %q", ErrIndexMisconfigured, rule)
		}
	}
	return specs, nil
}
