package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/image-gallery/database/models"
	"github.com/meilisearch/meilisearch-go"
)

// Meilisearch 错误码
const (
	meiliCodeIndexNotFound      = "index_not_found"
	meiliCodeIndexAlreadyExists = "index_already_exists"
	meiliCodeInvalidSearchSort  = "invalid_search_sort"
	meiliCodeInvalidSort        = "invalid_sort"
)

// MeiliConfig Meilisearch 配置
type MeiliConfig struct {
	Host        string
	APIKey      string
	Timeout     time.Duration
	WaitTimeout time.Duration
}

// MeiliGateway 基于 Meilisearch 的网关实现
type MeiliGateway struct {
	client      *meilisearch.Client
	waitTimeout time.Duration
}

// NewMeiliGateway 创建 Meilisearch 网关
func NewMeiliGateway(cfg MeiliConfig) (*MeiliGateway, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("meilisearch host is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	waitTimeout := cfg.WaitTimeout
	if waitTimeout <= 0 {
		waitTimeout = 5 * time.Second
	}

	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:    cfg.Host,
		APIKey:  cfg.APIKey,
		Timeout: timeout,
	})

	return &MeiliGateway{
		client:      client,
		waitTimeout: waitTimeout,
	}, nil
}

// classifyError 将 Meilisearch 错误映射为网关错误
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var meiliErr *meilisearch.Error
	if !errors.As(err, &meiliErr) {
		return err
	}

	switch meiliErr.ErrCode {
	case meilisearch.MeilisearchCommunicationError, meilisearch.MeilisearchTimeoutError:
		return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	if sentinel := classifyCode(meiliErr.MeilisearchApiError.Code); sentinel != nil {
		return fmt.Errorf("%w: %s", sentinel, meiliErr.MeilisearchApiError.Message)
	}
	return err
}

// classifyCode 根据错误码返回对应的哨兵错误
func classifyCode(code string) error {
	switch code {
	case meiliCodeIndexNotFound:
		return ErrIndexNotFound
	case meiliCodeIndexAlreadyExists:
		return ErrIndexExists
	case meiliCodeInvalidSearchSort, meiliCodeInvalidSort:
		return ErrIndexMisconfigured
	}
	return nil
}

// taskError 将失败的任务转换为错误
func taskError(task *meilisearch.Task) error {
	if task == nil || task.Status != meilisearch.TaskStatusFailed {
		return nil
	}
	if sentinel := classifyCode(task.Error.Code); sentinel != nil {
		return fmt.Errorf("%w: %s", sentinel, task.Error.Message)
	}
	return fmt.Errorf("meilisearch task %d failed: %s (%s)", task.UID, task.Error.Message, task.Error.Code)
}

// wait 等待异步任务完成，使任务级失败（如索引不存在）能够返回给调用方
// 等待超时时任务仍在队列中，视为已受理
func (g *MeiliGateway) wait(ctx context.Context, info *meilisearch.TaskInfo, err error) error {
	if err != nil {
		return classifyError(err)
	}
	if info == nil {
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, g.waitTimeout)
	defer cancel()

	task, err := g.client.WaitForTask(info.TaskUID, meilisearch.WaitParams{
		Context:  waitCtx,
		Interval: 50 * time.Millisecond,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			log.Printf("[Search] Task %d still pending after %s", info.TaskUID, g.waitTimeout)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return classifyError(err)
	}
	return taskError(task)
}

// CreateIndex 创建索引
func (g *MeiliGateway) CreateIndex(ctx context.Context, index, primaryKey string) error {
	info, err := g.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        index,
		PrimaryKey: primaryKey,
	})
	return g.wait(ctx, info, err)
}

// DeleteIndex 删除索引
func (g *MeiliGateway) DeleteIndex(ctx context.Context, index string) error {
	info, err := g.client.DeleteIndex(index)
	return g.wait(ctx, info, err)
}

// AddDocuments 写入完整文档
func (g *MeiliGateway) AddDocuments(ctx context.Context, index string, records []*models.ImageRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := g.client.Index(index).AddDocuments(&records, "id")
	return g.wait(ctx, info, err)
}

// UpdateDocuments 合并更新文档
func (g *MeiliGateway) UpdateDocuments(ctx context.Context, index string, docs []map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := g.client.Index(index).UpdateDocuments(&docs, "id")
	return g.wait(ctx, info, err)
}

// DeleteDocument 删除单个文档
func (g *MeiliGateway) DeleteDocument(ctx context.Context, index, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := g.client.Index(index).DeleteDocument(id)
	return g.wait(ctx, info, err)
}

// Search 全文检索
func (g *MeiliGateway) Search(ctx context.Context, index, query string, opts SearchOptions) ([]*models.ImageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := g.client.Index(index).Search(query, &meilisearch.SearchRequest{
		Limit: opts.Limit,
		Sort:  opts.Sort,
	})
	if err != nil {
		return nil, classifyError(err)
	}

	return decodeRecords(resp.Hits)
}

// UpdateSortableAttributes 设置可排序字段
func (g *MeiliGateway) UpdateSortableAttributes(ctx context.Context, index string, attrs []string) error {
	info, err := g.client.Index(index).UpdateSortableAttributes(&attrs)
	return g.wait(ctx, info, err)
}

// Health 检查搜索引擎健康状态
func (g *MeiliGateway) Health(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	health, err := g.client.Health()
	if err != nil {
		return classifyError(err)
	}
	if health.Status != "available" {
		return fmt.Errorf("%w: status %s", ErrIndexUnavailable, health.Status)
	}
	return nil
}

// Name 返回引擎名称
func (g *MeiliGateway) Name() string {
	return "meilisearch"
}
