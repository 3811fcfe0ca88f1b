package search

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/anoixa/image-gallery/database/models"
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// bleveIndex 单个内存索引
type bleveIndex struct {
	primaryKey string
	index      bleve.Index
	docs       map[string]map[string]any
	sortable   []string
}

// BleveGateway 基于内嵌 bleve 内存索引的网关实现，适用于单机或离线场景
// 索引级语义与 Meilisearch 保持一致：写文档时自动建索引，排序字段需显式声明
type BleveGateway struct {
	mu      sync.RWMutex
	indexes map[string]*bleveIndex
}

// NewBleveGateway 创建 bleve 网关
func NewBleveGateway() *BleveGateway {
	return &BleveGateway{indexes: make(map[string]*bleveIndex)}
}

func newBleveIndex(primaryKey string) (*bleveIndex, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	if primaryKey == "" {
		primaryKey = "id"
	}
	return &bleveIndex{
		primaryKey: primaryKey,
		index:      idx,
		docs:       make(map[string]map[string]any),
	}, nil
}

// getOrCreate 获取索引，不存在时创建，调用方需持有写锁
func (g *BleveGateway) getOrCreate(name string) (*bleveIndex, error) {
	if idx, ok := g.indexes[name]; ok {
		return idx, nil
	}
	idx, err := newBleveIndex("id")
	if err != nil {
		return nil, err
	}
	g.indexes[name] = idx
	return idx, nil
}

// searchable 提取参与全文检索的字段
func searchable(doc map[string]any) map[string]any {
	fields := make(map[string]any, 3)
	for _, key := range []string{"title", "description", "tags"} {
		if v, ok := doc[key]; ok && v != nil {
			fields[key] = v
		}
	}
	return fields
}

func (i *bleveIndex) put(id string, doc map[string]any) error {
	if err := i.index.Index(id, searchable(doc)); err != nil {
		return fmt.Errorf("failed to index document %q: %w", id, err)
	}
	i.docs[id] = doc
	return nil
}

// toDocument 将记录转换为通用文档结构
func toDocument(rec *models.ImageRecord) (map[string]any, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func documentID(doc map[string]any, primaryKey string) (string, error) {
	id, ok := doc[primaryKey].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("document is missing primary key %q", primaryKey)
	}
	return id, nil
}

// CreateIndex 创建索引
func (g *BleveGateway) CreateIndex(ctx context.Context, index, primaryKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.indexes[index]; ok {
		return fmt.Errorf("%w: %s", ErrIndexExists, index)
	}
	idx, err := newBleveIndex(primaryKey)
	if err != nil {
		return err
	}
	g.indexes[index] = idx
	return nil
}

// DeleteIndex 删除索引
func (g *BleveGateway) DeleteIndex(ctx context.Context, index string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	idx, ok := g.indexes[index]
	if !ok {
		return fmt.Errorf("%w: %s", ErrIndexNotFound, index)
	}
	delete(g.indexes, index)
	return idx.index.Close()
}

// AddDocuments 写入完整文档，同 id 覆盖
func (g *BleveGateway) AddDocuments(ctx context.Context, index string, records []*models.ImageRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	idx, err := g.getOrCreate(index)
	if err != nil {
		return err
	}

	for _, rec := range records {
		doc, err := toDocument(rec)
		if err != nil {
			return err
		}
		id, err := documentID(doc, idx.primaryKey)
		if err != nil {
			return err
		}
		if err := idx.put(id, doc); err != nil {
			return err
		}
	}
	return nil
}

// UpdateDocuments 合并更新文档，不存在的 id 会被创建
func (g *BleveGateway) UpdateDocuments(ctx context.Context, index string, docs []map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	idx, err := g.getOrCreate(index)
	if err != nil {
		return err
	}

	for _, patch := range docs {
		id, err := documentID(patch, idx.primaryKey)
		if err != nil {
			return err
		}

		merged := make(map[string]any)
		for k, v := range idx.docs[id] {
			merged[k] = v
		}
		for k, v := range patch {
			if tags, ok := v.([]string); ok {
				// 与 JSON 往返后的类型保持一致
				list := make([]any, len(tags))
				for i, t := range tags {
					list[i] = t
				}
				v = list
			}
			merged[k] = v
		}

		if err := idx.put(id, merged); err != nil {
			return err
		}
	}
	return nil
}

// DeleteDocument 删除单个文档
func (g *BleveGateway) DeleteDocument(ctx context.Context, index, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	idx, ok := g.indexes[index]
	if !ok {
		return fmt.Errorf("%w: %s", ErrIndexNotFound, index)
	}
	if err := idx.index.Delete(id); err != nil {
		return fmt.Errorf("failed to delete document %q: %w", id, err)
	}
	delete(idx.docs, id)
	return nil
}

// buildQuery 构造查询：空查询匹配全部，否则对全部字段做模糊匹配并对最后一个词做前缀匹配
func buildQuery(q string) query.Query {
	q = strings.TrimSpace(q)
	if q == "" {
		return bleve.NewMatchAllQuery()
	}

	match := bleve.NewMatchQuery(q)
	match.SetFuzziness(1)

	terms := strings.Fields(strings.ToLower(q))
	prefix := bleve.NewPrefixQuery(terms[len(terms)-1])

	return bleve.NewDisjunctionQuery(match, prefix)
}

// Search 全文检索
func (g *BleveGateway) Search(ctx context.Context, index, q string, opts SearchOptions) ([]*models.ImageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	idx, ok := g.indexes[index]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, index)
	}

	specs, err := parseSort(opts.Sort)
	if err != nil {
		return nil, err
	}
	for _, spec := range specs {
		if !slices.Contains(idx.sortable, spec.Field) {
			return nil, fmt.Errorf("%w: attribute %q is not sortable", ErrIndexMisconfigured, spec.Field)
		}
	}

	size := len(idx.docs)
	if size == 0 {
		return []*models.ImageRecord{}, nil
	}

	req := bleve.NewSearchRequestOptions(buildQuery(q), size, 0, false)
	res, err := idx.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	hits := make([]map[string]any, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if doc, ok := idx.docs[hit.ID]; ok {
			hits = append(hits, doc)
		}
	}

	if len(specs) > 0 {
		sort.SliceStable(hits, func(a, b int) bool {
			return lessBySpecs(hits[a], hits[b], specs)
		})
	}

	if opts.Limit > 0 && int64(len(hits)) > opts.Limit {
		hits = hits[:opts.Limit]
	}

	out := make([]any, len(hits))
	for i, doc := range hits {
		out[i] = doc
	}
	return decodeRecords(out)
}

// lessBySpecs 多字段比较，缺失字段的文档排在最后
func lessBySpecs(a, b map[string]any, specs []sortSpec) bool {
	for _, spec := range specs {
		va, okA := a[spec.Field]
		vb, okB := b[spec.Field]
		switch {
		case !okA && !okB:
			continue
		case !okA:
			return false
		case !okB:
			return true
		}

		c := compareValues(va, vb)
		if c == 0 {
			continue
		}
		if spec.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}

func compareValues(a, b any) int {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// UpdateSortableAttributes 设置可排序字段，索引不存在时自动创建
func (g *BleveGateway) UpdateSortableAttributes(ctx context.Context, index string, attrs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	idx, err := g.getOrCreate(index)
	if err != nil {
		return err
	}
	idx.sortable = slices.Clone(attrs)
	return nil
}

// Health 检查搜索引擎健康状态
func (g *BleveGateway) Health(ctx context.Context) error {
	return ctx.Err()
}

// Name 返回引擎名称
func (g *BleveGateway) Name() string {
	return "bleve"
}

// Close 关闭全部索引
func (g *BleveGateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for name, idx := range g.indexes {
		_ = idx.index.Close()
		delete(g.indexes, name)
	}
	return nil
}
