package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// CreatedAtLayout 固定宽度的 UTC 毫秒时间格式，字典序与时间序一致
const CreatedAtLayout = "2006-01-02T15:04:05.000Z"

// Dimensions 图片元数据
type Dimensions struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Size   int64  `json:"size"`
}

// ImageRecord 搜索引擎中的图片文档
type ImageRecord struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags,omitempty"`
	FilePath    string     `json:"filePath"`
	Dimensions  Dimensions `json:"dimensions"`
	CreatedAt   string     `json:"createdAt"`
}

// FormatCreatedAt 格式化创建时间
func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(CreatedAtLayout)
}

// ParseCreatedAt 解析创建时间
func ParseCreatedAt(s string) (time.Time, error) {
	return time.Parse(CreatedAtLayout, s)
}

// Optional 可选字段，区分"未提供"与"设为空值"
// JSON 中缺失或为 null 时 Set 为 false
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some 构造已设置的可选值
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// UnmarshalJSON 实现 json.Unmarshaler
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Optional[T]{Set: true, Value: v}
	return nil
}

// MarshalJSON 实现 json.Marshaler
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// ImagePatch 图片文档的部分更新
type ImagePatch struct {
	Title       Optional[string]   `json:"title"`
	Description Optional[string]   `json:"description"`
	Tags        Optional[[]string] `json:"tags"`
}

// IsEmpty 没有任何字段被设置
func (p ImagePatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Tags.Set
}

// Document 生成用于合并更新的文档，仅包含 id 与已设置的字段
func (p ImagePatch) Document(id string) map[string]any {
	doc := map[string]any{"id": id}
	if p.Title.Set {
		doc["title"] = p.Title.Value
	}
	if p.Description.Set {
		doc["description"] = p.Description.Value
	}
	if p.Tags.Set {
		tags := p.Tags.Value
		if tags == nil {
			tags = []string{}
		}
		doc["tags"] = tags
	}
	return doc
}
