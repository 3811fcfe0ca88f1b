package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
)

const keySep = ":"

// KeyBuilder 按命名空间拼接缓存键，多个实例共用一个 redis 时互不干扰
type KeyBuilder struct {
	namespace string
}

// NewKeyBuilder 创建键构建器
func NewKeyBuilder(namespace string) KeyBuilder {
	return KeyBuilder{namespace: namespace}
}

// Build namespace:part:part
func (kb KeyBuilder) Build(parts ...string) string {
	if len(parts) == 0 {
		return kb.namespace
	}
	return kb.namespace + keySep + strings.Join(parts, keySep)
}

// Versioned 用户输入取摘要后挂在代数下，形如 namespace:g<generation>:<sha1>
// 搜索词可能很长或包含分隔符，摘要保证键长度固定
func (kb KeyBuilder) Versioned(generation uint64, parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "\x00")))
	return kb.Build("g"+strconv.FormatUint(generation, 10), hex.EncodeToString(sum[:]))
}

// searchKeys 搜索结果缓存键
var searchKeys = NewKeyBuilder("gallery:search")
