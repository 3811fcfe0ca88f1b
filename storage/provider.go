package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound 文件不存在
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidName 文件名不合法（包含路径穿越或非法字符）
	ErrInvalidName = errors.New("invalid blob name")
)

// Provider 存储提供者接口
// 图片以扁平文件名存放在同一个命名空间下，所有存储实现必须遵循此接口
type Provider interface {
	// SaveWithContext 保存文件到存储
	SaveWithContext(ctx context.Context, name string, file io.Reader) error

	// GetWithContext 从存储获取文件，调用方负责关闭
	GetWithContext(ctx context.Context, name string) (io.ReadCloser, error)

	// StatWithContext 返回文件大小（字节）
	StatWithContext(ctx context.Context, name string) (int64, error)

	// DeleteWithContext 从存储删除文件
	DeleteWithContext(ctx context.Context, name string) error

	// ListWithContext 列出存储中的全部文件名
	ListWithContext(ctx context.Context) ([]string, error)

	// Exists 检查文件是否存在
	Exists(ctx context.Context, name string) (bool, error)

	// Health 检查存储健康状态
	Health(ctx context.Context) error

	// Name 返回存储名称
	Name() string
}

// Sweeper 可清空整个存储目录的提供者
// 与 ListWithContext 不同，列出的是全部普通文件（含不符合命名规则的文件），删除时只拒绝路径穿越
type Sweeper interface {
	SweepListWithContext(ctx context.Context) ([]string, error)
	SweepDeleteWithContext(ctx context.Context, name string) error
}

// IsValidName 校验文件名是否合法
// 只允许单层文件名，不允许目录分隔符
func IsValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	if len(name) > 255 {
		return false
	}

	for _, r := range name {
		if (r < 'a' || r > 'z') &&
			(r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') &&
			r != '-' && r != '_' && r != '.' {
			return false
		}
	}

	// 隐藏文件（如写入探测文件）不对外暴露
	return name[0] != '.'
}
