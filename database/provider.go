package database

import (
	"context"

	"gorm.io/gorm"
)

// Provider 上传日志使用的数据库连接
type Provider interface {
	DB() *gorm.DB

	// Ping 健康检查
	Ping(ctx context.Context) error

	Close() error

	// Name 数据库类型，sqlite 或 postgres
	Name() string
}
