package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/anoixa/image-gallery/config"
	"github.com/anoixa/image-gallery/database/models"
)

// Disabled db_type 为 none 时不记录上传日志
func Disabled(cfg *config.Config) bool {
	switch strings.ToLower(cfg.DBType) {
	case "none", "disabled":
		return true
	}
	return false
}

// Open 打开数据库并迁移上传日志表
func Open(cfg *config.Config) (*GormProvider, error) {
	provider, err := NewGormProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database provider: %w", err)
	}

	if err := provider.db.AutoMigrate(&models.Ingestion{}); err != nil {
		_ = provider.Close()
		return nil, fmt.Errorf("failed to auto migrate database: %w", err)
	}

	log.Printf("[Database] %s journal ready", provider.Name())
	return provider, nil
}
