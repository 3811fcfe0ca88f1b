package storage

import (
	"fmt"
	"log"

	"github.com/anoixa/image-gallery/config"
)

// Factory 存储工厂 - 负责根据配置创建存储提供者
type Factory struct {
	provider Provider
}

// NewFactory 创建新的存储工厂
func NewFactory(cfg *config.Config) (*Factory, error) {
	log.Printf("[Storage] Initializing storage provider, type: %s", cfg.StorageType)

	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}

	log.Printf("[Storage] Successfully initialized '%s' storage provider", provider.Name())
	return &Factory{provider: provider}, nil
}

func newProvider(cfg *config.Config) (Provider, error) {
	switch cfg.StorageType {
	case "", "local":
		p, err := NewLocalStorage(cfg.ImagesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		return p, nil
	case "minio":
		p, err := NewMinioStorage(MinioConfig{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioAccessKeyID,
			SecretAccessKey: cfg.MinioSecretAccessKey,
			BucketName:      cfg.MinioBucketName,
			UseSSL:          cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize minio storage: %w", err)
		}
		return p, nil
	case "webdav":
		p, err := NewWebDAVStorage(WebDAVConfig{
			URL:      cfg.WebDAVURL,
			Username: cfg.WebDAVUsername,
			Password: cfg.WebDAVPassword,
			RootPath: cfg.WebDAVRootPath,
			Timeout:  cfg.WebDAVTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize webdav storage: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
}

// GetDefault 获取默认存储提供者
func (f *Factory) GetDefault() Provider {
	return f.provider
}
