package app

import (
	"fmt"
	"io"
	"log"

	"github.com/anoixa/image-gallery/api/core"
	"github.com/anoixa/image-gallery/api/handler/images"
	"github.com/anoixa/image-gallery/cache"
	"github.com/anoixa/image-gallery/config"
	"github.com/anoixa/image-gallery/database"
	"github.com/anoixa/image-gallery/database/repo/ingestions"
	"github.com/anoixa/image-gallery/internal/services/gallery"
	"github.com/anoixa/image-gallery/search"
	"github.com/anoixa/image-gallery/storage"
	"github.com/anoixa/image-gallery/utils"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config          *config.Config
	storageFactory  *storage.Factory
	db              database.Provider
	gateway         search.Gateway
	cacheProvider   cache.Provider
	searchCache     *cache.SearchCache
	journal         gallery.Journal

	UploadService  *gallery.UploadService
	QueryService   *gallery.QueryService
	RecordService  *gallery.RecordService
	ResetService   *gallery.ResetService
	ReindexService *gallery.ReindexService
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// Init 按 存储 -> 搜索 -> 数据库 -> 缓存 -> 服务 的顺序初始化
func (c *Container) Init() error {
	utils.LogIfDev("Initializing DI container...")

	if err := c.initStorage(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	if err := c.initSearch(); err != nil {
		return fmt.Errorf("failed to initialize search engine: %w", err)
	}
	if err := c.InitDatabase(); err != nil {
		return err
	}
	if err := c.initCache(); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	c.initServices()

	utils.LogIfDev("DI container initialized successfully")
	return nil
}

func (c *Container) initStorage() error {
	factory, err := storage.NewFactory(c.config)
	if err != nil {
		return err
	}
	c.storageFactory = factory
	return nil
}

func (c *Container) initSearch() error {
	gateway, err := search.NewGateway(c.config)
	if err != nil {
		return err
	}
	c.gateway = gateway
	return nil
}

// InitDatabase 初始化上传日志数据库，db_type 为 none 时跳过
func (c *Container) InitDatabase() error {
	if database.Disabled(c.config) {
		log.Println("[Database] Ingestion journal disabled")
		return nil
	}

	provider, err := database.Open(c.config)
	if err != nil {
		return err
	}
	c.db = provider
	c.journal = ingestions.NewRepository(provider.DB())
	utils.LogIfDev("Ingestion journal initialized")
	return nil
}

func (c *Container) initCache() error {
	provider, err := cache.NewProvider(c.config)
	if err != nil {
		return err
	}
	c.cacheProvider = provider
	c.searchCache = cache.NewSearchCache(provider, c.config.CacheSearchTTL)
	return nil
}

func (c *Container) initServices() {
	opts := gallery.OptionsFromConfig(c.config)
	provider := c.storageFactory.GetDefault()

	c.UploadService = gallery.NewUploadService(provider, c.gateway, c.journal, c.searchCache, opts)
	c.QueryService = gallery.NewQueryService(c.gateway, c.searchCache, opts)
	c.RecordService = gallery.NewRecordService(c.gateway, c.searchCache, opts)
	c.ResetService = gallery.NewResetService(provider, c.gateway, c.journal, c.searchCache, opts)
	c.ReindexService = gallery.NewReindexService(provider, c.gateway, c.journal, c.searchCache, opts)
	utils.LogIfDev("Gallery services initialized")
}

// ServerDependencies 组装 HTTP 层依赖
func (c *Container) ServerDependencies() *core.ServerDependencies {
	provider := c.storageFactory.GetDefault()
	return &core.ServerDependencies{
		ImageHandler: images.NewHandler(
			c.UploadService,
			c.QueryService,
			c.RecordService,
			c.ResetService,
			provider,
		),
		HealthHandler: core.NewHealthHandler(c.gateway, provider, c.GetDatabaseProvider()),
	}
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetGateway 获取搜索引擎网关
func (c *Container) GetGateway() search.Gateway {
	return c.gateway
}

// GetStorageFactory 获取存储工厂
func (c *Container) GetStorageFactory() *storage.Factory {
	return c.storageFactory
}

// GetDatabaseProvider 获取数据库提供者，未启用时返回 nil
func (c *Container) GetDatabaseProvider() database.Provider {
	return c.db
}

// JournalEnabled 是否启用了上传日志
func (c *Container) JournalEnabled() bool {
	return c.journal != nil
}

// Close 关闭所有服务
func (c *Container) Close() error {
	utils.LogIfDev("Closing DI container...")

	if c.cacheProvider != nil {
		if err := c.cacheProvider.Close(); err != nil {
			utils.LogIfDevf("Error closing cache provider: %v", err)
		}
	}

	if closer, ok := c.gateway.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			utils.LogIfDevf("Error closing search gateway: %v", err)
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			utils.LogIfDevf("Error closing database: %v", err)
		}
	}

	utils.LogIfDev("DI container closed")
	return nil
}
