package search

import (
	"fmt"
	"log"

	"github.com/anoixa/image-gallery/config"
)

// NewGateway 根据配置创建搜索引擎网关
func NewGateway(cfg *config.Config) (Gateway, error) {
	switch cfg.SearchEngine {
	case "", "meilisearch", "meili":
		log.Printf("[Search] Using Meilisearch at %s", cfg.MeiliHost)
		return NewMeiliGateway(MeiliConfig{
			Host:        cfg.MeiliHost,
			APIKey:      cfg.MeiliMasterKey,
			Timeout:     cfg.MeiliTimeout,
			WaitTimeout: cfg.MeiliWaitTimeout,
		})
	case "bleve", "memory":
		log.Println("[Search] Using embedded bleve index (in-memory)")
		return NewBleveGateway(), nil
	default:
		return nil, fmt.Errorf("unsupported search engine: %s", cfg.SearchEngine)
	}
}
