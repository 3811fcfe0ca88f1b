package gallery

import "github.com/anoixa/image-gallery/config"

const (
	DefaultIndex            = "images"
	DefaultPrimaryKey       = "id"
	DefaultSearchLimit      = 1000
	DefaultResetConcurrency = 8

	// FilePathPrefix 文档 filePath 的前缀，与 GET /images/:filename 对应
	FilePathPrefix = "/images/"
)

// Options 服务参数
type Options struct {
	Index            string
	SearchLimit      int64
	ResetConcurrency int
}

// OptionsFromConfig 从配置读取服务参数
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Index:            cfg.MeiliIndex,
		SearchLimit:      cfg.SearchLimit,
		ResetConcurrency: cfg.ResetConcurrency,
	}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.Index == "" {
		o.Index = DefaultIndex
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = DefaultSearchLimit
	}
	if o.ResetConcurrency <= 0 {
		o.ResetConcurrency = DefaultResetConcurrency
	}
	return o
}
