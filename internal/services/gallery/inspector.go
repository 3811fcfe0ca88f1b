package gallery

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anoixa/image-gallery/database/models"
	"github.com/anoixa/image-gallery/storage"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Inspector 读取已存储图片的头部信息
type Inspector struct {
	storage storage.Provider
}

// NewInspector 创建元数据提取器
func NewInspector(provider storage.Provider) *Inspector {
	return &Inspector{storage: provider}
}

// Inspect 返回图片的宽高、编码格式和文件大小
// 大小取自存储层而不是像素数据
func (i *Inspector) Inspect(ctx context.Context, filename string) (models.Dimensions, error) {
	size, err := i.storage.StatWithContext(ctx, filename)
	if err != nil {
		return models.Dimensions{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	rc, err := i.storage.GetWithContext(ctx, filename)
	if err != nil {
		return models.Dimensions{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	defer rc.Close()

	cfg, format, err := image.DecodeConfig(bufio.NewReader(rc))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return models.Dimensions{}, ErrUnsupportedFormat
		}
		return models.Dimensions{}, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return models.Dimensions{}, fmt.Errorf("%w: empty image %dx%d", ErrUnsupportedFormat, cfg.Width, cfg.Height)
	}

	return models.Dimensions{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
		Size:   size,
	}, nil
}
