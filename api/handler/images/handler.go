package images

import (
	"github.com/anoixa/image-gallery/internal/services/gallery"
	"github.com/anoixa/image-gallery/storage"
)

// Handler 图库处理器
type Handler struct {
	uploadService *gallery.UploadService
	queryService  *gallery.QueryService
	recordService *gallery.RecordService
	resetService  *gallery.ResetService
	storage       storage.Provider
}

// NewHandler 图库处理器
func NewHandler(
	uploadService *gallery.UploadService,
	queryService *gallery.QueryService,
	recordService *gallery.RecordService,
	resetService *gallery.ResetService,
	provider storage.Provider,
) *Handler {
	return &Handler{
		uploadService: uploadService,
		queryService:  queryService,
		recordService: recordService,
		resetService:  resetService,
		storage:       provider,
	}
}
