package gallery

import (
	"context"
	"log"

	"github.com/anoixa/image-gallery/database/models"
	"github.com/anoixa/image-gallery/utils"
)

// Journal 上传日志，由 database/repo/ingestions.Repository 实现
type Journal interface {
	Record(ctx context.Context, entry *models.Ingestion) error
	ListFailedAtStage(ctx context.Context, stage string) ([]*models.Ingestion, error)
	MarkDone(ctx context.Context, id uint, recordID string) error
	Delete(ctx context.Context, id uint) error
	Clear(ctx context.Context) (int64, error)
}

// recordIngestion 写入上传日志，失败只记录日志
func recordIngestion(ctx context.Context, journal Journal, entry *models.Ingestion) {
	if journal == nil {
		return
	}
	if err := journal.Record(ctx, entry); err != nil {
		log.Printf("[Journal] Failed to record ingestion of %s: %v", utils.SanitizeLogFilename(entry.OriginalName), err)
	}
}
