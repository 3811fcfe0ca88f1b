package ingestions

import (
	"context"
	"errors"

	"github.com/anoixa/image-gallery/database/models"
	"gorm.io/gorm"
)

// Repository 上传日志仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的上传日志仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record 写入一条上传记录
func (r *Repository) Record(ctx context.Context, entry *models.Ingestion) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetByID 通过 ID 获取记录，不存在时返回 nil
func (r *Repository) GetByID(ctx context.Context, id uint) (*models.Ingestion, error) {
	var entry models.Ingestion
	err := r.db.WithContext(ctx).First(&entry, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// ListFailedAtStage 查询在指定阶段失败且文件已落盘的记录
func (r *Repository) ListFailedAtStage(ctx context.Context, stage string) ([]*models.Ingestion, error) {
	var entries []*models.Ingestion
	err := r.db.WithContext(ctx).
		Where("state = ? AND failed_stage = ? AND blob_persisted = ?", models.IngestionStateFailed, stage, true).
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}

// MarkDone 将失败记录标记为完成
func (r *Repository) MarkDone(ctx context.Context, id uint, recordID string) error {
	result := r.db.WithContext(ctx).Model(&models.Ingestion{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"state":        models.IngestionStateDone,
			"failed_stage": "",
			"record_id":    recordID,
			"error":        "",
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 删除一条记录
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&models.Ingestion{}, id).Error
}

// Clear 清空全部记录，返回删除的行数
func (r *Repository) Clear(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Unscoped().
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Ingestion{})
	return result.RowsAffected, result.Error
}

// CountByState 按状态统计记录数
func (r *Repository) CountByState(ctx context.Context) (map[models.IngestionState]int64, error) {
	var rows []struct {
		State models.IngestionState
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&models.Ingestion{}).
		Select("state, COUNT(*) AS count").
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.IngestionState]int64, len(rows))
	for _, row := range rows {
		counts[row.State] = row.Count
	}
	return counts, nil
}
