package ingestions

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/anoixa/image-gallery/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB 创建测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Ingestion{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func failed(filename, stage string, persisted bool) *models.Ingestion {
	return &models.Ingestion{
		StoredFilename: filename,
		OriginalName:   filename,
		State:          models.IngestionStateFailed,
		FailedStage:    stage,
		BlobPersisted:  persisted,
		Error:          "boom",
	}
}

func TestRepository_ListFailedAtStage(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, failed("a.png", "Indexed", true)))
	require.NoError(t, repo.Record(ctx, failed("b.png", "Inspected", true)))
	require.NoError(t, repo.Record(ctx, failed("c.png", "Indexed", true)))
	require.NoError(t, repo.Record(ctx, failed("", "Stored", false)))
	require.NoError(t, repo.Record(ctx, &models.Ingestion{StoredFilename: "d.png", State: models.IngestionStateDone}))

	indexed, err := repo.ListFailedAtStage(ctx, "Indexed")
	require.NoError(t, err)
	require.Len(t, indexed, 2)
	assert.Equal(t, "a.png", indexed[0].StoredFilename)
	assert.Equal(t, "c.png", indexed[1].StoredFilename)

	inspected, err := repo.ListFailedAtStage(ctx, "Inspected")
	require.NoError(t, err)
	require.Len(t, inspected, 1)
	assert.Equal(t, "b.png", inspected[0].StoredFilename)

	stored, err := repo.ListFailedAtStage(ctx, "Stored")
	require.NoError(t, err)
	assert.Empty(t, stored, "rows without a persisted blob are not candidates")
}

func TestRepository_MarkDone(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	entry := failed("a.png", "Indexed", true)
	require.NoError(t, repo.Record(ctx, entry))

	require.NoError(t, repo.MarkDone(ctx, entry.ID, "a"))

	got, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.IngestionStateDone, got.State)
	assert.Equal(t, "a", got.RecordID)
	assert.Empty(t, got.FailedStage)
	assert.Empty(t, got.Error)

	assert.ErrorIs(t, repo.MarkDone(ctx, 9999, "x"), gorm.ErrRecordNotFound)
}

func TestRepository_ClearAndCount(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, failed("a.png", "Indexed", true)))
	require.NoError(t, repo.Record(ctx, &models.Ingestion{StoredFilename: "b.png", State: models.IngestionStateDone}))
	require.NoError(t, repo.Record(ctx, &models.Ingestion{StoredFilename: "c.png", State: models.IngestionStateDone}))

	counts, err := repo.CountByState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.IngestionStateDone])
	assert.Equal(t, int64(1), counts[models.IngestionStateFailed])

	n, err := repo.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	counts, err = repo.CountByState(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)

	// 再次清空是幂等的
	n, err = repo.Clear(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRepository_Delete(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	entry := failed("a.png", "Inspected", true)
	require.NoError(t, repo.Record(ctx, entry))
	require.NoError(t, repo.Delete(ctx, entry.ID))

	got, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
