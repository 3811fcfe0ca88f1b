package gallery

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/anoixa/image-gallery/database/models"
	"github.com/anoixa/image-gallery/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReindexService_RecoversIndexingFailures(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	store := newTestStorage(t)
	journal := &fakeJournal{}

	upload := NewUploadService(store, gw, journal, nil, Options{})

	gw.addErr = search.ErrIndexUnavailable
	failed, err := upload.Upload(ctx, UploadInput{Reader: bytes.NewReader(pngBytes(t, 6, 4)), Filename: "offline.png", ContentType: "image/png"})
	require.Error(t, err)
	require.Nil(t, failed)
	gw.addErr = nil

	// 引擎恢复后补建
	res, err := NewReindexService(store, gw, journal, nil, Options{}).Reindex(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Indexed)
	assert.Zero(t, res.Failed)

	got := findRecord(t, gw, "offline")
	require.NotNil(t, got)
	assert.Equal(t, "offline", got.Title)
	assert.Equal(t, 6, got.Dimensions.Width)
	assert.True(t, strings.HasPrefix(got.FilePath, FilePathPrefix))

	remaining, err := journal.ListFailedAtStage(ctx, string(StageIndexed))
	require.NoError(t, err)
	assert.Empty(t, remaining)

	// 再次执行无事可做
	res, err = NewReindexService(store, gw, journal, nil, Options{}).Reindex(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, res.Indexed)
}

func TestReindexService_KeepsOriginalCreatedAt(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	store := newTestStorage(t)
	require.NoError(t, store.SaveWithContext(ctx, "tok-old.png", bytes.NewReader(pngBytes(t, 2, 2))))

	uploadedAt := time.Date(2022, 2, 2, 2, 2, 2, 0, time.UTC)
	journal := &fakeJournal{}
	entry := &models.Ingestion{
		StoredFilename: "tok-old.png",
		OriginalName:   "old.png",
		State:          models.IngestionStateFailed,
		FailedStage:    string(StageIndexed),
		BlobPersisted:  true,
	}
	entry.CreatedAt = uploadedAt
	require.NoError(t, journal.Record(ctx, entry))

	_, err := NewReindexService(store, gw, journal, nil, Options{}).Reindex(ctx, false)
	require.NoError(t, err)

	got := findRecord(t, gw, "old")
	require.NotNil(t, got)
	assert.Equal(t, "2022-02-02T02:02:02.000Z", got.CreatedAt)
}

func TestReindexService_MissingBlob(t *testing.T) {
	ctx := context.Background()
	journal := &fakeJournal{}
	require.NoError(t, journal.Record(ctx, &models.Ingestion{
		StoredFilename: "vanished.png",
		OriginalName:   "vanished.png",
		State:          models.IngestionStateFailed,
		FailedStage:    string(StageIndexed),
		BlobPersisted:  true,
	}))

	res, err := NewReindexService(newTestStorage(t), newFakeGateway(), journal, nil, Options{}).Reindex(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Missing)
	assert.Zero(t, journal.Len())
}

func TestReindexService_Prune(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	store := newTestStorage(t)
	journal := &fakeJournal{}
	upload := NewUploadService(store, gw, journal, nil, Options{})

	_, err := upload.Upload(ctx, UploadInput{Reader: strings.NewReader("not an image"), Filename: "junk.png", ContentType: "image/png"})
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = upload.Upload(ctx, UploadInput{Reader: bytes.NewReader(pngBytes(t, 2, 2)), Filename: "keep.png", ContentType: "image/png"})
	require.NoError(t, err)

	svc := NewReindexService(store, gw, journal, nil, Options{})

	res, err := svc.Reindex(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, res.Pruned)

	res, err = svc.Reindex(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pruned)

	names, err := store.ListWithContext(ctx)
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Contains(t, names[0], "keep")
}

func TestReindexService_JournalDisabled(t *testing.T) {
	_, err := NewReindexService(newTestStorage(t), newFakeGateway(), nil, nil, Options{}).Reindex(context.Background(), true)
	assert.ErrorIs(t, err, ErrJournalDisabled)
}
