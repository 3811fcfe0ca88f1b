package app

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/anoixa/image-gallery/config"
	"github.com/anoixa/image-gallery/internal/services/gallery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		SearchEngine: "bleve",
		StorageType:  "local",
		ImagesDir:    filepath.Join(dir, "images"),
		DBType:       "sqlite",
		DBFilePath:   filepath.Join(dir, "gallery.db"),
		CacheType:    "memory",
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestContainer_InitAndServe(t *testing.T) {
	c := NewContainer(testConfig(t))
	require.NoError(t, c.Init())
	t.Cleanup(func() { _ = c.Close() })

	assert.True(t, c.JournalEnabled())
	assert.NotNil(t, c.GetDatabaseProvider())
	assert.Equal(t, "bleve", c.GetGateway().Name())

	deps := c.ServerDependencies()
	assert.NotNil(t, deps.ImageHandler)
	assert.NotNil(t, deps.HealthHandler)

	ctx := context.Background()
	res, err := c.UploadService.Upload(ctx, gallery.UploadInput{
		Reader:   bytes.NewReader(encodePNG(t, 4, 3)),
		Filename: "Holiday Photo.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "holiday-photo", res.Record.ID)

	records, err := c.QueryService.Search(ctx, "holiday")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 4, records[0].Dimensions.Width)

	result, err := c.ResetService.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Deleted)
}

func TestContainer_JournalDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBType = "none"
	cfg.CacheType = "none"

	c := NewContainer(cfg)
	require.NoError(t, c.Init())
	t.Cleanup(func() { _ = c.Close() })

	assert.False(t, c.JournalEnabled())
	assert.Nil(t, c.GetDatabaseProvider())

	_, err := c.ReindexService.Reindex(context.Background(), false)
	assert.ErrorIs(t, err, gallery.ErrJournalDisabled)
}

func TestContainer_InvalidSearchEngine(t *testing.T) {
	cfg := testConfig(t)
	cfg.SearchEngine = "elastic"

	err := NewContainer(cfg).Init()
	assert.Error(t, err)
}
