package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/anoixa/image-gallery/config"
	"github.com/anoixa/image-gallery/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabled(t *testing.T) {
	assert.True(t, Disabled(&config.Config{DBType: "none"}))
	assert.True(t, Disabled(&config.Config{DBType: "Disabled"}))
	assert.False(t, Disabled(&config.Config{DBType: "sqlite"}))
	assert.False(t, Disabled(&config.Config{}))
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gallery.db")
	p, err := Open(&config.Config{DBType: "sqlite", DBFilePath: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	assert.Equal(t, "sqlite", p.Name())
	require.NoError(t, p.Ping(context.Background()))
	assert.True(t, p.DB().Migrator().HasTable(&models.Ingestion{}))
	assert.FileExists(t, path)
}

func TestOpen_UnsupportedType(t *testing.T) {
	_, err := Open(&config.Config{DBType: "oracle"})
	assert.Error(t, err)
}
