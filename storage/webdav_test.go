package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWebDAVStorageValidation 测试 WebDAV 存储配置验证
func TestWebDAVStorageValidation(t *testing.T) {
	_, err := NewWebDAVStorage(WebDAVConfig{URL: ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL is required")
}

// TestNormalizeRootPath 测试根路径规范化
func TestNormalizeRootPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"images", "/images"},
		{"/images/", "/images"},
		{"/a/b", "/a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeRootPath(tt.in))
		})
	}
}

// TestWebDAVStorageFullPath 测试路径生成逻辑
func TestWebDAVStorageFullPath(t *testing.T) {
	tests := []struct {
		name     string
		rootPath string
		file     string
		want     string
	}{
		{"empty root path", "", "test.jpg", "/test.jpg"},
		{"with root path", "/images", "abc-cat.png", "/images/abc-cat.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &WebDAVStorage{rootPath: tt.rootPath}
			assert.Equal(t, tt.want, s.fullPath(tt.file))
		})
	}
}

// TestWebDAVStorageContextCancellation 测试上下文取消处理
func TestWebDAVStorageContextCancellation(t *testing.T) {
	s := &WebDAVStorage{
		client:  nil, // 模拟状态，不会实际调用
		baseURL: "https://example.com",
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("SaveWithContext", func(t *testing.T) {
		err := s.SaveWithContext(ctx, "test.jpg", strings.NewReader("x"))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("GetWithContext", func(t *testing.T) {
		_, err := s.GetWithContext(ctx, "test.jpg")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("StatWithContext", func(t *testing.T) {
		_, err := s.StatWithContext(ctx, "test.jpg")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("DeleteWithContext", func(t *testing.T) {
		err := s.DeleteWithContext(ctx, "test.jpg")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("ListWithContext", func(t *testing.T) {
		_, err := s.ListWithContext(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Exists", func(t *testing.T) {
		_, err := s.Exists(ctx, "test.jpg")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Health", func(t *testing.T) {
		assert.ErrorIs(t, s.Health(ctx), context.Canceled)
	})

	t.Run("InvalidName", func(t *testing.T) {
		err := s.SaveWithContext(context.Background(), "../x.jpg", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName)
	})
}

// TestWebDAVStorageName 测试存储名称
func TestWebDAVStorageName(t *testing.T) {
	assert.Equal(t, "webdav", (&WebDAVStorage{}).Name())
	assert.Equal(t, "webdav:https://dav.example.com/images",
		(&WebDAVStorage{baseURL: "https://dav.example.com", rootPath: "/images"}).Name())
}
