package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestExtensionFromContentType 测试从 MIME 类型推导扩展名
func TestExtensionFromContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/jpeg", "jpeg"},
		{"image/png", "png"},
		{"image/svg+xml", "svg"},
		{"image/webp; charset=binary", "webp"},
		{"IMAGE/GIF", "gif"},
		{"application/octet-stream", "octet-stream"},
		{"", "bin"},
		{"garbage", "bin"},
		{"image/", "bin"},
		{"image/../../etc", "bin"},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtensionFromContentType(tt.contentType))
		})
	}
}

// TestContentTypeFromFilename 测试根据文件名推断 MIME 类型
func TestContentTypeFromFilename(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentTypeFromFilename("abc-cat.jpeg"))
	assert.Equal(t, "image/jpeg", ContentTypeFromFilename("abc-cat.JPG"))
	assert.Equal(t, "image/png", ContentTypeFromFilename("x.png"))
	assert.Equal(t, "image/svg+xml", ContentTypeFromFilename("x.svg"))
	assert.Equal(t, "application/octet-stream", ContentTypeFromFilename("x.bin"))
	assert.Equal(t, "application/octet-stream", ContentTypeFromFilename("noext"))
}

// TestSanitizeLogFilename 测试日志文件名清理
func TestSanitizeLogFilename(t *testing.T) {
	assert.Equal(t, "a b", SanitizeLogFilename("a\nb"))
	assert.Equal(t, "ab", SanitizeLogFilename("a\x00b"))
	assert.Len(t, SanitizeLogFilename(strings.Repeat("y", 200)), 103)
}
