package utils

import (
	"mime"
	"path/filepath"
	"strings"
)

// extToContentType 常见图片扩展名到 MIME 类型的映射
var extToContentType = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".svg":  "image/svg+xml",
	".avif": "image/avif",
	".heic": "image/heic",
}

// ExtensionFromContentType 从 MIME 类型中取出子类型作为扩展名（不含点）
// image/jpeg -> jpeg, image/svg+xml -> svg，无法解析时返回 bin
func ExtensionFromContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.Split(contentType, ";")[0])
	}

	_, subtype, ok := strings.Cut(mediaType, "/")
	if !ok {
		return "bin"
	}
	subtype, _, _ = strings.Cut(subtype, "+")
	subtype = strings.ToLower(strings.TrimSpace(subtype))

	if subtype == "" {
		return "bin"
	}
	for _, r := range subtype {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '.' {
			return "bin"
		}
	}
	return subtype
}

// GetExtensionFromFilename 从文件名获取扩展名（小写）
func GetExtensionFromFilename(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// ContentTypeFromFilename 根据文件扩展名推断 MIME 类型
func ContentTypeFromFilename(filename string) string {
	ext := GetExtensionFromFilename(filename)
	if ct, ok := extToContentType[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
