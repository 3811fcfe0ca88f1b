package generator

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/anoixa/image-gallery/utils"
)

// TokenLength 文件名随机前缀长度
const TokenLength = 13

// FilenameGenerator 存储文件名生成器
// 生成格式：<13 位 base36 随机串>-<清理后的原始文件名>.<扩展名>
type FilenameGenerator struct {
	now   func() time.Time
	token func() (string, error)
}

// NewFilenameGenerator 创建文件名生成器
func NewFilenameGenerator() *FilenameGenerator {
	return &FilenameGenerator{
		now:   time.Now,
		token: func() (string, error) { return utils.GenerateBase36Token(TokenLength) },
	}
}

// WithClock 替换时钟（测试用）
func (g *FilenameGenerator) WithClock(now func() time.Time) *FilenameGenerator {
	g.now = now
	return g
}

// WithTokenSource 替换随机源（测试用）
func (g *FilenameGenerator) WithTokenSource(token func() (string, error)) *FilenameGenerator {
	g.token = token
	return g
}

// Generate 根据原始文件名与声明的 MIME 类型生成存储文件名
func (g *FilenameGenerator) Generate(originalName, contentType string) (string, error) {
	token, err := g.token()
	if err != nil {
		return "", err
	}

	base := SanitizeBaseName(originalName)
	if base == "" {
		base = "upload-" + strconv.FormatInt(g.now().UnixMilli(), 10)
	}

	return token + "-" + base + "." + utils.ExtensionFromContentType(contentType), nil
}

// BaseName 去掉路径与扩展名后的原始文件名
func BaseName(originalName string) string {
	// 浏览器在 Windows 上可能上传完整路径
	originalName = strings.ReplaceAll(originalName, "\\", "/")
	name := filepath.Base(originalName)
	if name == "." || name == "/" {
		return ""
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// SanitizeBaseName 清理文件名，仅保留 [A-Za-z0-9_-]，其余连续字符替换为单个 -
func SanitizeBaseName(originalName string) string {
	base := BaseName(originalName)

	var sb strings.Builder
	lastDash := false
	for _, r := range base {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteByte('-')
				lastDash = true
			}
		}
	}

	result := strings.Trim(sb.String(), "-")
	if len(result) > 100 {
		result = strings.TrimRight(result[:100], "-")
	}
	return result
}
