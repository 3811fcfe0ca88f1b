package utils

import (
	"log"
	"strings"
	"unicode"

	"github.com/anoixa/image-gallery/config"
)

func SanitizeLogMessage(msg string) string {
	var sb strings.Builder
	for _, r := range msg {
		if r == 10 || r == 9 {
			sb.WriteRune(' ')
		} else if unicode.IsPrint(r) || unicode.IsGraphic(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SanitizeLogFilename 截断并清理用户上传的文件名
func SanitizeLogFilename(name string) string {
	if len(name) > 100 {
		name = name[:100] + "..."
	}
	return SanitizeLogMessage(name)
}

// LogIfDev 仅在开发环境输出日志
func LogIfDev(msg string) {
	if config.IsDevelopment() {
		log.Println(msg)
	}
}

// LogIfDevf 仅在开发环境输出格式化日志
func LogIfDevf(format string, args ...any) {
	if config.IsDevelopment() {
		log.Printf(format, args...)
	}
}
