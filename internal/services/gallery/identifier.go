package gallery

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UntitledID 标题归一化后为空时使用的 ID
const UntitledID = "untitled"

// DeriveID 由标题派生文档 ID
// 相同标题总是得到相同 ID，不同标题归一化后相同时会冲突（后写覆盖）
func DeriveID(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastDash := true
	for _, r := range strings.ToLower(folded) {
		switch {
		case r == '.':
			continue
		case unicode.IsSpace(r) || r == '-':
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		case isIDRune(r):
			b.WriteRune(r)
			lastDash = false
		}
	}

	id := strings.Trim(b.String(), "-")
	if id == "" {
		return UntitledID
	}
	return id
}

// IsValidID 检查 ID 是否只包含 [a-z0-9_-]，Meilisearch 拒绝其他字符的文档 ID
func IsValidID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if !isIDRune(r) && r != '-' {
			return false
		}
	}
	return true
}

func isIDRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
}
