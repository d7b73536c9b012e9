package article

import (
	"strings"
	"unicode"

	"weekend-at-joes/pkg/ident"
)

const maxSlugBase = 80

// Slugify 生成 "<标题小写连字符>-<uuid 前 8 位>"，uuid 后缀保证唯一。
// 非 ASCII 字母数字（含中文）被丢弃，标题全部丢弃时只剩 "article-" 前缀。
func Slugify(title string, id ident.ArticleUUID) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= maxSlugBase {
			break
		}
	}
	base := strings.Trim(b.String(), "-")
	if base == "" {
		base = "article"
	}
	return base + "-" + id.String()[:8]
}
