package binding

import (
	"regexp"
	"strings"
)

const maxSlugLength = 40

var (
	slugSeparators = regexp.MustCompile(`[\s/\\]+`)
	slugDisallowed = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	slugUnderscore = regexp.MustCompile(`_+`)
)

// Slugify 把自由文本转为文件名安全的片段；结果为空时返回 fallback。
func Slugify(s, fallback string) string {
	s = strings.TrimSpace(s)
	s = slugSeparators.ReplaceAllString(s, "_")
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > maxSlugLength {
		s = strings.TrimRight(s[:maxSlugLength], "_")
	}
	if s == "" {
		return fallback
	}
	return s
}

// Filename 生成导出文件名 CoverLetter_<Company>_<Position>.<ext>。
func Filename(company, position, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return "CoverLetter_" + Slugify(company, "Company") + "_" + Slugify(position, "Position") + "." + ext
}
