package layout

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Alignment 是段落的水平对齐方式。
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignJustify Alignment = "justify"
)

// DefaultJustifyThreshold 区分页眉、地址、落款等短行与正文长段落。
const DefaultJustifyThreshold = 120

var paragraphBreak = regexp.MustCompile(`\n(?:[ \t]*\n)+`)

// SplitParagraphs 以一个或多个空行为界切分段落，丢弃只含空白的段落。
func SplitParagraphs(doc string) []string {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	var paragraphs []string
	for _, p := range paragraphBreak.Split(doc, -1) {
		p = strings.Trim(p, "\n")
		if strings.TrimSpace(p) == "" {
			continue
		}
		paragraphs = append(paragraphs, p)
	}
	return paragraphs
}

// HardBreaks 返回段落内以单个换行分隔的各行。
func HardBreaks(paragraph string) []string {
	return strings.Split(paragraph, "\n")
}

// AlignmentFor 按折叠空白后的长度决定对齐方式：超过 threshold 个字符时两端对齐。
func AlignmentFor(paragraph string, threshold int) Alignment {
	if threshold <= 0 {
		threshold = DefaultJustifyThreshold
	}
	collapsed := strings.Join(strings.Fields(paragraph), " ")
	if utf8.RuneCountInString(collapsed) > threshold {
		return AlignJustify
	}
	return AlignLeft
}
