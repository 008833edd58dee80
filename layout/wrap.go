package layout

import (
	"strings"
)

// WrapLine 使用贪心算法把一行文本折成宽度不超过 maxWidth 的多行。
// 按空白切词；单个词本身超宽时退化为按字符贪心切分，最后一段继续作为累加行。
// 空行（或只含空白）返回一个空串，以保留段落间距。
// 唯一的例外：单个字符本身就超过 maxWidth 时独占一行。
func WrapLine(line string, maxWidth float64, measure MeasureFunc) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		if measure(word) <= maxWidth {
			current = word
			continue
		}
		chunks := splitWordByWidth(word, maxWidth, measure)
		lines = append(lines, chunks[:len(chunks)-1]...)
		current = chunks[len(chunks)-1]
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// splitWordByWidth 按字符贪心切分超宽单词，至少返回一段。
func splitWordByWidth(word string, maxWidth float64, measure MeasureFunc) []string {
	var parts []string
	var builder strings.Builder
	for _, r := range word {
		if builder.Len() == 0 {
			builder.WriteRune(r)
			continue
		}
		candidate := builder.String() + string(r)
		if measure(candidate) <= maxWidth {
			builder.WriteRune(r)
			continue
		}
		parts = append(parts, builder.String())
		builder.Reset()
		builder.WriteRune(r)
	}
	if builder.Len() > 0 {
		parts = append(parts, builder.String())
	}
	if len(parts) == 0 {
		parts = []string{""}
	}
	return parts
}
