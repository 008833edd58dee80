package preview

import "regexp"

// linkPattern 匹配 LinkedIn 个人主页链接（http/https，可带 www.）。
var linkPattern = regexp.MustCompile(`(?i)https?://(?:www\.)?linkedin\.com/[^\s]*`)

// Link 是一行文本按第一个链接切成的三段。
type Link struct {
	Before string
	URL    string
	After  string
}

// DetectLink 查找行内第一个 LinkedIn 链接；没有时 ok 为 false。
func DetectLink(line string) (Link, bool) {
	loc := linkPattern.FindStringIndex(line)
	if loc == nil {
		return Link{}, false
	}
	return Link{
		Before: line[:loc[0]],
		URL:    line[loc[0]:loc[1]],
		After:  line[loc[1]:],
	}, true
}
