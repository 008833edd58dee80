package preview

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/wohhie/cover-letter-tool/layout"
)

const (
	fallbackColumns = 80
	fallbackRows    = 24
	maxColumns      = 100
)

// TerminalOptions 配置终端预览。Columns/Rows 为 0 时从终端探测。
type TerminalOptions struct {
	Columns          int
	Rows             int
	JustifyThreshold int
	// Hyperlinks 为 true 时用 OSC 8 输出可点击的链接。
	Hyperlinks bool
}

// TerminalSize 返回终端的列数和行数；f 不是终端时返回 80x24。
func TerminalSize(f *os.File) (int, int) {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return fallbackColumns, fallbackRows
	}
	w, h, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return fallbackColumns, fallbackRows
	}
	return w, h
}

// CellMeasure 以终端单元格宽度测量文本，东亚宽字符占两格。
func CellMeasure(s string) float64 {
	return float64(runewidth.StringWidth(s))
}

// TerminalLines 按列宽排版信件，返回终端上逐行显示的内容（未加链接转义）。
// 段落之间空一行；两端对齐的段落在每个硬换行内除最后一行外补齐空格。
func TerminalLines(doc string, columns, threshold int) []string {
	if columns <= 0 {
		columns = fallbackColumns
	}
	width := float64(columns)
	var out []string
	for i, p := range layout.SplitParagraphs(doc) {
		if i > 0 {
			out = append(out, "")
		}
		justify := layout.AlignmentFor(p, threshold) == layout.AlignJustify
		for _, line := range layout.HardBreaks(p) {
			wrapped := layout.WrapLine(line, width, CellMeasure)
			for j, w := range wrapped {
				if justify && j < len(wrapped)-1 {
					w = justifyCells(w, columns)
				}
				out = append(out, w)
			}
		}
	}
	return out
}

// RenderTerminal 把预览写到 w，返回内容是否超出可见行数。
func RenderTerminal(w io.Writer, doc string, opts TerminalOptions) (bool, error) {
	columns, rows := opts.Columns, opts.Rows
	if columns <= 0 || rows <= 0 {
		c, r := TerminalSize(os.Stdout)
		if columns <= 0 {
			columns = min(c, maxColumns)
		}
		if rows <= 0 {
			rows = r
		}
	}

	lines := TerminalLines(doc, columns, opts.JustifyThreshold)
	for _, line := range lines {
		if opts.Hyperlinks {
			line = hyperlink(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return false, fmt.Errorf("写入终端预览失败: %w", err)
		}
	}
	return len(lines) > rows, nil
}

// justifyCells 把单词间的空格均匀加宽，使整行占满 columns 个单元格。
func justifyCells(line string, columns int) string {
	words := strings.Fields(line)
	if len(words) < 2 {
		return line
	}
	used := 0
	for _, w := range words {
		used += runewidth.StringWidth(w)
	}
	gaps := len(words) - 1
	spaces := columns - used
	if spaces < gaps {
		return line
	}
	base, extra := spaces/gaps, spaces%gaps
	var b strings.Builder
	for i, w := range words {
		b.WriteString(w)
		if i == gaps {
			break
		}
		n := base
		if i < extra {
			n++
		}
		b.WriteString(strings.Repeat(" ", n))
	}
	return b.String()
}

// hyperlink 把行内第一个 LinkedIn 链接包成 OSC 8 超链接。
func hyperlink(line string) string {
	link, ok := DetectLink(line)
	if !ok {
		return line
	}
	return link.Before + "\x1b]8;;" + link.URL + "\x1b\\" + link.URL + "\x1b]8;;\x1b\\" + link.After
}
