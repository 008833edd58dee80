package preview

import (
	"strings"
	"unicode/utf8"

	"github.com/wohhie/cover-letter-tool/layout"
)

// Viewport 描述预览容器的可见区域。单位由 measure 决定（pt、px 或终端列）。
type Viewport struct {
	Width      float64
	Height     float64
	LineHeight float64
	// ParagraphGap 是段落之间额外的垂直间距。
	ParagraphGap float64
}

// ViewportFor 按页面几何推导出与 PDF 内容区等大的预览容器。
func ViewportFor(geo layout.Geometry) Viewport {
	return Viewport{
		Width:        geo.ContentWidth(),
		Height:       geo.ContentHeight(),
		LineHeight:   geo.LineHeight,
		ParagraphGap: geo.LineHeight,
	}
}

// AverageCharMeasure 以平均字宽 0.5em 估算文本宽度，不依赖任何字体文件。
func AverageCharMeasure(fontSize float64) layout.MeasureFunc {
	return func(s string) float64 {
		return float64(utf8.RuneCountInString(s)) * fontSize * 0.5
	}
}

// ContentHeight 估算预览内容的自然高度。
func ContentHeight(doc string, vp Viewport, measure layout.MeasureFunc) float64 {
	paragraphs := layout.SplitParagraphs(doc)
	height := 0.0
	for i, p := range paragraphs {
		if i > 0 {
			height += vp.ParagraphGap
		}
		for _, line := range layout.HardBreaks(p) {
			height += float64(len(layout.WrapLine(strings.TrimSpace(line), vp.Width, measure))) * vp.LineHeight
		}
	}
	return height
}

// EstimateOverflow 比较内容自然高度与容器可见高度。
// 这是预览用的近似信号，与 PDF 排版的溢出判断相互独立，临界处可能不一致。
func EstimateOverflow(doc string, vp Viewport, measure layout.MeasureFunc) bool {
	return ContentHeight(doc, vp, measure) > vp.Height
}
