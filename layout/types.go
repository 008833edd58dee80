package layout

// 该文件定义排版结果与页面几何，供排版计算、PDF 渲染与调试 JSON 共用。
// 所有长度单位均为 pt，坐标原点在页面左下角（与 PDF 一致）。

// Result 保存单页排版结果。内容超出页面时 Overflow 为真，未绘制的行记录在 Dropped。
type Result struct {
	Page     Page         `json:"page"`
	Font     FontSpec     `json:"font"`
	Meta     DocumentMeta `json:"meta"`
	Overflow bool         `json:"overflow"`
	Dropped  []string     `json:"dropped,omitempty"`
}

// Page 记录页面尺寸、边距与已定位的行。
type Page struct {
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Margin Margin       `json:"margin"`
	Lines  []PlacedLine `json:"lines"`
}

// Margin 以 pt 为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Uniform returns a margin with the same value on all four sides.
func Uniform(v float64) Margin {
	return Margin{Top: v, Right: v, Bottom: v, Left: v}
}

// FontSpec 描述排版使用的字号与行高。
type FontSpec struct {
	Size       float64 `json:"size"`
	LineHeight float64 `json:"lineHeight"`
}

// PlacedLine 表示一行已经定位的文本。Y 为基线位置。
type PlacedLine struct {
	Content string  `json:"content"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
}

// PageState 是排版过程中的游标状态：Cursor 为下一行行框的顶部。
type PageState struct {
	Cursor   float64 `json:"cursor"`
	Margin   Margin  `json:"margin"`
	Overflow bool    `json:"overflow"`
}

// DocumentMeta 保存 PDF / DOCX 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// Geometry 是固定版式的页面配置。
type Geometry struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Margin     Margin  `json:"margin"`
	FontSize   float64 `json:"fontSize"`
	LineHeight float64 `json:"lineHeight"`
}

// A4 尺寸与默认字体参数（pt）。
const (
	A4Width           = 595.28
	A4Height          = 841.89
	DefaultMargin     = 72.0
	DefaultFontSize   = 11.0
	DefaultLineHeight = 14.5
)

// DefaultGeometry returns the A4 single-page geometry used by the PDF export.
func DefaultGeometry() Geometry {
	return Geometry{
		Width:      A4Width,
		Height:     A4Height,
		Margin:     Uniform(DefaultMargin),
		FontSize:   DefaultFontSize,
		LineHeight: DefaultLineHeight,
	}
}

// ContentWidth 返回左右边距之间的可用宽度。
func (g Geometry) ContentWidth() float64 {
	return g.Width - g.Margin.Left - g.Margin.Right
}

// ContentHeight 返回上下边距之间的可用高度。
func (g Geometry) ContentHeight() float64 {
	return g.Height - g.Margin.Top - g.Margin.Bottom
}

// Capacity 返回一页能容纳的行数。
func (g Geometry) Capacity() int {
	if g.LineHeight <= 0 {
		return 0
	}
	n := int(g.ContentHeight() / g.LineHeight)
	if float64(n+1)*g.LineHeight <= g.ContentHeight()+epsilon {
		n++
	}
	for n > 0 && float64(n)*g.LineHeight > g.ContentHeight()+epsilon {
		n--
	}
	return n
}
