package layout

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Build 对整篇信件做单页排版：按 \n 切成原始行，逐行折行后从页面顶部向下放置。
// 某行的行框低于下边距时不再绘制，并设置 Overflow；超出页面不是错误，由调用方决定是否继续。
func Build(text string, opts BuildOptions) (*Result, error) {
	if opts.Measurer == nil {
		return nil, fmt.Errorf("layout: 缺少字体度量后端 Measurer")
	}
	geo := opts.Geometry
	if err := validateGeometry(geo); err != nil {
		return nil, err
	}

	// 组合字符先合成，保证测量与绘制看到的是同一串字形
	text = norm.NFC.String(text)
	measure := MeasureAt(opts.Measurer, geo.FontSize)
	maxWidth := geo.ContentWidth()

	collector := newPageCollector(geo)
	for _, raw := range strings.Split(text, "\n") {
		for _, line := range WrapLine(raw, maxWidth, measure) {
			collector.place(line, measure(line))
		}
	}

	return &Result{
		Page:     collector.page,
		Font:     FontSpec{Size: geo.FontSize, LineHeight: geo.LineHeight},
		Meta:     opts.Meta,
		Overflow: collector.state.Overflow,
		Dropped:  collector.dropped,
	}, nil
}

func validateGeometry(g Geometry) error {
	switch {
	case g.Width <= 0 || g.Height <= 0:
		return fmt.Errorf("layout: 页面尺寸无效 %gx%g", g.Width, g.Height)
	case g.FontSize <= 0:
		return fmt.Errorf("layout: 字号无效 %g", g.FontSize)
	case g.LineHeight <= 0:
		return fmt.Errorf("layout: 行高无效 %g", g.LineHeight)
	case g.ContentWidth() <= 0 || g.ContentHeight() <= 0:
		return fmt.Errorf("layout: 边距超出页面范围")
	}
	return nil
}

// pageCollector 维护单页的游标与已放置的行。
type pageCollector struct {
	geo     Geometry
	page    Page
	state   PageState
	dropped []string
}

func newPageCollector(geo Geometry) *pageCollector {
	return &pageCollector{
		geo: geo,
		page: Page{
			Width:  geo.Width,
			Height: geo.Height,
			Margin: geo.Margin,
		},
		state: PageState{
			Cursor: geo.Height - geo.Margin.Top,
			Margin: geo.Margin,
		},
	}
}

func (pc *pageCollector) contentBottom() float64 {
	return pc.state.Margin.Bottom
}

// place 放置一行；一旦溢出，后续行全部记入 dropped。
func (pc *pageCollector) place(content string, width float64) {
	if pc.state.Overflow {
		pc.dropped = append(pc.dropped, content)
		return
	}
	bottom := pc.state.Cursor - pc.geo.LineHeight
	if bottom < pc.contentBottom()-epsilon {
		pc.state.Overflow = true
		pc.dropped = append(pc.dropped, content)
		return
	}
	pc.page.Lines = append(pc.page.Lines, PlacedLine{
		Content: content,
		X:       pc.state.Margin.Left,
		Y:       pc.state.Cursor - pc.geo.FontSize,
		Width:   width,
	})
	pc.state.Cursor = bottom
}

// epsilon 吸收累计减法带来的浮点误差。
const epsilon = 1e-9
