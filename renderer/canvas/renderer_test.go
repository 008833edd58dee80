package canvasrenderer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wohhie/cover-letter-tool/layout"
)

func TestTextWidthGrowsWithContent(t *testing.T) {
	r := NewRenderer("go-regular")
	short := r.TextWidth("hello", 11)
	long := r.TextWidth("hello world", 11)
	if short <= 0 {
		t.Fatalf("invalid measured width: %g", short)
	}
	if long <= short {
		t.Fatalf("expected longer text to measure wider: %g <= %g", long, short)
	}
	if bigger := r.TextWidth("hello", 22); bigger <= short {
		t.Fatalf("expected larger font to measure wider: %g <= %g", bigger, short)
	}
}

// 当一行宽度与限制恰好相等时，不应被折成两行。
func TestWrapEqualWidthStaysOnOneLine(t *testing.T) {
	r := NewRenderer("go-regular")
	measure := layout.MeasureAt(r, 11)
	first := "SAMPLE-A"
	limit := measure(first)

	lines := layout.WrapLine(first, limit, measure)
	if len(lines) != 1 || lines[0] != first {
		t.Fatalf("expected a single line %q, got %q", first, lines)
	}
}

// TestGreedyWrapWidthLimit 验证真实字体度量下每行宽度不超过限制。
func TestGreedyWrapWidthLimit(t *testing.T) {
	r := NewRenderer("go-regular")
	measure := layout.MeasureAt(r, 11)
	limit := 120.0
	content := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa and some ordinary words after it"
	lines := layout.WrapLine(content, limit, measure)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %q", lines)
	}
	for i, ln := range lines {
		if w := measure(ln); w-limit > 1e-6 {
			t.Fatalf("line %d width exceeds limit: width=%g limit=%g", i, w, limit)
		}
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewRenderer("")
	res, err := layout.Build("11 February 2026\nABC Corp\n\nDear Hiring Manager,", layout.BuildOptions{
		Geometry: layout.DefaultGeometry(),
		Measurer: r,
		Meta:     layout.DocumentMeta{Title: "Cover Letter", Creator: "cover-letter-tool"},
	})
	if err != nil {
		t.Fatalf("排版失败: %v", err)
	}
	data, err := r.Render(res)
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 16)])
	}
}

func TestRenderRejectsNil(t *testing.T) {
	if _, err := NewRenderer("").Render(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
}

func TestUnknownFontFailsRender(t *testing.T) {
	r := NewRenderer("no-such-font")
	res := &layout.Result{
		Page: layout.Page{Width: layout.A4Width, Height: layout.A4Height},
		Font: layout.FontSpec{Size: 11, LineHeight: 14.5},
	}
	_, err := r.Render(res)
	if err == nil || !strings.Contains(err.Error(), "no-such-font") {
		t.Fatalf("expected font error, got %v", err)
	}
}
