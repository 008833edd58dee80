// Package fpdfrenderer draws layout results with the PDF core Helvetica font.
//
// Core fonts are not embedded and only cover the Windows-1252 repertoire;
// characters outside it measure and render as a substitute glyph. Use the
// canvas renderer when the letter contains such characters.
package fpdfrenderer

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"codeberg.org/go-pdf/fpdf"

	"github.com/wohhie/cover-letter-tool/layout"
	"github.com/wohhie/cover-letter-tool/renderer"
)

const coreFont = "Helvetica"

// Renderer measures and draws with fpdf's built-in Helvetica metrics.
type Renderer struct {
	mu        sync.Mutex
	measurer  *fpdf.Fpdf
	translate func(string) string
}

var _ renderer.FixedLayout = (*Renderer)(nil)

// NewRenderer creates a core-font renderer.
func NewRenderer() *Renderer {
	m := fpdf.New("P", "pt", "A4", "")
	m.SetFont(coreFont, "", layout.DefaultFontSize)
	return &Renderer{
		measurer:  m,
		translate: m.UnicodeTranslatorFromDescriptor(""),
	}
}

// TextWidth 实现 layout.Measurer，单位 pt。文本先转为 cp1252 再测量，与绘制保持一致。
func (r *Renderer) TextWidth(text string, fontSize float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.measurer.SetFontSize(fontSize)
	return r.measurer.GetStringWidth(r.translate(text))
}

// Render renders the single-page result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	page := result.Page
	if page.Width <= 0 || page.Height <= 0 {
		return nil, fmt.Errorf("页面尺寸无效")
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: page.Width, Ht: page.Height},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	applyMeta(doc, result.Meta)

	doc.AddPage()
	doc.SetFont(coreFont, "", result.Font.Size)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	for _, line := range page.Lines {
		if strings.TrimSpace(line.Content) == "" {
			continue
		}
		// fpdf 的 y 轴自上而下，排版结果的基线以页面底部为原点
		doc.Text(line.X, page.Height-line.Y, tr(line.Content))
	}

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("生成 PDF 失败: %w", err)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func applyMeta(doc *fpdf.Fpdf, meta layout.DocumentMeta) {
	doc.SetTitle(meta.Title, true)
	doc.SetSubject(meta.Subject, true)
	doc.SetAuthor(meta.Author, true)
	doc.SetCreator(meta.Creator, true)
	if len(meta.Keywords) > 0 {
		doc.SetKeywords(strings.Join(meta.Keywords, ", "), true)
	}
}
