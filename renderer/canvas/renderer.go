package canvasrenderer

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/wohhie/cover-letter-tool/fonts"
	"github.com/wohhie/cover-letter-tool/layout"
	"github.com/wohhie/cover-letter-tool/renderer"
)

// Renderer draws layout results via github.com/tdewolff/canvas using one
// embedded TrueType font for both measuring and drawing.
type Renderer struct {
	font Resource

	fontMu sync.Mutex
	family *canvas.FontFamily
	faces  map[float64]*canvas.FontFace
}

var _ renderer.FixedLayout = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	// Font 为空时使用 fonts.Default。
	Font Resource
}

// Resource can be provided either by Bytes, by Path, or by an embedded font Name.
type Resource struct {
	Name  string
	Bytes []byte
	Path  string
}

// NewRenderer creates a renderer using the named embedded font.
func NewRenderer(fontName string) *Renderer {
	return NewRendererWithOptions(Options{Font: Resource{Name: fontName}})
}

// NewRendererWithOptions creates a renderer with an injected font resource.
func NewRendererWithOptions(opts Options) *Renderer {
	return &Renderer{
		font:  opts.Font,
		faces: map[float64]*canvas.FontFace{},
	}
}

// TextWidth 实现 layout.Measurer：入参与返回值均为 pt。
// canvas 的 TextWidth 返回 mm，这里在边界做 mm→pt 换算。
func (r *Renderer) TextWidth(text string, fontSize float64) float64 {
	face, err := r.fontFace(fontSize)
	if err != nil {
		// 字体不可用时按 0.5em 估算，Render 阶段会把同一错误报告出来
		return float64(len([]rune(text))) * fontSize * 0.5
	}
	return toPt(face.TextWidth(text))
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
	face, err := r.fontFace(result.Font.Size)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	widthMM, heightMM := toMm(page.Width), toMm(page.Height)
	writer := pdf.New(&buf, widthMM, heightMM, nil)
	applyMeta(writer, result.Meta)

	c := canvas.New(widthMM, heightMM)
	ctx := canvas.NewContext(c)
	// 排版坐标原点在左下角，y 轴向上，与 PDF 保持一致
	ctx.SetCoordSystem(canvas.CartesianI)
	for _, line := range page.Lines {
		if strings.TrimSpace(line.Content) == "" {
			continue
		}
		ctx.DrawText(toMm(line.X), toMm(line.Y), canvas.NewTextLine(face, line.Content, canvas.Left))
	}
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func (r *Renderer) fontFace(sizePt float64) (*canvas.FontFace, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if face, ok := r.faces[sizePt]; ok {
		return face, nil
	}
	if r.family == nil {
		family, err := r.loadFamily()
		if err != nil {
			return nil, err
		}
		r.family = family
	}
	face := r.family.Face(sizePt, canvas.Black, canvas.FontRegular, canvas.FontNormal)
	r.faces[sizePt] = face
	return face, nil
}

func (r *Renderer) loadFamily() (*canvas.FontFamily, error) {
	data, err := r.loadFontBytes()
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("cover-letter")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体失败: %w", err)
	}
	return family, nil
}

func (r *Renderer) loadFontBytes() ([]byte, error) {
	switch {
	case len(r.font.Bytes) > 0:
		return r.font.Bytes, nil
	case r.font.Path != "":
		data, err := os.ReadFile(r.font.Path)
		if err != nil {
			return nil, fmt.Errorf("读取字体 %s 失败: %w", r.font.Path, err)
		}
		return data, nil
	default:
		return fonts.Load(r.font.Name)
	}
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
