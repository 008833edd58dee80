// Package docxrenderer writes the rendered letter as a flowable WordprocessingML
// document: one <w:p> per paragraph, hard breaks as <w:br/>, and justified
// alignment for long body paragraphs.
package docxrenderer

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wohhie/cover-letter-tool/layout"
)

// DefaultFont 是 DOCX 正文使用的字体名，由 Word 在打开时解析。
const DefaultFont = "Calibri"

// Options configures the DOCX writer.
type Options struct {
	Geometry         layout.Geometry
	JustifyThreshold int
	FontName         string
	Meta             layout.DocumentMeta
}

// Writer 把渲染后的信件文本转为 DOCX。
type Writer struct {
	opts Options
}

// NewWriter creates a writer; zero-valued options fall back to the A4 defaults.
func NewWriter(opts Options) *Writer {
	if opts.Geometry.Width <= 0 {
		opts.Geometry = layout.DefaultGeometry()
	}
	if opts.JustifyThreshold <= 0 {
		opts.JustifyThreshold = layout.DefaultJustifyThreshold
	}
	if opts.FontName == "" {
		opts.FontName = DefaultFont
	}
	return &Writer{opts: opts}
}

// Render 返回 DOCX 文件的字节数据。
func (w *Writer) Render(doc string) ([]byte, error) {
	var buf bytes.Buffer
	if err := w.Write(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write 将 DOCX 包写入 out。
func (w *Writer) Write(out io.Writer, doc string) error {
	documentPart, err := marshalPart(w.document(doc))
	if err != nil {
		return fmt.Errorf("生成 document.xml 失败: %w", err)
	}
	corePart, err := marshalPart(w.coreProps())
	if err != nil {
		return fmt.Errorf("生成 core.xml 失败: %w", err)
	}

	zw := zip.NewWriter(out)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"word/document.xml", documentPart},
		{"docProps/core.xml", corePart},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("写入 %s 失败: %w", p.name, err)
		}
		if _, err := f.Write(p.data); err != nil {
			return fmt.Errorf("写入 %s 失败: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("关闭 DOCX 包失败: %w", err)
	}
	return nil
}

func (w *Writer) document(doc string) documentXML {
	geo := w.opts.Geometry
	var paragraphs []paragraphXML
	for _, p := range layout.SplitParagraphs(doc) {
		paragraphs = append(paragraphs, w.paragraph(p))
	}
	margin := pageMarginXML{
		Top:    twips(geo.Margin.Top),
		Right:  twips(geo.Margin.Right),
		Bottom: twips(geo.Margin.Bottom),
		Left:   twips(geo.Margin.Left),
		Header: twips(geo.Margin.Top / 2),
		Footer: twips(geo.Margin.Bottom / 2),
	}
	return documentXML{
		XmlnsW: nsW,
		Body: bodyXML{
			Paragraphs: paragraphs,
			Section: sectionXML{
				PageSize:   pageSizeXML{W: twips(geo.Width), H: twips(geo.Height)},
				PageMargin: margin,
			},
		},
	}
}

func (w *Writer) paragraph(p string) paragraphXML {
	geo := w.opts.Geometry
	halfPoints := fmt.Sprint(int(math.Round(geo.FontSize * 2)))
	props := runPropsXML{
		Fonts:  fontsXML{ASCII: w.opts.FontName, HAnsi: w.opts.FontName, CS: w.opts.FontName},
		Size:   valXML{Val: halfPoints},
		SizeCS: valXML{Val: halfPoints},
	}

	var runs []runXML
	for i, segment := range layout.HardBreaks(p) {
		run := runXML{Properties: props, Text: textXML{Value: segment}}
		if segment != strings.TrimSpace(segment) {
			run.Text.Space = "preserve"
		}
		if i > 0 {
			run.Break = &breakXML{}
		}
		runs = append(runs, run)
	}

	jc := "left"
	if layout.AlignmentFor(p, w.opts.JustifyThreshold) == layout.AlignJustify {
		jc = "both"
	}
	return paragraphXML{
		Properties: paragraphPropsXML{
			Spacing:       spacingXML{After: twips(geo.LineHeight), Line: twips(geo.LineHeight), LineRule: "atLeast"},
			Justification: valXML{Val: jc},
		},
		Runs: runs,
	}
}

func (w *Writer) coreProps() corePropsXML {
	meta := w.opts.Meta
	return corePropsXML{
		XmlnsCP:      nsCP,
		XmlnsDC:      nsDC,
		XmlnsDCTerms: nsDCTerms,
		XmlnsXSI:     nsXSI,
		Title:        meta.Title,
		Subject:      meta.Subject,
		Creator:      meta.Creator,
		Keywords:     strings.Join(meta.Keywords, ", "),
	}
}

func marshalPart(v any) ([]byte, error) {
	data, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}

func twips(pt float64) int { return int(math.Round(pt * 20)) }
