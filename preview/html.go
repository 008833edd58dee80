package preview

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wohhie/cover-letter-tool/layout"
)

// Options configures the HTML preview.
type Options struct {
	Title            string
	JustifyThreshold int
	Geometry         layout.Geometry
}

func (o Options) withDefaults() Options {
	if o.JustifyThreshold <= 0 {
		o.JustifyThreshold = layout.DefaultJustifyThreshold
	}
	if o.Geometry.Width <= 0 {
		o.Geometry = layout.DefaultGeometry()
	}
	if o.Title == "" {
		o.Title = "Cover Letter Preview"
	}
	return o
}

var letterPolicy = newLetterPolicy()

// newLetterPolicy 只放行预览会生成的元素与属性。
func newLetterPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("article", "p", "br")
	p.AllowAttrs("class").OnElements("article")
	p.AllowStyles("text-align").MatchingEnum("left", "justify").OnElements("p")
	p.AllowStandardURLs()
	p.AllowURLSchemes("http", "https")
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// RenderHTML 把信件渲染成 <article> 片段：每段一个 <p>，段内硬换行为 <br>，
// 每行的第一个 LinkedIn 链接转为超链接。
func RenderHTML(doc string, opts Options) (string, error) {
	opts = opts.withDefaults()
	article := element(atom.Article, html.Attribute{Key: "class", Val: "letter"})
	for _, p := range layout.SplitParagraphs(doc) {
		article.AppendChild(paragraphNode(p, opts.JustifyThreshold))
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, article); err != nil {
		return "", fmt.Errorf("渲染预览失败: %w", err)
	}
	return letterPolicy.Sanitize(buf.String()), nil
}

func paragraphNode(p string, threshold int) *html.Node {
	align := layout.AlignmentFor(p, threshold)
	node := element(atom.P, html.Attribute{Key: "style", Val: "text-align: " + string(align)})
	for i, line := range layout.HardBreaks(p) {
		if i > 0 {
			node.AppendChild(element(atom.Br))
		}
		link, ok := DetectLink(line)
		if !ok {
			node.AppendChild(text(line))
			continue
		}
		if link.Before != "" {
			node.AppendChild(text(link.Before))
		}
		a := element(atom.A, html.Attribute{Key: "href", Val: link.URL})
		a.AppendChild(text(link.URL))
		node.AppendChild(a)
		if link.After != "" {
			node.AppendChild(text(link.After))
		}
	}
	return node
}

// RenderPage 生成完整的预览页面。页面内脚本在加载与窗口尺寸变化时
// 比较内容高度与容器高度，切换溢出提示；overflow 为服务端估算的初始值。
func RenderPage(doc string, overflow bool, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	fragment, err := RenderHTML(doc, opts)
	if err != nil {
		return nil, err
	}

	sheet := element(atom.Div,
		html.Attribute{Key: "class", Val: "sheet"},
		html.Attribute{Key: "data-overflow", Val: fmt.Sprint(overflow)},
	)
	nodes, err := html.ParseFragment(strings.NewReader(fragment), sheet)
	if err != nil {
		return nil, fmt.Errorf("解析预览片段失败: %w", err)
	}
	for _, n := range nodes {
		sheet.AppendChild(n)
	}

	warning := element(atom.P, html.Attribute{Key: "class", Val: "overflow-warning"})
	warning.AppendChild(text("The letter is longer than one page; the PDF export will be truncated."))

	style := element(atom.Style)
	style.AppendChild(text(pageCSS(opts.Geometry)))
	script := element(atom.Script)
	script.AppendChild(text(overflowScript))
	title := element(atom.Title)
	title.AppendChild(text(opts.Title))
	meta := element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"})

	head := element(atom.Head)
	head.AppendChild(meta)
	head.AppendChild(title)
	head.AppendChild(style)

	body := element(atom.Body)
	body.AppendChild(warning)
	body.AppendChild(sheet)
	body.AppendChild(script)

	root := element(atom.Html, html.Attribute{Key: "lang", Val: "en"})
	root.AppendChild(head)
	root.AppendChild(body)

	document := &html.Node{Type: html.DocumentNode}
	document.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	document.AppendChild(root)

	var buf bytes.Buffer
	if err := html.Render(&buf, document); err != nil {
		return nil, fmt.Errorf("渲染预览页面失败: %w", err)
	}
	return buf.Bytes(), nil
}

func pageCSS(geo layout.Geometry) string {
	return fmt.Sprintf(`body{background:#e5e5e5;margin:0;padding:24px;font-family:Helvetica,Arial,sans-serif}
.sheet{box-sizing:border-box;background:#fff;margin:0 auto;width:%.2fpt;height:%.2fpt;padding:%.2fpt %.2fpt %.2fpt %.2fpt;overflow:hidden;font-size:%.2fpt;line-height:%.2fpt;box-shadow:0 1px 4px rgba(0,0,0,.3)}
.letter p{margin:0 0 %.2fpt 0}
.overflow-warning{display:none;max-width:%.2fpt;margin:0 auto 12px;padding:8px;background:#fff3cd;color:#664d03}
body.overflowing .overflow-warning{display:block}
`, geo.Width, geo.Height, geo.Margin.Top, geo.Margin.Right, geo.Margin.Bottom, geo.Margin.Left,
		geo.FontSize, geo.LineHeight, geo.LineHeight, geo.Width)
}

const overflowScript = `(function(){
var sheet=document.querySelector('.sheet');
function check(){
var over=sheet.scrollHeight>sheet.clientHeight+1;
sheet.setAttribute('data-overflow',over?'true':'false');
document.body.classList.toggle('overflowing',over);
}
window.addEventListener('resize',check);
check();
})();`

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
