package dsl

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	// 占位符规则必须排在最前：词法器按顺序尝试，{{ 不构成占位符时退化为单个 Brace。
	templateLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Placeholder", Pattern: `\{\{\s*[A-Za-z0-9_]+\s*\}\}`},
		{Name: "Text", Pattern: `[^{]+`},
		{Name: "Brace", Pattern: `\{`},
	})

	templateParser = participle.MustBuild[Template](
		participle.Lexer(templateLexer),
	)
)

// Template 是模板文本的语法树：纯文本片段与占位符交替出现。
type Template struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Segments []*Segment     `parser:"@@*"`
}

// Segment 要么是原样输出的文本，要么是一个 {{ident}} 占位符。
type Segment struct {
	Placeholder *string `parser:"  @Placeholder"`
	Text        *string `parser:"| @( Text | Brace )"`
}

// Name 返回占位符中去掉花括号与空白后的标识符；文本片段返回空串。
func (s *Segment) Name() string {
	if s == nil || s.Placeholder == nil {
		return ""
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(*s.Placeholder, "{{"), "}}")
	return strings.TrimSpace(raw)
}

// IsPlaceholder reports whether the segment is a placeholder token.
func (s *Segment) IsPlaceholder() bool { return s != nil && s.Placeholder != nil }

// Literal 返回文本片段内容。
func (s *Segment) Literal() string {
	if s == nil || s.Text == nil {
		return ""
	}
	return *s.Text
}

// Placeholders 按首次出现顺序返回模板引用的全部标识符（去重）。
func (t *Template) Placeholders() []string {
	if t == nil {
		return nil
	}
	seen := map[string]bool{}
	var names []string
	for _, seg := range t.Segments {
		if !seg.IsPlaceholder() {
			continue
		}
		name := seg.Name()
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Execute 逐段输出模板，占位符通过 lookup 取值；lookup 返回 false 时替换为空串。
func (t *Template) Execute(lookup func(name string) (string, bool)) string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	for _, seg := range t.Segments {
		if !seg.IsPlaceholder() {
			b.WriteString(seg.Literal())
			continue
		}
		if lookup == nil {
			continue
		}
		if val, ok := lookup(seg.Name()); ok {
			b.WriteString(val)
		}
	}
	return b.String()
}

// Parse 从 reader 读取模板并解析。
func Parse(r io.Reader) (*Template, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("读取模板失败: %w", err)
	}
	return ParseString(string(data))
}

// ParseString 解析模板字符串。空模板得到没有片段的 Template。
func ParseString(src string) (*Template, error) {
	if src == "" {
		return &Template{}, nil
	}
	tpl, err := templateParser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("解析模板失败: %w", err)
	}
	return tpl, nil
}
