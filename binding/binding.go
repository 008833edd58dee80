package binding

import (
	"regexp"
	"strings"
	"time"

	"github.com/wohhie/cover-letter-tool/dsl"
)

// Values 是字段名到字段值的映射，缺失的键按空串处理。
type Values map[string]string

// 模板识别的占位符名称。
const (
	KeyDate                = "date"
	KeyEmployerName        = "employerName"
	KeyCompanyName         = "companyName"
	KeyCompanyAddressLine1 = "companyAddressLine1"
	KeyCompanyAddressLine2 = "companyAddressLine2"
	KeyPosition            = "position"
)

// Keys lists the recognised placeholder names in template order.
var Keys = []string{
	KeyDate,
	KeyEmployerName,
	KeyCompanyName,
	KeyCompanyAddressLine1,
	KeyCompanyAddressLine2,
	KeyPosition,
}

var (
	blankRunPattern  = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)
	canonicalDate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	lineEndingFolder = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// CanonicalDateLayout 是日期字段的规范存储格式。
const CanonicalDateLayout = "2006-01-02"

// longDateLayout 固定为 en-GB 长日期格式，例如 "11 February 2026"。
const longDateLayout = "2 January 2006"

// Substitute 将模板中的 {{ident}} 替换为 values 中的值，缺失时替换为空串。
// 不符合标识符规则的花括号原样保留。
func Substitute(template string, values Values) string {
	tpl, err := dsl.ParseString(template)
	if err != nil {
		// 词法规则覆盖全部输入，不会走到这里。
		return template
	}
	return tpl.Execute(func(name string) (string, bool) {
		return values[name], true
	})
}

// NormalizeBlankLines 统一换行符为 \n，并把两个及以上连续空行压缩为一个空行。
// 空行允许只包含空格或制表符。函数是幂等的。
func NormalizeBlankLines(text string) string {
	text = lineEndingFolder.Replace(text)
	return blankRunPattern.ReplaceAllString(text, "\n\n")
}

// Render 串联替换与空行规范化，得到最终的信件文本。
func Render(template string, values Values) string {
	return NormalizeBlankLines(Substitute(template, values))
}

// FormatDate 将 YYYY-MM-DD 格式的日期转为长日期；其它输入视为旧数据原样返回。
func FormatDate(value string) string {
	if !canonicalDate.MatchString(value) {
		return value
	}
	t, err := time.Parse(CanonicalDateLayout, value)
	if err != nil {
		return value
	}
	return t.Format(longDateLayout)
}
