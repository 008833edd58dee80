package renderer

import "github.com/wohhie/cover-letter-tool/layout"

// Renderer 将排版结果输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// FixedLayout 是固定版式后端：既提供排版用的字体度量，也负责绘制。
// 两者必须来自同一字体，否则折行结果与实际绘制宽度不一致。
type FixedLayout interface {
	Renderer
	layout.Measurer
}
