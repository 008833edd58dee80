package layout

// BuildOptions 配置排版阶段所需的依赖，例如字体度量后端。
type BuildOptions struct {
	Geometry Geometry
	Measurer Measurer
	Meta     DocumentMeta
}

// Measurer 负责在固定字体下测量文本宽度（pt）。渲染后端实现该接口，
// 保证排版时的测量与最终绘制使用同一套字体度量。
type Measurer interface {
	TextWidth(text string, fontSize float64) float64
}

// MeasureFunc 测量一段文本的渲染宽度。
type MeasureFunc func(text string) float64

// MeasureAt 把 Measurer 固定到某个字号上。
func MeasureAt(m Measurer, fontSize float64) MeasureFunc {
	return func(text string) float64 { return m.TextWidth(text, fontSize) }
}
