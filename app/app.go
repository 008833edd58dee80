// Package app owns the application state record and drives every export
// from it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wohhie/cover-letter-tool/binding"
	"github.com/wohhie/cover-letter-tool/layout"
	"github.com/wohhie/cover-letter-tool/logging"
	"github.com/wohhie/cover-letter-tool/renderer"
	"github.com/wohhie/cover-letter-tool/state"
)

var (
	ErrBusy           = errors.New("app: an export is already running")
	ErrTemplateLocked = errors.New("app: template is locked, unlock editing first")
	ErrUnknownField   = errors.New("app: unknown field")
)

// 表单字段名，与持久化记录的 JSON 键一致。
const (
	FieldDate                = "date"
	FieldEmployerCompanyName = "employerCompanyName"
	FieldCompanyAddressLine1 = "companyAddressLine1"
	FieldCompanyAddressLine2 = "companyAddressLine2"
	FieldPosition            = "position"
)

// FieldNames 按表单顺序列出可编辑字段。
var FieldNames = []string{
	FieldDate,
	FieldEmployerCompanyName,
	FieldCompanyAddressLine1,
	FieldCompanyAddressLine2,
	FieldPosition,
}

// FieldLabels 是字段在提示与通知中的显示名。
var FieldLabels = map[string]string{
	FieldDate:                "Date",
	FieldEmployerCompanyName: "Company name",
	FieldCompanyAddressLine1: "Address line 1",
	FieldCompanyAddressLine2: "Address line 2",
	FieldPosition:            "Position",
}

// requiredFields 为空时阻止一切导出与复制。
var requiredFields = []string{FieldEmployerCompanyName, FieldPosition}

// Options 配置 App。零值字段使用默认值。
type Options struct {
	Geometry         layout.Geometry
	JustifyThreshold int
	// Fixed 是 PDF 后端；为 nil 时导出 PDF 会报错。
	Fixed    renderer.FixedLayout
	DocxFont string
	// DebugPath 非空时，每次 PDF 排版后写出排版 JSON。
	DebugPath string
	Clock     func() time.Time
	Logger    *slog.Logger
	// Notify 接收短暂提示，例如必填字段缺失。
	Notify func(msg string)
}

// App 是唯一的应用状态持有者，状态只通过 SetField / Reset / ToggleEdit /
// SetTemplate 变化，每次变化后写回 Store。
type App struct {
	opts   Options
	store  state.Store
	logger *slog.Logger

	mu  sync.RWMutex
	rec state.Record

	busy atomic.Bool
}

// New 从 store 加载状态；记录缺失或损坏时使用默认状态。
func New(ctx context.Context, store state.Store, opts Options) *App {
	if opts.Geometry.Width <= 0 {
		opts.Geometry = layout.DefaultGeometry()
	}
	if opts.JustifyThreshold <= 0 {
		opts.JustifyThreshold = layout.DefaultJustifyThreshold
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	a := &App{opts: opts, store: store, logger: logger}
	rec, err := state.Load(ctx, store)
	if err != nil {
		if !errors.Is(err, state.ErrNotFound) {
			logger.Debug("读取已保存状态失败，使用默认状态", "error", err)
		}
		rec = state.Default(a.today())
	}
	a.rec = rec
	return a
}

func (a *App) today() string {
	return a.opts.Clock().Format(binding.CanonicalDateLayout)
}

// Record returns a snapshot of the current state.
func (a *App) Record() state.Record {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rec
}

// SetField 修改一个字段并保存。旧字段名 employerName / companyName 视为 employerCompanyName。
func (a *App) SetField(ctx context.Context, name, value string) error {
	a.mu.Lock()
	f := &a.rec.Fields
	switch name {
	case FieldDate:
		f.Date = value
	case FieldEmployerCompanyName, binding.KeyEmployerName, binding.KeyCompanyName:
		f.EmployerCompanyName = value
	case FieldCompanyAddressLine1:
		f.CompanyAddressLine1 = value
	case FieldCompanyAddressLine2:
		f.CompanyAddressLine2 = value
	case FieldPosition:
		f.Position = value
	default:
		a.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	rec := a.rec
	a.mu.Unlock()

	a.save(ctx, rec)
	return nil
}

// SetFields 批量应用 values 中出现的字段。旧字段名只在 employerCompanyName
// 缺失时生效，companyName 优先于 employerName。
func (a *App) SetFields(ctx context.Context, values map[string]string) error {
	for name := range values {
		if _, ok := FieldLabels[name]; ok {
			continue
		}
		if name != binding.KeyEmployerName && name != binding.KeyCompanyName {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}

	for _, name := range FieldNames {
		if v, ok := values[name]; ok {
			if err := a.SetField(ctx, name, v); err != nil {
				return err
			}
		}
	}
	if _, ok := values[FieldEmployerCompanyName]; ok {
		return nil
	}
	for _, alias := range []string{binding.KeyCompanyName, binding.KeyEmployerName} {
		if v, ok := values[alias]; ok {
			return a.SetField(ctx, alias, v)
		}
	}
	return nil
}

// Reset 清空表单字段并把日期设为今天；模板与编辑锁不变。
func (a *App) Reset(ctx context.Context) {
	a.mu.Lock()
	a.rec.Fields = state.Fields{Date: a.today()}
	rec := a.rec
	a.mu.Unlock()
	a.save(ctx, rec)
}

// ToggleEdit 切换模板编辑锁，返回切换后是否可编辑。
func (a *App) ToggleEdit(ctx context.Context) bool {
	a.mu.Lock()
	a.rec.EditUnlocked = !a.rec.EditUnlocked
	rec := a.rec
	a.mu.Unlock()
	a.save(ctx, rec)
	return rec.EditUnlocked
}

// SetTemplate 替换模板，只在解锁编辑后允许。
func (a *App) SetTemplate(ctx context.Context, tpl string) error {
	a.mu.Lock()
	if !a.rec.EditUnlocked {
		a.mu.Unlock()
		return ErrTemplateLocked
	}
	a.rec.Template = tpl
	rec := a.rec
	a.mu.Unlock()
	a.save(ctx, rec)
	return nil
}

// RestoreTemplate 恢复内置模板，同样受编辑锁约束。
func (a *App) RestoreTemplate(ctx context.Context) error {
	return a.SetTemplate(ctx, binding.DefaultTemplate)
}

// save 写回状态；失败不影响内存中的状态，只记 debug 日志。
func (a *App) save(ctx context.Context, rec state.Record) {
	if a.store == nil {
		return
	}
	if err := state.Save(ctx, a.store, rec); err != nil {
		a.logger.Debug("保存状态失败", "error", err)
	}
}

// Values 生成模板占位符的取值：employerName 与 companyName 同源，日期按长格式渲染。
func Values(f state.Fields) binding.Values {
	return binding.Values{
		binding.KeyDate:                binding.FormatDate(f.Date),
		binding.KeyEmployerName:        f.EmployerCompanyName,
		binding.KeyCompanyName:         f.EmployerCompanyName,
		binding.KeyCompanyAddressLine1: f.CompanyAddressLine1,
		binding.KeyCompanyAddressLine2: f.CompanyAddressLine2,
		binding.KeyPosition:            f.Position,
	}
}

// Document 返回当前状态渲染出的信件文本。
func (a *App) Document() string {
	rec := a.Record()
	return binding.Render(rec.Template, Values(rec.Fields))
}

// Missing 返回为空的必填字段名。
func Missing(f state.Fields) []string {
	var missing []string
	for _, name := range requiredFields {
		var v string
		switch name {
		case FieldEmployerCompanyName:
			v = f.EmployerCompanyName
		case FieldPosition:
			v = f.Position
		}
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Geometry returns the page geometry used by fixed-layout exports and previews.
func (a *App) Geometry() layout.Geometry { return a.opts.Geometry }

// JustifyThreshold returns the paragraph justification threshold.
func (a *App) JustifyThreshold() int { return a.opts.JustifyThreshold }

func (a *App) notify(msg string) {
	if a.opts.Notify != nil {
		a.opts.Notify(msg)
	}
}

func missingNotice(missing []string) string {
	labels := make([]string, len(missing))
	for i, name := range missing {
		labels[i] = FieldLabels[name]
	}
	return "Please fill in the required fields: " + strings.Join(labels, ", ")
}
