package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/wohhie/cover-letter-tool/binding"
	"github.com/wohhie/cover-letter-tool/layout"
	docxrenderer "github.com/wohhie/cover-letter-tool/renderer/docx"
	"github.com/wohhie/cover-letter-tool/renderer/plaintext"
	"github.com/wohhie/cover-letter-tool/state"
)

// Format 是导出格式。
type Format string

const (
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// ParseFormat 接受格式名或常见扩展名。
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "text", "txt", "":
		return FormatText, nil
	case "pdf":
		return FormatPDF, nil
	case "docx", "word":
		return FormatDOCX, nil
	}
	return "", fmt.Errorf("未知的导出格式 %q", s)
}

// Ext returns the filename extension for the format.
func (f Format) Ext() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

// MediaType returns the MIME type of the exported artifact.
func (f Format) MediaType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Status 是导出动作的结局。Blocked 与 Cancelled 都没有副作用。
type Status int

const (
	StatusDone Status = iota
	StatusBlocked
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusBlocked:
		return "blocked"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Artifact 是导出的文件。
type Artifact struct {
	Filename  string
	MediaType string
	Data      []byte
}

// Result 描述一次导出或复制。
type Result struct {
	Status   Status
	Artifact *Artifact
	// Missing 列出阻止导出的必填字段。
	Missing []string
	// Overflow 为 true 时 PDF 内容超出单页，Dropped 为被截掉的行。
	Overflow bool
	Dropped  []string
	Copied   bool
}

// ConfirmFunc 在 PDF 内容超出单页时询问是否继续导出截断后的结果。
type ConfirmFunc func(ctx context.Context, res *layout.Result) bool

// Task 是一次进行中的导出。
type Task struct {
	done chan struct{}
	res  Result
	err  error
}

// Done is closed when the export finishes.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait 等待导出完成。导出不可取消，ctx 只影响等待本身。
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.res, t.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Start 基于当前状态的快照开始导出。已有导出在进行时返回 ErrBusy。
func (a *App) Start(ctx context.Context, format Format, confirm ConfirmFunc) (*Task, error) {
	if !a.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	rec := a.Record()
	t := &Task{done: make(chan struct{})}
	go func() {
		t.res, t.err = a.export(context.WithoutCancel(ctx), rec, format, confirm)
		a.busy.Store(false)
		close(t.done)
	}()
	return t, nil
}

// Export 开始导出并等待结果。
func (a *App) Export(ctx context.Context, format Format, confirm ConfirmFunc) (Result, error) {
	t, err := a.Start(ctx, format, confirm)
	if err != nil {
		return Result{}, err
	}
	return t.Wait(ctx)
}

// Copier 接收纯文本，返回是否送达。
type Copier interface {
	Copy(doc string) bool
}

// Copy 把信件文本交给 c；必填字段缺失时不做任何事。
func (a *App) Copy(ctx context.Context, c Copier) Result {
	rec := a.Record()
	if missing := Missing(rec.Fields); len(missing) > 0 {
		a.notify(missingNotice(missing))
		return Result{Status: StatusBlocked, Missing: missing}
	}
	doc := binding.Render(rec.Template, Values(rec.Fields))
	copied := c.Copy(doc)
	if copied {
		a.notify("Copied to clipboard")
	}
	a.logger.InfoContext(ctx, "复制信件", "copied", copied)
	return Result{Status: StatusDone, Copied: copied}
}

func (a *App) layout(rec state.Record, doc string) (*layout.Result, error) {
	if a.opts.Fixed == nil {
		return nil, fmt.Errorf("未配置 PDF 渲染后端")
	}
	return layout.Build(doc, layout.BuildOptions{
		Geometry: a.opts.Geometry,
		Measurer: a.opts.Fixed,
		Meta:     documentMeta(rec.Fields),
	})
}

func (a *App) export(ctx context.Context, rec state.Record, format Format, confirm ConfirmFunc) (Result, error) {
	if missing := Missing(rec.Fields); len(missing) > 0 {
		a.notify(missingNotice(missing))
		a.logger.DebugContext(ctx, "必填字段缺失，跳过导出", "missing", missing)
		return Result{Status: StatusBlocked, Missing: missing}, nil
	}

	doc := binding.Render(rec.Template, Values(rec.Fields))
	var (
		data []byte
		res  Result
	)
	switch format {
	case FormatText:
		data = plaintext.Render(doc)
	case FormatDOCX:
		w := docxrenderer.NewWriter(docxrenderer.Options{
			Geometry:         a.opts.Geometry,
			JustifyThreshold: a.opts.JustifyThreshold,
			FontName:         a.opts.DocxFont,
			Meta:             documentMeta(rec.Fields),
		})
		out, err := w.Render(doc)
		if err != nil {
			return Result{}, fmt.Errorf("生成 DOCX 失败: %w", err)
		}
		data = out
	case FormatPDF:
		lr, err := a.layout(rec, doc)
		if err != nil {
			return Result{}, fmt.Errorf("布局计算失败: %w", err)
		}
		res.Overflow, res.Dropped = lr.Overflow, lr.Dropped
		if lr.Overflow {
			if confirm == nil || !confirm(ctx, lr) {
				res.Status = StatusCancelled
				return res, nil
			}
			a.logger.WarnContext(ctx, "内容超出单页，导出截断后的 PDF", "dropped", len(lr.Dropped))
		}
		// 取消的导出不留下任何文件，调试输出也一样
		if a.opts.DebugPath != "" {
			if err := layout.WriteDebugJSON(lr, a.opts.DebugPath); err != nil {
				a.logger.WarnContext(ctx, "写入排版调试文件失败", "path", a.opts.DebugPath, "error", err)
			}
		}
		out, err := a.opts.Fixed.Render(lr)
		if err != nil {
			return Result{}, fmt.Errorf("渲染 PDF 失败: %w", err)
		}
		data = out
	default:
		return Result{}, fmt.Errorf("未知的导出格式 %q", format)
	}

	res.Status = StatusDone
	res.Artifact = &Artifact{
		Filename:  binding.Filename(rec.Fields.EmployerCompanyName, rec.Fields.Position, format.Ext()),
		MediaType: format.MediaType(),
		Data:      data,
	}
	a.logger.InfoContext(ctx, "导出完成", "format", string(format), "file", res.Artifact.Filename, "bytes", len(data))
	return res, nil
}

func documentMeta(f state.Fields) layout.DocumentMeta {
	return layout.DocumentMeta{
		Title:   "Cover Letter – " + f.EmployerCompanyName,
		Subject: f.Position,
		Creator: "cover-letter-tool",
	}
}
