package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wohhie/cover-letter-tool/app"
	"github.com/wohhie/cover-letter-tool/binding"
	"github.com/wohhie/cover-letter-tool/config"
	"github.com/wohhie/cover-letter-tool/layout"
	"github.com/wohhie/cover-letter-tool/preview"
)

type previewOptions struct {
	htmlPath     string
	templatePath string
	watch        bool
}

func newPreviewCmd(o *rootOptions) *cobra.Command {
	p := &previewOptions{}
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Preview the letter in the terminal or as an HTML page",
		Long: `Preview the filled letter. Paragraphs are justified the same way as the DOCX
export. --html writes a standalone page that flags overflow in the browser.

--template previews a template file without saving it. --watch re-renders
whenever the --values, --template or config file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := p.render(cmd, o, false); err != nil {
				return err
			}
			if !p.watch {
				return nil
			}

			var paths []string
			for _, path := range []string{o.valuesFile, p.templatePath, o.v.ConfigFileUsed()} {
				if path != "" {
					paths = append(paths, path)
				}
			}
			if len(paths) == 0 {
				return fmt.Errorf("--watch 需要 --values、--template 或配置文件")
			}
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			logger := s.logger
			s.Close()

			return preview.Watch(cmd.Context(), paths, preview.DefaultDebounce, func() {
				if err := config.ReadFile(o.v, o.cfgFile); err != nil {
					logger.Warn("重新读取配置失败", "error", err)
				}
				if err := p.render(cmd, o, true); err != nil {
					logger.Warn("刷新预览失败", "error", err)
				}
			}, logger)
		},
	}
	cmd.Flags().StringVar(&p.htmlPath, "html", "", "write an HTML preview page to this file")
	cmd.Flags().StringVar(&p.templatePath, "template", "", "preview this template file instead of the saved one")
	cmd.Flags().BoolVarP(&p.watch, "watch", "w", false, "re-render when input files change")
	return cmd
}

func (p *previewOptions) render(cmd *cobra.Command, o *rootOptions, redraw bool) error {
	s, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	doc := s.app.Document()
	if p.templatePath != "" {
		tpl, err := os.ReadFile(p.templatePath)
		if err != nil {
			return fmt.Errorf("读取模板失败: %w", err)
		}
		doc = binding.Render(string(tpl), app.Values(s.app.Record().Fields))
	}

	geo := s.app.Geometry()
	pageOverflow := preview.EstimateOverflow(doc, preview.ViewportFor(geo), layout.MeasureAt(s.fixed, geo.FontSize))

	if p.htmlPath != "" {
		page, err := preview.RenderPage(doc, pageOverflow, preview.Options{
			Title:            "Cover Letter – " + s.app.Record().Fields.EmployerCompanyName,
			JustifyThreshold: s.app.JustifyThreshold(),
			Geometry:         geo,
		})
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(p.htmlPath), 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
		if err := os.WriteFile(p.htmlPath, page, 0o644); err != nil {
			return fmt.Errorf("写入 %s 失败: %w", p.htmlPath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "已生成预览：%s\n", p.htmlPath)
		return nil
	}

	out := cmd.OutOrStdout()
	if redraw {
		fmt.Fprint(out, "\x1b[H\x1b[2J")
	}
	termOverflow, err := preview.RenderTerminal(out, doc, preview.TerminalOptions{
		Columns:          s.cfg.Preview.Columns,
		Rows:             s.cfg.Preview.Rows,
		JustifyThreshold: s.app.JustifyThreshold(),
		Hyperlinks:       out == os.Stdout && interactive(),
	})
	if err != nil {
		return err
	}
	s.logger.Debug("终端预览", "terminalOverflow", termOverflow, "pageOverflow", pageOverflow)
	if pageOverflow {
		fmt.Fprintln(cmd.ErrOrStderr(), "\nWarning: the letter is longer than one page; the PDF export will be truncated.")
	}
	return nil
}
