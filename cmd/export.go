package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wohhie/cover-letter-tool/app"
	"github.com/wohhie/cover-letter-tool/layout"
	"github.com/wohhie/cover-letter-tool/renderer/plaintext"
)

func newExportCmd(o *rootOptions) *cobra.Command {
	var (
		out       string
		assumeYes bool
	)
	cmd := &cobra.Command{
		Use:   "export [text|pdf|docx]",
		Short: "Export the letter as plain text, PDF or DOCX",
		Long: `Export the filled letter. The file is named CoverLetter_<Company>_<Position>.<ext>
and written to output.dir unless --out is given; --out - writes to stdout.

The PDF is a single A4 page. When the letter is longer than one page you are
asked whether to export the truncated page; --yes accepts without asking.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"text", "pdf", "docx"},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "pdf"
			if len(args) == 1 {
				name = args[0]
			}
			format, err := app.ParseFormat(name)
			if err != nil {
				return err
			}

			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.app.Export(cmd.Context(), format, confirmOverflow(cmd, assumeYes))
			if err != nil {
				return err
			}
			switch res.Status {
			case app.StatusBlocked:
				return nil
			case app.StatusCancelled:
				fmt.Fprintln(cmd.ErrOrStderr(), "Export cancelled.")
				return nil
			}
			return writeArtifact(cmd, res.Artifact, out, s.cfg.Output.Dir)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file path (- for stdout)")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "export a truncated PDF without asking")
	cmd.Flags().StringVar(&o.debugPath, "debug", "", "write the PDF layout as JSON to this file")
	return cmd
}

// confirmOverflow 在终端中询问是否导出截断的 PDF；非交互环境下只有 --yes 才继续。
func confirmOverflow(cmd *cobra.Command, assumeYes bool) app.ConfirmFunc {
	return func(ctx context.Context, res *layout.Result) bool {
		msg := fmt.Sprintf("The letter does not fit on one page; %d line(s) will be cut off. Export anyway?", len(res.Dropped))
		if assumeYes {
			return true
		}
		if !interactive() {
			fmt.Fprintln(cmd.ErrOrStderr(), msg, "(re-run with --yes to accept)")
			return false
		}
		ok, err := askConfirm(ctx, msg, false)
		return err == nil && ok
	}
}

func writeArtifact(cmd *cobra.Command, art *app.Artifact, out, dir string) error {
	if out == "-" {
		if art.MediaType == app.FormatText.MediaType() {
			return plaintext.Write(cmd.OutOrStdout(), string(art.Data))
		}
		_, err := cmd.OutOrStdout().Write(art.Data)
		return err
	}
	path := out
	if path == "" {
		path = filepath.Join(dir, art.Filename)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "已生成：%s\n", path)
	return nil
}
