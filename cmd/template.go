package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wohhie/cover-letter-tool/app"
	"github.com/wohhie/cover-letter-tool/binding"
	"github.com/wohhie/cover-letter-tool/dsl"
)

func newTemplateCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Show, edit or restore the letter template",
		Long: `The template uses {{placeholder}} tokens: date, employerName, companyName,
companyAddressLine1, companyAddressLine2 and position.

Editing is locked by default; run "template unlock" before "template edit".`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			_, err = io.WriteString(cmd.OutOrStdout(), s.app.Record().Template)
			return err
		},
	}

	edit := &cobra.Command{
		Use:   "edit FILE",
		Short: "Replace the template with the contents of FILE (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("读取模板失败: %w", err)
			}

			s, err := o.openForWrite(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.app.SetTemplate(cmd.Context(), string(data)); err != nil {
				if errors.Is(err, app.ErrTemplateLocked) {
					return fmt.Errorf("模板已锁定，请先运行 template unlock")
				}
				return err
			}
			warnUnknownPlaceholders(cmd, string(data))
			return nil
		},
	}

	restore := &cobra.Command{
		Use:   "restore",
		Short: "Restore the built-in template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.openForWrite(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.app.RestoreTemplate(cmd.Context())
		},
	}

	lockCmd := func(use string, want bool) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: fmt.Sprintf("%s template editing", map[bool]string{true: "Allow", false: "Disallow"}[want]),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := o.openForWrite(cmd)
				if err != nil {
					return err
				}
				defer s.Close()
				if s.app.Record().EditUnlocked != want {
					s.app.ToggleEdit(cmd.Context())
				}
				return nil
			},
		}
	}

	cmd.AddCommand(show, edit, restore, lockCmd("unlock", true), lockCmd("lock", false))
	return cmd
}

// warnUnknownPlaceholders 提示模板中不认识的占位符，它们会被替换为空串。
func warnUnknownPlaceholders(cmd *cobra.Command, tpl string) {
	parsed, err := dsl.ParseString(tpl)
	if err != nil {
		return
	}
	known := map[string]bool{}
	for _, k := range binding.Keys {
		known[k] = true
	}
	for _, name := range parsed.Placeholders() {
		if !known[name] {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: unknown placeholder {{%s}} will be left empty.\n", name)
		}
	}
}
