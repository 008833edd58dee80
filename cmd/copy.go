package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wohhie/cover-letter-tool/renderer/plaintext"
)

func newCopyCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "copy",
		Short: "Copy the letter text to the clipboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			// 两条剪贴板通道都失败时不提示，Copy 内部只记 debug 日志
			s.app.Copy(cmd.Context(), plaintext.NewClipboard(os.Stderr, s.logger))
			return nil
		},
	}
}
