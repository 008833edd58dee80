package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wohhie/cover-letter-tool/state"
)

func newStateCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or reset the saved letter state",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the saved fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rec := s.app.Record()
			out, err := yaml.Marshal(struct {
				Version      int          `yaml:"version"`
				Fields       state.Fields `yaml:"fields"`
				EditUnlocked bool         `yaml:"editUnlocked"`
				Path         string       `yaml:"path"`
			}{rec.Version, rec.Fields, rec.EditUnlocked, s.cfg.State.Path})
			if err != nil {
				return fmt.Errorf("序列化状态失败: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	var all bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Clear the fields and set the date to today",
		Long: `Clear the fields and set the date to today. The template and edit lock are
kept unless --all is given, which deletes the saved record entirely.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.openForWrite(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if all {
				return s.store.Delete(cmd.Context(), state.Key)
			}
			s.app.Reset(cmd.Context())
			return nil
		},
	}
	reset.Flags().BoolVar(&all, "all", false, "also restore the default template and lock")

	cmd.AddCommand(show, reset)
	return cmd
}
