package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/wohhie/cover-letter-tool/app"
)

func newSetCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set key=value...",
		Short: "Set one or more letter fields",
		Long: "Set letter fields and save them. Known fields: " + strings.Join(app.FieldNames, ", ") + `.
employerName and companyName are accepted as aliases of employerCompanyName.`,
		Example: `  cover-letter set employerCompanyName="ABC Corp" position="Administrative Assistant"
  cover-letter set date=2026-02-11`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(args)
			if err != nil {
				return err
			}
			s, err := o.openForWrite(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.app.SetFields(cmd.Context(), values)
		},
	}
}
