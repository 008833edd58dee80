package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wohhie/cover-letter-tool/app"
	"github.com/wohhie/cover-letter-tool/state"
)

func newFillCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fill",
		Short: "Fill in the letter fields interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !interactive() {
				return fmt.Errorf("fill 需要交互终端，可改用 set key=value")
			}
			s, err := o.openForWrite(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			current := s.app.Record().Fields
			values := make(map[string]string, len(app.FieldNames))
			for _, name := range app.FieldNames {
				msg := app.FieldLabels[name] + ":"
				if name == app.FieldDate {
					msg = "Date (YYYY-MM-DD):"
				}
				v, err := askInput(cmd.Context(), msg, fieldValue(current, name), isRequired(name))
				if err != nil {
					return err
				}
				values[name] = v
			}
			return s.app.SetFields(cmd.Context(), values)
		},
	}
}

func isRequired(name string) bool {
	return name == app.FieldEmployerCompanyName || name == app.FieldPosition
}

func fieldValue(f state.Fields, name string) string {
	switch name {
	case app.FieldDate:
		return f.Date
	case app.FieldEmployerCompanyName:
		return f.EmployerCompanyName
	case app.FieldCompanyAddressLine1:
		return f.CompanyAddressLine1
	case app.FieldCompanyAddressLine2:
		return f.CompanyAddressLine2
	case app.FieldPosition:
		return f.Position
	}
	return ""
}
