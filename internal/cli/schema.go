package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhuilla/gate/internal/config"
)

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of " + config.FileName,
		Long: `Print the JSON Schema describing ` + config.FileName + `.
Editors with YAML language support can use it for completion and validation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.SchemaJSON()
			if err != nil {
				return fmt.Errorf("encoding schema: %w", err)
			}
			fmt.Fprintf(a.stdout, "%s\n", data)
			return nil
		},
	}
}
