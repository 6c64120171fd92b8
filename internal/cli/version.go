package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhuilla/gate"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "gate %s\n", gate.Version)
		},
	}
}
