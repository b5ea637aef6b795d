package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mdescape/pkg/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cobraCmd *cobra.Command, _ []string) {
			fmt.Fprintln(cobraCmd.OutOrStdout(), version.String())
		},
	}
}
