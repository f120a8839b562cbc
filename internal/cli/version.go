package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/quantityfield/internal/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// The root pre-run loads config, which version does not need.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(c *cobra.Command, _ []string) {
			fmt.Fprintf(c.OutOrStdout(), "quantityctl %s\n", version.String())
		},
	}
}
