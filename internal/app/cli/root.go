package cli

import (
	"github.com/spf13/cobra"
)

var Version = "dev"

// NewRootCmd assembles the donationctl command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "donationctl",
		Short:         "Operational commands for the ToyLink donations service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(healthcheckCmd())
	rootCmd.AddCommand(waitForDBCmd())

	return rootCmd
}
