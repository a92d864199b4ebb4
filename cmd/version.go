package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X github.com/RyanBlaney/sonido-kws/cmd.Version=..."
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeOutput(cmd.OutOrStdout(), map[string]string{
			"version":    Version,
			"go_version": runtime.Version(),
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
