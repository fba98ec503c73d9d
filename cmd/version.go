package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/egoavara/astra-launcher/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "astra-launcher %s\n", version.Version)
		if version.GitCommit != "" {
			fmt.Fprintf(out, "  commit: %s\n", version.GitCommit)
		}
		if version.BuildDate != "" {
			fmt.Fprintf(out, "  built:  %s\n", version.BuildDate)
		}
	},
}
