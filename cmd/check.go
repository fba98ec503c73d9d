package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/egoavara/astra-launcher/internal/console"
)

var checkYes bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check for updates and install them",
	Long: `Check whether a newer Astra release is available. When one is found
the release notes are shown and you are asked whether to install it.

Example:
  astra-launcher check
  astra-launcher check --yes`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVarP(&checkYes, "yes", "y", false, "install the update without asking")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	l, _, closeFn := newLauncher(cmd.Flags(), true)
	defer closeFn()

	c := console.New(cmd.OutOrStdout(), os.Stdin)
	return c.Check(ctx, l, console.CheckOptions{AssumeYes: checkYes})
}
