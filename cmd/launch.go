package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/egoavara/astra-launcher/internal/console"
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch the installed game",
	Long: `Check for updates and launch Astra when the installed version is
current. If an update is pending, run 'astra-launcher check' first.`,
	Args: cobra.NoArgs,
	RunE: runLaunch,
}

func runLaunch(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	l, _, closeFn := newLauncher(cmd.Flags(), true)
	defer closeFn()

	return console.New(cmd.OutOrStdout(), os.Stdin).Launch(ctx, l)
}
