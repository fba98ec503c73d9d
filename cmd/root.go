package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/egoavara/astra-launcher/internal/config"
	"github.com/egoavara/astra-launcher/internal/gateway"
	"github.com/egoavara/astra-launcher/internal/launcher"
	"github.com/egoavara/astra-launcher/internal/logger"
	"github.com/egoavara/astra-launcher/internal/tui"
)

var (
	rootCmd = &cobra.Command{
		Use:           "astra-launcher",
		Short:         "Launcher for the Astra game",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `astra-launcher checks for Astra updates, installs them and
launches the game. Without a command it opens the interactive launcher.

The native backend must be running; it performs the downloads and starts
the game process. Its address is taken from backend.url in the config
file or from --backend.

Commands:
  check    Check for updates and optionally install them
  launch   Launch the installed game
  config   Manage launcher configuration
  version  Print the version information`,
		RunE: runInteractive,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("backend", "", "backend IPC endpoint (overrides backend.url)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (overrides log.level)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	// The terminal belongs to the UI, so log to the file only
	l, log, closeFn := newLauncher(cmd.Flags(), false)
	defer closeFn()

	log.Info().Msg("Starting interactive launcher")
	return tui.Run(ctx, l)
}

// newLauncher wires a launcher to the configured backend. Console logging
// is only enabled for the non-interactive commands.
func newLauncher(flags *pflag.FlagSet, consoleLog bool) (*launcher.Launcher, *zerolog.Logger, func()) {
	cfg := config.Get()

	log := logger.Create(logger.Config{
		Console:   consoleLog,
		Directory: cfg.Log.Directory,
		MinLevel:  override(flags, "log-level", cfg.Log.Level),
	})

	client := gateway.NewClient(override(flags, "backend", cfg.Backend.URL), log)
	l := launcher.New(client, log)

	return l, log, func() {
		_ = l.Close()
		_ = client.Close()
	}
}

// override returns the flag's value when it was set on the command line
func override(flags *pflag.FlagSet, name, value string) string {
	if f := flags.Lookup(name); f != nil && f.Changed {
		return f.Value.String()
	}
	return value
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
