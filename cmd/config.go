package cmd

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/egoavara/astra-launcher/internal/config"
	"github.com/egoavara/astra-launcher/internal/i18n"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage astra-launcher configuration",
	Long: `Manage astra-launcher configuration settings.

Game settings such as fullscreen are stored by the backend and are
changed from the settings view of the interactive launcher.

Example:
  astra-launcher config show
  astra-launcher config set backend.url ws://127.0.0.1:8787/ipc`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Available keys:
  locale         - Language setting
                   Values: auto, en-US, ko-KR, etc.
  backend.url    - Backend IPC endpoint
                   Values: ws://host:port/path or wss://host:port/path
  log.level      - Minimum log level
                   Values: debug, info, warn, error
  log.directory  - Directory of the rolling log file (~ is expanded)

An unknown key is answered with the closest known key whose letters it
contains in order, so "loglvl" suggests log.level but a swapped-letter
typo such as "log.levle" gets no suggestion.

Example:
  astra-launcher config set locale ko-KR
  astra-launcher config set log.level debug`,
	Args:              cobra.ExactArgs(2),
	RunE:              runConfigSet,
	ValidArgsFunction: completeConfigKeys,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, i18n.T("config.title", nil))
	fmt.Fprintln(out, "----------------------------------------")
	for _, key := range config.Keys() {
		value, err := cfg.Value(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s: %s\n", key, value)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, i18n.T("config.path", map[string]interface{}{"Path": config.ConfigPath()}))

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	if err := config.SetValue(key, value); err != nil {
		var unknown *config.UnknownKeyError
		if errors.As(err, &unknown) {
			return unknownKeyError(key)
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, i18n.T("config.saved", map[string]interface{}{"Key": key, "Value": value}))
	if key == config.KeyLocale {
		fmt.Fprintln(out, i18n.T("config.restart", nil))
	}
	return nil
}

// unknownKeyError suggests the closest known key when there is one
func unknownKeyError(key string) error {
	msg := i18n.T("config.unknown_key", map[string]interface{}{"Key": key})
	if suggestion := suggestKey(key); suggestion != "" {
		msg += ". " + i18n.T("config.did_you_mean", map[string]interface{}{"Suggestion": suggestion})
	}
	return errors.New(msg)
}

func suggestKey(key string) string {
	matches := fuzzy.Find(strings.ToLower(key), config.Keys())
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

func completeConfigKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var keys []string
	for _, key := range config.Keys() {
		if strings.HasPrefix(key, toComplete) {
			keys = append(keys, key)
		}
	}
	return keys, cobra.ShellCompDirectiveNoFileComp
}
