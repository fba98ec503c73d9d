package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/jeandeaual/go-locale"

	"github.com/egoavara/astra-launcher/cmd"
	"github.com/egoavara/astra-launcher/internal/config"
	"github.com/egoavara/astra-launcher/internal/i18n"
)

//go:embed locales/*.json
var localeFS embed.FS

func main() {
	if err := i18n.Init(localeFS, getLocale()); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	cmd.Execute()
}

// getLocale returns the locale based on config
func getLocale() string {
	configLocale := config.GetLocale()

	// If "auto", detect system locale
	if configLocale == config.LocaleAuto {
		userLocale, err := locale.GetLocale()
		if err != nil || userLocale == "" {
			return "en-US"
		}
		return i18n.Normalize(userLocale)
	}

	// Use configured locale
	return configLocale
}
