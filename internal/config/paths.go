package config

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

var (
	homeDir string
)

func init() {
	var err error
	homeDir, err = homedir.Dir()
	if err != nil {
		homeDir = "~"
	}
}

// LauncherDir returns the astra-launcher config directory path
// ~/.config/astra-launcher/
func LauncherDir() string {
	return filepath.Join(homeDir, ".config", "astra-launcher")
}

// ConfigPath returns the config.json file path
// ~/.config/astra-launcher/config.json
func ConfigPath() string {
	return filepath.Join(LauncherDir(), "config.json")
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

func dirOf(path string) string {
	return filepath.Dir(path)
}
