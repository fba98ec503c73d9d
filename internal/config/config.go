package config

import (
	"os"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/egoavara/astra-launcher/internal/gateway"
	"github.com/egoavara/astra-launcher/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Setting keys accepted by Set
const (
	KeyLocale       = "locale"
	KeyBackendURL   = "backend.url"
	KeyLogLevel     = "log.level"
	KeyLogDirectory = "log.directory"
)

// LocaleAuto detects the system locale at startup
const LocaleAuto = "auto"

// BackendConfig locates the native backend
type BackendConfig struct {
	URL string `json:"url"` // WebSocket IPC endpoint
}

// LogConfig contains logging settings
type LogConfig struct {
	Level     string `json:"level"`     // debug, info, warn, error
	Directory string `json:"directory"` // rolling log directory, ~ is expanded
}

// Config represents the launcher settings file. The game settings
// (fullscreen) belong to the backend and are not stored here.
type Config struct {
	Locale  string        `json:"locale"` // "auto" or ISO format (e.g., "ko-KR", "en-US")
	Backend BackendConfig `json:"backend"`
	Log     LogConfig     `json:"log"`
}

// UnknownKeyError is returned by Set for a key it does not know
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return "unknown config key: " + e.Key
}

var (
	cfg     *Config
	cfgOnce sync.Once
	cfgMu   sync.RWMutex
)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Locale: LocaleAuto,
		Backend: BackendConfig{
			URL: gateway.DefaultURL,
		},
		Log: LogConfig{
			Level:     logger.DefaultLevel,
			Directory: logger.DefaultDirectory,
		},
	}
}

// Keys lists the settable keys in display order
func Keys() []string {
	return []string{KeyLocale, KeyBackendURL, KeyLogLevel, KeyLogDirectory}
}

// Load loads the configuration from the default path
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads the configuration at path. A missing file yields defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewConfig(), nil
		}
		return nil, errors.Wrap(err, "read config")
	}

	config := NewConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	defaults := NewConfig()
	if c.Locale == "" {
		c.Locale = defaults.Locale
	}
	if c.Backend.URL == "" {
		c.Backend.URL = defaults.Backend.URL
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Directory == "" {
		c.Log.Directory = defaults.Log.Directory
	}
}

// Save saves the configuration to the default path
func Save(config *Config) error {
	return SaveTo(ConfigPath(), config)
}

// SaveTo saves the configuration at path
func SaveTo(path string, config *Config) error {
	cfgMu.Lock()
	defer cfgMu.Unlock()

	if err := EnsureDir(dirOf(path)); err != nil {
		return errors.Wrap(err, "create config directory")
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Get returns the current configuration (singleton)
func Get() *Config {
	cfgOnce.Do(func() {
		loaded, err := Load()
		if err != nil {
			loaded = NewConfig()
		}
		cfgMu.Lock()
		cfg = loaded
		cfgMu.Unlock()
	})
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg
}

// Value returns the setting stored under key
func (c *Config) Value(key string) (string, error) {
	switch key {
	case KeyLocale:
		return c.Locale, nil
	case KeyBackendURL:
		return c.Backend.URL, nil
	case KeyLogLevel:
		return c.Log.Level, nil
	case KeyLogDirectory:
		return c.Log.Directory, nil
	default:
		return "", &UnknownKeyError{Key: key}
	}
}

// Set validates value and stores it under key. It does not save.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case KeyLocale:
		if value == "" {
			return errors.New("locale must not be empty")
		}
		c.Locale = value
	case KeyBackendURL:
		if !strings.HasPrefix(value, "ws://") && !strings.HasPrefix(value, "wss://") {
			return errors.Errorf("invalid value '%s' for %s. Must start with ws:// or wss://", value, key)
		}
		c.Backend.URL = value
	case KeyLogLevel:
		if _, err := logger.ParseLevel(value); err != nil || value == "" {
			return errors.Errorf("invalid value '%s' for %s. Valid values: debug, info, warn, error", value, key)
		}
		c.Log.Level = value
	case KeyLogDirectory:
		if value == "" {
			return errors.New("log directory must not be empty")
		}
		c.Log.Directory = value
	default:
		return &UnknownKeyError{Key: key}
	}
	return nil
}

// GetLocale returns the configured locale
func GetLocale() string {
	return Get().Locale
}

// SetValue sets key on the shared configuration and saves it
func SetValue(key, value string) error {
	config := Get()
	cfgMu.Lock()
	err := config.Set(key, value)
	cfgMu.Unlock()
	if err != nil {
		return err
	}
	return Save(config)
}
