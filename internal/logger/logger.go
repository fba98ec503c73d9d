// Package logger builds the zerolog loggers used across the launcher.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// DefaultDirectory holds the rolling log when none is configured
	DefaultDirectory = "~/.config/astra-launcher/logs"
	// DefaultLevel is used when the configured level is empty or invalid
	DefaultLevel = "info"

	logFilename = "astra-launcher.log"

	dirPermMode = 0744 // rwxr--r--

	rollingMaxSize    = 5 // megabytes
	rollingMaxBackups = 3 // files
	rollingMaxAge     = 0 // keep forever

	consoleTimeFormat = time.RFC3339
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
}

// Config selects where log events go
type Config struct {
	// Console writes human readable events to stderr. The interactive
	// launcher turns this off so the terminal UI is not overdrawn.
	Console bool
	NoColor bool

	// Directory receives a rolling log file; empty disables file logging
	Directory string

	MinLevel string // debug | info | warn | error
}

// multiWriter keeps writing to the remaining writers when one of them fails
type multiWriter struct {
	level   zerolog.Level
	writers []io.Writer
}

func (m multiWriter) Write(p []byte) (int, error) {
	for _, w := range m.writers {
		_, _ = w.Write(p)
	}
	return len(p), nil
}

func (m multiWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < m.level {
		return len(p), nil
	}
	return m.Write(p)
}

// Create builds a logger from cfg. Setup problems never fail the call:
// they are reported through the logger that could be built.
func Create(cfg Config) *zerolog.Logger {
	var writers []io.Writer
	var setupErr error

	if cfg.Console {
		writers = append(writers, consoleWriter(os.Stderr, cfg.NoColor))
	}

	// A broken directory never falls back to stderr: without Console the
	// terminal belongs to the UI.
	if cfg.Directory != "" {
		rolling, err := rollingWriter(cfg.Directory)
		if err != nil {
			setupErr = err
		} else {
			writers = append(writers, rolling)
		}
	}

	level, levelErr := ParseLevel(cfg.MinLevel)

	log := zerolog.New(multiWriter{level: level, writers: writers}).With().Timestamp().Logger()
	if setupErr != nil {
		log.Error().Err(setupErr).Msg("Log file unavailable")
	}
	if levelErr != nil {
		log.Error().Msgf("Failed to parse log level %q, using %q instead", cfg.MinLevel, level)
	}
	return &log
}

// Nop returns a logger that discards everything
func Nop() *zerolog.Logger {
	log := zerolog.Nop()
	return &log
}

// ParseLevel parses a level name, defaulting to info. The error reports an
// unknown name; the returned level is usable either way.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel, errors.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// ExpandDirectory resolves a leading ~ in dir
func ExpandDirectory(dir string) (string, error) {
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return "", errors.Wrapf(err, "expand log directory %s", dir)
	}
	return expanded, nil
}

// Path returns the log file location inside dir
func Path(dir string) (string, error) {
	expanded, err := ExpandDirectory(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(expanded, logFilename), nil
}

func consoleWriter(out *os.File, noColor bool) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        colorable.NewColorable(out),
		NoColor:    noColor || !term.IsTerminal(int(out.Fd())),
		TimeFormat: consoleTimeFormat,
	}
}

func rollingWriter(dir string) (io.Writer, error) {
	path, err := Path(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPermMode); err != nil {
		return nil, errors.Wrap(err, "create log directory")
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rollingMaxSize,
		MaxBackups: rollingMaxBackups,
		MaxAge:     rollingMaxAge,
	}, nil
}
