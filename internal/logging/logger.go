// Package logging builds the zerolog loggers shared by every RentEase component.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"rentease/internal/config"

	"github.com/rs/zerolog"
)

const (
	outputStdout  = "stdout"
	outputStderr  = "stderr"
	outputDiscard = "discard"
	outputFile    = "file"
	formatConsole = "console"
)

// New returns the root logger stamped with the app name, environment and version.
// The closer is non-nil only when logs go to a file.
func New(cfg config.LoggingConfig, app config.AppConfig) (*zerolog.Logger, io.Closer, error) {
	out, closer, err := openOutput(cfg)
	if err != nil {
		return nil, nil, err
	}
	if normalize(cfg.Format) == formatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	root := zerolog.New(out).
		Level(level(cfg.Level)).
		With().
		Timestamp().
		Str("app", app.Name).
		Str("env", app.Environment).
		Str("version", app.Version).
		Logger()
	return &root, closer, nil
}

func openOutput(cfg config.LoggingConfig) (io.Writer, io.Closer, error) {
	switch normalize(cfg.Output) {
	case outputStderr:
		return os.Stderr, nil, nil
	case outputDiscard:
		return io.Discard, nil, nil
	case outputFile:
		if cfg.FilePath == "" {
			return nil, nil, fmt.Errorf("logging.output=file requires logging.file_path")
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return f, f, nil
	default:
		return os.Stdout, nil, nil
	}
}

// level falls back to info for blank or unknown names.
func level(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(normalize(name))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Component returns a child logger tagged with name. A nil parent yields a no-op logger.
func Component(parent *zerolog.Logger, name string) *zerolog.Logger {
	if parent == nil {
		nop := zerolog.Nop()
		return &nop
	}
	child := parent.With().Str("component", name).Logger()
	return &child
}
