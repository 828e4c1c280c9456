// Package logger builds the zerolog logger shared by the harvester.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "docs-harvester"

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool   // human-readable console output
	Output io.Writer
	// File, when set, receives a JSON copy of every event.
	File       io.Writer
	WithCaller bool
}

// New creates the root structured logger.
func New(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}
	if cfg.File != nil {
		output = zerolog.MultiLevelWriter(output, cfg.File)
	}

	zlog := zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	if cfg.WithCaller {
		zlog = zlog.With().Caller().Logger()
	}
	return zlog
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Component returns a child logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// Nop returns a disabled logger for tests and dry runs.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
