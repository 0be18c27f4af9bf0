// Package logging provides structured logging for the CLI and the HTTP server.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// TimeFormat is the console timestamp layout
const TimeFormat = "15:04:05"

// New creates a console logger at the given level.
// Unknown levels fall back to info.
func New(out io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: TimeFormat,
	}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// NewCLI logs to stderr, leaving stdout to command output
func NewCLI(level string) zerolog.Logger {
	return New(os.Stderr, level)
}

// Component returns a child logger tagged with the component name
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
