// Package logging centralizes kvkv's zerolog setup: a logger is built once
// at startup and handed to each server as a field, never looked up from a
// global deep inside a handler.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a logger at the given level that writes zerolog's JSON lines to
// w, or human-readable, colorized lines to stderr through zerolog's console
// writer when w is nil. levelName
// accepts zerolog's usual strings ("debug", "info", "warn", "error");
// an unrecognized level falls back to "info".
func New(levelName string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
