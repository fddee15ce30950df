// Package logger wires zerolog for the daemon and CLI. Components get
// scoped sub-loggers so log lines carry their origin.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New creates the root logger writing to w. With pretty set, output goes
// through the human-readable console writer instead of JSON.
func New(w io.Writer, level string, pretty bool) zerolog.Logger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

// NewDefault creates a root logger writing to stderr.
func NewDefault(level string, pretty bool) zerolog.Logger {
	return New(os.Stderr, level, pretty)
}

// Component returns a sub-logger tagged with a component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
