// Package logging wraps zerolog for the MCP server.
//
// On the stdio transport stdout carries the JSON-RPC framing, so every log
// line must go to stderr or a file. New never writes to stdout.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Logger wraps zerolog to provide subsystem-scoped child loggers.
type Logger struct {
	zl zerolog.Logger
}

// Options controls where and how the root logger writes.
type Options struct {
	Level string // trace, debug, info, warn, error, fatal, silent
	Style string // "pretty" (console) or "json"
	File  string // optional log file, teed with stderr
}

// New creates a root logger per opts. Each process run is tagged with a
// fresh instance id so interleaved relaunches can be told apart.
func New(opts Options) *Logger {
	var w io.Writer
	if opts.Style == "json" {
		w = os.Stderr
	} else {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	if opts.File != "" {
		if f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
			w = io.MultiWriter(w, f)
		}
	}

	zl := zerolog.New(w).With().
		Timestamp().
		Str("instance", uuid.NewString()[:8]).
		Logger()
	zl = zl.Level(ParseLevel(opts.Level))
	return &Logger{zl: zl}
}

// NewWriter creates a logger writing to an explicit writer, used in tests.
func NewWriter(w io.Writer, level string) *Logger {
	zl := zerolog.New(w).With().Timestamp().Logger().Level(ParseLevel(level))
	return &Logger{zl: zl}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Sub returns a child logger tagged with a subsystem name.
func (l *Logger) Sub(subsystem string) *Logger {
	return &Logger{zl: l.zl.With().Str("subsystem", subsystem).Logger()}
}

// Debug logs at debug level.
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }

// Info logs at info level.
func (l *Logger) Info() *zerolog.Event { return l.zl.Info() }

// Warn logs at warn level.
func (l *Logger) Warn() *zerolog.Event { return l.zl.Warn() }

// Error logs at error level.
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// Fatal logs at fatal level and exits.
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// ParseLevel maps a config level string to a zerolog level. Unknown values
// fall back to info. Matching is case-insensitive so LOG_LEVEL=INFO works.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "silent":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
