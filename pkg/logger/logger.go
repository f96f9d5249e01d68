// Package logger builds the slog loggers used across kgcurate. Records are rendered by
// charmbracelet/log, colored on a terminal and plain otherwise.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Options configures a logger.
type Options struct {
	Level slog.Level
	// Format is text, json or logfmt. Empty means text.
	Format string
	// Output defaults to stderr.
	Output io.Writer
	// Prefix is printed before every message.
	Prefix string
	// ReportTimestamp adds the time to every record.
	ReportTimestamp bool
}

// NewDefaultLogger returns a text logger on stderr with timestamps.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(newCharm(Options{Level: level, ReportTimestamp: true}, log.TextFormatter))
}

// NewLogger returns a logger configured by opts.
func NewLogger(opts Options) (*slog.Logger, error) {
	h, err := NewHandler(opts)
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}

// NewHandler returns the slog handler behind NewLogger, for wrapping by other handlers.
func NewHandler(opts Options) (slog.Handler, error) {
	formatter, err := ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	return newCharm(opts, formatter), nil
}

func newCharm(opts Options, formatter log.Formatter) *log.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return log.NewWithOptions(out, log.Options{
		Level:           log.Level(opts.Level),
		Formatter:       formatter,
		Prefix:          opts.Prefix,
		ReportTimestamp: opts.ReportTimestamp,
	})
}

// ParseFormat maps a format name to a charmbracelet formatter.
func ParseFormat(format string) (log.Formatter, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return 0, fmt.Errorf("unknown log format %q", format)
	}
}

// ParseLevel parses debug, info, warn or error, case-insensitively.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
	return l, nil
}
