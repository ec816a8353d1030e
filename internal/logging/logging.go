package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures logger construction.
type Options struct {
	Level  slog.Level
	Format string // "text" (human-readable) or "json" (structured)
	File   string // Optional log file; rotated by size when set
}

// NewLogger creates a configured slog.Logger writing to stderr.
// Stdout is reserved for command output (tables, CSV exports).
func NewLogger(level slog.Level, format string) *slog.Logger {
	return NewLoggerWithWriter(level, format, os.Stderr)
}

// New creates a logger from Options. When a log file is configured, records
// go to both stderr and the rotating file. The returned closer releases the
// file and is never nil.
func New(opts Options) (*slog.Logger, io.Closer) {
	if opts.File == "" {
		return NewLoggerWithWriter(opts.Level, opts.Format, os.Stderr), io.NopCloser(nil)
	}
	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	w := io.MultiWriter(os.Stderr, rotator)
	return NewLoggerWithWriter(opts.Level, opts.Format, w), rotator
}

// NewLoggerWithWriter creates a logger writing to the given writer.
func NewLoggerWithWriter(level slog.Level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
