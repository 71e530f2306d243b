// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Build configures a zerolog.Logger.
type Build struct {
	writer io.Writer
	level  string
	format string
}

// New starts a builder writing JSON to stdout at info level.
func New() *Build {
	return &Build{writer: os.Stdout, level: "info", format: "json"}
}

// WithWriter replaces the output.
func (b *Build) WithWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

// WithLevel sets the minimum level by name (debug, info, warn, error).
func (b *Build) WithLevel(level string) *Build {
	b.level = level
	return b
}

// WithFormat selects "json" or "console" output.
func (b *Build) WithFormat(format string) *Build {
	b.format = format
	return b
}

// Make returns the configured logger. Unknown levels fall back to info.
func (b *Build) Make() zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(b.level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	w := b.writer
	if b.format == "console" {
		w = zerolog.ConsoleWriter{Out: b.writer, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// GormWriter adapts a zerolog.Logger to gorm's logger.Writer.
type GormWriter struct {
	Logger zerolog.Logger
}

// Printf implements gorm's logger.Writer.
func (w GormWriter) Printf(format string, args ...interface{}) {
	w.Logger.Debug().Str("component", "gorm").Msgf(format, args...)
}
