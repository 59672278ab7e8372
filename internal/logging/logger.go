// Package logging builds the zerolog logger used by every command.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Options controls logger construction
type Options struct {
	Level   string // explicit level; wins over Verbose/Quiet
	Verbose bool
	Quiet   bool
	Format  string // json, console, or auto
	Output  string // stderr, stdout, discard, or a file path
}

// New creates a logger. Level precedence:
//  1. explicit Level
//  2. Quiet (warn)
//  3. Verbose (debug)
//  4. info
func New(opts Options) zerolog.Logger {
	level := ResolveLevel(opts)
	writer := writerFor(opts)

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

// ResolveLevel picks the effective log level from the options
func ResolveLevel(opts Options) zerolog.Level {
	if opts.Level != "" {
		if lvl, err := zerolog.ParseLevel(strings.ToLower(opts.Level)); err == nil && lvl != zerolog.NoLevel {
			return lvl
		}
		return zerolog.InfoLevel
	}
	if opts.Quiet {
		return zerolog.WarnLevel
	}
	if opts.Verbose {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

func writerFor(opts Options) io.Writer {
	var out io.Writer
	switch strings.ToLower(opts.Output) {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "discard", "none":
		return io.Discard
	default:
		f, err := os.OpenFile(opts.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			out = os.Stderr
		} else {
			out = f
		}
	}

	switch strings.ToLower(opts.Format) {
	case "json":
		return out
	case "console", "pretty":
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	default:
		if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
		}
		return out
	}
}
