// Package logger configures the process-wide slog logger and derives the
// crawl-scoped child loggers the pipeline logs through. Components log
// via slog directly; anything that belongs to one seed's crawl goes
// through a WithSeed child so every line carries its origin.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// level backs every handler Setup builds, so verbosity can be decided
// once per process regardless of how many loggers were derived.
var level slog.LevelVar

// Options controls verbosity and output encoding.
type Options struct {
	Debug  bool      // log at debug level
	Quiet  bool      // errors only; wins over Debug
	JSON   bool      // JSON records instead of text
	Output io.Writer // defaults to stderr
}

// Setup installs the described handler as the slog default and returns
// the root logger. Fetch completions, parse counts, and quiescence log
// at INFO; fetch failures at WARN; everything chattier at DEBUG.
func Setup(opts Options) *slog.Logger {
	switch {
	case opts.Quiet:
		level.Set(slog.LevelError)
	case opts.Debug:
		level.Set(slog.LevelDebug)
	default:
		level.Set(slog.LevelInfo)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: &level}
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

// WithSeed returns a child of the default logger tagged with the crawl's
// seed host. Worker goroutines log through it so interleaved output from
// consecutive seeds stays attributable.
func WithSeed(seedHost string) *slog.Logger {
	return slog.Default().With("seed", seedHost)
}
