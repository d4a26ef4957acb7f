// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Format names accepted by Setup
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options controls the logger built by Setup
type Options struct {
	Verbose bool
	Format  string
	Output  io.Writer
}

// Setup builds a logger, installs it as the slog default and returns it.
// Output defaults to stderr and Format to text.
func Setup(opts Options) *slog.Logger {
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if opts.Format == FormatJSON {
		h = slog.NewJSONHandler(w, handlerOpts)
	} else {
		h = slog.NewTextHandler(w, handlerOpts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}
