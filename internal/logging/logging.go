// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger writing timestamped, field-based lines to w.
// Verbose runs log at InfoLevel; quiet runs only emit ErrorLevel and above,
// since errors are always surfaced regardless of -v.
func New(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.ErrorLevel
	if verbose {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Default returns a logger writing to stderr at the given verbosity.
func Default(verbose bool) zerolog.Logger {
	return New(os.Stderr, verbose)
}
