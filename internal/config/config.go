// Package config holds the annotator's runtime configuration, assembled
// once from command-line flags and threaded down into the analyzer,
// engine driver, and emitter.
package config

import (
	"io"
	"os"
)

// TimeControl selects how the UCI driver bounds each half-move's "go" cycle.
type TimeControl int

const (
	// BySeconds sends "go movetime <Seconds*1000>".
	BySeconds TimeControl = iota
	// ByDepth sends "go depth <Depth>".
	ByDepth
)

// Config holds all program configuration and state for a single run of the
// annotator.
type Config struct {
	// Engine is the program path; EngineArgs are additional arguments
	// passed on exec. Populated from repeated -e/--engine flags.
	Engine     string
	EngineArgs []string

	// TimeControl chooses between Seconds and Depth below.
	TimeControl TimeControl
	Seconds     int
	Depth       int

	// MemoryMB, when > 0, is applied as a synthesized Hash=<N> engine
	// option during the configuring phase.
	MemoryMB int

	// Options holds user-supplied "name=value" engine options from
	// repeated -o/--option flags, applied in the order given.
	Options []EngineOption

	// Verbose gates informational logging; errors are always logged.
	Verbose bool

	// OutputFile is where the annotated PGN is written; defaults to stdout.
	OutputFile io.Writer

	// ECOFile, if non-empty, is loaded as the opening book for C5.
	ECOFile string

	// AnnotatorName/Version are stamped into the Annotator tag by C7
	// (cmd/annotate's annotateAll).
	AnnotatorName    string
	AnnotatorVersion string

	// The remaining fields are read by the retained PGN parser/lexer
	// (internal/parser), which predates the annotator and still expects
	// the teacher's StateInfo-style knobs.

	// Verbosity gates the parser's own diagnostics: 0=nothing, 1=game
	// count, 2=running commentary. Distinct from Verbose above, which
	// gates the annotator's own zerolog output.
	Verbosity int

	// LogFile receives the parser's diagnostic messages.
	LogFile io.Writer

	// AllowNullMoves permits "--" outside of variations.
	AllowNullMoves bool

	// AllowNestedComments permits "{" inside an already-open comment.
	AllowNestedComments bool

	// SkippingCurrentGame is set by the parser while recovering from a
	// malformed game, suppressing further diagnostics for it.
	SkippingCurrentGame bool
}

// EngineOption is one user-supplied "name=value" pair from -o/--option.
type EngineOption struct {
	Name  string
	Value string
}

// NewConfig returns a Config with the specification's documented defaults:
// 30 seconds per half-move, output to stdout.
func NewConfig() *Config {
	return &Config{
		TimeControl:      BySeconds,
		Seconds:          30,
		OutputFile:       os.Stdout,
		AnnotatorName:    "pgn-annotate",
		AnnotatorVersion: "1.0.0",
		Verbosity:        1,
		LogFile:          os.Stderr,
	}
}
