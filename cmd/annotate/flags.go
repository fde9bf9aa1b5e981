// flags.go - Command-line flag definitions and configuration
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lgbarn/pgn-extract-go/internal/config"
	apperrors "github.com/lgbarn/pgn-extract-go/internal/errors"
)

// repeatedFlag collects the values of a flag that may be given more than
// once on the command line (e.g. -o Threads=4 -o "Skill Level=10").
type repeatedFlag []string

func (r *repeatedFlag) String() string {
	return strings.Join(*r, ",")
}

func (r *repeatedFlag) Set(value string) error {
	*r = append(*r, value)
	return nil
}

var (
	engines repeatedFlag
	options repeatedFlag

	seconds = flag.Int("seconds", 30, "Seconds per half-move (ignored if -depth is set)")
	depth   = flag.Int("depth", 0, "Fixed search depth per half-move (overrides -seconds)")
	memory  = flag.Int("memory", 0, "Hash table size in MB, sent as a Hash engine option")

	ecoFile = flag.String("eco", "", "ECO opening book file (PGN format)")

	outputFile = flag.String("output", "", "Output file for annotated PGN (default: stdout)")

	verbose = flag.Bool("verbose", false, "Enable informational logging")
	help    = flag.Bool("help", false, "Show help")
	version = flag.Bool("version", false, "Show version")

	workers = flag.Int("workers", 0, "Parallel file-parsing workers (0 = auto-detect based on CPU cores)")
)

func init() {
	flag.Var(&engines, "engine", "UCI engine command (repeatable; the first token is the program, later tokens are its arguments)")
	flag.Var(&engines, "e", "Alias for -engine")
	flag.Var(&options, "option", "UCI engine option as name=value (repeatable)")
	flag.Var(&options, "o", "Alias for -option")

	flag.IntVar(seconds, "s", 30, "Alias for -seconds")
	flag.IntVar(depth, "d", 0, "Alias for -depth")
	flag.IntVar(memory, "m", 0, "Alias for -memory")
	flag.BoolVar(verbose, "v", false, "Alias for -verbose")
	flag.BoolVar(help, "h", false, "Alias for -help")
	flag.BoolVar(version, "V", false, "Alias for -version")
}

// applyFlags builds a Config from parsed flag values.
func applyFlags(cfg *config.Config) error {
	if len(engines) == 0 {
		return fmt.Errorf("at least one -engine path is required: %w", apperrors.ErrUsageError)
	}
	parts := strings.Fields(strings.Join(engines, " "))
	cfg.Engine = parts[0]
	if len(parts) > 1 {
		cfg.EngineArgs = parts[1:]
	}

	if *depth > 0 {
		cfg.TimeControl = config.ByDepth
		cfg.Depth = *depth
	} else {
		cfg.TimeControl = config.BySeconds
		cfg.Seconds = *seconds
	}
	cfg.MemoryMB = *memory

	for _, spec := range options {
		name, value, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("malformed -option %q, expected name=value: %w", spec, apperrors.ErrUsageError)
		}
		cfg.Options = append(cfg.Options, config.EngineOption{Name: name, Value: value})
	}

	cfg.ECOFile = *ecoFile
	cfg.Verbose = *verbose

	if *outputFile != "" {
		file, err := os.Create(*outputFile)
		if err != nil {
			return fmt.Errorf("creating output file %s: %w", *outputFile, err)
		}
		cfg.OutputFile = file
	}

	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: annotate -engine <path> [options] input.pgn [more.pgn ...]\n\n")
	fmt.Fprintf(os.Stderr, "Annotates every move of every game in a PGN file with the evaluations\n")
	fmt.Fprintf(os.Stderr, "of an external UCI chess engine.\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}
