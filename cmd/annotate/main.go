// annotate drives an external UCI chess engine over every game in one or
// more PGN files, stamping move-quality annotations, opening classification
// and terminal-state results onto the games it replays.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/lgbarn/pgn-extract-go/internal/chess"
	"github.com/lgbarn/pgn-extract-go/internal/config"
	"github.com/lgbarn/pgn-extract-go/internal/eco"
	"github.com/lgbarn/pgn-extract-go/internal/engine"
	apperrors "github.com/lgbarn/pgn-extract-go/internal/errors"
	"github.com/lgbarn/pgn-extract-go/internal/logging"
	"github.com/lgbarn/pgn-extract-go/internal/output"
	"github.com/lgbarn/pgn-extract-go/internal/parser"
	"github.com/lgbarn/pgn-extract-go/internal/processing"
	"github.com/lgbarn/pgn-extract-go/internal/worker"
	"github.com/rs/zerolog"
)

const programVersion = "1.0.0"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}
	if *version {
		fmt.Printf("annotate version %s\n", programVersion)
		os.Exit(0)
	}

	cfg := config.NewConfig()
	if err := applyFlags(cfg); err != nil {
		if errors.Is(err, apperrors.ErrUsageError) {
			fmt.Fprintf(os.Stderr, "annotate: %v\n", err)
			fmt.Fprintln(os.Stderr, "try --help")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "annotate: %v\n", err)
		os.Exit(1)
	}
	cfg.AnnotatorVersion = programVersion

	log := logging.Default(cfg.Verbose)

	filenames := flag.Args()
	if len(filenames) == 0 {
		fmt.Fprintln(os.Stderr, "annotate: no input files")
		os.Exit(1)
	}

	games, err := parseAllFiles(filenames, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "annotate: %v\n", err)
		os.Exit(1)
	}
	log.Info().Int("games", len(games)).Msg("parsed input")

	var book *eco.ECOClassifier
	if cfg.ECOFile != "" {
		book = eco.NewECOClassifier()
		if err := book.LoadFromFile(cfg.ECOFile); err != nil {
			fmt.Fprintf(os.Stderr, "annotate: loading ECO file %s: %v\n", cfg.ECOFile, err)
			os.Exit(1)
		}
		log.Info().Int("entries", book.EntriesLoaded()).Msg("loaded ECO book")
	}

	ctx := context.Background()
	eng := engine.NewUCIEngine(cfg, log)
	if err := eng.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "annotate: starting engine: %v\n", err)
		os.Exit(1)
	}
	defer eng.Close() //nolint:errcheck,gosec // G104: best-effort cleanup on exit

	if err := eng.Handshake(); err != nil {
		fmt.Fprintf(os.Stderr, "annotate: engine handshake: %v\n", err)
		os.Exit(1)
	}
	if err := eng.Configure(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "annotate: configuring engine: %v\n", err)
		os.Exit(1)
	}
	log.Info().Str("engine", eng.Name()).Msg("engine ready")

	writer := output.NewPGNWriter(cfg.OutputFile, cfg)
	annotated, err := annotateAll(games, eng, book, cfg, log, writer)
	if err != nil {
		log.Error().Err(err).Msg("engine failure, aborting run")
		eng.Close() //nolint:errcheck,gosec // G104: shutdown escalation on the way out
		os.Exit(1)
	}

	log.Info().Int("annotated", annotated).Int("total", len(games)).Msg("done")
	if closer, ok := cfg.OutputFile.(*os.File); ok && closer != os.Stdout {
		closer.Close() //nolint:errcheck,gosec // G104: best-effort cleanup on exit
	}
}

// fileParseResult is the payload one worker produces from a single input
// file: parsing is CPU-bound and safe to run concurrently across files,
// unlike the analysis phase which must share a single engine subprocess.
type fileParseResult struct {
	filename string
	games    []*chess.Game
	err      error
}

// parseAllFiles reads and parses filenames, fanning the CPU-bound parsing
// work out across a worker pool while preserving input order in the
// returned slice.
func parseAllFiles(filenames []string, cfg *config.Config) ([]*chess.Game, error) {
	numWorkers := *workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(filenames) {
		numWorkers = len(filenames)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	results := make([]fileParseResult, len(filenames))

	if numWorkers == 1 || len(filenames) == 1 {
		for i, name := range filenames {
			results[i] = parseOneFile(name, cfg)
		}
		return flattenParseResults(results)
	}

	processFunc := func(item worker.WorkItem) worker.ProcessResult {
		result := parseOneFile(filenames[item.Index], cfg)
		return worker.ProcessResult{Index: item.Index, GameInfo: result}
	}

	pool := worker.NewPool(numWorkers, len(filenames), processFunc)
	pool.Start()

	go func() {
		for i := range filenames {
			pool.Submit(worker.WorkItem{Index: i})
		}
		pool.Close()
	}()

	for r := range pool.Results() {
		results[r.Index] = r.GameInfo.(fileParseResult)
	}

	return flattenParseResults(results)
}

func parseOneFile(filename string, cfg *config.Config) fileParseResult {
	file, err := os.Open(filename) //nolint:gosec // G304: CLI tool opens user-specified files
	if err != nil {
		return fileParseResult{filename: filename, err: fmt.Errorf("%w: %v", apperrors.ErrInputError, err)}
	}
	defer file.Close()

	fileCfg := *cfg
	p := parser.NewParser(file, &fileCfg)
	games, err := p.ParseAllGames()
	return fileParseResult{filename: filename, games: games, err: err}
}

func flattenParseResults(results []fileParseResult) ([]*chess.Game, error) {
	var games []*chess.Game
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "annotate: parsing %s: %v\n", r.filename, r.err)
			continue
		}
		games = append(games, r.games...)
	}
	return games, nil
}

// annotateAll drives eng sequentially over every game, since a single UCI
// subprocess cannot service concurrent Evaluate calls, then writes each
// annotated game as it completes. A game's own illegal move (MoveError) or
// a failure to write it costs only that game and processing continues to
// the next one. An EngineFatal error bubbling up from the engine subprocess
// (crash, pipe failure, missing bestmove) aborts the whole run: the caller
// is expected to escalate shutdown and exit non-zero rather than keep
// feeding games to a dead engine.
func annotateAll(games []*chess.Game, eng *engine.UCIEngine, book *eco.ECOClassifier, cfg *config.Config, log zerolog.Logger, writer output.GameWriter) (int, error) {
	annotated := 0
	for i, game := range games {
		if result := processing.ValidateGame(game); !result.Valid {
			log.Warn().Int("game", i+1).Str("error", result.ErrorMsg).Msg("skipping unplayable game")
			continue
		}

		if _, err := processing.AnalyzeGame(game, eng, book, log); err != nil {
			if errors.Is(err, apperrors.ErrEngineFatal) {
				return annotated, fmt.Errorf("game %d: %w", i+1, err)
			}
			log.Error().Err(err).Int("game", i+1).Msg("analysis failed")
			continue
		}
		game.SetTag("Annotator", fmt.Sprintf("%s %s", cfg.AnnotatorName, cfg.AnnotatorVersion))

		if err := writer.WriteGame(game); err != nil {
			log.Error().Err(err).Int("game", i+1).Msg("writing annotated game failed")
			continue
		}
		annotated++
	}
	return annotated, nil
}
