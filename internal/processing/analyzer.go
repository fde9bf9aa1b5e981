// Package processing provides game analysis, validation, and processing logic.
package processing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lgbarn/pgn-extract-go/internal/analysis"
	"github.com/lgbarn/pgn-extract-go/internal/chess"
	"github.com/lgbarn/pgn-extract-go/internal/eco"
	"github.com/lgbarn/pgn-extract-go/internal/engine"
	apperrors "github.com/lgbarn/pgn-extract-go/internal/errors"
	"github.com/rs/zerolog"
)

// mateInOneCP anchors the centipawn-equivalent conversion of mate scores:
// a mate announced in one ply is worth this many centipawns, a mate in k
// plies worth mateInOneCP/k, preserving sign.
const mateInOneCP = 2000

// Classification is how a move's centipawn loss against the engine's best
// line is judged.
type Classification int

const (
	ClassOK Classification = iota
	ClassError
	ClassBlunder
)

func (c Classification) String() string {
	switch c {
	case ClassError:
		return "error"
	case ClassBlunder:
		return "blunder"
	default:
		return "ok"
	}
}

// MoveRecord is one half-move's analysis: the engine's assessment of the
// position before it was played, what the engine would have played
// instead, and how the played move was judged once the resulting
// position's evaluation became available.
type MoveRecord struct {
	Move     *chess.Move
	Mover    chess.Colour
	Forced   bool
	Eval     *engine.Evaluation
	BestSAN  string
	PVSAN    string
	PlayedCP int
	BestCP   int
	Loss     int
	Class    Classification
}

// SideSummary aggregates one color's performance across a game.
type SideSummary struct {
	Moves       int
	ForcedMoves int
	Errors      int
	Blunders    int
	TotalLoss   int
}

// ErrorsPerMove returns the side's errors divided by its move count.
func (s SideSummary) ErrorsPerMove() float64 { return rate(s.Errors, s.Moves) }

// BlundersPerMove returns the side's blunders divided by its move count.
func (s SideSummary) BlundersPerMove() float64 { return rate(s.Blunders, s.Moves) }

// LossPerMove returns the side's average centipawn loss per move.
func (s SideSummary) LossPerMove() float64 { return rate(s.TotalLoss, s.Moves) }

func rate(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

// GameSummary is the full result of analyzing one game: a record per
// half-move plus per-side aggregates and the terminal state (if any) that
// cut the replay short.
type GameSummary struct {
	Records  []*MoveRecord
	White    SideSummary
	Black    SideSummary
	Terminal analysis.State
}

func (gs *GameSummary) sideFor(colour chess.Colour) *SideSummary {
	if colour == chess.White {
		return &gs.White
	}
	return &gs.Black
}

// Evaluator is the subset of *engine.UCIEngine that AnalyzeGame drives: a
// position search and the identity string it stamps into the Analyzer
// tag. Accepting the interface rather than the concrete engine lets tests
// substitute a scripted stand-in for a real UCI subprocess.
type Evaluator interface {
	Evaluate(fen string) (*engine.Evaluation, error)
	Name() string
}

// AnalyzeGame drives eng over every half-move of game, comparing played
// moves to the engine's best line, and writes the results directly onto
// game's tags and each move's comments. book, if non-nil, stamps ECO tags
// once the full replay is known. log receives per-ply diagnostics tagged
// with the ply number and the phase (evaluate/apply/classify); callers
// running with -verbose see the full replay trace, quiet runs see none of it.
func AnalyzeGame(game *chess.Game, eng Evaluator, book *eco.ECOClassifier, log zerolog.Logger) (*GameSummary, error) {
	summary := &GameSummary{}
	board := engine.NewBoardForGame(game)
	table := analysis.NewRepetitionTable(board)

	var prev *MoveRecord
	ply := 0

	finalize := func(nextEval *engine.Evaluation) {
		if prev == nil {
			return
		}
		if nextEval != nil {
			prev.PlayedCP = -signedCP(nextEval)
			prev.BestCP = signedCP(prev.Eval)
			loss := prev.BestCP - prev.PlayedCP
			if loss >= 0 {
				prev.Loss = loss
				switch {
				case loss >= 100:
					prev.Class = ClassBlunder
				case loss >= 50:
					prev.Class = ClassError
				}
			}
		}

		summary.Records = append(summary.Records, prev)
		side := summary.sideFor(prev.Mover)
		side.Moves++
		if prev.Forced {
			side.ForcedMoves++
		}
		if prev.Loss > 0 {
			side.TotalLoss += prev.Loss
		}
		switch prev.Class {
		case ClassError:
			side.Errors++
		case ClassBlunder:
			side.Blunders++
		}
		annotateMove(prev)
	}

	for move := game.Moves; move != nil; move = move.Next {
		ply++
		mover := board.ToMove
		forced := engine.CountLegalMoves(board, mover) == 1

		log.Info().Int("ply", ply).Str("phase", "evaluate").Str("fen", engine.BoardToFEN(board)).Msg("requesting engine evaluation")
		eval, err := eng.Evaluate(engine.BoardToFEN(board))
		if err != nil {
			return summary, fmt.Errorf("evaluating ply %d: %w", ply, err)
		}
		log.Info().Int("ply", ply).Str("phase", "evaluate").Int("score", eval.Score).Bool("mate", eval.IsMate).Msg("engine evaluation received")

		finalize(eval)

		before := board.Copy()

		log.Info().Int("ply", ply).Str("phase", "apply").Str("move", move.Text).Msg("applying played move")
		if !engine.ApplyMove(board, move) {
			return summary, fmt.Errorf("illegal move in source game at ply %d: %s: %w", ply, move.Text, apperrors.ErrMoveError)
		}

		state := analysis.Terminal(board, table)

		record := &MoveRecord{Move: move, Mover: mover, Forced: forced, Eval: eval, Loss: -1, Class: ClassOK}
		if state.Reason == analysis.NotTerminal {
			record.BestSAN, record.PVSAN = convertPV(before, eval, move)
		}
		prev = record

		if state.Reason != analysis.NotTerminal {
			summary.Terminal = state
			break
		}
	}
	finalize(nil)

	if summary.Terminal.Reason != analysis.NotTerminal && len(summary.Records) > 0 {
		last := summary.Records[len(summary.Records)-1]
		last.Move.AppendComment(summary.Terminal.Description)
		game.SetTag("Result", summary.Terminal.Result)
	}

	if book != nil {
		log.Info().Str("phase", "classify").Msg("matching opening book")
		book.AddECOTags(game)
	}
	game.SetTag("Analyzer", eng.Name())
	writeSummaryTags(game, summary)

	return summary, nil
}

// signedCP converts an evaluation to a centipawn-equivalent score. Plain
// centipawn scores pass through; a mate-in-k score becomes
// round(mateInOneCP/k), preserving the sign UCI reported it with.
func signedCP(eval *engine.Evaluation) int {
	if !eval.IsMate {
		return eval.Score
	}
	k := eval.MateIn
	if k == 0 {
		k = 1
	}
	magnitude := k
	if magnitude < 0 {
		magnitude = -magnitude
	}
	cp := (mateInOneCP + magnitude/2) / magnitude
	if k < 0 {
		return -cp
	}
	return cp
}

// convertPV replays eval.PV (a sequence of UCI long-algebraic tokens) on a
// copy of pos to produce a numbered SAN rendering, stopping at the first
// token that does not name a legal move. It also returns the SAN of the
// first PV move when it differs from the move actually played, empty
// otherwise.
func convertPV(pos *chess.Board, eval *engine.Evaluation, played *chess.Move) (bestSAN, pvSAN string) {
	if len(eval.PV) == 0 {
		return "", ""
	}

	replay := pos.Copy()
	moveNum := replay.MoveNumber
	whiteToMove := replay.ToMove == chess.White
	leading := true

	var tokens []string
	for i, lan := range eval.PV {
		san, ok := engine.LANToSAN(replay, lan)
		if !ok {
			break
		}
		if i == 0 && san != played.Text {
			bestSAN = san
		}

		switch {
		case whiteToMove:
			tokens = append(tokens, fmt.Sprintf("%d. %s", moveNum, san))
		case leading:
			tokens = append(tokens, fmt.Sprintf("%d. ... %s", moveNum, san))
		default:
			tokens = append(tokens, san)
		}

		leading = false
		if !whiteToMove {
			moveNum++
		}
		whiteToMove = !whiteToMove
	}

	return bestSAN, strings.Join(tokens, " ")
}

// annotateMove appends the played-move comment onto record.Move: a bare
// score for an ok move, or the played/best score pair plus the better
// line for an error or blunder.
func annotateMove(record *MoveRecord) {
	if record.Eval == nil {
		return
	}
	if record.Class == ClassOK {
		record.Move.AppendComment(fmt.Sprintf("(%s)", engine.FormatEvaluation(record.Eval)))
		return
	}

	label := "Error!"
	if record.Class == ClassBlunder {
		label = "Blunder!"
	}

	text := fmt.Sprintf("(%s/%s) %s", formatCP(record.PlayedCP), formatCP(record.BestCP), label)
	if record.BestSAN != "" {
		text += " Better: " + record.BestSAN
	}
	if record.PVSAN != "" {
		text += " (" + record.PVSAN + ")"
	}
	record.Move.AppendComment(text)
}

func formatCP(cp int) string {
	sign := "+"
	v := cp
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func writeSummaryTags(game *chess.Game, summary *GameSummary) {
	game.SetTag("White-Moves", strconv.Itoa(summary.White.Moves))
	game.SetTag("Black-Moves", strconv.Itoa(summary.Black.Moves))
	game.SetTag("White-Forced-Moves", strconv.Itoa(summary.White.ForcedMoves))
	game.SetTag("Black-Forced-Moves", strconv.Itoa(summary.Black.ForcedMoves))
	game.SetTag("White-Errors", strconv.Itoa(summary.White.Errors))
	game.SetTag("Black-Errors", strconv.Itoa(summary.Black.Errors))
	game.SetTag("White-Blunders", strconv.Itoa(summary.White.Blunders))
	game.SetTag("Black-Blunders", strconv.Itoa(summary.Black.Blunders))
	game.SetTag("White-Errors-Per-Move", strconv.FormatFloat(summary.White.ErrorsPerMove(), 'f', 2, 64))
	game.SetTag("Black-Errors-Per-Move", strconv.FormatFloat(summary.Black.ErrorsPerMove(), 'f', 2, 64))
	game.SetTag("White-Blunders-Per-Move", strconv.FormatFloat(summary.White.BlundersPerMove(), 'f', 2, 64))
	game.SetTag("Black-Blunders-Per-Move", strconv.FormatFloat(summary.Black.BlundersPerMove(), 'f', 2, 64))
	game.SetTag("White-Loss-Per-Move", strconv.FormatFloat(summary.White.LossPerMove(), 'f', 2, 64))
	game.SetTag("Black-Loss-Per-Move", strconv.FormatFloat(summary.Black.LossPerMove(), 'f', 2, 64))
}

// ValidationResult holds the result of game validation.
type ValidationResult struct {
	Valid       bool
	ErrorPly    int
	ErrorMsg    string
	ParseErrors []string
}

// ValidateGame validates that a game carries the Seven Tag Roster, a
// recognised result, and (if it has moves) a move list that replays
// legally from its starting position. It is a cheap pre-flight check run
// before a game is handed to the engine-driven analyzer.
func ValidateGame(game *chess.Game) *ValidationResult {
	result := &ValidationResult{Valid: true}

	requiredTags := []string{"Event", "Site", "Date", "Round", "White", "Black", "Result"}
	for _, tag := range requiredTags {
		if game.GetTag(tag) == "" {
			result.ParseErrors = append(result.ParseErrors, fmt.Sprintf("missing required tag: %s", tag))
		}
	}

	resultTag := game.GetTag("Result")
	if resultTag != "" && !isValidResult(resultTag) {
		result.ParseErrors = append(result.ParseErrors, fmt.Sprintf("invalid result: %s", resultTag))
	}

	if game.Moves == nil {
		return result
	}

	var board *chess.Board
	var err error
	if fen, ok := game.Tags["FEN"]; ok {
		board, err = engine.NewBoardFromFEN(fen)
		if err != nil {
			result.Valid = false
			result.ErrorMsg = fmt.Sprintf("invalid FEN: %s", fen)
			return result
		}
	} else {
		board = engine.NewInitialBoard()
	}

	plyCount := 0
	for move := game.Moves; move != nil; move = move.Next {
		plyCount++
		if !engine.ApplyMove(board, move) {
			result.Valid = false
			result.ErrorPly = plyCount
			result.ErrorMsg = fmt.Sprintf("illegal move at ply %d: %s", plyCount, move.Text)
			return result
		}
	}

	game.MovesChecked = true
	game.MovesOK = true

	return result
}

// CountPlies counts the number of plies (half-moves) in a game.
func CountPlies(game *chess.Game) int {
	count := 0
	for move := game.Moves; move != nil; move = move.Next {
		count++
	}
	return count
}

// HasComments checks if a game has any comments.
func HasComments(game *chess.Game) bool {
	for move := game.Moves; move != nil; move = move.Next {
		if move.HasComments() {
			return true
		}
	}
	return false
}

// isValidResult checks if a result string is a valid PGN result.
func isValidResult(result string) bool {
	switch result {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	default:
		return false
	}
}
