// Package analysis detects game-terminating positions as a game is
// replayed, driving the Result-tag override and final comment the
// annotator writes once no more moves need engine evaluation.
package analysis

import (
	"github.com/lgbarn/pgn-extract-go/internal/chess"
	"github.com/lgbarn/pgn-extract-go/internal/engine"
)

// Reason identifies which check in the ordered terminal-state list fired.
type Reason int

const (
	// NotTerminal means none of the checks fired; the game continues.
	NotTerminal Reason = iota
	Checkmate
	Stalemate
	Repetition
	FiftyMoveRule
	InsufficientMaterial
)

// State describes a detected terminal position: the PGN result it implies
// and a human-readable description suitable for a trailing comment.
type State struct {
	Reason      Reason
	Result      string
	Description string
}

// Terminal runs the five ordered checks against board (whose ToMove is the
// side to move next) and the repetition table's freshly updated count for
// board's ECO-significant FEN. It returns NotTerminal if none apply.
func Terminal(board *chess.Board, table *RepetitionTable) State {
	toMove := board.ToMove
	inCheck := engine.IsInCheck(board, toMove)
	hasMoves := engine.HasLegalMoves(board, toMove)

	if inCheck && !hasMoves {
		winner := toMove.Opposite()
		return State{
			Reason:      Checkmate,
			Result:      resultFor(winner),
			Description: winnerName(winner) + " mates",
		}
	}

	if !inCheck && !hasMoves {
		return State{Reason: Stalemate, Result: "1/2-1/2", Description: "Stalemate"}
	}

	if table.Add(board) >= 3 {
		return State{Reason: Repetition, Result: "1/2-1/2", Description: "Draw by threefold repetition"}
	}

	if board.HalfmoveClock >= 100 {
		return State{Reason: FiftyMoveRule, Result: "1/2-1/2", Description: "Draw by fifty-move rule"}
	}

	if engine.HasInsufficientMaterial(board) {
		return State{Reason: InsufficientMaterial, Result: "1/2-1/2", Description: "Draw by insufficient material"}
	}

	return State{Reason: NotTerminal}
}

func resultFor(winner chess.Colour) string {
	if winner == chess.White {
		return "1-0"
	}
	return "0-1"
}

func winnerName(winner chess.Colour) string {
	if winner == chess.White {
		return "White"
	}
	return "Black"
}

// RepetitionTable counts occurrences of each ECO-significant FEN reached
// during a single game's replay, the ground-truth source for three-fold
// repetition detection. One table is created per game and seeded with the
// starting position before any move is applied.
type RepetitionTable struct {
	counts map[string]int
}

// NewRepetitionTable creates a table seeded with start's occurrence count
// of one.
func NewRepetitionTable(start *chess.Board) *RepetitionTable {
	t := &RepetitionTable{counts: make(map[string]int)}
	t.Add(start)
	return t
}

// Add records one more occurrence of board's position and returns the
// updated count.
func (t *RepetitionTable) Add(board *chess.Board) int {
	key := engine.ECOSignificantFEN(board)
	t.counts[key]++
	return t.counts[key]
}

// Count returns board's current occurrence count without incrementing it.
func (t *RepetitionTable) Count(board *chess.Board) int {
	return t.counts[engine.ECOSignificantFEN(board)]
}
