package engine

import (
	"fmt"
	"strings"

	"github.com/lgbarn/pgn-extract-go/internal/chess"
	apperrors "github.com/lgbarn/pgn-extract-go/internal/errors"
)

// Position is the position model's public operation set: from-initial,
// from-FEN, clone, legal-moves, apply-move, to-FEN, side-to-move,
// in-check, is-mate, is-stalemate, fullmove, halfmove-clock, and
// piece-at. Board/ApplyMove/LegalMoves already implement each of these;
// Position is the seam a caller drives a single position through one
// move at a time without reaching into board internals directly.
type Position struct {
	board *chess.Board
}

// FromInitial returns a position set up at the standard starting array.
func FromInitial() *Position {
	return &Position{board: NewInitialBoard()}
}

// FromFEN parses fen into a position.
func FromFEN(fen string) (*Position, error) {
	b, err := NewBoardFromFEN(fen)
	if err != nil {
		return nil, err
	}
	return &Position{board: b}, nil
}

// Clone returns an independent copy of p.
func (p *Position) Clone() *Position {
	return &Position{board: p.board.Copy()}
}

// ToFEN renders the position as a FEN string.
func (p *Position) ToFEN() string {
	return BoardToFEN(p.board)
}

// SideToMove reports which colour has the next move.
func (p *Position) SideToMove() chess.Colour {
	return p.board.ToMove
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return IsInCheck(p.board, p.board.ToMove)
}

// IsMate reports whether the side to move is checkmated.
func (p *Position) IsMate() bool {
	return IsCheckmate(p.board)
}

// IsStalemate reports whether the side to move has no legal move and is
// not in check.
func (p *Position) IsStalemate() bool {
	return IsStalemate(p.board)
}

// Fullmove returns the current full-move number.
func (p *Position) Fullmove() uint {
	return p.board.MoveNumber
}

// HalfmoveClock returns the half-move clock since the last pawn move or
// capture.
func (p *Position) HalfmoveClock() uint {
	return p.board.HalfmoveClock
}

// PieceAt returns the piece occupying (col, rank).
func (p *Position) PieceAt(col chess.Col, rank chess.Rank) chess.Piece {
	return p.board.Get(col, rank)
}

// LegalMoves lists every legal move available to the side to move, except
// castling, which the underlying generator does not produce.
func (p *Position) LegalMoves() []PseudoMove {
	return LegalMoves(p.board, p.board.ToMove)
}

// ApplyMove resolves input, a SAN token ("Nf3", "exd5", "e8=Q") or a UCI
// long-algebraic token ("g1f3", "e7e8q"), against the position's legal
// moves and, on a unique match, commits it and returns the resulting
// SAN. It fails with ErrIllegalMove when input does not resolve to
// exactly one legal move. Castling tokens are not accepted here: a game
// already parsed from PGN carries a resolved chess.Move for O-O/O-O-O
// and should call ApplyMove(board, move) directly instead.
func (p *Position) ApplyMove(input string) (string, error) {
	if _, _, _, ok := parseLAN(input); ok {
		for _, m := range LegalMoves(p.board, p.board.ToMove) {
			for _, candidate := range lanCandidates(m) {
				if candidate != input {
					continue
				}
				if san, applied := LANToSAN(p.board, input); applied {
					return san, nil
				}
			}
		}
	}

	lan, ok := resolveSAN(p.board, input)
	if !ok {
		return "", fmt.Errorf("%s: %w", input, apperrors.ErrIllegalMove)
	}
	san, applied := LANToSAN(p.board, lan)
	if !applied {
		return "", fmt.Errorf("%s: %w", input, apperrors.ErrIllegalMove)
	}
	return san, nil
}

// resolveSAN finds the legal move whose SAN rendering matches input
// (ignoring the trailing check/mate/annotation glyphs a caller's copy of
// the token might carry) and returns it as a LAN token ready for
// LANToSAN to apply for real. Pawn moves reaching the last rank are
// tried against all four promotion pieces since LegalMoves does not
// itself enumerate promotion choices.
func resolveSAN(board *chess.Board, input string) (lan string, ok bool) {
	target := normalizeSAN(input)
	for _, m := range LegalMoves(board, board.ToMove) {
		for _, candidate := range lanCandidates(m) {
			trial := board.Copy()
			san, applied := LANToSAN(trial, candidate)
			if applied && normalizeSAN(san) == target {
				return candidate, true
			}
		}
	}
	return "", false
}

func lanCandidates(m PseudoMove) []string {
	base := string(m.FromCol) + string(m.FromRank) + string(m.ToCol) + string(m.ToRank)
	if m.Piece != chess.Pawn || (m.ToRank != '1' && m.ToRank != '8') {
		return []string{base}
	}
	promos := []byte{'q', 'r', 'b', 'n'}
	candidates := make([]string, len(promos))
	for i, p := range promos {
		candidates[i] = base + string(p)
	}
	return candidates
}

func normalizeSAN(s string) string {
	return strings.TrimRight(s, "+#!?")
}
