package engine

import "github.com/lgbarn/pgn-extract-go/internal/chess"

// ApplyMove commits move to board, dispatching on its class to the
// pawn/piece/castle appliers. A nil move or an unresolvable piece source
// leaves the board unchanged and returns false.
func ApplyMove(board *chess.Board, move *chess.Move) bool {
	if board == nil || move == nil {
		return false
	}

	switch move.Class {
	case chess.NullMove:
		return applyNullMove(board)
	case chess.KingsideCastle:
		return applyCastle(board, true)
	case chess.QueensideCastle:
		return applyCastle(board, false)
	case chess.PawnMove, chess.PawnMoveWithPromotion, chess.EnPassantPawnMove:
		return applyPawnMove(board, move)
	case chess.PieceMove:
		return applyPieceMove(board, move)
	default:
		return false
	}
}

// applyNullMove passes the turn without moving a piece, clearing any
// en-passant target the way a real move would.
func applyNullMove(board *chess.Board) bool {
	board.EnPassant = false
	board.HalfmoveClock++
	if board.ToMove == chess.Black {
		board.MoveNumber++
	}
	board.ToMove = board.ToMove.Opposite()
	return true
}
