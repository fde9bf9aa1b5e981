// Package engine provides chess move validation and board manipulation.
package engine

import (
	"github.com/lgbarn/pgn-extract-go/internal/chess"
	"github.com/lgbarn/pgn-extract-go/internal/hashing"
)

// DrawRuleResult contains the results of draw rule detection.
type DrawRuleResult struct {
	// Has75MoveRule is true if a position was reached where 75 moves
	// (150 half-moves) have been made without a pawn move or capture.
	Has75MoveRule bool

	// Has5FoldRepetition is true if any position occurred 5 or more times.
	Has5FoldRepetition bool

	// HasInsufficientMaterial is true if the final position has insufficient
	// mating material for either side.
	HasInsufficientMaterial bool

	// HasMaterialOdds is true if the game started with unequal material.
	HasMaterialOdds bool
}

// AnalyzeDrawRules analyzes a game for various draw conditions.
func AnalyzeDrawRules(game *chess.Game) DrawRuleResult {
	result := DrawRuleResult{}

	board, err := NewBoardFromFEN(InitialFEN)
	if err != nil {
		return result
	}

	// Check for material odds at the start
	if game.FEN() != "" {
		// Game has a custom starting position - check for material odds
		startBoard, err := NewBoardFromFEN(game.FEN())
		if err == nil {
			result.HasMaterialOdds = !isStandardMaterial(startBoard)
		}
	}

	// Track position counts for 5-fold repetition
	positionCounts := make(map[uint64]int)

	// Track the initial position
	positionCounts[hashing.GenerateZobristHash(board)]++

	// Replay the game
	for move := game.Moves; move != nil; move = move.Next {
		if !ApplyMove(board, move) {
			break
		}

		// Check 75-move rule (150 half-moves without pawn move or capture)
		if board.HalfmoveClock >= 150 {
			result.Has75MoveRule = true
		}

		// Track position for 5-fold repetition
		hash := hashing.GenerateZobristHash(board)
		positionCounts[hash]++
		if positionCounts[hash] >= 5 {
			result.Has5FoldRepetition = true
		}
	}

	// Check insufficient material at final position
	result.HasInsufficientMaterial = HasInsufficientMaterial(board)

	return result
}

// HasInsufficientMaterial returns true if neither side has enough material
// to force checkmate. The five clauses below are applied in order and all
// must hold:
//
//  1. Neither side has a pawn, queen, or rook.
//  2. Neither side has both a knight and a bishop.
//  3. Neither side has more than one knight.
//  4. Neither side has more than one bishop.
//  5. Either side has no bishop, or both single bishops sit on
//     same-colored squares.
func HasInsufficientMaterial(board *chess.Board) bool {
	var whiteKnights, whiteBishops, blackKnights, blackBishops int
	var whiteBishopOnLight, blackBishopOnLight bool

	for rank := chess.Rank(chess.FirstRank); rank <= chess.Rank(chess.LastRank); rank++ {
		for col := chess.Col(chess.FirstCol); col <= chess.Col(chess.LastCol); col++ {
			piece := board.Get(col, rank)
			if piece == chess.Empty || piece == chess.Off {
				continue
			}

			colour := chess.ExtractColour(piece)
			pieceType := chess.ExtractPiece(piece)

			if pieceType == chess.King {
				continue
			}

			// Clause 1: any pawn, rook, or queen means sufficient material.
			if pieceType == chess.Pawn || pieceType == chess.Rook || pieceType == chess.Queen {
				return false
			}

			switch {
			case colour == chess.White && pieceType == chess.Knight:
				whiteKnights++
			case colour == chess.White && pieceType == chess.Bishop:
				whiteBishops++
				whiteBishopOnLight = isLightSquare(col, rank)
			case colour == chess.Black && pieceType == chess.Knight:
				blackKnights++
			case colour == chess.Black && pieceType == chess.Bishop:
				blackBishops++
				blackBishopOnLight = isLightSquare(col, rank)
			}
		}
	}

	// Clause 2: neither side has both a knight and a bishop.
	if (whiteKnights > 0 && whiteBishops > 0) || (blackKnights > 0 && blackBishops > 0) {
		return false
	}
	// Clause 3: neither side has more than one knight.
	if whiteKnights > 1 || blackKnights > 1 {
		return false
	}
	// Clause 4: neither side has more than one bishop.
	if whiteBishops > 1 || blackBishops > 1 {
		return false
	}
	// Clause 5: either side has no bishop, or both bishops match color.
	if whiteBishops == 1 && blackBishops == 1 && whiteBishopOnLight != blackBishopOnLight {
		return false
	}

	return true
}

// isLightSquare returns true if the given square is a light square.
func isLightSquare(col chess.Col, rank chess.Rank) bool {
	colNum := int(col - chess.FirstCol)
	rankNum := int(rank - chess.FirstRank)
	return (colNum+rankNum)%2 == 1
}

// isStandardMaterial checks if the board has standard starting material.
func isStandardMaterial(board *chess.Board) bool {
	// Standard material: 8 pawns, 2 rooks, 2 knights, 2 bishops, 1 queen, 1 king per side
	expectedPieces := map[chess.Piece]int{
		chess.W(chess.Pawn):   8,
		chess.W(chess.Rook):   2,
		chess.W(chess.Knight): 2,
		chess.W(chess.Bishop): 2,
		chess.W(chess.Queen):  1,
		chess.W(chess.King):   1,
		chess.B(chess.Pawn):   8,
		chess.B(chess.Rook):   2,
		chess.B(chess.Knight): 2,
		chess.B(chess.Bishop): 2,
		chess.B(chess.Queen):  1,
		chess.B(chess.King):   1,
	}

	actualPieces := make(map[chess.Piece]int)

	for rank := chess.Rank(chess.FirstRank); rank <= chess.Rank(chess.LastRank); rank++ {
		for col := chess.Col(chess.FirstCol); col <= chess.Col(chess.LastCol); col++ {
			piece := board.Get(col, rank)
			if piece != chess.Empty && piece != chess.Off {
				actualPieces[piece]++
			}
		}
	}

	// Compare actual vs expected
	for piece, expected := range expectedPieces {
		if actualPieces[piece] != expected {
			return false
		}
	}

	return true
}

// CheckMaterialOdds checks if a game started with material odds.
func CheckMaterialOdds(game *chess.Game) bool {
	fenStr := game.FEN()
	if fenStr == "" {
		return false // Standard starting position
	}

	board, err := NewBoardFromFEN(fenStr)
	if err != nil {
		return false
	}

	return !isStandardMaterial(board)
}
