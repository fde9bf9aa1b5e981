// Package hashing supplies position fingerprints for the ECO adapter (C5)
// and for the supplementary repetition/material-odds bookkeeping in
// internal/engine/rules.go. It fills a gap in the retrieved package: both
// callers referenced hashing.GenerateZobristHash without it ever being
// defined anywhere in the tree. WeakHash has no caller in this module.
package hashing

import (
	"math/rand"

	"github.com/lgbarn/pgn-extract-go/internal/chess"
)

// pieceKeys[colouredPiece][col][rank] holds one random key per (piece,
// square) combination, indexed directly by the board's packed Piece byte
// and the hedge-offset array coordinates, so lookups need no translation.
var (
	pieceKeys    [256][chess.Hedge + chess.BoardSize + chess.Hedge][chess.Hedge + chess.BoardSize + chess.Hedge]uint64
	sideToMoveKey uint64
	castleKeys   [256]uint64 // indexed by the raw Col byte of a castling-rook file, 0 = no rights
	epFileKeys   [256]uint64 // indexed by the raw Col byte of the en-passant file, 0 = none
)

func init() {
	// Fixed seed: the hash only needs to be a stable, collision-resistant
	// fingerprint within a single process run, not cryptographically
	// random or stable across builds.
	r := rand.New(rand.NewSource(0x5A6F62726973742A))

	for piece := 0; piece < 256; piece++ {
		for col := 0; col < len(pieceKeys[0]); col++ {
			for rank := 0; rank < len(pieceKeys[0][0]); rank++ {
				pieceKeys[piece][col][rank] = r.Uint64()
			}
		}
	}
	sideToMoveKey = r.Uint64()
	for i := range castleKeys {
		castleKeys[i] = r.Uint64()
	}
	for i := range epFileKeys {
		epFileKeys[i] = r.Uint64()
	}
}

// GenerateZobristHash computes a fingerprint of the board's observable
// state: piece placement, side to move, castling rights, and en-passant
// file. It is a pure function of that state, recomputed from scratch on
// each call rather than incrementally maintained, so two boards reaching
// the same position by different move orders always hash identically.
func GenerateZobristHash(board *chess.Board) uint64 {
	var h uint64

	for col := chess.Hedge; col < chess.Hedge+chess.BoardSize; col++ {
		for rank := chess.Hedge; rank < chess.Hedge+chess.BoardSize; rank++ {
			piece := board.GetByIndex(col, rank)
			if piece == chess.Empty || piece == chess.Off {
				continue
			}
			h ^= pieceKeys[byte(piece)][col][rank]
		}
	}

	if board.ToMove == chess.White {
		h ^= sideToMoveKey
	}

	h ^= castleKeys[byte(board.WKingCastle)]
	h ^= castleKeys[byte(board.WQueenCastle)] * 0x9E3779B97F4A7C15
	h ^= castleKeys[byte(board.BKingCastle)] * 0xBF58476D1CE4E5B9
	h ^= castleKeys[byte(board.BQueenCastle)] * 0x94D049BB133111EB

	if board.EnPassant {
		h ^= epFileKeys[byte(board.EPCol)]
	}

	return h
}

// WeakHash is a cheap secondary fingerprint that can be compared alongside
// GenerateZobristHash's 64-bit hash; it sums, over the occupied squares,
// 31 times the piece code plus the square index, so two positions that collide under the
// Zobrist hash almost certainly also differ here.
func WeakHash(board *chess.Board) chess.HashCode {
	var h chess.HashCode

	for col := chess.Hedge; col < chess.Hedge+chess.BoardSize; col++ {
		for rank := chess.Hedge; rank < chess.Hedge+chess.BoardSize; rank++ {
			piece := board.GetByIndex(col, rank)
			if piece == chess.Empty || piece == chess.Off {
				continue
			}
			idx := chess.HashCode((col-chess.Hedge)*chess.BoardSize + (rank - chess.Hedge))
			h += chess.HashCode(piece)*31 + idx
		}
	}

	return h
}
