package engine

import (
	"errors"
	"testing"

	"github.com/lgbarn/pgn-extract-go/internal/chess"
	apperrors "github.com/lgbarn/pgn-extract-go/internal/errors"
)

func TestPosition_FromInitial_LegalMovesMatchesCount(t *testing.T) {
	pos := FromInitial()
	moves := pos.LegalMoves()
	if len(moves) != 20 {
		t.Errorf("len(LegalMoves()) = %d, want 20", len(moves))
	}
	if want := CountLegalMoves(pos.board, chess.White); len(moves) != want {
		t.Errorf("LegalMoves/CountLegalMoves disagree: %d vs %d", len(moves), want)
	}
}

func TestLegalMoves_MatchesCountAcrossFixtures(t *testing.T) {
	fens := []string{
		InitialFEN,
		"k7/8/1K6/8/8/8/8/7R w - - 0 1",
		"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
	}
	for _, fen := range fens {
		board, err := NewBoardFromFEN(fen)
		if err != nil {
			t.Fatalf("NewBoardFromFEN(%q): %v", fen, err)
		}
		for _, colour := range []chess.Colour{chess.White, chess.Black} {
			got := len(LegalMoves(board, colour))
			want := CountLegalMoves(board, colour)
			if got != want {
				t.Errorf("fen %q colour %v: len(LegalMoves)=%d, CountLegalMoves=%d", fen, colour, got, want)
			}
		}
	}
}

func TestPosition_ApplyMove_SAN(t *testing.T) {
	pos := FromInitial()
	san, err := pos.ApplyMove("e4")
	if err != nil {
		t.Fatalf("ApplyMove(e4) failed: %v", err)
	}
	if san != "e4" {
		t.Errorf("san = %q, want e4", san)
	}
	if pos.SideToMove() != chess.Black {
		t.Errorf("SideToMove() = %v, want Black", pos.SideToMove())
	}
}

func TestPosition_ApplyMove_LAN(t *testing.T) {
	pos := FromInitial()
	san, err := pos.ApplyMove("e2e4")
	if err != nil {
		t.Fatalf("ApplyMove(e2e4) failed: %v", err)
	}
	if san != "e4" {
		t.Errorf("san = %q, want e4", san)
	}
}

func TestPosition_ApplyMove_Illegal(t *testing.T) {
	pos := FromInitial()
	if _, err := pos.ApplyMove("Qh5"); err == nil {
		t.Fatal("ApplyMove(Qh5) from the initial position should fail")
	} else if !errors.Is(err, apperrors.ErrIllegalMove) {
		t.Errorf("error should wrap ErrIllegalMove, got %v", err)
	}
}

func TestPosition_CheckAndMate(t *testing.T) {
	// Fool's mate: black to move is not the case here; white is mated.
	pos, err := FromFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if err != nil {
		t.Fatalf("FromFEN failed: %v", err)
	}
	if !pos.InCheck() {
		t.Error("InCheck() = false, want true")
	}
	if !pos.IsMate() {
		t.Error("IsMate() = false, want true")
	}
	if pos.IsStalemate() {
		t.Error("IsStalemate() = true, want false (it's checkmate, not stalemate)")
	}
}

func TestPosition_CloneIsIndependent(t *testing.T) {
	pos := FromInitial()
	clone := pos.Clone()
	if _, err := clone.ApplyMove("e4"); err != nil {
		t.Fatalf("ApplyMove on clone failed: %v", err)
	}
	if pos.SideToMove() != chess.White {
		t.Error("mutating the clone should not affect the original position")
	}
}

func TestPosition_FullmoveAndHalfmoveClock(t *testing.T) {
	pos := FromInitial()
	if pos.Fullmove() != 1 {
		t.Errorf("Fullmove() = %d, want 1", pos.Fullmove())
	}
	if pos.HalfmoveClock() != 0 {
		t.Errorf("HalfmoveClock() = %d, want 0", pos.HalfmoveClock())
	}
}

func TestPosition_PieceAt(t *testing.T) {
	pos := FromInitial()
	if got := pos.PieceAt('e', '1'); got != chess.W(chess.King) {
		t.Errorf("PieceAt(e1) = %v, want white king", got)
	}
}
