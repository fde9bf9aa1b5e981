package output

import (
	"io"

	"github.com/lgbarn/pgn-extract-go/internal/chess"
	"github.com/lgbarn/pgn-extract-go/internal/config"
)

// GameWriter writes annotated games to an underlying stream.
type GameWriter interface {
	WriteGame(game *chess.Game) error
	Flush() error
	Close() error
}

// PGNWriter writes annotated games as PGN text.
type PGNWriter struct {
	w   io.Writer
	cfg *config.Config
}

// NewPGNWriter creates a PGN writer over w. cfg's OutputFile is temporarily
// redirected to w for the duration of each WriteGame call, since OutputGame
// reads its destination from there.
func NewPGNWriter(w io.Writer, cfg *config.Config) *PGNWriter {
	return &PGNWriter{w: w, cfg: cfg}
}

func (pw *PGNWriter) WriteGame(game *chess.Game) error {
	original := pw.cfg.OutputFile
	pw.cfg.OutputFile = pw.w
	OutputGame(game, pw.cfg)
	pw.cfg.OutputFile = original
	return nil
}

func (pw *PGNWriter) Flush() error {
	return nil
}

func (pw *PGNWriter) Close() error {
	return nil
}
