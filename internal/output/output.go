// Package output renders an annotated game back out as PGN text: tag
// pairs in the required order, move text carrying the analyzer's inline
// comments, and 80-column wrapping.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lgbarn/pgn-extract-go/internal/chess"
	"github.com/lgbarn/pgn-extract-go/internal/config"
	"github.com/lgbarn/pgn-extract-go/internal/engine"
)

const maxLineLength = 80

// rosterTag pairs a Seven Tag Roster name with the sentinel value emitted
// when the source PGN omitted it.
type rosterTag struct {
	name    string
	missing string
}

var sevenTagRoster = []rosterTag{
	{"Event", "?"},
	{"Site", "?"},
	{"Date", "????.??.??"},
	{"Round", "?"},
	{"White", "?"},
	{"Black", "?"},
	{"Result", "*"},
}

// producedTagOrder is the fixed order this tool's own tags follow, once the
// roster and the source's remaining tags (lexicographic) have been emitted.
var producedTagOrder = []string{
	"Annotator", "Analyzer", "ECO", "Variation", "Scid-ECO",
	"White-Moves", "Black-Moves",
	"White-Forced-Moves", "Black-Forced-Moves",
	"White-Errors", "Black-Errors",
	"White-Blunders", "Black-Blunders",
	"White-Errors-Per-Move", "Black-Errors-Per-Move",
	"White-Blunders-Per-Move", "Black-Blunders-Per-Move",
	"White-Loss-Per-Move", "Black-Loss-Per-Move",
	"Game",
}

var seenTags = buildSeenTags()

func buildSeenTags() map[string]bool {
	seen := make(map[string]bool, len(sevenTagRoster)+len(producedTagOrder))
	for _, t := range sevenTagRoster {
		seen[t.name] = true
	}
	for _, name := range producedTagOrder {
		seen[name] = true
	}
	return seen
}

// OutputGame writes one annotated game to cfg.OutputFile: tags, a blank
// line, the wrapped move text, and a trailing blank line.
func OutputGame(game *chess.Game, cfg *config.Config) {
	w := cfg.OutputFile
	writeTags(w, game)
	fmt.Fprintln(w)
	fmt.Fprintln(w, wrapMoveText(buildMoveText(game)))
	fmt.Fprintln(w)
}

func writeTags(w io.Writer, game *chess.Game) {
	for _, t := range sevenTagRoster {
		value := game.GetTag(t.name)
		if value == "" {
			value = t.missing
		}
		writeTag(w, t.name, value)
	}

	rest := make([]string, 0, len(game.Tags))
	for name := range game.Tags {
		if !seenTags[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		writeTag(w, name, game.Tags[name])
	}

	for _, name := range producedTagOrder {
		if value := game.Tags[name]; value != "" {
			writeTag(w, name, value)
		}
	}
}

func writeTag(w io.Writer, name, value string) {
	fmt.Fprintf(w, "[%s \"%s\"]\n", escapeTagName(name), escapeTagValue(value))
}

// escapeTagValue backslash-escapes \ and " inside a tag value.
func escapeTagValue(s string) string {
	if !strings.ContainsAny(s, `\"`) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// escapeTagName backslash-escapes \ and ] inside a tag name.
func escapeTagName(s string) string {
	if !strings.ContainsAny(s, `\]`) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `]`, `\]`)
	return s
}

// buildMoveText assembles the full move-text line: move numbers, SAN (as
// produced by the parser, or overwritten in place by the analyzer),
// per-move comments, nested variations verbatim, and the final result.
func buildMoveText(game *chess.Game) string {
	moveNum, isWhite := startingMoveState(game)
	var parts []string
	leading := true

	for move := game.Moves; move != nil; move = move.Next {
		parts = appendMoveTokens(parts, move, moveNum, isWhite, leading)
		leading = false

		if !isWhite {
			moveNum++
		}
		isWhite = !isWhite
	}

	parts = append(parts, getGameResult(game))
	return strings.Join(parts, " ")
}

func appendMoveTokens(parts []string, move *chess.Move, moveNum int, isWhite, leading bool) []string {
	if isWhite {
		parts = append(parts, fmt.Sprintf("%d.", moveNum))
	} else if leading {
		parts = append(parts, fmt.Sprintf("%d...", moveNum))
	}

	parts = append(parts, move.Text)

	for _, c := range move.Comments {
		parts = append(parts, "{"+c.Text+"}")
	}

	for _, v := range move.Variations {
		parts = append(parts, renderVariation(v, moveNum, isWhite))
	}

	return parts
}

// renderVariation renders one variation as a parenthesized token group,
// starting from the same position and side to move as the move it replaces.
func renderVariation(v *chess.Variation, moveNum int, isWhite bool) string {
	var parts []string
	for _, c := range v.PrefixComment {
		parts = append(parts, "{"+c.Text+"}")
	}

	leading := true
	for move := v.Moves; move != nil; move = move.Next {
		parts = appendMoveTokens(parts, move, moveNum, isWhite, leading)
		leading = false

		if !isWhite {
			moveNum++
		}
		isWhite = !isWhite
	}

	if result := getVariationResult(v); result != "" {
		parts = append(parts, result)
	}
	for _, c := range v.SuffixComment {
		parts = append(parts, "{"+c.Text+"}")
	}

	return "(" + strings.Join(parts, " ") + ")"
}

// startingMoveState returns the move number and side to move the game's
// first ply is played from, honoring a FEN tag for non-standard starts.
func startingMoveState(game *chess.Game) (int, bool) {
	if fen := game.GetTag("FEN"); fen != "" {
		if b, err := engine.NewBoardFromFEN(fen); err == nil {
			return int(b.MoveNumber), b.ToMove == chess.White
		}
	}
	return 1, true
}

func getGameResult(game *chess.Game) string {
	if lastMove := game.LastMove(); lastMove != nil && lastMove.TerminatingResult != "" {
		return lastMove.TerminatingResult
	}
	if result := game.GetTag("Result"); result != "" {
		return result
	}
	return "*"
}

func getVariationResult(variation *chess.Variation) string {
	if variation.Moves == nil {
		return ""
	}
	last := variation.Moves
	for last.Next != nil {
		last = last.Next
	}
	return last.TerminatingResult
}

// wrapMoveText walks text character by character, remembering the last
// whitespace that isn't glued to a move-number dot, and swaps it for a
// newline once the column reaches maxLineLength. If no safe break has been
// seen yet, the line is allowed to run past the limit.
func wrapMoveText(text string) string {
	out := make([]byte, 0, len(text)+len(text)/maxLineLength)
	col := 0
	breakAt := -1
	breakCol := 0

	for i := 0; i < len(text); i++ {
		ch := text[i]
		out = append(out, ch)
		col++

		if ch == ' ' && !(i > 0 && text[i-1] == '.') {
			breakAt = len(out) - 1
			breakCol = col
		}

		if col >= maxLineLength && breakAt >= 0 {
			out[breakAt] = '\n'
			col -= breakCol
			breakAt = -1
		}
	}

	return string(out)
}
