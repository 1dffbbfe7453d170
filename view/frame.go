package view

import (
	"fmt"
	"strings"

	"github.com/brensch/gridsnakes/game"
	"github.com/brensch/gridsnakes/grid"
	"github.com/brensch/gridsnakes/rules"
)

// Glyphs used for every cell kind.
const (
	GlyphEmpty      = '_'
	GlyphFoodSmall  = '\''
	GlyphFoodMedium = '^'
	GlyphFoodLarge  = 'A'
	GlyphStone      = '!'
	GlyphHead       = 'o'
	GlyphTail       = '.'
	GlyphVertical   = '|'
	GlyphHorizontal = '='
)

// SnakeStats summarises one snake for a frame.
type SnakeStats struct {
	Player        int  `json:"player"`
	Length        int  `json:"length"`
	PendingGrowth int  `json:"pending_growth"`
	HeadRow       int  `json:"head_row"`
	HeadCol       int  `json:"head_col"`
	Collided      bool `json:"collided"`
}

// Frame is a self-contained picture of a game after a tick.
type Frame struct {
	Iteration int `json:"iteration"`
	Rows      int `json:"rows"`
	Cols      int `json:"cols"`
	// Cells holds one string of glyphs per row.
	Cells []string `json:"cells"`
	// Owners holds the owning player per cell, -1 when no snake is there.
	Owners  [][]int      `json:"owners"`
	Snakes  []SnakeStats `json:"snakes"`
	Outcome string       `json:"outcome"`
	Winners []int        `json:"winners,omitempty"`
	Losers  []int        `json:"losers,omitempty"`
	Status  string       `json:"status"`
}

// Glyph returns the character for the cell at p.
func Glyph(w *game.World, p grid.Point) rune {
	cell := w.Cell(p)
	switch cell.Kind {
	case game.KindEmpty:
		return GlyphEmpty
	case game.KindFood:
		switch cell.Growth {
		case 1:
			return GlyphFoodSmall
		case 2:
			return GlyphFoodMedium
		}
		return GlyphFoodLarge
	case game.KindStone:
		return GlyphStone
	case game.KindSnake:
		switch {
		case w.IsHead(cell.Owner, p):
			return GlyphHead
		case w.IsTail(cell.Owner, p):
			return GlyphTail
		case cell.Facing.Vertical():
			return GlyphVertical
		}
		return GlyphHorizontal
	}
	panic(fmt.Sprintf("view: unknown cell %v at %v", cell, p))
}

// Snapshot captures g. The frame shares nothing with the game.
func Snapshot(g *rules.Game) Frame {
	w := g.World
	res := g.TurnResult()
	f := Frame{
		Iteration: g.Iteration(),
		Rows:      w.Rows(),
		Cols:      w.Cols(),
		Cells:     make([]string, w.Rows()),
		Owners:    make([][]int, w.Rows()),
		Outcome:   res.Outcome.String(),
		Winners:   res.Winners,
		Losers:    res.Losers,
		Status:    Status(g),
	}

	var row strings.Builder
	for r := 0; r < w.Rows(); r++ {
		row.Reset()
		owners := make([]int, w.Cols())
		for c := 0; c < w.Cols(); c++ {
			p := grid.Point{Row: r, Col: c}
			row.WriteRune(Glyph(w, p))
			owners[c] = -1
			if cell := w.Cell(p); cell.IsSnake() {
				owners[c] = cell.Owner
			}
		}
		f.Cells[r] = row.String()
		f.Owners[r] = owners
	}

	collided := map[int]bool{}
	for _, e := range g.Events() {
		if e.Kind == game.EventCollision {
			collided[e.Player] = true
		}
	}
	for i, s := range w.Snakes() {
		f.Snakes = append(f.Snakes, SnakeStats{
			Player:        i,
			Length:        s.Length,
			PendingGrowth: s.PendingGrowth,
			HeadRow:       s.Head.Row,
			HeadCol:       s.Head.Col,
			Collided:      collided[i],
		})
	}
	return f
}

// Status is the one-line verdict shown under the board.
func Status(g *rules.Game) string {
	res := g.TurnResult()
	w := g.World
	switch res.Outcome {
	case rules.Ok:
		return fmt.Sprintf("Iteration %d", g.Iteration())
	case rules.Draw:
		return "Draw!"
	case rules.GameOver:
		if w.PlayerCount() > 1 {
			if len(res.Winners) == 0 {
				return "Everybody loses!"
			}
			return fmt.Sprintf("Player %d wins!", res.Winners[0]+1)
		}
		if len(res.Winners) == 0 {
			return fmt.Sprintf("Loss! Reached length: %d", w.Snake(0).Length)
		}
		return fmt.Sprintf("Win! Reached length: %d", w.Snake(0).Length)
	}
	return res.Outcome.String()
}

// String renders the board followed by the status line.
func (f Frame) String() string {
	var b strings.Builder
	for _, row := range f.Cells {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	b.WriteString(f.Status)
	return b.String()
}
