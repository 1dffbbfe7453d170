// Package game defines the grid world a set of snakes lives in and the
// physics of a single simulation tick.
//
// The world is designed to be cheaply clonable for look-ahead search: a clone
// shares no mutable state with its origin.
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"github.com/brensch/gridsnakes/grid"
)

var (
	// ErrOccupied is returned when placing something on a non-empty cell.
	ErrOccupied = errors.New("cell occupied")
	// ErrOutOfBounds is returned when a placement falls outside the grid.
	ErrOutOfBounds = errors.New("position out of bounds")
	// ErrNoSpace is returned when random placement found no free cell.
	ErrNoSpace = errors.New("no free cell found")
)

// Snake is the per-player record. The body between Tail and Head is only
// stored in the grid: each segment points towards the next one.
type Snake struct {
	Head          grid.Point
	Tail          grid.Point
	PendingGrowth int
	Length        int
}

func (s Snake) String() string {
	return fmt.Sprintf("Snake(%v, %v)", s.Head, s.Tail)
}

// World owns the grid and the snakes. Cells are the source of truth for
// occupancy; Snake records only remember where the ends are.
type World struct {
	// WallCollision makes the border solid. When false the board wraps.
	WallCollision bool

	grid            *grid.Grid[Cell]
	snakes          []Snake
	availableSnacks int
	events          []GameEvent
	rng             *rand.Rand
}

// NewWorld creates an empty rows x cols world with toroidal edges.
func NewWorld(rows, cols int) *World {
	if rows < 2 || cols < 1 {
		panic(fmt.Sprintf("game: world must be at least 2x1, got %dx%d", rows, cols))
	}
	return &World{grid: grid.New(rows, cols, Empty())}
}

// SetRand sets the generator used for random placement. With no generator
// placement is seeded from a hash of the world, which keeps clones
// deterministic.
func (w *World) SetRand(rng *rand.Rand) { w.rng = rng }

func (w *World) Rows() int { return w.grid.Rows() }
func (w *World) Cols() int { return w.grid.Cols() }

func (w *World) PlayerCount() int { return len(w.snakes) }

// AvailableSnacks is the number of food items currently on the board.
func (w *World) AvailableSnacks() int { return w.availableSnacks }

func (w *World) Snake(player int) Snake { return w.snakes[player] }

// Snakes returns a copy of all snake records ordered by player id.
func (w *World) Snakes() []Snake { return slices.Clone(w.snakes) }

// Cell returns the cell at pos, which must be in bounds.
func (w *World) Cell(pos grid.Position) Cell { return w.grid.Get(grid.PointOf(pos)) }

// Events returns the events of the last tick.
func (w *World) Events() []GameEvent { return slices.Clone(w.events) }

// AddSnake places a new two-segment snake with its head at head, pointing
// towards facing; the tail sits one cell behind. The new snake gets the next
// player id.
func (w *World) AddSnake(head grid.Point, facing Orientation) error {
	dr, dc := facing.Vector()
	tail := head.Add(-dr, -dc)
	if !w.grid.InBounds(head.Row, head.Col) || !w.grid.InBounds(tail.Row, tail.Col) {
		return fmt.Errorf("add snake at %v facing %v: %w", head, facing, ErrOutOfBounds)
	}
	if !w.grid.Get(head).IsEmpty() || !w.grid.Get(tail).IsEmpty() {
		return fmt.Errorf("add snake at %v facing %v: %w", head, facing, ErrOccupied)
	}

	id := len(w.snakes)
	w.snakes = append(w.snakes, Snake{Head: head, Tail: tail, Length: 2})
	w.grid.Set(head, Segment(id, facing))
	w.grid.Set(tail, Segment(id, facing))
	return nil
}

// SnakeDirection returns the facing of the snake segment at pos. A non-snake
// cell here means the model is corrupt, so it panics.
func (w *World) SnakeDirection(pos grid.Position) Orientation {
	p := grid.PointOf(pos)
	c := w.grid.Get(p)
	if !c.IsSnake() {
		panic(fmt.Sprintf("game: %v at %v should be snake cell", c, p))
	}
	return c.Facing
}

func (w *World) IsHead(player int, pos grid.Position) bool {
	return w.snakes[player].Head == grid.PointOf(pos)
}

func (w *World) IsTail(player int, pos grid.Position) bool {
	return w.snakes[player].Tail == grid.PointOf(pos)
}

// IsBody reports whether pos is a segment of player other than its head or tail.
func (w *World) IsBody(player int, pos grid.Position) bool {
	p := grid.PointOf(pos)
	c := w.grid.Get(p)
	return c.IsSnake() && c.Owner == player && !w.IsHead(player, p) && !w.IsTail(player, p)
}

// Clone performs a deep copy of the world. The clone has no generator of its
// own, see SetRand.
func (w *World) Clone() *World {
	return &World{
		WallCollision:   w.WallCollision,
		grid:            w.grid.Clone(),
		snakes:          slices.Clone(w.snakes),
		availableSnacks: w.availableSnacks,
		events:          slices.Clone(w.events),
	}
}
