package rules

import (
	"math/rand"
	"testing"

	"github.com/brensch/gridsnakes/game"
	"github.com/brensch/gridsnakes/grid"
	"github.com/google/go-cmp/cmp"
)

func pt(r, c int) grid.Point { return grid.Point{Row: r, Col: c} }

func newWorld(t *testing.T, rows, cols int, walls bool, snakes ...struct {
	head   grid.Point
	facing game.Orientation
}) *game.World {
	t.Helper()
	w := game.NewWorld(rows, cols)
	w.WallCollision = walls
	w.SetRand(rand.New(rand.NewSource(1)))
	for _, s := range snakes {
		if err := w.AddSnake(s.head, s.facing); err != nil {
			t.Fatalf("AddSnake(%v, %v): %v", s.head, s.facing, err)
		}
	}
	return w
}

func snake(head grid.Point, facing game.Orientation) struct {
	head   grid.Point
	facing game.Orientation
} {
	return struct {
		head   grid.Point
		facing game.Orientation
	}{head, facing}
}

func foodCells(w *game.World) []game.Cell {
	var out []game.Cell
	for r := 0; r < w.Rows(); r++ {
		for c := 0; c < w.Cols(); c++ {
			if cell := w.Cell(pt(r, c)); cell.Kind == game.KindFood {
				out = append(out, cell)
			}
		}
	}
	return out
}

func TestAdvance_InputsResolveDirections(t *testing.T) {
	w := newWorld(t, 8, 8, false, snake(pt(2, 2), game.Down), snake(pt(2, 5), game.Down))
	g := New(w)
	g.MaxSnacks = 0

	g.Advance([]PlayerInput{DoNothing, Go(game.Right)})

	if got := w.Snake(0).Head; got != pt(3, 2) {
		t.Fatalf("snake 0 head=%v want=(3,2)", got)
	}
	if got := w.Snake(1).Head; got != pt(2, 6) {
		t.Fatalf("snake 1 head=%v want=(2,6)", got)
	}

	// Missing inputs keep the heading.
	g.Advance(nil)
	if got := w.Snake(1).Head; got != pt(2, 7) {
		t.Fatalf("snake 1 head=%v want=(2,7)", got)
	}
	if g.Iteration() != 2 {
		t.Fatalf("iteration=%d want=2", g.Iteration())
	}
}

func TestAdvance_CrossCollisionIsDraw(t *testing.T) {
	w := newWorld(t, 5, 5, false, snake(pt(2, 2), game.Right), snake(pt(1, 3), game.Down))
	g := New(w)
	g.MaxSnacks = 0

	g.Advance([]PlayerInput{DoNothing, DoNothing})

	if got := g.TurnResult(); got.Outcome != Draw {
		t.Fatalf("outcome=%v want=Draw", got.Outcome)
	}
	if g.Iteration() != 0 {
		t.Fatalf("iteration=%d want=0", g.Iteration())
	}
}

func TestAdvance_OneCollidedIsGameOver(t *testing.T) {
	w := newWorld(t, 5, 5, true, snake(pt(2, 4), game.Right), snake(pt(1, 0), game.Down))
	g := New(w)
	g.MaxSnacks = 0

	g.Advance([]PlayerInput{DoNothing, DoNothing})

	want := TurnResult{Outcome: GameOver, Winners: []int{1}, Losers: []int{0}}
	if diff := cmp.Diff(want, g.TurnResult()); diff != "" {
		t.Fatalf("turn result mismatch (-want +got):\n%s", diff)
	}

	// The next turn resets the verdict.
	g.LoseOnCollision = false
	g.Advance([]PlayerInput{DoNothing, DoNothing})
	if got := g.TurnResult(); got.Outcome != Ok || len(got.Winners) != 0 || len(got.Losers) != 0 {
		t.Fatalf("turn result=%+v want plain Ok", got)
	}
}

func TestAdvance_SinglePlayerWall(t *testing.T) {
	for _, lose := range []bool{true, false} {
		w := newWorld(t, 3, 3, true, snake(pt(1, 1), game.Down))
		g := New(w)
		g.MaxSnacks = 0
		g.LoseOnCollision = lose

		g.Advance([]PlayerInput{DoNothing})
		if got := g.TurnResult().Outcome; got != Ok {
			t.Fatalf("lose=%v first turn outcome=%v want=Ok", lose, got)
		}

		g.Advance([]PlayerInput{DoNothing})
		want := []game.GameEvent{game.Collision(0, pt(3, 1))}
		if diff := cmp.Diff(want, g.Events()); diff != "" {
			t.Fatalf("lose=%v events mismatch (-want +got):\n%s", lose, diff)
		}

		res := g.TurnResult()
		if lose {
			want := TurnResult{Outcome: GameOver, Winners: []int{}, Losers: []int{0}}
			if diff := cmp.Diff(want, res); diff != "" {
				t.Fatalf("turn result mismatch (-want +got):\n%s", diff)
			}
			if g.Iteration() != 1 {
				t.Fatalf("iteration=%d want=1", g.Iteration())
			}
		} else {
			if res.Outcome != Ok {
				t.Fatalf("outcome=%v want=Ok", res.Outcome)
			}
			if g.Iteration() != 2 {
				t.Fatalf("iteration=%d want=2", g.Iteration())
			}
		}
	}
}

func TestAdvance_BoardFilledWins(t *testing.T) {
	w := newWorld(t, 3, 3, false, snake(pt(1, 1), game.Down))
	if err := w.PlaceSnack(pt(2, 1), 2); err != nil {
		t.Fatalf("PlaceSnack: %v", err)
	}
	g := New(w)
	g.MaxSnacks = 0

	g.Advance([]PlayerInput{DoNothing})
	if got := g.TurnResult().Outcome; got != Ok {
		t.Fatalf("outcome=%v want=Ok (length=%d)", got, w.Snake(0).Length)
	}

	g.Advance([]PlayerInput{Go(game.Right)})
	want := TurnResult{Outcome: GameOver, Winners: []int{0}, Losers: []int{}}
	if diff := cmp.Diff(want, g.TurnResult()); diff != "" {
		t.Fatalf("turn result mismatch (-want +got):\n%s", diff)
	}
	if got := w.Snake(0).Length; got != 4 {
		t.Fatalf("length=%d want=4", got)
	}
}

func TestSnackGrowthCycles(t *testing.T) {
	cases := map[int]int{0: 1, 1: 3, 2: 2, 3: 1, 16: 3, 32: 2}
	for it, want := range cases {
		if got := snackGrowth(it); got != want {
			t.Fatalf("snackGrowth(%d)=%d want=%d", it, got, want)
		}
	}
}

func TestSpawnSnacks_Cadence(t *testing.T) {
	w := newWorld(t, 8, 8, false, snake(pt(2, 2), game.Down))
	g := New(w)

	g.iteration = 3
	g.spawnSnacks()
	if w.AvailableSnacks() != 0 {
		t.Fatalf("spawned off-cadence")
	}

	g.iteration = 16
	g.spawnSnacks()
	food := foodCells(w)
	if len(food) != 1 || food[0].Growth != 3 {
		t.Fatalf("food=%v want one snack of growth 3", food)
	}

	g.iteration = 32
	g.spawnSnacks()
	g.iteration = 48
	g.spawnSnacks()
	if got := w.AvailableSnacks(); got != DefaultMaxSnacks {
		t.Fatalf("snacks=%d want cap %d", got, DefaultMaxSnacks)
	}

	g.MaxSnacks = 0
	g.iteration = 64
	g.spawnSnacks()
	if got := w.AvailableSnacks(); got != DefaultMaxSnacks {
		t.Fatalf("snacks=%d want spawning disabled", got)
	}
}

func TestAdvance_FirstTurnSpawnsSnack(t *testing.T) {
	w := newWorld(t, 10, 10, false, snake(pt(1, 1), game.Down))
	g := New(w)

	g.Advance([]PlayerInput{DoNothing})

	food := foodCells(w)
	if len(food) != 1 || food[0].Growth != 1 {
		t.Fatalf("food=%v want one snack of growth 1", food)
	}
}

func TestClone_Isolated(t *testing.T) {
	w := newWorld(t, 6, 6, false, snake(pt(2, 2), game.Down))
	g := New(w)
	g.Advance([]PlayerInput{DoNothing})

	c := g.Clone()
	c.MaxSnacks = 0
	c.Advance([]PlayerInput{Go(game.Left)})
	c.Advance([]PlayerInput{DoNothing})

	if g.Iteration() != 1 || c.Iteration() != 3 {
		t.Fatalf("iterations origin=%d clone=%d want=1,3", g.Iteration(), c.Iteration())
	}
	if g.MaxSnacks != DefaultMaxSnacks {
		t.Fatalf("origin MaxSnacks=%d", g.MaxSnacks)
	}
	if got := g.World.Snake(0).Head; got != pt(3, 2) {
		t.Fatalf("origin head=%v want=(3,2)", got)
	}
}

func TestPlayerInputString(t *testing.T) {
	if got := Go(game.Left).String(); got != "Go(Left)" {
		t.Fatalf("got %q", got)
	}
	if got := DoNothing.String(); got != "DoNothing" {
		t.Fatalf("got %q", got)
	}
}
