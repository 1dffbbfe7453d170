package game

import (
	"fmt"
	"slices"

	"github.com/brensch/gridsnakes/grid"
)

// Advance moves every snake one step, in ascending player order, and returns
// the events of this tick. directions must hold one entry per snake.
//
// Snakes move one after another, not simultaneously: a later snake sees the
// already updated position of an earlier one. When a later snake runs into
// the fresh head of an earlier snake both of them get a Collision.
func (w *World) Advance(directions []Orientation) []GameEvent {
	if len(directions) != len(w.snakes) {
		panic(fmt.Sprintf("game: %d directions for %d snakes", len(directions), len(w.snakes)))
	}
	w.events = w.events[:0]
	for s := range w.snakes {
		w.advanceSnake(s, directions[s])
	}
	return slices.Clone(w.events)
}

// checkDirection keeps the current heading when dir would reverse the snake
// into its own neck.
func (w *World) checkDirection(s int, dir Orientation) Orientation {
	head := w.SnakeDirection(w.snakes[s].Head)
	if dir == head.Opposite() {
		return head
	}
	return dir
}

func (w *World) advanceSnake(s int, dir Orientation) {
	snake := w.snakes[s]
	dir = w.checkDirection(s, dir)

	dr, dc := dir.Vector()
	target := snake.Head.Add(dr, dc)
	if !w.WallCollision {
		target.Row, target.Col = w.grid.Wrap(target.Row, target.Col)
	}
	if !w.grid.InBounds(target.Row, target.Col) {
		w.events = append(w.events, Collision(s, target))
		return
	}

	switch cell := w.grid.Get(target); cell.Kind {
	case KindFood:
		w.events = append(w.events, FoodConsumed(s, cell.Growth))
		w.availableSnacks--
		snake.PendingGrowth += cell.Growth
	case KindEmpty:
	case KindSnake:
		w.events = append(w.events, Collision(s, target))
		// The other snake already moved this tick and we hit its new head.
		if other := cell.Owner; other < s && w.IsHead(other, target) {
			w.events = append(w.events, Collision(other, w.previousHead(other)))
		}
		return
	case KindStone:
		w.events = append(w.events, Collision(s, target))
		return
	default:
		panic(fmt.Sprintf("game: unknown cell %v at %v", cell, target))
	}

	// The vacated head becomes a body segment pointing the way we went.
	w.grid.Set(snake.Head, Segment(s, dir))
	snake.Head = target
	w.grid.Set(snake.Head, Segment(s, dir))

	if snake.PendingGrowth == 0 {
		tr, tc := w.SnakeDirection(snake.Tail).Vector()
		nr, nc := w.grid.Wrap(snake.Tail.Row+tr, snake.Tail.Col+tc)
		next := grid.Point{Row: nr, Col: nc}
		nextDir := w.SnakeDirection(next)
		w.grid.Set(snake.Tail, Empty())
		snake.Tail = next
		w.grid.Set(snake.Tail, Segment(s, nextDir))
	} else {
		snake.PendingGrowth--
		snake.Length++
	}
	w.snakes[s] = snake
}

// previousHead is where player's head was before its move this tick: one
// step back along the head's facing.
func (w *World) previousHead(player int) grid.Point {
	head := w.snakes[player].Head
	dr, dc := w.SnakeDirection(head).Vector()
	r, c := w.grid.Wrap(head.Row-dr, head.Col-dc)
	return grid.Point{Row: r, Col: c}
}
