// food.go implements snack and stone placement.

package game

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/brensch/gridsnakes/grid"
)

// randomPlacementAttempts bounds the search for a free cell.
const randomPlacementAttempts = 100

// PlaceSnack puts a food item of the given growth value at pos.
func (w *World) PlaceSnack(pos grid.Position, growth int) error {
	p := grid.PointOf(pos)
	if !w.grid.InBounds(p.Row, p.Col) {
		return fmt.Errorf("place snack at %v: %w", p, ErrOutOfBounds)
	}
	if !w.grid.Get(p).IsEmpty() {
		return fmt.Errorf("place snack at %v: %w", p, ErrOccupied)
	}
	w.grid.Set(p, Food(growth))
	w.availableSnacks++
	return nil
}

// PlaceSnackRandomly tries up to 100 uniformly random cells and places the
// snack on the first empty one.
func (w *World) PlaceSnackRandomly(growth int) error {
	rng := w.source(0x534E41434B) // "SNACK"
	for i := 0; i < randomPlacementAttempts; i++ {
		p := grid.Point{Row: rng.Intn(w.Rows()), Col: rng.Intn(w.Cols())}
		if err := w.PlaceSnack(p, growth); err == nil {
			return nil
		}
	}
	return fmt.Errorf("place snack after %d attempts: %w", randomPlacementAttempts, ErrNoSpace)
}

// PlaceStone puts an obstacle at pos.
func (w *World) PlaceStone(pos grid.Position) error {
	p := grid.PointOf(pos)
	if !w.grid.InBounds(p.Row, p.Col) {
		return fmt.Errorf("place stone at %v: %w", p, ErrOutOfBounds)
	}
	if !w.grid.Get(p).IsEmpty() {
		return fmt.Errorf("place stone at %v: %w", p, ErrOccupied)
	}
	w.grid.Set(p, Stone())
	return nil
}

// PlaceStonesRandomly scatters up to n stones and returns how many were placed.
// Cells directly in front of a snake head are left free so no snake starts
// facing a stone.
func (w *World) PlaceStonesRandomly(n int) int {
	rng := w.source(0x53544F4E45) // "STONE"
	placed := 0
	for i := 0; i < n; i++ {
		for attempt := 0; attempt < randomPlacementAttempts; attempt++ {
			p := grid.Point{Row: rng.Intn(w.Rows()), Col: rng.Intn(w.Cols())}
			if w.inFrontOfHead(p) {
				continue
			}
			if err := w.PlaceStone(p); err == nil {
				placed++
				break
			}
		}
	}
	return placed
}

func (w *World) inFrontOfHead(p grid.Point) bool {
	for _, s := range w.snakes {
		dr, dc := w.SnakeDirection(s.Head).Vector()
		r, c := w.grid.Wrap(s.Head.Row+dr, s.Head.Col+dc)
		if p.Row == r && p.Col == c {
			return true
		}
	}
	return false
}

// source returns the configured generator, or a fresh one seeded from the
// world itself when none is set.
func (w *World) source(salt uint64) *rand.Rand {
	if w.rng != nil {
		return w.rng
	}
	seed := int64(w.deterministicU64(salt))
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewSource(seed))
}

// deterministicU64 mixes board size, snack count and every snake into a
// reproducible seed.
func (w *World) deterministicU64(salt uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}

	put(uint64(uint32(w.Rows())) | uint64(uint32(w.Cols()))<<32)
	put(salt)
	put(uint64(w.availableSnacks))
	for _, s := range w.snakes {
		put(uint64(uint32(s.Head.Row))<<32 | uint64(uint32(s.Head.Col)))
		put(uint64(uint32(s.Tail.Row))<<32 | uint64(uint32(s.Tail.Col)))
		put(uint64(uint32(s.Length))<<32 | uint64(uint32(s.PendingGrowth)))
	}
	return h.Sum64()
}
