// Package grid provides a fixed-size, row-major 2D container.
//
// The grid knows nothing about the game; it maps (row, col) to a value and
// panics on out-of-bounds access, which is always a caller bug.
package grid

import "fmt"

// Position is anything that carries a board coordinate.
type Position interface {
	Coords() (row, col int)
}

// Point is a board coordinate. Row 0 is the top row.
// A Point may hold coordinates outside any grid (e.g. an attempted move
// through a wall); only Grid accessors require it to be in bounds.
type Point struct {
	Row int
	Col int
}

func (p Point) Coords() (int, int) { return p.Row, p.Col }

// Add returns p shifted by (dr, dc).
func (p Point) Add(dr, dc int) Point { return Point{Row: p.Row + dr, Col: p.Col + dc} }

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

// PointOf converts any Position to a Point.
func PointOf(pos Position) Point {
	if p, ok := pos.(Point); ok {
		return p
	}
	r, c := pos.Coords()
	return Point{Row: r, Col: c}
}

// Grid is a rectangular array of T. Dimensions never change after New.
type Grid[T any] struct {
	rows int
	cols int
	data []T
}

// New allocates a rows x cols grid with every cell set to fill.
func New[T any](rows, cols int, fill T) *Grid[T] {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("grid: invalid size %dx%d", rows, cols))
	}
	data := make([]T, rows*cols)
	for i := range data {
		data[i] = fill
	}
	return &Grid[T]{rows: rows, cols: cols, data: data}
}

func (g *Grid[T]) Rows() int { return g.rows }
func (g *Grid[T]) Cols() int { return g.cols }

// InBounds reports whether (row, col) addresses a cell of g.
func (g *Grid[T]) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// Wrap maps (row, col) onto the torus with g's dimensions.
func (g *Grid[T]) Wrap(row, col int) (int, int) {
	row = (row%g.rows + g.rows) % g.rows
	col = (col%g.cols + g.cols) % g.cols
	return row, col
}

// Index returns the linear index for p. It panics if p is out of bounds.
func (g *Grid[T]) Index(p Point) int {
	if !g.InBounds(p.Row, p.Col) {
		panic(fmt.Sprintf("grid: %v out of bounds for %dx%d", p, g.rows, g.cols))
	}
	return p.Row*g.cols + p.Col
}

func (g *Grid[T]) Get(p Point) T { return g.data[g.Index(p)] }

func (g *Grid[T]) Set(p Point, v T) { g.data[g.Index(p)] = v }

// Clone returns an independent copy of g. Values are copied shallowly, so
// T should be a value type.
func (g *Grid[T]) Clone() *Grid[T] {
	out := &Grid[T]{rows: g.rows, cols: g.cols, data: make([]T, len(g.data))}
	copy(out.data, g.data)
	return out
}
