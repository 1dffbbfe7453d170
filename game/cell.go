package game

import "fmt"

// CellKind discriminates what occupies a grid position.
type CellKind uint8

const (
	KindEmpty CellKind = iota
	KindFood
	KindStone
	KindSnake
)

// Cell is the occupancy of one grid position. Only the fields belonging to
// Kind are meaningful: Growth for food, Owner and Facing for snake segments.
type Cell struct {
	Kind   CellKind
	Growth int
	Owner  int
	Facing Orientation
}

func Empty() Cell { return Cell{} }

// Food is a snack that grows the eater by growth segments.
func Food(growth int) Cell { return Cell{Kind: KindFood, Growth: growth} }

func Stone() Cell { return Cell{Kind: KindStone} }

// Segment is a body cell of snake owner pointing towards facing.
func Segment(owner int, facing Orientation) Cell {
	return Cell{Kind: KindSnake, Owner: owner, Facing: facing}
}

func (c Cell) IsEmpty() bool { return c.Kind == KindEmpty }

func (c Cell) IsSnake() bool { return c.Kind == KindSnake }

func (c Cell) String() string {
	switch c.Kind {
	case KindEmpty:
		return "E"
	case KindFood:
		return fmt.Sprintf("F%d", c.Growth)
	case KindStone:
		return "S"
	case KindSnake:
		return fmt.Sprintf("S(%d, %v)", c.Owner, c.Facing)
	}
	return fmt.Sprintf("Cell(%d)", uint8(c.Kind))
}
