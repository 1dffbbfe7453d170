package game

import "fmt"

// Orientation is the direction a snake segment points.
type Orientation uint8

const (
	Up Orientation = iota
	Down
	Left
	Right
)

// Orientations lists every orientation in declaration order.
var Orientations = [4]Orientation{Up, Down, Left, Right}

// Vector returns the unit move (drow, dcol) for o.
func (o Orientation) Vector() (int, int) {
	switch o {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	}
	panic(fmt.Sprintf("game: invalid orientation %d", o))
}

// Opposite returns the reverse of o.
func (o Orientation) Opposite() Orientation {
	switch o {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	panic(fmt.Sprintf("game: invalid orientation %d", o))
}

// Vertical reports whether o is Up or Down.
func (o Orientation) Vertical() bool { return o == Up || o == Down }

func (o Orientation) String() string {
	switch o {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	}
	return fmt.Sprintf("Orientation(%d)", uint8(o))
}
