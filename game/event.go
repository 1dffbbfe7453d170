package game

import (
	"fmt"

	"github.com/brensch/gridsnakes/grid"
)

type EventKind uint8

const (
	EventCollision EventKind = iota
	EventFoodConsumed
)

// GameEvent is something that happened to a snake during one tick.
// At is set for collisions (the attempted position, possibly off-grid);
// Growth is set for food.
type GameEvent struct {
	Kind   EventKind
	Player int
	At     grid.Point
	Growth int
}

func Collision(player int, at grid.Point) GameEvent {
	return GameEvent{Kind: EventCollision, Player: player, At: at}
}

func FoodConsumed(player, growth int) GameEvent {
	return GameEvent{Kind: EventFoodConsumed, Player: player, Growth: growth}
}

func (e GameEvent) String() string {
	switch e.Kind {
	case EventCollision:
		return fmt.Sprintf("Collision(%d, %v)", e.Player, e.At)
	case EventFoodConsumed:
		return fmt.Sprintf("FoodConsumed(%d, %d)", e.Player, e.Growth)
	}
	return fmt.Sprintf("GameEvent(%d)", uint8(e.Kind))
}
