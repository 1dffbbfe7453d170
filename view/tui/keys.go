package tui

import (
	"github.com/brensch/gridsnakes/game"
	"github.com/brensch/gridsnakes/rules"
	"github.com/brensch/gridsnakes/view"
)

// Arrows steer player 0, wasd steers player 1.
var keyMap = map[string]view.UserAction{
	"up":    view.Player(0, rules.Go(game.Up)),
	"down":  view.Player(0, rules.Go(game.Down)),
	"left":  view.Player(0, rules.Go(game.Left)),
	"right": view.Player(0, rules.Go(game.Right)),

	"w": view.Player(1, rules.Go(game.Up)),
	"s": view.Player(1, rules.Go(game.Down)),
	"a": view.Player(1, rules.Go(game.Left)),
	"d": view.Player(1, rules.Go(game.Right)),

	"+": view.Faster(),
	"=": view.Faster(),
	"-": view.Slower(),

	"q":      view.Quit(),
	"ctrl+c": view.Quit(),
}

// KeyAction maps a bubbletea key string to a user action.
func KeyAction(key string) (view.UserAction, bool) {
	a, ok := keyMap[key]
	return a, ok
}
