// Package agent holds automated players.
package agent

import (
	"github.com/brensch/gridsnakes/game"
	"github.com/brensch/gridsnakes/rules"
)

// Agent picks the next input for one player.
type Agent interface {
	Decide(g *rules.Game) rules.PlayerInput
}

// Func adapts a plain function to Agent.
type Func func(g *rules.Game) rules.PlayerInput

func (f Func) Decide(g *rules.Game) rules.PlayerInput { return f(g) }

// Idle never steers; its snake keeps going straight.
var Idle Agent = Func(func(*rules.Game) rules.PlayerInput { return rules.DoNothing })

// Actions is the action set explored by the search, in tie-break order.
var Actions = [4]rules.PlayerInput{
	rules.Go(game.Left),
	rules.Go(game.Right),
	rules.Go(game.Up),
	rules.Go(game.Down),
}
