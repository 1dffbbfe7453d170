// Package view connects a rules.Game to whatever shows it: a terminal, a web
// page or nothing at all.
package view

import (
	"fmt"

	"github.com/brensch/gridsnakes/rules"
)

// ActionKind discriminates UserAction.
type ActionKind uint8

const (
	ActionQuit ActionKind = iota
	ActionPlayer
	// ActionFaster halves the step interval.
	ActionFaster
	// ActionSlower doubles the step interval.
	ActionSlower
)

// UserAction is what a view reports back between ticks.
type UserAction struct {
	Kind   ActionKind
	Player int
	Input  rules.PlayerInput
}

func Quit() UserAction   { return UserAction{Kind: ActionQuit} }
func Faster() UserAction { return UserAction{Kind: ActionFaster} }
func Slower() UserAction { return UserAction{Kind: ActionSlower} }

// Player steers player id.
func Player(id int, in rules.PlayerInput) UserAction {
	return UserAction{Kind: ActionPlayer, Player: id, Input: in}
}

func (a UserAction) String() string {
	switch a.Kind {
	case ActionQuit:
		return "Quit"
	case ActionPlayer:
		return fmt.Sprintf("Player(%d, %v)", a.Player, a.Input)
	case ActionFaster:
		return "Faster"
	case ActionSlower:
		return "Slower"
	}
	return fmt.Sprintf("UserAction(%d)", uint8(a.Kind))
}

// View reads user intents and renders the game. Both calls happen on the
// controller goroutine between ticks.
type View interface {
	// ReadUserInputs drains the actions collected since the last call.
	ReadUserInputs() []UserAction
	DrawWorld(g *rules.Game)
}

// NoopView throws everything away. For headless runs.
type NoopView struct{}

func (NoopView) ReadUserInputs() []UserAction { return nil }
func (NoopView) DrawWorld(*rules.Game)        {}

// Multi fans out to several views. Inputs from all of them are merged in
// order.
type Multi []View

func (m Multi) ReadUserInputs() []UserAction {
	var out []UserAction
	for _, v := range m {
		out = append(out, v.ReadUserInputs()...)
	}
	return out
}

func (m Multi) DrawWorld(g *rules.Game) {
	for _, v := range m {
		v.DrawWorld(g)
	}
}
