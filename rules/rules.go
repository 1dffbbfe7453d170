// Package rules turns a game.World into a playable game: it resolves player
// inputs, spawns snacks and decides who won.
package rules

import (
	"fmt"
	"slices"

	"github.com/brensch/gridsnakes/game"
)

// InputKind discriminates PlayerInput.
type InputKind uint8

const (
	InputNothing InputKind = iota
	InputGo
)

// PlayerInput is the only vocabulary a player (human or agent) can use.
type PlayerInput struct {
	Kind        InputKind
	Orientation game.Orientation
}

// DoNothing keeps the snake's current heading.
var DoNothing = PlayerInput{Kind: InputNothing}

// Go asks the snake to head towards o.
func Go(o game.Orientation) PlayerInput {
	return PlayerInput{Kind: InputGo, Orientation: o}
}

func (in PlayerInput) String() string {
	switch in.Kind {
	case InputNothing:
		return "DoNothing"
	case InputGo:
		return "Go(" + in.Orientation.String() + ")"
	}
	return fmt.Sprintf("PlayerInput(%d)", uint8(in.Kind))
}

// Outcome is the verdict of a turn.
type Outcome uint8

const (
	// Ok means nothing bad happened and the game goes on.
	Ok Outcome = iota
	// Draw means nobody wins and nobody loses.
	Draw
	GameOver
)

func (o Outcome) String() string {
	switch o {
	case Ok:
		return "Ok"
	case Draw:
		return "Draw"
	case GameOver:
		return "GameOver"
	}
	return fmt.Sprintf("Outcome(%d)", uint8(o))
}

// TurnResult is the outcome of the last Advance. Winners and Losers are only
// filled for GameOver.
type TurnResult struct {
	Outcome Outcome
	Winners []int
	Losers  []int
}

const (
	DefaultMaxSnacks     = 2
	DefaultSnackInterval = 16
)

// Game wraps a World with scoring and snack spawning.
type Game struct {
	World *game.World

	// MaxSnacks caps how many snacks may lie on the board. Zero disables
	// spawning.
	MaxSnacks int
	// SnackInterval is the number of iterations between spawn attempts.
	SnackInterval int
	// LoseOnCollision ends the game when any snake collides.
	LoseOnCollision bool

	iteration    int
	result       TurnResult
	events       []game.GameEvent
	orientations []game.Orientation
}

// New wraps world with the default rules.
func New(world *game.World) *Game {
	return &Game{
		World:           world,
		MaxSnacks:       DefaultMaxSnacks,
		SnackInterval:   DefaultSnackInterval,
		LoseOnCollision: true,
	}
}

// Iteration counts the turns that ended Ok.
func (g *Game) Iteration() int { return g.iteration }

// TurnResult returns the result of the last Advance.
func (g *Game) TurnResult() TurnResult {
	return TurnResult{
		Outcome: g.result.Outcome,
		Winners: slices.Clone(g.result.Winners),
		Losers:  slices.Clone(g.result.Losers),
	}
}

// Events returns the world events of the last Advance.
func (g *Game) Events() []game.GameEvent { return slices.Clone(g.events) }

// Advance plays one turn. inputs are indexed by player id; missing entries
// count as DoNothing.
func (g *Game) Advance(inputs []PlayerInput) {
	w := g.World
	players := w.PlayerCount()
	g.result = TurnResult{Outcome: Ok}

	// Default to the current heading, then apply user choice.
	if cap(g.orientations) < players {
		g.orientations = make([]game.Orientation, players)
	}
	g.orientations = g.orientations[:players]
	for i := 0; i < players; i++ {
		g.orientations[i] = w.SnakeDirection(w.Snake(i).Head)
		if i < len(inputs) && inputs[i].Kind == InputGo {
			g.orientations[i] = inputs[i].Orientation
		}
	}

	g.events = w.Advance(g.orientations)

	g.spawnSnacks()

	collided := make([]bool, players)
	for _, e := range g.events {
		switch e.Kind {
		case game.EventCollision:
			collided[e.Player] = true
		case game.EventFoodConsumed:
		}
	}
	allCollided := players > 0
	someCollided := false
	for _, c := range collided {
		allCollided = allCollided && c
		someCollided = someCollided || c
	}

	switch {
	case g.LoseOnCollision && allCollided && players > 1:
		g.result = TurnResult{Outcome: Draw}
		return
	case g.LoseOnCollision && someCollided:
		res := TurnResult{Outcome: GameOver, Winners: []int{}, Losers: []int{}}
		for i, c := range collided {
			if c {
				res.Losers = append(res.Losers, i)
			} else {
				res.Winners = append(res.Winners, i)
			}
		}
		g.result = res
		return
	case players == 1 && w.Snake(0).Length >= (w.Rows()-1)*(w.Cols()-1):
		// Win if there's hardly any space left.
		g.result = TurnResult{Outcome: GameOver, Winners: []int{0}, Losers: []int{}}
		return
	}

	g.iteration++
	g.result = TurnResult{Outcome: Ok}
}

// Clone performs a deep copy of the game, including its world.
func (g *Game) Clone() *Game {
	out := *g
	out.World = g.World.Clone()
	out.result = g.TurnResult()
	out.events = slices.Clone(g.events)
	out.orientations = nil
	return &out
}
