package view

import (
	"context"
	"log/slog"
	"time"

	"github.com/brensch/gridsnakes/agent"
	"github.com/brensch/gridsnakes/rules"
)

const (
	DefaultStepInterval = 500 * time.Millisecond
	DefaultStartDelay   = time.Second
)

// Controller runs a game against a view: read inputs, let agents decide,
// advance, draw, sleep.
type Controller struct {
	Game *rules.Game
	View View
	// Agents maps player ids to automated players. Key presses for these
	// players are ignored.
	Agents map[int]agent.Agent

	QuitOnGameOver bool
	StepInterval   time.Duration
	// StartDelay is how long the first frame stays up before play begins.
	StartDelay time.Duration
	// MaxIterations stops the run once reached. Zero means no limit.
	MaxIterations int

	Logger *slog.Logger
}

// NewController returns a controller with the default cadence.
func NewController(g *rules.Game, v View) *Controller {
	return &Controller{
		Game:           g,
		View:           v,
		QuitOnGameOver: true,
		StepInterval:   DefaultStepInterval,
		StartDelay:     DefaultStartDelay,
		Logger:         slog.Default(),
	}
}

// Run plays until the game ends (when QuitOnGameOver is set), the view asks
// to quit, MaxIterations is reached or ctx is done. It returns the last turn
// result and ctx.Err() on cancellation.
func (c *Controller) Run(ctx context.Context) (rules.TurnResult, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g := c.Game
	players := g.World.PlayerCount()

	// Anything pressed before the first frame is stale.
	c.View.ReadUserInputs()
	c.View.DrawWorld(g)
	if err := sleep(ctx, c.StartDelay); err != nil {
		return g.TurnResult(), err
	}

	interval := c.StepInterval
	inputs := make([]rules.PlayerInput, players)
	for i := range inputs {
		inputs[i] = rules.DoNothing
	}

	for {
		for _, a := range c.View.ReadUserInputs() {
			switch a.Kind {
			case ActionQuit:
				logger.Info("quit requested", "iteration", g.Iteration())
				return g.TurnResult(), nil
			case ActionPlayer:
				if a.Player < 0 || a.Player >= players {
					continue
				}
				if _, ok := c.Agents[a.Player]; ok {
					continue
				}
				inputs[a.Player] = a.Input
			case ActionFaster:
				interval /= 2
				logger.Debug("step interval changed", "interval", interval)
			case ActionSlower:
				interval = max(interval*2, time.Millisecond)
				logger.Debug("step interval changed", "interval", interval)
			}
		}

		for id, a := range c.Agents {
			if id >= 0 && id < players {
				inputs[id] = a.Decide(g)
			}
		}

		g.Advance(inputs)
		res := g.TurnResult()
		for _, e := range g.Events() {
			logger.Debug("event", "iteration", g.Iteration(), "event", e)
		}
		c.View.DrawWorld(g)

		if res.Outcome != rules.Ok {
			logger.Info("game finished",
				"outcome", res.Outcome,
				"winners", res.Winners,
				"losers", res.Losers,
				"iteration", g.Iteration(),
			)
			if c.QuitOnGameOver {
				return res, nil
			}
		}
		if c.MaxIterations > 0 && g.Iteration() >= c.MaxIterations {
			logger.Info("iteration limit reached", "iteration", g.Iteration())
			return res, nil
		}
		if err := sleep(ctx, interval); err != nil {
			return res, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
