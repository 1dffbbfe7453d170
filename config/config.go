// Package config collects the game setup shared by the binaries. Every flag
// falls back to a GRIDSNAKES_* environment variable.
package config

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/brensch/gridsnakes/game"
	"github.com/brensch/gridsnakes/grid"
	"github.com/brensch/gridsnakes/rules"
)

// Game describes how to set up a board.
type Game struct {
	Rows            int
	Cols            int
	Players         int
	MaxSnacks       int
	SnackInterval   int
	Stones          int
	Walls           bool
	LoseOnCollision bool
	// Seed drives snack and stone placement. Zero picks a time based seed.
	Seed int64
}

// Default is a 20x20 torus with two snakes.
func Default() Game {
	return Game{
		Rows:            20,
		Cols:            20,
		Players:         2,
		MaxSnacks:       rules.DefaultMaxSnacks,
		SnackInterval:   rules.DefaultSnackInterval,
		LoseOnCollision: true,
	}
}

// RegisterFlags binds c to fs. Current values of c, overridden by the
// environment, become the flag defaults.
func (c *Game) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Rows, "rows", GetEnvIntOrDefault("ROWS", c.Rows), "Board rows")
	fs.IntVar(&c.Cols, "cols", GetEnvIntOrDefault("COLS", c.Cols), "Board columns")
	fs.IntVar(&c.Players, "players", GetEnvIntOrDefault("PLAYERS", c.Players), "Number of snakes")
	fs.IntVar(&c.MaxSnacks, "snacks", GetEnvIntOrDefault("SNACKS", c.MaxSnacks), "Maximum snacks on the board (0 disables spawning)")
	fs.IntVar(&c.SnackInterval, "snack-interval", GetEnvIntOrDefault("SNACK_INTERVAL", c.SnackInterval), "Iterations between snack spawns")
	fs.IntVar(&c.Stones, "stones", GetEnvIntOrDefault("STONES", c.Stones), "Stones scattered at setup")
	fs.BoolVar(&c.Walls, "walls", GetEnvBoolOrDefault("WALLS", c.Walls), "Hard walls instead of wrapping edges")
	fs.BoolVar(&c.LoseOnCollision, "lose-on-collision", GetEnvBoolOrDefault("LOSE_ON_COLLISION", c.LoseOnCollision), "End the game when a snake collides")
	fs.Int64Var(&c.Seed, "seed", GetEnvInt64OrDefault("SEED", c.Seed), "Random seed (0 = time based)")
}

// Validate reports every setting that cannot produce a board.
func (c Game) Validate() error {
	var errs []error
	if c.Rows < 2 {
		errs = append(errs, fmt.Errorf("rows must be at least 2, got %d", c.Rows))
	}
	if c.Cols < 2 {
		errs = append(errs, fmt.Errorf("cols must be at least 2, got %d", c.Cols))
	}
	if c.Players < 1 {
		errs = append(errs, fmt.Errorf("players must be at least 1, got %d", c.Players))
	} else if c.Cols >= 2 && c.Players >= c.Cols {
		errs = append(errs, fmt.Errorf("%d players do not fit in %d columns", c.Players, c.Cols))
	}
	if c.MaxSnacks < 0 {
		errs = append(errs, fmt.Errorf("snacks must not be negative, got %d", c.MaxSnacks))
	}
	if c.SnackInterval < 0 {
		errs = append(errs, fmt.Errorf("snack interval must not be negative, got %d", c.SnackInterval))
	}
	if c.Stones < 0 {
		errs = append(errs, fmt.Errorf("stones must not be negative, got %d", c.Stones))
	}
	return errors.Join(errs...)
}

// StartPositions spreads the snakes along the second row, all facing Down.
func StartPositions(cols, players int) []grid.Point {
	out := make([]grid.Point, players)
	for i := range out {
		out[i] = grid.Point{Row: 1, Col: 1 + i*(cols/players)}
	}
	return out
}

// Build validates c and sets up a fresh game.
func (c Game) Build() (*rules.Game, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	w := game.NewWorld(c.Rows, c.Cols)
	w.WallCollision = c.Walls
	w.SetRand(rand.New(rand.NewSource(seed)))
	for i, p := range StartPositions(c.Cols, c.Players) {
		if err := w.AddSnake(p, game.Down); err != nil {
			return nil, fmt.Errorf("add snake %d: %w", i, err)
		}
	}
	w.PlaceStonesRandomly(c.Stones)

	g := rules.New(w)
	g.MaxSnacks = c.MaxSnacks
	g.SnackInterval = c.SnackInterval
	g.LoseOnCollision = c.LoseOnCollision
	return g, nil
}
