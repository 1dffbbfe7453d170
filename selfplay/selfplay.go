// Package selfplay runs headless games between search agents and records
// them through the store package.
package selfplay

import (
	"context"
	"fmt"
	"time"

	"github.com/brensch/gridsnakes/agent"
	"github.com/brensch/gridsnakes/config"
	"github.com/brensch/gridsnakes/game"
	"github.com/brensch/gridsnakes/rules"
	"github.com/brensch/gridsnakes/store"
	"github.com/google/uuid"
)

// DefaultMaxIterations stops an episode that nobody manages to finish.
const DefaultMaxIterations = 1000

// Options configures a single episode. Every snake is driven by its own
// SpaceExplorer of the same depth.
type Options struct {
	Game          config.Game
	Depth         int
	MaxIterations int
	// SearchWorkers is passed on to every explorer.
	SearchWorkers int
	// SkipDecisions drops the per-move rows and keeps only the summary.
	SkipDecisions bool
}

// Episode is one finished game ready to be written.
type Episode struct {
	Summary   store.EpisodeRow
	Decisions []store.DecisionRow
}

// PlayEpisode plays one game with the given seed until it ends, the iteration
// cap is hit or ctx is cancelled. A cancelled episode is returned as an error
// and must not be recorded.
func PlayEpisode(ctx context.Context, opts Options, seed int64) (Episode, error) {
	cfg := opts.Game
	cfg.Seed = seed
	g, err := cfg.Build()
	if err != nil {
		return Episode{}, err
	}
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	players := g.World.PlayerCount()
	explorers := make([]*agent.SpaceExplorer, players)
	for i := range explorers {
		explorers[i] = &agent.SpaceExplorer{Depth: opts.Depth, Player: i, Workers: opts.SearchWorkers}
	}

	id := uuid.NewString()
	started := time.Now()
	inputs := make([]rules.PlayerInput, players)
	var decisions []store.DecisionRow
	snacks, ticks := 0, 0

	for g.TurnResult().Outcome == rules.Ok && ticks < maxIter {
		if err := ctx.Err(); err != nil {
			return Episode{}, err
		}

		for p, e := range explorers {
			scores := e.Evaluate(g)
			best := agent.Best(scores)
			inputs[p] = best.Input
			if opts.SkipDecisions {
				continue
			}
			decisions = append(decisions, decisionRow(id, g, p, best.Input, scores))
		}

		g.Advance(inputs)
		ticks++
		for _, ev := range g.Events() {
			if ev.Kind == game.EventFoodConsumed {
				snacks++
			}
		}
	}

	res := g.TurnResult()
	lengths := make([]int32, players)
	for i := range lengths {
		lengths[i] = int32(g.World.Snake(i).Length)
	}

	return Episode{
		Summary: store.EpisodeRow{
			EpisodeID:   id,
			Seed:        seed,
			StartedNs:   started.UnixNano(),
			Rows:        int32(cfg.Rows),
			Cols:        int32(cfg.Cols),
			Players:     int32(players),
			Walls:       cfg.Walls,
			Stones:      int32(cfg.Stones),
			MaxSnacks:   int32(cfg.MaxSnacks),
			Depth:       int32(opts.Depth),
			Outcome:     res.Outcome.String(),
			Iterations:  int32(ticks),
			Winners:     toInt32(res.Winners),
			Losers:      toInt32(res.Losers),
			Lengths:     lengths,
			SnacksEaten: int32(snacks),
			DurationNs:  time.Since(started).Nanoseconds(),
		},
		Decisions: decisions,
	}, nil
}

func decisionRow(id string, g *rules.Game, player int, chosen rules.PlayerInput, scores []agent.ActionScore) store.DecisionRow {
	s := g.World.Snake(player)
	vals := make([]int64, len(scores))
	for i, sc := range scores {
		vals[i] = int64(sc.Score)
	}
	return store.DecisionRow{
		EpisodeID: id,
		Iteration: int32(g.Iteration()),
		Player:    int32(player),
		Action:    chosen.String(),
		Scores:    vals,
		Length:    int32(s.Length),
		HeadRow:   int32(s.Head.Row),
		HeadCol:   int32(s.Head.Col),
	}
}

func toInt32(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

// String is a one-line summary used in logs and the progress screen.
func (e Episode) String() string {
	s := e.Summary
	return fmt.Sprintf("seed %d: %s after %d iterations, lengths %v", s.Seed, s.Outcome, s.Iterations, s.Lengths)
}
