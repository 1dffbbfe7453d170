package agent

import (
	"math"

	"github.com/brensch/gridsnakes/rules"
	"golang.org/x/sync/errgroup"
)

// Score is a heuristic branch value. Negative is bad, zero neutral, positive
// good; the scale is not fixed.
type Score int64

const (
	WinScore     Score = 1_000_000
	LossScore    Score = -1_000_000
	UnknownScore Score = -100_000

	growthWeight = 4
	stepBonus    = 1
)

// ActionScore is the value of one root action.
type ActionScore struct {
	Input rules.PlayerInput
	Score Score
}

// SpaceExplorer searches every action sequence up to Depth ticks ahead and
// picks the action with the best heuristic score. Other players are assumed
// to keep their heading.
type SpaceExplorer struct {
	Depth  int
	Player int
	// Workers > 1 scores the root actions concurrently.
	Workers int
}

// NewSpaceExplorer returns an explorer for player 0.
func NewSpaceExplorer(depth int) *SpaceExplorer {
	return &SpaceExplorer{Depth: depth}
}

// Decide returns the first action with the highest score.
func (e *SpaceExplorer) Decide(g *rules.Game) rules.PlayerInput {
	return Best(e.Evaluate(g)).Input
}

// Best returns the first entry with the highest score. Ties therefore go to
// the earliest action in Actions order.
func Best(scores []ActionScore) ActionScore {
	best := 0
	for i, s := range scores {
		if s.Score > scores[best].Score {
			best = i
		}
	}
	return scores[best]
}

// Evaluate scores every action in Actions order. Snack spawning is disabled
// for the look-ahead so the result only depends on g.
func (e *SpaceExplorer) Evaluate(g *rules.Game) []ActionScore {
	root := g.Clone()
	root.MaxSnacks = 0
	baseline := root.World.Snake(e.Player).Length
	depth := max(e.Depth, 1)

	out := make([]ActionScore, len(Actions))
	score := func(i int) {
		s := newSearch(e.Player, baseline, root.World.PlayerCount())
		out[i] = ActionScore{Input: Actions[i], Score: s.child(root, Actions[i], depth-1)}
	}

	if e.Workers <= 1 {
		for i := range Actions {
			score(i)
		}
		return out
	}

	var eg errgroup.Group
	eg.SetLimit(e.Workers)
	for i := range Actions {
		eg.Go(func() error {
			score(i)
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

// search carries the per-goroutine scratch state of one traversal.
type search struct {
	player   int
	baseline int
	inputs   []rules.PlayerInput
}

func newSearch(player, baseline, players int) *search {
	inputs := make([]rules.PlayerInput, players)
	for i := range inputs {
		inputs[i] = rules.DoNothing
	}
	return &search{player: player, baseline: baseline, inputs: inputs}
}

// child advances a clone of g by action and scores the resulting subtree.
func (s *search) child(g *rules.Game, action rules.PlayerInput, depth int) Score {
	c := g.Clone()
	s.inputs[s.player] = action
	c.Advance(s.inputs)
	return s.subtree(c, depth)
}

func (s *search) subtree(g *rules.Game, depth int) Score {
	node := s.node(g)
	if depth == 0 || node < 0 {
		return node
	}
	best := Score(math.MinInt64)
	for _, a := range Actions {
		best = max(best, s.child(g, a, depth-1))
	}
	return max(best, Score(2*depth)*node)
}

func (s *search) node(g *rules.Game) Score {
	res := g.TurnResult()
	switch res.Outcome {
	case rules.Ok:
		snake := g.World.Snake(s.player)
		return growthWeight*Score(snake.Length-s.baseline+snake.PendingGrowth) + stepBonus
	case rules.GameOver:
		if len(res.Winners) == 1 && res.Winners[0] == s.player {
			return WinScore
		}
		return LossScore
	case rules.Draw:
		return LossScore
	}
	return UnknownScore
}
