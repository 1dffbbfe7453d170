package selfplay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/brensch/gridsnakes/store"
	"golang.org/x/sync/errgroup"
)

// DefaultGamesPerFlush is how many episodes share one Parquet batch.
const DefaultGamesPerFlush = 50

// RunOptions configures a batch of episodes. Episode i uses seed
// Game.Seed + i, so a run is reproducible from its base seed.
type RunOptions struct {
	Options

	Episodes      int
	Workers       int
	OutDir        string
	GamesPerFlush int

	// Ledger, when set, skips seeds that were already written and records
	// the new ones once their batch is on disk.
	Ledger *store.Ledger
	Logger *slog.Logger
	// OnEpisode is called from the writer goroutine after each episode is
	// buffered.
	OnEpisode func(Episode)
}

// Stats describes what a run produced.
type Stats struct {
	BaseSeed  int64
	Played    int
	Skipped   int
	Batches   int
	Decisions int
}

// Run plays opts.Episodes games on a pool of workers. A single goroutine
// owns the Parquet writers and flushes every GamesPerFlush episodes, plus a
// final flush when the workers stop. Cancelling ctx stops the run after the
// games in flight are abandoned; everything already finished is still
// flushed.
func Run(ctx context.Context, opts RunOptions) (Stats, error) {
	if opts.Episodes <= 0 {
		return Stats{}, fmt.Errorf("episodes must be positive, got %d", opts.Episodes)
	}
	if opts.OutDir == "" {
		return Stats{}, fmt.Errorf("output directory is required")
	}
	if err := opts.Game.Validate(); err != nil {
		return Stats{}, fmt.Errorf("invalid game config: %w", err)
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.GamesPerFlush <= 0 {
		opts.GamesPerFlush = DefaultGamesPerFlush
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := opts.Game.Seed
	if base == 0 {
		base = time.Now().UnixNano()
	}
	logger.Info("self-play starting",
		"episodes", opts.Episodes,
		"workers", opts.Workers,
		"depth", opts.Depth,
		"base_seed", base,
		"out_dir", opts.OutDir,
	)

	results := make(chan Episode, opts.Workers*4)
	type writerResult struct {
		stats Stats
		err   error
	}
	writerDone := make(chan writerResult, 1)
	go func() {
		w := &writer{root: opts.OutDir, perFlush: opts.GamesPerFlush, ledger: opts.Ledger, logger: logger, onEpisode: opts.OnEpisode}
		err := w.loop(results)
		writerDone <- writerResult{stats: w.stats, err: err}
	}()

	skipped := 0
	seeds := make(chan int64)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer close(seeds)
		for i := 0; i < opts.Episodes; i++ {
			seed := base + int64(i)
			if opts.Ledger != nil && opts.Ledger.Has(seed) {
				skipped++
				continue
			}
			select {
			case seeds <- seed:
			case <-egCtx.Done():
				return egCtx.Err()
			}
		}
		return nil
	})
	for wid := 0; wid < opts.Workers; wid++ {
		eg.Go(func() error {
			for seed := range seeds {
				ep, err := PlayEpisode(egCtx, opts.Options, seed)
				if err != nil {
					return fmt.Errorf("worker %d seed %d: %w", wid, seed, err)
				}
				select {
				case results <- ep:
				case <-egCtx.Done():
					return egCtx.Err()
				}
			}
			return nil
		})
	}

	runErr := eg.Wait()
	close(results)
	wr := <-writerDone

	stats := wr.stats
	stats.BaseSeed = base
	stats.Skipped = skipped
	logger.Info("self-play finished",
		"played", stats.Played,
		"skipped", stats.Skipped,
		"batches", stats.Batches,
		"decisions", stats.Decisions,
	)
	return stats, errors.Join(runErr, wr.err)
}

// writer buffers episodes into one pair of batch files at a time.
type writer struct {
	root      string
	perFlush  int
	ledger    *store.Ledger
	logger    *slog.Logger
	onEpisode func(Episode)

	episodes  *store.BatchWriter[store.EpisodeRow]
	decisions *store.BatchWriter[store.DecisionRow]
	seeds     []int64

	stats Stats
}

// loop drains in until it is closed. After the first write error the rest
// of the input is discarded so producers never block.
func (w *writer) loop(in <-chan Episode) error {
	var firstErr error
	for ep := range in {
		if firstErr != nil {
			continue
		}
		if err := w.add(ep); err != nil {
			w.logger.Error("parquet write failed", "error", err)
			firstErr = err
		}
	}
	if firstErr != nil {
		w.abort()
		return firstErr
	}
	if err := w.flush("final"); err != nil {
		w.logger.Error("parquet final flush failed", "error", err)
		return err
	}
	return nil
}

func (w *writer) add(ep Episode) error {
	if w.episodes == nil {
		var err error
		if w.episodes, err = store.NewEpisodeWriter(w.root); err != nil {
			return err
		}
		if w.decisions, err = store.NewDecisionWriter(w.root); err != nil {
			w.abort()
			return err
		}
	}
	if err := w.episodes.WriteRows([]store.EpisodeRow{ep.Summary}); err != nil {
		return err
	}
	if err := w.decisions.WriteRows(ep.Decisions); err != nil {
		return err
	}
	w.episodes.NoteGameWritten()
	w.decisions.NoteGameWritten()
	w.seeds = append(w.seeds, ep.Summary.Seed)
	w.stats.Played++
	w.stats.Decisions += len(ep.Decisions)
	w.logger.Debug("episode done", "episode", ep.String())
	if w.onEpisode != nil {
		w.onEpisode(ep)
	}

	if w.episodes.BufferedGames() < w.perFlush {
		return nil
	}
	return w.flush("threshold")
}

// flush publishes the open batches, then records their seeds in the ledger.
func (w *writer) flush(reason string) error {
	if w.episodes == nil {
		return nil
	}
	games := w.episodes.BufferedGames()
	epPath, epRows, err := w.episodes.Finalize()
	if err != nil {
		w.abort()
		return fmt.Errorf("flush episodes: %w", err)
	}
	decPath, decRows, err := w.decisions.Finalize()
	if err != nil {
		w.abort()
		return fmt.Errorf("flush decisions: %w", err)
	}
	w.episodes, w.decisions = nil, nil

	if w.ledger != nil {
		if err := w.ledger.AddMany(w.seeds); err != nil {
			return err
		}
	}
	w.seeds = w.seeds[:0]
	if epRows > 0 {
		w.stats.Batches++
	}
	w.logger.Info("parquet flush ok",
		"reason", reason,
		"games", games,
		"episodes_path", epPath,
		"episode_rows", epRows,
		"decisions_path", decPath,
		"decision_rows", decRows,
	)
	return nil
}

// abort drops the open batches and their seeds.
func (w *writer) abort() {
	if w.episodes != nil {
		w.episodes.Abort()
	}
	if w.decisions != nil {
		w.decisions.Abort()
	}
	w.episodes, w.decisions = nil, nil
	w.seeds = w.seeds[:0]
}
