// Command learn plays headless games between search agents and writes the
// results as Parquet batches for later analysis.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/brensch/gridsnakes/config"
	"github.com/brensch/gridsnakes/logging"
	"github.com/brensch/gridsnakes/selfplay"
	"github.com/brensch/gridsnakes/store"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg := config.Default()
	cfg.Players = 1
	cfg.Walls = true
	fs := flag.CommandLine
	cfg.RegisterFlags(fs)

	episodes := fs.Int("episodes", config.GetEnvIntOrDefault("EPISODES", 100), "Number of episodes to play")
	workers := fs.Int("workers", config.GetEnvIntOrDefault("WORKERS", runtime.NumCPU()), "Number of self-play workers")
	depth := fs.Int("depth", config.GetEnvIntOrDefault("DEPTH", 4), "Search depth")
	searchWorkers := fs.Int("search-workers", config.GetEnvIntOrDefault("SEARCH_WORKERS", 1), "Goroutines per agent decision")
	outDir := fs.String("out-dir", config.GetEnvOrDefault("OUT_DIR", "data/selfplay"), "Data root for the Parquet batches")
	gamesPerFlush := fs.Int("games-per-flush", config.GetEnvIntOrDefault("GAMES_PER_FLUSH", selfplay.DefaultGamesPerFlush), "Episodes buffered per Parquet batch")
	maxIterations := fs.Int("max-iterations", config.GetEnvIntOrDefault("MAX_ITERATIONS", selfplay.DefaultMaxIterations), "Iteration cap per episode")
	skipDecisions := fs.Bool("skip-decisions", config.GetEnvBoolOrDefault("SKIP_DECISIONS", false), "Only record episode summaries")
	resume := fs.Bool("resume", config.GetEnvBoolOrDefault("RESUME", true), "Skip seeds already recorded under the data root")
	showTUI := fs.Bool("tui", config.GetEnvBoolOrDefault("TUI", false), "Show a progress screen")
	logFile := fs.String("log-file", config.GetEnvOrDefault("LOG_FILE", ""), "Log destination (default stderr, learn.log with -tui)")
	logFormat := fs.String("log-format", config.GetEnvOrDefault("LOG_FORMAT", logging.FormatText), "Log format: text, json or pretty")
	logLevel := fs.String("log-level", config.GetEnvOrDefault("LOG_LEVEL", "info"), "Log level")
	flag.Parse()

	if *showTUI && *logFile == "" {
		*logFile = "learn.log"
	}
	logger, closer, err := logging.Open(*logFile, *logFormat, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := selfplay.RunOptions{
		Options: selfplay.Options{
			Game:          cfg,
			Depth:         *depth,
			MaxIterations: *maxIterations,
			SearchWorkers: *searchWorkers,
			SkipDecisions: *skipDecisions,
		},
		Episodes:      *episodes,
		Workers:       *workers,
		OutDir:        *outDir,
		GamesPerFlush: *gamesPerFlush,
		Logger:        logger,
	}

	if *resume {
		ledger, err := store.OpenLedger(*outDir)
		if err != nil {
			logger.Error("open ledger failed", "error", err)
			os.Exit(1)
		}
		defer ledger.Close()
		if cfg.Seed == 0 {
			logger.Warn("resume has no effect without a fixed -seed")
		}
		opts.Ledger = ledger
	}

	var stats selfplay.Stats
	if *showTUI {
		stats, err = runWithProgress(ctx, opts)
	} else {
		stats, err = runLogged(ctx, opts, logger)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("self-play failed", "error", err)
		closer.Close()
		os.Exit(1)
	}
	fmt.Printf("played %d episodes (%d skipped) into %d batches under %s, base seed %d\n",
		stats.Played, stats.Skipped, stats.Batches, *outDir, stats.BaseSeed)
}

func runLogged(ctx context.Context, opts selfplay.RunOptions, logger *slog.Logger) (selfplay.Stats, error) {
	played := 0
	every := max(opts.Episodes/20, 1)
	opts.OnEpisode = func(ep selfplay.Episode) {
		played++
		if played%every == 0 {
			logger.Info("progress", "played", played, "episodes", opts.Episodes, "last", ep.String())
		}
	}
	return selfplay.Run(ctx, opts)
}

// runWithProgress draws the progress screen on the main goroutine while the
// run happens in the background. Quitting the screen cancels the run.
func runWithProgress(ctx context.Context, opts selfplay.RunOptions) (selfplay.Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgress(opts.Episodes), tea.WithAltScreen(), tea.WithContext(ctx))
	opts.OnEpisode = func(ep selfplay.Episode) { p.Send(episodeMsg(ep)) }

	type result struct {
		stats selfplay.Stats
		err   error
	}
	done := make(chan result, 1)
	go func() {
		stats, err := selfplay.Run(ctx, opts)
		p.Send(doneMsg{stats: stats, err: err})
		done <- result{stats, err}
	}()

	_, uiErr := p.Run()
	if errors.Is(uiErr, tea.ErrProgramKilled) {
		uiErr = nil
	}
	cancel()
	r := <-done
	return r.stats, errors.Join(r.err, uiErr)
}
