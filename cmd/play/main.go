// Command play runs an interactive game in the terminal, optionally streamed
// to browsers through the spectator server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/brensch/gridsnakes/agent"
	"github.com/brensch/gridsnakes/config"
	"github.com/brensch/gridsnakes/logging"
	"github.com/brensch/gridsnakes/rules"
	"github.com/brensch/gridsnakes/spectate"
	"github.com/brensch/gridsnakes/view"
	"github.com/brensch/gridsnakes/view/tui"
	tea "github.com/charmbracelet/bubbletea"
)

type options struct {
	game config.Game

	agents        string
	depth         int
	searchWorkers int

	headless      bool
	spectate      string
	maxIterations int

	logFile   string
	logFormat string
	logLevel  string
}

func main() {
	opts := options{game: config.Default()}
	fs := flag.CommandLine
	opts.game.RegisterFlags(fs)
	interval := fs.Duration("interval", config.GetEnvDurationOrDefault("INTERVAL", view.DefaultStepInterval), "Delay between ticks")
	startDelay := fs.Duration("start-delay", config.GetEnvDurationOrDefault("START_DELAY", view.DefaultStartDelay), "How long the first frame stays up")
	fs.StringVar(&opts.agents, "agents", config.GetEnvOrDefault("AGENTS", ""), "Comma separated player ids driven by the search agent, or \"all\"")
	fs.IntVar(&opts.depth, "depth", config.GetEnvIntOrDefault("DEPTH", 4), "Search depth of the agents")
	fs.IntVar(&opts.searchWorkers, "search-workers", config.GetEnvIntOrDefault("SEARCH_WORKERS", 1), "Goroutines per agent decision")
	fs.BoolVar(&opts.headless, "headless", config.GetEnvBoolOrDefault("HEADLESS", false), "Run without the terminal UI")
	fs.StringVar(&opts.spectate, "spectate", config.GetEnvOrDefault("SPECTATE", ""), "Address for the spectator server, e.g. :8080")
	fs.IntVar(&opts.maxIterations, "max-iterations", config.GetEnvIntOrDefault("MAX_ITERATIONS", 0), "Stop after this many iterations (0 = no limit)")
	fs.StringVar(&opts.logFile, "log-file", config.GetEnvOrDefault("LOG_FILE", ""), "Log destination (default stderr, gridsnakes.log with the terminal UI)")
	fs.StringVar(&opts.logFormat, "log-format", config.GetEnvOrDefault("LOG_FORMAT", logging.FormatText), "Log format: text, json or pretty")
	fs.StringVar(&opts.logLevel, "log-level", config.GetEnvOrDefault("LOG_LEVEL", "info"), "Log level")
	flag.Parse()

	// The terminal UI owns stdout and stderr.
	if !opts.headless && opts.logFile == "" {
		opts.logFile = "gridsnakes.log"
	}
	logger, closer, err := logging.Open(opts.logFile, opts.logFormat, opts.logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := run(ctx, opts, *interval, *startDelay, logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("play failed", "error", err)
		closer.Close()
		os.Exit(1)
	}
	if opts.headless {
		fmt.Println(outcomeLine(res))
	}
}

func run(ctx context.Context, opts options, interval, startDelay time.Duration, logger *slog.Logger) (rules.TurnResult, error) {
	g, err := opts.game.Build()
	if err != nil {
		return rules.TurnResult{}, err
	}
	ids, err := parseAgents(opts.agents, opts.game.Players)
	if err != nil {
		return rules.TurnResult{}, err
	}

	agents := make(map[int]agent.Agent, len(ids))
	for _, id := range ids {
		agents[id] = &agent.SpaceExplorer{Depth: opts.depth, Player: id, Workers: opts.searchWorkers}
	}
	logger.Info("game starting",
		"rows", opts.game.Rows,
		"cols", opts.game.Cols,
		"players", opts.game.Players,
		"agents", ids,
		"depth", opts.depth,
		"walls", opts.game.Walls,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var views view.Multi
	serverDone := make(chan error, 1)
	if opts.spectate != "" {
		srv := spectate.NewServer(logger)
		views = append(views, srv)
		go func() { serverDone <- srv.ListenAndServe(ctx, opts.spectate) }()
	} else {
		serverDone <- nil
	}

	var ui *tui.View
	if !opts.headless {
		ui = tui.New(tea.WithAltScreen(), tea.WithContext(ctx))
		views = append(views, ui)
	}

	ctl := view.NewController(g, views)
	ctl.Agents = agents
	ctl.StepInterval = interval
	ctl.StartDelay = startDelay
	ctl.MaxIterations = opts.maxIterations
	ctl.Logger = logger

	if ui == nil {
		res, err := ctl.Run(ctx)
		cancel()
		return res, errors.Join(err, <-serverDone)
	}

	type result struct {
		res rules.TurnResult
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := ctl.Run(ctx)
		ui.Finish()
		done <- result{res, err}
	}()

	uiErr := ui.Run()
	if errors.Is(uiErr, tea.ErrProgramKilled) {
		uiErr = nil
	}
	cancel()
	r := <-done
	return r.res, errors.Join(r.err, uiErr, <-serverDone)
}

// parseAgents turns "0,2" or "all" into sorted player ids.
func parseAgents(s string, players int) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.EqualFold(s, "all") {
		ids := make([]int, players)
		for i := range ids {
			ids[i] = i
		}
		return ids, nil
	}
	var ids []int
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parse agent id %q: %w", part, err)
		}
		if id < 0 || id >= players {
			return nil, fmt.Errorf("agent id %d out of range for %d players", id, players)
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func outcomeLine(res rules.TurnResult) string {
	switch res.Outcome {
	case rules.GameOver:
		return fmt.Sprintf("GameOver winners=%v losers=%v", res.Winners, res.Losers)
	default:
		return res.Outcome.String()
	}
}
