// Command report prints aggregate statistics over stored self-play data.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/brensch/gridsnakes/config"
	"github.com/brensch/gridsnakes/logging"
	"github.com/brensch/gridsnakes/report"
)

func main() {
	data := flag.String("data", config.GetEnvOrDefault("DATA", "data/selfplay"), "Comma separated data roots")
	actions := flag.Bool("actions", config.GetEnvBoolOrDefault("ACTIONS", true), "Also print the chosen action histogram")
	logFormat := flag.String("log-format", config.GetEnvOrDefault("LOG_FORMAT", logging.FormatText), "Log format: text, json or pretty")
	logLevel := flag.String("log-level", config.GetEnvOrDefault("LOG_LEVEL", "warn"), "Log level")
	flag.Parse()

	logger, closer, err := logging.Open("", *logFormat, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, strings.Split(*data, ","), *actions, logger); err != nil {
		logger.Error("report failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, roots []string, actions bool, logger *slog.Logger) error {
	db, err := report.Open(roots)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Debug("report opened", "roots", roots)

	groups, err := db.Summary(ctx)
	if err != nil {
		return err
	}
	if err := report.RenderSummary(os.Stdout, groups); err != nil {
		return err
	}
	if !actions {
		return nil
	}
	counts, err := db.Actions(ctx)
	if err != nil {
		return err
	}
	return report.RenderActions(os.Stdout, counts)
}
