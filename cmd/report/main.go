package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/county-covid-report/internal/adapter/fetch"
	"github.com/couchcryptid/county-covid-report/internal/config"
	"github.com/couchcryptid/county-covid-report/internal/model"
	"github.com/couchcryptid/county-covid-report/internal/observability"
	"github.com/couchcryptid/county-covid-report/internal/pipeline"
	"github.com/couchcryptid/county-covid-report/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	source := fetch.NewSource(cfg, logger)
	reporter := report.New(cfg.OutputDir, logger)

	params := pipeline.Params{
		TrainFraction: cfg.TrainFraction,
		LinearSeed:    cfg.LinearSeed,
		TreeSeed:      cfg.TreeSeed,
		Tree:          model.DefaultTreeConfig(),
	}
	p := pipeline.New(source, reporter, params, logger, metrics)

	// A run is one shot, but an interrupt should still cancel in-flight
	// downloads cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting report run", "output_dir", cfg.OutputDir)
	if _, err := p.Run(ctx); err != nil {
		logger.Error("report run failed", "error", err)
		os.Exit(1)
	}
	logger.Info("report run finished")
}
