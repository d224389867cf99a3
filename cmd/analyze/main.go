package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/djienne/spread-analyzer/internal/analysis"
	"github.com/djienne/spread-analyzer/internal/config"
	"github.com/djienne/spread-analyzer/internal/dataset"
	"github.com/djienne/spread-analyzer/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	tradesPath := flag.String("trades", "", "trades CSV path (overrides config)")
	orderbookPath := flag.String("orderbook", "", "orderbook depth CSV path (overrides config)")
	flag.Parse()

	// The report goes to stdout, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting analyze",
		"version", version.Version,
		"commit", version.Commit,
		"run_id", uuid.NewString(),
	)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	trades := cfg.Data.TradesPath()
	if *tradesPath != "" {
		trades = *tradesPath
	}
	orderbook := cfg.Data.OrderbookPath()
	if *orderbookPath != "" {
		orderbook = *orderbookPath
	}

	loader := dataset.NewLoader(trades, orderbook, dataset.WithLogger(logger))
	tradeEvents, books, err := loader.Load(context.Background())
	if err != nil {
		logger.Error("failed to load data", "error", err)
		os.Exit(1)
	}

	rows, err := analysis.JoinNearest(tradeEvents, books)
	if err != nil {
		logger.Error("failed to join trades against snapshots", "error", err)
		os.Exit(1)
	}

	summary := analysis.Summarize(rows)
	if err := analysis.WriteReport(os.Stdout, summary, rows); err != nil {
		logger.Error("failed to write report", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadAndValidate(path)
}
