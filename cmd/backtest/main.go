package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/djienne/spread-analyzer/internal/backtest"
	"github.com/djienne/spread-analyzer/internal/config"
	"github.com/djienne/spread-analyzer/internal/dataset"
	"github.com/djienne/spread-analyzer/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	outputPath := flag.String("output", "", "detailed results CSV path (overrides config)")
	verbose := flag.Bool("verbose", false, "log per-requote progress")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting backtest",
		"version", version.Version,
		"commit", version.Commit,
		"run_id", uuid.NewString(),
	)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	outputCSV := cfg.Backtest.OutputCSV
	if *outputPath != "" {
		outputCSV = *outputPath
	}

	loader := dataset.NewLoader(cfg.Data.TradesPath(), cfg.Data.OrderbookPath(),
		dataset.WithLogger(logger))
	trades, books, err := loader.Load(context.Background())
	if err != nil {
		logger.Error("failed to load data", "error", err)
		os.Exit(1)
	}

	results, err := backtest.Run(backtest.Params{
		Events:         dataset.Events(trades, books),
		Model:          cfg.Model,
		InitialCapital: decimal.NewFromFloat(cfg.Backtest.InitialCapital),
		OrderNotional:  decimal.NewFromFloat(cfg.Backtest.OrderNotional),
		OutputCSV:      outputCSV,
		Verbose:        *verbose || cfg.Backtest.Verbose,
		Logger:         logger,
	})
	if err != nil {
		logger.Error("backtest failed", "error", err)
		os.Exit(1)
	}

	printResults(results)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadAndValidate(path)
}

func printResults(r backtest.Results) {
	fmt.Println()
	fmt.Println("===========================================================")
	fmt.Println("                   BACKTEST RESULTS")
	fmt.Println("===========================================================")
	fmt.Printf("Initial Capital:   $%s\n", r.InitialCapital.StringFixed(2))
	fmt.Printf("Final PnL:         $%s\n", r.FinalPnL.StringFixed(2))
	fmt.Printf("Total Return:      %s%%\n", r.TotalReturnPct.StringFixed(2))
	fmt.Printf("Bid Fills:         %d\n", r.BidFills)
	fmt.Printf("Ask Fills:         %d\n", r.AskFills)
	fmt.Printf("Total Fills:       %d\n", r.TotalFills())
	fmt.Printf("Total Volume:      %s units\n", r.TotalVolume.StringFixed(4))
	fmt.Printf("Notional Volume:   $%s\n", r.TotalNotionalVolume.StringFixed(2))
	fmt.Printf("Final Inventory:   %s\n", r.FinalInventory.StringFixed(6))
	fmt.Printf("Final Cash:        $%s\n", r.FinalCash.StringFixed(2))
	fmt.Println("===========================================================")
}
