package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/djienne/spread-analyzer/internal/backtest"
	"github.com/djienne/spread-analyzer/internal/config"
	"github.com/djienne/spread-analyzer/internal/dataset"
	"github.com/djienne/spread-analyzer/internal/version"
)

// minFillsForRanking filters out runs that barely traded; their PnL is noise.
const minFillsForRanking = 5

type gridResult struct {
	horizonSeconds int64
	gamma          float64
	results        backtest.Results
}

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting gridsearch",
		"version", version.Version,
		"commit", version.Commit,
		"run_id", uuid.NewString(),
	)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	loader := dataset.NewLoader(cfg.Data.TradesPath(), cfg.Data.OrderbookPath(),
		dataset.WithLogger(logger))
	trades, books, err := loader.Load(context.Background())
	if err != nil {
		logger.Error("failed to load data", "error", err)
		os.Exit(1)
	}
	events := dataset.Events(trades, books)

	combos := len(cfg.Grid.HorizonsSeconds) * len(cfg.Grid.Gammas)
	logger.Info("running parameter sweep",
		"horizons", len(cfg.Grid.HorizonsSeconds),
		"gammas", len(cfg.Grid.Gammas),
		"combinations", combos,
		"workers", cfg.Grid.Workers,
	)

	initialCapital := decimal.NewFromFloat(cfg.Backtest.InitialCapital)
	orderNotional := decimal.NewFromFloat(cfg.Backtest.OrderNotional)
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	var (
		mu      sync.Mutex
		results []gridResult
	)

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(cfg.Grid.Workers)

	for _, horizon := range cfg.Grid.HorizonsSeconds {
		for _, gamma := range cfg.Grid.Gammas {
			horizon, gamma := horizon, gamma
			g.Go(func() error {
				model := cfg.Model
				model.InventoryHorizonSeconds = horizon
				model.RiskAversionGamma = gamma

				res, err := backtest.Run(backtest.Params{
					Events:         events,
					Model:          model,
					InitialCapital: initialCapital,
					OrderNotional:  orderNotional,
					Logger:         quiet,
				})
				if err != nil {
					return fmt.Errorf("horizon=%ds gamma=%g: %w", horizon, gamma, err)
				}

				logger.Info("combination done",
					"horizon", formatDuration(horizon),
					"gamma", gamma,
					"pnl", res.FinalPnL.StringFixed(2),
					"fills", res.TotalFills(),
				)

				mu.Lock()
				results = append(results, gridResult{
					horizonSeconds: horizon,
					gamma:          gamma,
					results:        res,
				})
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		logger.Error("grid search failed", "error", err)
		os.Exit(1)
	}

	printSummary(results)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadAndValidate(path)
}

func printSummary(results []gridResult) {
	ranked := make([]gridResult, 0, len(results))
	for _, r := range results {
		if r.results.TotalFills() >= minFillsForRanking {
			ranked = append(ranked, r)
		}
	}

	fmt.Println()
	fmt.Println("===========================================================")
	fmt.Println("                 GRID SEARCH RESULTS")
	fmt.Println("===========================================================")
	if len(ranked) == 0 {
		fmt.Printf("No run reached %d fills; showing all results.\n\n", minFillsForRanking)
		ranked = append(ranked, results...)
	} else {
		fmt.Printf("Showing runs with at least %d fills.\n\n", minFillsForRanking)
	}

	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].results.FinalPnL.GreaterThan(ranked[j].results.FinalPnL)
	})

	fmt.Printf("%-10s | %-6s | %12s | %10s | %8s | %8s | %12s\n",
		"Horizon", "Gamma", "Final PnL", "Return %", "BidFill", "AskFill", "Notional")
	fmt.Println("-----------------------------------------------------------------------------")
	for i, r := range ranked {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Printf("%s %-8s | %-6g | %12s | %10s | %8d | %8d | %12s\n",
			marker,
			formatDuration(r.horizonSeconds),
			r.gamma,
			r.results.FinalPnL.StringFixed(2),
			r.results.TotalReturnPct.StringFixed(2),
			r.results.BidFills,
			r.results.AskFills,
			r.results.TotalNotionalVolume.StringFixed(2),
		)
	}

	if len(ranked) > 0 {
		best := ranked[0]
		fmt.Println()
		fmt.Println("Best configuration:")
		fmt.Printf("  Horizon:  %s (%ds)\n", formatDuration(best.horizonSeconds), best.horizonSeconds)
		fmt.Printf("  Gamma:    %g\n", best.gamma)
		fmt.Printf("  PnL:      $%s\n", best.results.FinalPnL.StringFixed(2))
		fmt.Printf("  Return:   %s%%\n", best.results.TotalReturnPct.StringFixed(2))
		fmt.Printf("  Fills:    %d (%d bid, %d ask)\n",
			best.results.TotalFills(), best.results.BidFills, best.results.AskFills)
	}
}

func formatDuration(seconds int64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm", seconds/60)
	default:
		hours := seconds / 3600
		mins := (seconds % 3600) / 60
		if mins > 0 {
			return fmt.Sprintf("%dh%dm", hours, mins)
		}
		return fmt.Sprintf("%dh", hours)
	}
}
