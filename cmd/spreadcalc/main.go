package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/djienne/spread-analyzer/internal/calibration"
	"github.com/djienne/spread-analyzer/internal/config"
	"github.com/djienne/spread-analyzer/internal/dataset"
	"github.com/djienne/spread-analyzer/internal/depth"
	"github.com/djienne/spread-analyzer/internal/spread"
	"github.com/djienne/spread-analyzer/internal/version"
)

var tenK = decimal.NewFromInt(10000)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	outputPath := flag.String("output", "", "results CSV path (default <data dir>/as_results.csv)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting spreadcalc",
		"version", version.Version,
		"commit", version.Commit,
		"run_id", uuid.NewString(),
	)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	out := *outputPath
	if out == "" {
		out = filepath.Join(cfg.Data.Dir, "as_results.csv")
	}

	if err := run(cfg, out, logger); err != nil {
		logger.Error("spread calculation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("done", "output", out)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadAndValidate(path)
}

func run(cfg *config.Config, outputPath string, logger *slog.Logger) error {
	loader := dataset.NewLoader(cfg.Data.TradesPath(), cfg.Data.OrderbookPath(),
		dataset.WithLogger(logger))
	trades, books, err := loader.Load(context.Background())
	if err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create results csv: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()

	fmt.Fprintln(w, "timestamp,datetime,mid_price,volatility,kappa,A,gamma,optimal_spread_bps,bid_spread_bps,ask_spread_bps,bid_price,ask_price,reservation_price")

	printTableHeader()

	engine := calibration.NewEngine(cfg.Model)
	threshold := decimal.NewFromFloat(cfg.Model.EffectiveVolumeThreshold)
	inventory := decimal.Zero

	tradeIdx := 0
	var lastMid decimal.Decimal
	var lastTS int64
	haveQuote := false

	for i := range books {
		book := &books[i]
		ts := book.TimestampMS

		quote, ok := depth.EffectivePrice(*book, threshold)
		if !ok {
			continue
		}
		lastMid = quote.Mid
		lastTS = ts
		haveQuote = true

		engine.AddOrderbook(*book, quote.Mid)
		for tradeIdx < len(trades) && trades[tradeIdx].TimestampMS <= ts {
			engine.AddTrade(trades[tradeIdx])
			tradeIdx++
		}
		engine.Prune(ts)

		if !engine.ShouldRecalibrate(ts) {
			continue
		}
		res, ok := engine.Calibrate(ts)
		if !ok {
			continue
		}

		emitRow(w, cfg, ts, quote.Mid, inventory, res)
	}

	// Final row from the remaining partial window, so short captures still
	// produce a result.
	if haveQuote {
		if res, ok := engine.Calibrate(lastTS); ok {
			emitRow(w, cfg, lastTS, lastMid, inventory, res)
		}
	}

	return nil
}

func emitRow(w *bufio.Writer, cfg *config.Config, ts int64, mid, inventory decimal.Decimal, res calibration.Result) {
	optimal := spread.ComputeOptimalQuote(ts, mid, inventory,
		res.Volatility, res.Intensity.BidKappa, res.Intensity.AskKappa, &cfg.Model)

	reservation := optimal.ReservationPrice
	totalBps := decimal.Zero
	bidBps := decimal.Zero
	askBps := decimal.Zero
	if reservation.IsPositive() {
		totalBps = optimal.OptimalSpread.Div(reservation).Mul(tenK)
		bidBps = reservation.Sub(optimal.BidPrice).Div(reservation).Mul(tenK)
		askBps = optimal.AskPrice.Sub(reservation).Div(reservation).Mul(tenK)
	}

	fmt.Fprintf(w, "%d,%s,%s,%.6f,%.2f,%.2f,%.2f,%s,%s,%s,%s,%s,%s\n",
		ts,
		formatTimestamp(ts),
		mid,
		res.Volatility,
		res.Intensity.BidKappa,
		res.Intensity.BidA,
		optimal.Gamma,
		totalBps.StringFixed(2),
		bidBps.StringFixed(2),
		askBps.StringFixed(2),
		optimal.BidPrice,
		optimal.AskPrice,
		reservation,
	)

	fmt.Printf("%-15d | %12s | %10.6f | %8.2f | %8.2f | %6.2f | %12s | %12s | %12s | %12s | %12s\n",
		ts,
		mid.StringFixed(2),
		res.Volatility,
		res.Intensity.BidKappa,
		res.Intensity.BidA,
		optimal.Gamma,
		totalBps.StringFixed(2),
		bidBps.StringFixed(2),
		askBps.StringFixed(2),
		optimal.BidPrice.StringFixed(2),
		optimal.AskPrice.StringFixed(2),
	)
}

func printTableHeader() {
	rule := strings.Repeat("-", 155)
	fmt.Println(rule)
	fmt.Printf("%-15s | %12s | %10s | %8s | %8s | %6s | %12s | %12s | %12s | %12s | %12s\n",
		"Timestamp", "Mid Price", "Volatility", "Kappa", "A", "Gamma",
		"Total(bps)", "Bid(bps)", "Ask(bps)", "Bid", "Ask")
	fmt.Println(rule)
}

func formatTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05.000")
}
