package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/djienne/spread-analyzer/internal/model"
)

const readBufferSize = 1 << 20

// Loader reads the trade and orderbook CSV files for one market.
type Loader struct {
	tradesPath    string
	orderbookPath string
	logger        *slog.Logger
	bufferSize    int
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// NewLoader creates a loader for the given file pair.
func NewLoader(tradesPath, orderbookPath string, opts ...LoaderOption) *Loader {
	l := &Loader{
		tradesPath:    tradesPath,
		orderbookPath: orderbookPath,
		logger:        slog.Default(),
		bufferSize:    readBufferSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithBufferSize sets the read buffer size in bytes.
func WithBufferSize(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.bufferSize = n
		}
	}
}

// Load reads both files concurrently and returns the series sorted by
// timestamp. Any open, parse, or missing-column error fails the whole load.
func (l *Loader) Load(ctx context.Context) ([]model.TradeEvent, []model.OrderbookSnapshot, error) {
	var (
		trades []model.TradeEvent
		books  []model.OrderbookSnapshot
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trades, err = l.loadTrades()
		return err
	})
	g.Go(func() error {
		var err error
		books, err = l.loadOrderbook()
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	// Stable sorts keep file order for equal timestamps, which makes the
	// nearest-snapshot tie-break deterministic.
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].TimestampMS < trades[j].TimestampMS
	})
	sort.SliceStable(books, func(i, j int) bool {
		return books[i].TimestampMS < books[j].TimestampMS
	})

	l.logger.Info("data loaded",
		"trades", len(trades),
		"snapshots", len(books),
	)

	return trades, books, nil
}

func (l *Loader) loadTrades() ([]model.TradeEvent, error) {
	f, err := os.Open(l.tradesPath)
	if err != nil {
		return nil, fmt.Errorf("open trades file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReaderSize(f, l.bufferSize))
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read trades header: %w", err)
	}
	cols := indexColumns(header)

	tsIdx, err := requireColumn(cols, "timestamp_ms", l.tradesPath)
	if err != nil {
		return nil, err
	}
	priceIdx, err := requireColumn(cols, "price", l.tradesPath)
	if err != nil {
		return nil, err
	}
	sideIdx, err := requireColumn(cols, "side", l.tradesPath)
	if err != nil {
		return nil, err
	}
	qtyIdx, hasQty := cols["quantity"]

	var trades []model.TradeEvent
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read trades row %d: %w", line, err)
		}

		ts, err := strconv.ParseInt(strings.TrimSpace(record[tsIdx]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("trades row %d: parse timestamp_ms: %w", line, err)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(record[priceIdx]))
		if err != nil {
			return nil, fmt.Errorf("trades row %d: parse price: %w", line, err)
		}
		qty := decimal.Zero
		if hasQty {
			qty, err = decimal.NewFromString(strings.TrimSpace(record[qtyIdx]))
			if err != nil {
				return nil, fmt.Errorf("trades row %d: parse quantity: %w", line, err)
			}
		}

		trades = append(trades, model.TradeEvent{
			TimestampMS: ts,
			Price:       price,
			Quantity:    qty,
			Side:        model.Side(strings.ToLower(strings.TrimSpace(record[sideIdx]))),
		})
	}

	return trades, nil
}

func (l *Loader) loadOrderbook() ([]model.OrderbookSnapshot, error) {
	f, err := os.Open(l.orderbookPath)
	if err != nil {
		return nil, fmt.Errorf("open orderbook file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReaderSize(f, l.bufferSize))
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read orderbook header: %w", err)
	}
	cols := indexColumns(header)

	tsIdx, err := requireColumn(cols, "timestamp", l.orderbookPath)
	if err != nil {
		return nil, err
	}

	levels := detectDepthLevels(cols)
	if levels == 0 {
		return nil, fmt.Errorf("%s: no bid_price0/bid_qty0/ask_price0/ask_qty0 columns found", l.orderbookPath)
	}
	l.logger.Debug("detected orderbook depth", "levels", levels)

	type levelIdx struct {
		bidPrice, bidQty, askPrice, askQty int
	}
	idx := make([]levelIdx, levels)
	for i := 0; i < levels; i++ {
		idx[i] = levelIdx{
			bidPrice: cols[fmt.Sprintf("bid_price%d", i)],
			bidQty:   cols[fmt.Sprintf("bid_qty%d", i)],
			askPrice: cols[fmt.Sprintf("ask_price%d", i)],
			askQty:   cols[fmt.Sprintf("ask_qty%d", i)],
		}
	}

	var books []model.OrderbookSnapshot
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read orderbook row %d: %w", line, err)
		}

		ts, err := strconv.ParseInt(strings.TrimSpace(record[tsIdx]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("orderbook row %d: parse timestamp: %w", line, err)
		}

		snap := model.OrderbookSnapshot{
			TimestampMS: ts,
			Bids:        make([]model.PriceLevel, 0, levels),
			Asks:        make([]model.PriceLevel, 0, levels),
		}
		for i := 0; i < levels; i++ {
			bidPrice, err := parseLevelField(record, idx[i].bidPrice, line, "bid price")
			if err != nil {
				return nil, err
			}
			bidQty, err := parseLevelField(record, idx[i].bidQty, line, "bid qty")
			if err != nil {
				return nil, err
			}
			askPrice, err := parseLevelField(record, idx[i].askPrice, line, "ask price")
			if err != nil {
				return nil, err
			}
			askQty, err := parseLevelField(record, idx[i].askQty, line, "ask qty")
			if err != nil {
				return nil, err
			}

			// Empty depth slots are exported as zero prices.
			if bidPrice.IsPositive() {
				snap.Bids = append(snap.Bids, model.PriceLevel{Price: bidPrice, Qty: bidQty})
			}
			if askPrice.IsPositive() {
				snap.Asks = append(snap.Asks, model.PriceLevel{Price: askPrice, Qty: askQty})
			}
		}

		books = append(books, snap)
	}

	return books, nil
}

func parseLevelField(record []string, idx, line int, what string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(record[idx])
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("orderbook row %d: parse %s: %w", line, what, err)
	}
	return d, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

func requireColumn(cols map[string]int, name, path string) (int, error) {
	idx, ok := cols[name]
	if !ok {
		return 0, fmt.Errorf("%s: missing required column %q", path, name)
	}
	return idx, nil
}

// detectDepthLevels counts complete bid/ask column groups starting at level 0.
func detectDepthLevels(cols map[string]int) int {
	levels := 0
	for {
		_, hasBidPrice := cols[fmt.Sprintf("bid_price%d", levels)]
		_, hasBidQty := cols[fmt.Sprintf("bid_qty%d", levels)]
		_, hasAskPrice := cols[fmt.Sprintf("ask_price%d", levels)]
		_, hasAskQty := cols[fmt.Sprintf("ask_qty%d", levels)]
		if !hasBidPrice || !hasBidQty || !hasAskPrice || !hasAskQty {
			return levels
		}
		levels++
	}
}
