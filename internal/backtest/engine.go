package backtest

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/djienne/spread-analyzer/internal/calibration"
	"github.com/djienne/spread-analyzer/internal/config"
	"github.com/djienne/spread-analyzer/internal/dataset"
	"github.com/djienne/spread-analyzer/internal/spread"
)

var tenK = decimal.NewFromInt(10000)

// Params configures one backtest run.
type Params struct {
	// Events is the merged, timestamp-ordered stream.
	Events []dataset.DataEvent
	Model  config.ModelConfig
	// InitialCapital is the starting cash in quote currency.
	InitialCapital decimal.Decimal
	// OrderNotional is the quoted size per side in quote currency.
	OrderNotional decimal.Decimal
	// OutputCSV, when non-empty, receives one row per requote.
	OutputCSV string
	Verbose   bool
	Logger    *slog.Logger
}

// Results summarizes a finished run.
type Results struct {
	InitialCapital decimal.Decimal
	// FinalPnL is the mark-to-market equity after the position close.
	FinalPnL       decimal.Decimal
	TotalReturnPct decimal.Decimal
	BidFills       uint64
	AskFills       uint64
	// TotalVolume is in base units, TotalNotionalVolume in quote currency.
	TotalVolume         decimal.Decimal
	TotalNotionalVolume decimal.Decimal
	FinalInventory      decimal.Decimal
	FinalCash           decimal.Decimal
}

// TotalFills returns bid fills plus ask fills.
func (r Results) TotalFills() uint64 { return r.BidFills + r.AskFills }

// sim holds the mutable trading state plus the per-run constants the fill
// rules need.
type sim struct {
	inventory           decimal.Decimal
	cash                decimal.Decimal
	bidFills            uint64
	askFills            uint64
	totalVolume         decimal.Decimal
	totalNotionalVolume decimal.Decimal
	lastBidFillTS       int64
	lastAskFillTS       int64

	maxInventory  decimal.Decimal
	orderNotional decimal.Decimal
	feeMult       decimal.Decimal
	cooldownMS    int64
}

func newSim(m *config.ModelConfig, initialCapital, orderNotional decimal.Decimal) *sim {
	return &sim{
		inventory:           decimal.Zero,
		cash:                initialCapital,
		totalVolume:         decimal.Zero,
		totalNotionalVolume: decimal.Zero,
		maxInventory:        decimal.NewFromFloat(m.MaxInventory),
		orderNotional:       orderNotional,
		feeMult:             decimal.NewFromFloat(m.MakerFeeBps).Div(tenK),
		cooldownMS:          m.FillCooldownSeconds * 1000,
	}
}

func (s *sim) markToMarket(mid decimal.Decimal) decimal.Decimal {
	return s.cash.Add(s.inventory.Mul(mid))
}

// onTrade applies the fill rules for one market trade against the active
// quotes. A trade at or through the ask fills our sell side; at or below the
// bid it fills our buy side.
func (s *sim) onTrade(ts int64, price, bid, ask decimal.Decimal) {
	switch {
	case price.GreaterThanOrEqual(ask):
		if s.lastAskFillTS > 0 && ts < s.lastAskFillTS+s.cooldownMS {
			return
		}
		if s.inventory.LessThanOrEqual(s.maxInventory.Neg()) {
			return
		}
		unitSize := s.orderNotional.Div(price)
		shortCapacity := s.inventory.Add(s.maxInventory)
		sellSize := decimal.Min(shortCapacity, unitSize)
		if !sellSize.IsPositive() {
			return
		}
		grossProceeds := ask.Mul(sellSize)
		fee := grossProceeds.Mul(s.feeMult)

		s.inventory = s.inventory.Sub(sellSize)
		s.cash = s.cash.Add(grossProceeds).Sub(fee)
		s.askFills++
		s.totalVolume = s.totalVolume.Add(sellSize)
		s.totalNotionalVolume = s.totalNotionalVolume.Add(grossProceeds)
		s.lastAskFillTS = ts

	case price.LessThanOrEqual(bid):
		if s.lastBidFillTS > 0 && ts < s.lastBidFillTS+s.cooldownMS {
			return
		}
		if s.inventory.GreaterThanOrEqual(s.maxInventory) {
			return
		}
		unitSize := s.orderNotional.Div(price)
		longCapacity := s.maxInventory.Sub(s.inventory)
		buySize := decimal.Min(longCapacity, unitSize)
		if !buySize.IsPositive() {
			return
		}
		grossCost := bid.Mul(buySize)
		fee := grossCost.Mul(s.feeMult)
		totalCost := grossCost.Add(fee)
		if s.cash.LessThan(totalCost) {
			return
		}

		s.inventory = s.inventory.Add(buySize)
		s.cash = s.cash.Sub(totalCost)
		s.bidFills++
		s.totalVolume = s.totalVolume.Add(buySize)
		s.totalNotionalVolume = s.totalNotionalVolume.Add(grossCost)
		s.lastBidFillTS = ts
	}
}

// closePosition flattens any remaining inventory at mid, paying taker fees.
func (s *sim) closePosition(mid decimal.Decimal, takerFeeBps float64, logger *slog.Logger) {
	if s.inventory.IsZero() || !mid.IsPositive() {
		return
	}
	feeMult := decimal.NewFromFloat(takerFeeBps).Div(tenK)

	size := s.inventory.Abs()
	notional := mid.Mul(size)
	fee := notional.Mul(feeMult)
	if s.inventory.IsPositive() {
		s.cash = s.cash.Add(notional).Sub(fee)
		logger.Info("closing long position", "size", size, "price", mid, "fee", fee)
	} else {
		s.cash = s.cash.Sub(notional).Sub(fee)
		logger.Info("closing short position", "size", size, "price", mid, "fee", fee)
	}
	s.totalVolume = s.totalVolume.Add(size)
	s.totalNotionalVolume = s.totalNotionalVolume.Add(notional)
	s.inventory = decimal.Zero
}

func formatTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05.000 UTC")
}

// Run replays the event stream and returns the performance summary.
func Run(params Params) (Results, error) {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := params.Model

	if params.Verbose {
		logger.Info("running backtest",
			"horizon_seconds", m.InventoryHorizonSeconds,
			"gamma", m.RiskAversionGamma,
		)
	}

	s := newSim(&m, params.InitialCapital, params.OrderNotional)
	engine := calibration.NewEngine(m)

	var out *bufio.Writer
	if params.OutputCSV != "" {
		f, err := os.Create(params.OutputCSV)
		if err != nil {
			return Results{}, fmt.Errorf("create output csv: %w", err)
		}
		defer f.Close()
		out = bufio.NewWriter(f)
		defer out.Flush()
		fmt.Fprintln(out, "timestamp,datetime,mid_price,inventory,cash,pnl,spread_bps,bid_price,ask_price,bid_fills,ask_fills,gamma,kappa")
	}

	lastMid := decimal.Zero
	requotes := 0

	var (
		activeBid, activeAsk decimal.Decimal
		quoteActive          bool
		activeQuoteTS        int64
		lastBookTS           int64
		warmupEndTS          int64
	)

	quoteValidityMS := m.QuoteValiditySeconds * 1000
	gapThresholdMS := m.GapThresholdSeconds * 1000
	warmupPeriodMS := m.WarmupPeriodSeconds * 1000

	for _, ev := range params.Events {
		switch {
		case ev.Trade != nil:
			trade := ev.Trade
			engine.AddTrade(*trade)

			if trade.TimestampMS < warmupEndTS {
				continue
			}
			if !quoteActive {
				continue
			}
			if activeQuoteTS == 0 || trade.TimestampMS >= activeQuoteTS+quoteValidityMS {
				continue
			}
			s.onTrade(trade.TimestampMS, trade.Price, activeBid, activeAsk)

		case ev.Book != nil:
			book := ev.Book
			ts := book.TimestampMS

			if lastBookTS > 0 {
				if delta := ts - lastBookTS; delta > gapThresholdMS {
					warmupEndTS = ts + warmupPeriodMS
					logger.Warn("data gap detected, entering warm-up",
						"gap_seconds", delta/1000,
						"warmup_until", formatTimestamp(warmupEndTS),
					)
					quoteActive = false
					activeQuoteTS = 0
				}
			} else {
				warmupEndTS = ts + warmupPeriodMS
				if params.Verbose {
					logger.Info("starting initial warm-up", "until", formatTimestamp(warmupEndTS))
				}
			}
			lastBookTS = ts

			mid := lastMid
			bestBid, bestAsk := book.BestBid(), book.BestAsk()
			if bestBid.IsPositive() && bestAsk.IsPositive() {
				mid = book.Mid()
			}
			lastMid = mid

			engine.AddOrderbook(*book, mid)
			engine.Prune(ts)

			if !engine.ShouldRecalibrate(ts) {
				continue
			}
			res, ok := engine.Calibrate(ts)
			if !ok {
				continue
			}

			optimal := spread.ComputeOptimalQuote(ts, mid, s.inventory,
				res.Volatility, res.Intensity.BidKappa, res.Intensity.AskKappa, &m)

			activeBid = optimal.BidPrice
			activeAsk = optimal.AskPrice
			quoteActive = true
			activeQuoteTS = ts

			if params.Verbose && requotes%10 == 0 {
				logger.Info("requote",
					"time", formatTimestamp(ts),
					"mid", mid,
					"inventory", s.inventory.Round(6),
					"pnl", s.markToMarket(mid).Round(2),
					"bid", optimal.BidPrice,
					"ask", optimal.AskPrice,
					"bid_fills", s.bidFills,
					"ask_fills", s.askFills,
				)
			}
			requotes++

			if out != nil {
				pnl := s.markToMarket(mid)
				spreadBps := decimal.Zero
				if mid.IsPositive() {
					spreadBps = optimal.OptimalSpread.Div(mid).Mul(tenK)
				}
				bps, _ := spreadBps.Float64()
				fmt.Fprintf(out, "%d,%s,%s,%s,%s,%s,%.2f,%s,%s,%d,%d,%.6f,%.2f\n",
					ts, formatTimestamp(ts), mid, s.inventory.Round(6), s.cash, pnl,
					bps, optimal.BidPrice, optimal.AskPrice,
					s.bidFills, s.askFills, optimal.Gamma, res.Intensity.BidKappa)
			}
		}
	}

	s.closePosition(lastMid, m.TakerFeeBps, logger)

	finalPnL := s.markToMarket(lastMid)
	returnPct := decimal.Zero
	if !params.InitialCapital.IsZero() {
		returnPct = finalPnL.Sub(params.InitialCapital).
			Div(params.InitialCapital).Mul(decimal.NewFromInt(100))
	}

	return Results{
		InitialCapital:      params.InitialCapital,
		FinalPnL:            finalPnL,
		TotalReturnPct:      returnPct,
		BidFills:            s.bidFills,
		AskFills:            s.askFills,
		TotalVolume:         s.totalVolume,
		TotalNotionalVolume: s.totalNotionalVolume,
		FinalInventory:      s.inventory,
		FinalCash:           s.cash,
	}, nil
}
