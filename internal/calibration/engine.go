package calibration

import (
	"github.com/shopspring/decimal"

	"github.com/djienne/spread-analyzer/internal/config"
	"github.com/djienne/spread-analyzer/internal/model"
)

// minPricesForCalibration is the minimum price observations required before
// the engine will produce a result.
const minPricesForCalibration = 10

// Result is one calibration run.
type Result struct {
	TimestampMS int64
	// Volatility (sigma) in 1/sqrt(seconds); sigma^2 * T is dimensionless.
	Volatility float64
	Intensity  IntensityParams
}

// Engine maintains the rolling price/trade/book windows and the
// recalibration schedule.
type Engine struct {
	prices []PricePoint // rolling window for realized volatility
	// Growing history for the GARCH forecast; not pruned, so the forecast
	// never conditions on a window boundary.
	fullHistory []PricePoint
	points      []OrderbookPoint
	trades      []Trade

	params            IntensityParams
	lastCalibrationTS int64 // 0 = never calibrated

	windowMS   int64
	intervalMS int64
}

// NewEngine creates an engine with the model's window settings.
func NewEngine(cfg config.ModelConfig) *Engine {
	estimated := int(min64(cfg.CalibrationWindowSeconds, 10_000))
	return &Engine{
		prices:      make([]PricePoint, 0, estimated),
		fullHistory: make([]PricePoint, 0, estimated),
		points:      make([]OrderbookPoint, 0, estimated),
		trades:      make([]Trade, 0, estimated*10),
		params: IntensityParams{
			BidKappa: 100, BidA: DefaultA,
			AskKappa: 100, AskA: DefaultA,
		},
		windowMS:   cfg.CalibrationWindowSeconds * 1000,
		intervalMS: cfg.RecalibrationIntervalSeconds * 1000,
	}
}

// AddPrice records a mid-price observation.
func (e *Engine) AddPrice(ts int64, price decimal.Decimal) {
	p := PricePoint{TimestampMS: ts, Price: price}
	e.prices = append(e.prices, p)
	e.fullHistory = append(e.fullHistory, p)
}

// AddTrade records a trade for the intensity fit.
func (e *Engine) AddTrade(t model.TradeEvent) {
	e.trades = append(e.trades, Trade{
		TimestampMS:  t.TimestampMS,
		Price:        t.Price,
		IsBuyerMaker: t.IsBuyerMaker(),
	})
}

// AddOrderbook records a snapshot's mid price and return-space exposure
// deltas for the intensity fit.
func (e *Engine) AddOrderbook(snap model.OrderbookSnapshot, mid decimal.Decimal) {
	e.AddPrice(snap.TimestampMS, mid)

	midF, _ := mid.Float64()
	if midF <= 0 {
		return
	}

	bestBid := snap.BestBid()
	bestAsk := snap.BestAsk()
	farBid, farAsk := bestBid, bestAsk
	if n := len(snap.Bids); n > 0 {
		farBid = snap.Bids[n-1].Price
	}
	if n := len(snap.Asks); n > 0 {
		farAsk = snap.Asks[n-1].Price
	}

	e.points = append(e.points, OrderbookPoint{
		TimestampMS: snap.TimestampMS,
		Mid:         mid,
		BidMin:      returnDelta(mid.Sub(bestBid), midF),
		BidMax:      returnDelta(mid.Sub(farBid), midF),
		AskMin:      returnDelta(bestAsk.Sub(mid), midF),
		AskMax:      returnDelta(farAsk.Sub(mid), midF),
	})
}

func returnDelta(d decimal.Decimal, mid float64) float64 {
	if d.IsNegative() {
		return 0
	}
	f, _ := d.Float64()
	return f / mid
}

// Prune drops window entries older than the calibration window.
func (e *Engine) Prune(nowTS int64) {
	cutoff := nowTS - e.windowMS

	i := 0
	for i < len(e.prices) && e.prices[i].TimestampMS < cutoff {
		i++
	}
	e.prices = append(e.prices[:0], e.prices[i:]...)

	i = 0
	for i < len(e.points) && e.points[i].TimestampMS < cutoff {
		i++
	}
	e.points = append(e.points[:0], e.points[i:]...)

	i = 0
	for i < len(e.trades) && e.trades[i].TimestampMS < cutoff {
		i++
	}
	e.trades = append(e.trades[:0], e.trades[i:]...)
}

// ShouldRecalibrate reports whether the recalibration interval has elapsed.
func (e *Engine) ShouldRecalibrate(nowTS int64) bool {
	if e.lastCalibrationTS == 0 {
		return true
	}
	return nowTS >= e.lastCalibrationTS+e.intervalMS
}

// Params returns the most recent intensity parameters.
func (e *Engine) Params() IntensityParams {
	return e.params
}

// Calibrate runs a calibration at nowTS. Returns false when the window holds
// too few prices. The GARCH forecast is preferred; realized volatility is
// the fallback when the fit degenerates.
func (e *Engine) Calibrate(nowTS int64) (Result, bool) {
	if len(e.prices) < minPricesForCalibration {
		return Result{}, false
	}

	sigma, ok := ForecastGARCHVolatility(e.fullHistory)
	if !ok {
		sigma = RealizedVolatility(e.prices)
	}

	params := FitIntensityParameters(e.trades, e.points, nowTS)
	e.params = params
	e.lastCalibrationTS = nowTS

	return Result{
		TimestampMS: nowTS,
		Volatility:  sigma,
		Intensity:   params,
	}, true
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
