package calibration

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/djienne/spread-analyzer/internal/config"
	"github.com/djienne/spread-analyzer/internal/model"
)

func testModelConfig() config.ModelConfig {
	return config.ModelConfig{
		CalibrationWindowSeconds:     60,
		RecalibrationIntervalSeconds: 10,
	}
}

func TestEngineRecalibrationSchedule(t *testing.T) {
	e := NewEngine(testModelConfig())

	if !e.ShouldRecalibrate(1000) {
		t.Fatal("ShouldRecalibrate() = false before first calibration")
	}

	for i := int64(0); i < 12; i++ {
		e.AddPrice(i*1000, decimal.NewFromFloat(100+0.1*float64(i%3)))
	}
	if _, ok := e.Calibrate(12000); !ok {
		t.Fatal("Calibrate() ok = false with enough prices")
	}

	if e.ShouldRecalibrate(15000) {
		t.Error("ShouldRecalibrate() = true inside the interval")
	}
	if !e.ShouldRecalibrate(22000) {
		t.Error("ShouldRecalibrate() = false after the interval elapsed")
	}
}

func TestEngineCalibrateNeedsPrices(t *testing.T) {
	e := NewEngine(testModelConfig())
	for i := int64(0); i < minPricesForCalibration-1; i++ {
		e.AddPrice(i*1000, decimal.NewFromInt(100))
	}
	if _, ok := e.Calibrate(10000); ok {
		t.Fatal("Calibrate() ok = true with too few prices")
	}
}

func TestEngineCalibrateResult(t *testing.T) {
	e := NewEngine(testModelConfig())

	logPrice := math.Log(100.0)
	for i := int64(0); i < 40; i++ {
		e.AddPrice(i*1000, decimal.NewFromFloat(math.Exp(logPrice)))
		if i%2 == 0 {
			logPrice += 0.005
		} else {
			logPrice -= 0.005
		}
	}

	res, ok := e.Calibrate(40000)
	if !ok {
		t.Fatal("Calibrate() ok = false")
	}
	if res.TimestampMS != 40000 {
		t.Errorf("TimestampMS = %d, want 40000", res.TimestampMS)
	}
	if res.Volatility <= 0 || !isFinite(res.Volatility) {
		t.Errorf("Volatility = %v, want finite positive", res.Volatility)
	}
	// No trades or book points, so intensity falls back to defaults.
	if res.Intensity.BidKappa != DefaultKappa || res.Intensity.AskA != DefaultA {
		t.Errorf("Intensity = %+v, want defaults", res.Intensity)
	}
	if e.Params() != res.Intensity {
		t.Error("Params() does not match the last calibration")
	}
}

func TestEnginePrune(t *testing.T) {
	e := NewEngine(testModelConfig())

	for i := int64(0); i < 100; i++ {
		ts := i * 1000
		e.AddPrice(ts, decimal.NewFromInt(100))
		e.AddTrade(model.TradeEvent{TimestampMS: ts, Price: decimal.NewFromInt(100), Side: model.SideBuy})
	}

	e.Prune(99000) // window is 60s, cutoff at 39000
	if len(e.prices) != 61 {
		t.Errorf("len(prices) = %d, want 61", len(e.prices))
	}
	if len(e.trades) != 61 {
		t.Errorf("len(trades) = %d, want 61", len(e.trades))
	}
	if e.prices[0].TimestampMS != 39000 {
		t.Errorf("oldest price ts = %d, want 39000", e.prices[0].TimestampMS)
	}

	// Full history is kept for the GARCH forecast.
	if len(e.fullHistory) != 100 {
		t.Errorf("len(fullHistory) = %d, want 100", len(e.fullHistory))
	}
}

func TestEngineAddOrderbook(t *testing.T) {
	e := NewEngine(testModelConfig())

	snap := model.OrderbookSnapshot{
		TimestampMS: 5000,
		Bids: []model.PriceLevel{
			{Price: decimal.NewFromFloat(99.9), Qty: decimal.NewFromInt(1)},
			{Price: decimal.NewFromFloat(99.0), Qty: decimal.NewFromInt(2)},
		},
		Asks: []model.PriceLevel{
			{Price: decimal.NewFromFloat(100.1), Qty: decimal.NewFromInt(1)},
			{Price: decimal.NewFromFloat(101.0), Qty: decimal.NewFromInt(2)},
		},
	}
	e.AddOrderbook(snap, decimal.NewFromInt(100))

	if len(e.prices) != 1 {
		t.Fatalf("len(prices) = %d, want 1", len(e.prices))
	}
	if len(e.points) != 1 {
		t.Fatalf("len(points) = %d, want 1", len(e.points))
	}

	p := e.points[0]
	if math.Abs(p.BidMin-0.001) > 1e-12 {
		t.Errorf("BidMin = %v, want 0.001", p.BidMin)
	}
	if math.Abs(p.BidMax-0.01) > 1e-12 {
		t.Errorf("BidMax = %v, want 0.01", p.BidMax)
	}
	if math.Abs(p.AskMin-0.001) > 1e-12 {
		t.Errorf("AskMin = %v, want 0.001", p.AskMin)
	}
	if math.Abs(p.AskMax-0.01) > 1e-12 {
		t.Errorf("AskMax = %v, want 0.01", p.AskMax)
	}
}
