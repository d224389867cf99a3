package calibration

import (
	"testing"

	"github.com/shopspring/decimal"
)

func bookPoint(ts int64, mid float64) OrderbookPoint {
	return OrderbookPoint{
		TimestampMS: ts,
		Mid:         decimal.NewFromFloat(mid),
		BidMin:      0.0001,
		BidMax:      0.01,
		AskMin:      0.0001,
		AskMax:      0.01,
	}
}

func intensityTrade(ts int64, price float64, buyerMaker bool) Trade {
	return Trade{TimestampMS: ts, Price: decimal.NewFromFloat(price), IsBuyerMaker: buyerMaker}
}

func TestFitIntensityParameters(t *testing.T) {
	t.Run("empty inputs return defaults", func(t *testing.T) {
		got := FitIntensityParameters(nil, nil, 1000)
		if got.BidKappa != DefaultKappa || got.BidA != DefaultA {
			t.Fatalf("bid params = (%v, %v), want defaults", got.BidKappa, got.BidA)
		}
		if got.AskKappa != DefaultKappa || got.AskA != DefaultA {
			t.Fatalf("ask params = (%v, %v), want defaults", got.AskKappa, got.AskA)
		}
	})

	t.Run("symmetric fills fit both sides", func(t *testing.T) {
		points := make([]OrderbookPoint, 0, 61)
		for ts := int64(0); ts <= 60000; ts += 1000 {
			points = append(points, bookPoint(ts, 100))
		}

		// Seller-aggressor trades below mid hit the bid, buyer-aggressor
		// trades above mid hit the ask. Mirror-image fills on each side.
		trades := make([]Trade, 0, 16)
		for i := int64(0); i < 8; i++ {
			ts := 3000 + i*7000
			offset := 0.02 + float64(i)*0.01
			trades = append(trades,
				intensityTrade(ts, 100-offset, true),
				intensityTrade(ts+500, 100+offset, false),
			)
		}

		got := FitIntensityParameters(trades, points, 61000)
		if got.BidKappa <= 0 || !isFinite(got.BidKappa) {
			t.Fatalf("BidKappa = %v, want finite positive", got.BidKappa)
		}
		if got.BidA <= 0 || !isFinite(got.BidA) {
			t.Fatalf("BidA = %v, want finite positive", got.BidA)
		}
		if got.BidKappa > kappaMax {
			t.Fatalf("BidKappa = %v, want <= %v", got.BidKappa, kappaMax)
		}
		// The setup is symmetric so the sides should agree closely.
		relDiff := (got.BidKappa - got.AskKappa) / got.BidKappa
		if relDiff < -0.05 || relDiff > 0.05 {
			t.Fatalf("BidKappa = %v, AskKappa = %v, want within 5%%", got.BidKappa, got.AskKappa)
		}
	})

	t.Run("one-sided fills reuse the fitted side", func(t *testing.T) {
		points := make([]OrderbookPoint, 0, 61)
		for ts := int64(0); ts <= 60000; ts += 1000 {
			points = append(points, bookPoint(ts, 100))
		}

		trades := make([]Trade, 0, 8)
		for i := int64(0); i < 8; i++ {
			trades = append(trades, intensityTrade(2000+i*7000, 100-0.03-float64(i)*0.01, true))
		}

		got := FitIntensityParameters(trades, points, 61000)
		if got.BidKappa != got.AskKappa || got.BidA != got.AskA {
			t.Fatalf("ask side = (%v, %v), want copy of bid side (%v, %v)",
				got.AskKappa, got.AskA, got.BidKappa, got.BidA)
		}
		if got.BidKappa == DefaultKappa && got.BidA == DefaultA {
			t.Fatal("bid side returned defaults, want a fitted value")
		}
	})
}

func TestCollectTradeDeltas(t *testing.T) {
	points := []OrderbookPoint{bookPoint(0, 100), bookPoint(10000, 200)}
	trades := []Trade{
		intensityTrade(1000, 99.5, true),   // bid fill vs mid 100
		intensityTrade(1000, 100.5, false), // ask fill, excluded from bid set
		intensityTrade(12000, 199, true),   // bid fill vs mid 200
		intensityTrade(13000, 201, true),   // above mid, non-positive bid delta
	}

	deltas := collectTradeDeltas(trades, points, true)
	if len(deltas) != 2 {
		t.Fatalf("len(deltas) = %d, want 2", len(deltas))
	}
	if diff := deltas[0] - 0.005; diff < -1e-12 || diff > 1e-12 {
		t.Errorf("deltas[0] = %v, want 0.005", deltas[0])
	}
	if diff := deltas[1] - 0.005; diff < -1e-12 || diff > 1e-12 {
		t.Errorf("deltas[1] = %v, want 0.005", deltas[1])
	}
}

func TestBuildSideExposures(t *testing.T) {
	points := []OrderbookPoint{
		bookPoint(0, 100),
		bookPoint(2000, 100),
		{TimestampMS: 3000, Mid: decimal.NewFromInt(100)}, // empty deltas, skipped
	}

	exposures := buildSideExposures(points, 5000, true)
	if len(exposures) != 2 {
		t.Fatalf("len(exposures) = %d, want 2", len(exposures))
	}
	if exposures[0].durationSec != 2.0 {
		t.Errorf("exposures[0].durationSec = %v, want 2", exposures[0].durationSec)
	}
	if exposures[1].durationSec != 1.0 {
		t.Errorf("exposures[1].durationSec = %v, want 1", exposures[1].durationSec)
	}
}
