package spread

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/djienne/spread-analyzer/internal/config"
)

func defaultModel() *config.ModelConfig {
	m := config.Default().Model
	return &m
}

func TestComputeOptimalQuoteBasic(t *testing.T) {
	cfg := defaultModel()
	mid := decimal.NewFromInt(100)

	quote := ComputeOptimalQuote(0, mid, decimal.Zero, 0.01, 100, 100, cfg)

	if !quote.BidPrice.LessThan(quote.AskPrice) {
		t.Fatalf("bid %s >= ask %s", quote.BidPrice, quote.AskPrice)
	}
	if !quote.OptimalSpread.IsPositive() {
		t.Fatalf("OptimalSpread = %s, want positive", quote.OptimalSpread)
	}
	if quote.TimestampMS != 0 {
		t.Errorf("TimestampMS = %d, want 0", quote.TimestampMS)
	}
}

func TestComputeOptimalQuoteInventorySkew(t *testing.T) {
	cfg := defaultModel()
	mid := decimal.NewFromInt(100)
	inv := decimal.NewFromInt(5)

	quote := ComputeOptimalQuote(0, mid, inv, 0.01, 100, 100, cfg)

	// Long inventory pushes the reservation price below mid to favor selling.
	if quote.ReservationPrice.GreaterThan(mid) {
		t.Fatalf("ReservationPrice = %s, want <= %s", quote.ReservationPrice, mid)
	}
	if !quote.Inventory.Equal(inv) {
		t.Errorf("Inventory = %s, want %s", quote.Inventory, inv)
	}
}

func TestComputeOptimalQuoteZeroVolatility(t *testing.T) {
	cfg := defaultModel()
	mid := decimal.NewFromInt(100)

	quote := ComputeOptimalQuote(0, mid, decimal.Zero, 0, 100, 100, cfg)

	if quote.BidPrice.GreaterThan(quote.AskPrice) {
		t.Fatalf("bid %s > ask %s", quote.BidPrice, quote.AskPrice)
	}
}

func TestComputeOptimalQuoteExtremeGamma(t *testing.T) {
	cfg := defaultModel()
	cfg.GammaMax = 1e10
	mid := decimal.NewFromInt(100)

	quote := ComputeOptimalQuote(0, mid, decimal.Zero, 0.01, 100, 100, cfg)

	if quote.Gamma > maxGammaLimit {
		t.Fatalf("Gamma = %v, want <= %v", quote.Gamma, maxGammaLimit)
	}
}

func TestComputeOptimalQuoteSpreadBounds(t *testing.T) {
	cfg := defaultModel()
	mid := decimal.NewFromInt(100)

	// High volatility and low kappa would produce a huge raw spread;
	// the basis point cap must contain it.
	quote := ComputeOptimalQuote(0, mid, decimal.Zero, 0.02, 0.5, 0.5, cfg)

	spreadBps, _ := quote.AskPrice.Sub(quote.BidPrice).Div(mid).Mul(decimal.NewFromInt(10000)).Float64()
	// Tick rounding can widen each side by at most one tick (2 bps total here).
	if spreadBps > cfg.MaxSpreadBps+2 {
		t.Fatalf("spread = %v bps, want <= %v", spreadBps, cfg.MaxSpreadBps+2)
	}
	if spreadBps < cfg.MinSpreadBps {
		t.Fatalf("spread = %v bps, want >= %v", spreadBps, cfg.MinSpreadBps)
	}
}

func TestComputeOptimalQuoteTickRounding(t *testing.T) {
	cfg := defaultModel()
	mid := decimal.RequireFromString("100.003")

	quote := ComputeOptimalQuote(0, mid, decimal.Zero, 0.01, 100, 100, cfg)

	tick := decimal.NewFromFloat(cfg.TickSize)
	if !quote.BidPrice.Mod(tick).IsZero() {
		t.Errorf("BidPrice = %s, not on the %s tick grid", quote.BidPrice, tick)
	}
	if !quote.AskPrice.Mod(tick).IsZero() {
		t.Errorf("AskPrice = %s, not on the %s tick grid", quote.AskPrice, tick)
	}
}

func TestComputeOptimalQuoteGammaModes(t *testing.T) {
	mid := decimal.NewFromInt(100)

	t.Run("constant mode uses configured gamma", func(t *testing.T) {
		cfg := defaultModel()
		cfg.GammaMode = config.GammaConstant
		quote := ComputeOptimalQuote(0, mid, decimal.Zero, 0.01, 100, 100, cfg)
		if quote.Gamma != cfg.RiskAversionGamma {
			t.Fatalf("Gamma = %v, want %v", quote.Gamma, cfg.RiskAversionGamma)
		}
	})

	t.Run("inventory scaled mode floors at gamma_min when flat", func(t *testing.T) {
		cfg := defaultModel()
		quote := ComputeOptimalQuote(0, mid, decimal.Zero, 0.01, 100, 100, cfg)
		if quote.Gamma != cfg.GammaMin {
			t.Fatalf("Gamma = %v, want %v", quote.Gamma, cfg.GammaMin)
		}
	})

	t.Run("max shift mode grows with inventory horizon", func(t *testing.T) {
		cfg := defaultModel()
		cfg.GammaMode = config.GammaMaxShift
		quote := ComputeOptimalQuote(0, mid, decimal.Zero, 0.01, 100, 100, cfg)
		if quote.Gamma < cfg.GammaMin || quote.Gamma > cfg.GammaMax {
			t.Fatalf("Gamma = %v, want within [%v, %v]", quote.Gamma, cfg.GammaMin, cfg.GammaMax)
		}
	})
}
