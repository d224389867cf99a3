package spread

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/djienne/spread-analyzer/internal/config"
	"github.com/djienne/spread-analyzer/internal/model"
)

const (
	// maxGammaLimit caps gamma to prevent numerical instability.
	maxGammaLimit = 1e6
	// minGamma avoids division issues in the spread term.
	minGamma = 1e-6
	// fallbackKappa is used when a side has no positive calibrated kappa.
	fallbackKappa = 1.0
)

var (
	two  = decimal.NewFromInt(2)
	tenK = decimal.NewFromInt(10000)
)

// clampSigma bounds sigma to the configured volatility band when the band is
// well formed.
func clampSigma(sigma float64, cfg *config.ModelConfig) float64 {
	if cfg.MaxVolatility > cfg.MinVolatility {
		return math.Min(math.Max(sigma, cfg.MinVolatility), cfg.MaxVolatility)
	}
	return sigma
}

func roundDownToTick(price, tick decimal.Decimal) decimal.Decimal {
	if !tick.IsPositive() {
		return price
	}
	ticks := price.Div(tick).IntPart()
	return decimal.NewFromInt(ticks).Mul(tick)
}

func roundUpToTick(price, tick decimal.Decimal) decimal.Decimal {
	if !tick.IsPositive() {
		return price
	}
	ticks := price.Div(tick).IntPart()
	down := decimal.NewFromInt(ticks).Mul(tick)
	if down.LessThan(price) {
		return decimal.NewFromInt(ticks + 1).Mul(tick)
	}
	return down
}

// effectiveGamma derives the risk aversion for the quote from the configured
// mode, the inventory utilization and the maximum tolerated reservation shift.
func effectiveGamma(cfg *config.ModelConfig, sigmaSq, tHorizon, mid, invRatio float64) float64 {
	gammaConstant := math.Max(cfg.RiskAversionGamma, minGamma)

	// Gamma implied by shifting the reservation price by at most
	// max_shift_ticks at full inventory, expressed in return space.
	gammaFromShift := gammaConstant
	if sigmaSq > 1e-12 && tHorizon > 0 && mid > 0 {
		targetShiftReturn := (cfg.MaxShiftTicks * cfg.TickSize) / mid
		if denom := sigmaSq * tHorizon; denom > 0 {
			gammaFromShift = math.Min(targetShiftReturn/denom, maxGammaLimit)
		}
	}

	var gamma float64
	switch cfg.GammaMode {
	case config.GammaInventoryScaled:
		gamma = math.Max(gammaFromShift*invRatio, minGamma)
	case config.GammaMaxShift:
		gamma = math.Max(gammaFromShift, minGamma)
	default:
		gamma = gammaConstant
	}

	if cfg.GammaMax > cfg.GammaMin && cfg.GammaMax > 0 {
		minG := math.Max(cfg.GammaMin, minGamma)
		maxG := math.Min(cfg.GammaMax, maxGammaLimit)
		gamma = math.Min(math.Max(gamma, minG), maxG)
	}
	return gamma
}

// spreadReturn is the per-side Avellaneda-Stoikov spread in return space:
// gamma*sigma^2*T + (2/gamma)*ln(1 + gamma/kappa).
func spreadReturn(gamma, volRiskTerm, kappa float64) float64 {
	kappaEff := kappa
	if kappaEff <= 0 {
		kappaEff = fallbackKappa
	}
	term := math.Max(1+gamma/kappaEff, minGamma)
	return volRiskTerm + (2/gamma)*math.Log(term)
}

// boundSpread clamps a price-space spread to the configured basis point band
// [max(min_spread_bps, 2*maker_fee_bps), max_spread_bps].
func boundSpread(sp, mid decimal.Decimal, cfg *config.ModelConfig) decimal.Decimal {
	if !sp.IsPositive() || !mid.IsPositive() {
		return sp
	}

	spreadBps, _ := sp.Div(mid).Mul(tenK).Float64()

	feeFloor := math.Max(cfg.MakerFeeBps, 0)
	minBps := math.Max(cfg.MinSpreadBps, 2*feeFloor)
	maxBps := cfg.MaxSpreadBps
	if maxBps <= 0 {
		maxBps = math.Max(spreadBps, minBps)
	}
	if maxBps <= 0 {
		return sp
	}

	clamped := math.Min(math.Max(spreadBps, minBps), maxBps)
	return decimal.NewFromFloat(clamped).Mul(mid).Div(tenK)
}

// ComputeOptimalQuote produces the optimal two-sided quote for one instant.
// Sigma is in units of 1/sqrt(seconds); kappa values are dimensionless,
// calibrated in return space.
func ComputeOptimalQuote(
	timestampMS int64,
	midPrice decimal.Decimal,
	inventory decimal.Decimal,
	sigmaRaw float64,
	bidKappa, askKappa float64,
	cfg *config.ModelConfig,
) model.OptimalQuote {
	sigma := math.Max(clampSigma(sigmaRaw, cfg), 0)
	mid, _ := midPrice.Float64()
	tHorizon := float64(cfg.InventoryHorizonSeconds)
	sigmaSq := sigma * sigma

	var invRatio, invRatioSigned float64
	if cfg.MaxInventory > 0 {
		invAbs, _ := inventory.Abs().Float64()
		invRatio = math.Min(invAbs/cfg.MaxInventory, 1)
		inv, _ := inventory.Float64()
		invRatioSigned = math.Min(math.Max(inv/cfg.MaxInventory, -1), 1)
	}

	gamma := effectiveGamma(cfg, sigmaSq, tHorizon, mid, invRatio)
	volRiskTerm := gamma * sigmaSq * tHorizon

	bidSpreadRet := spreadReturn(gamma, volRiskTerm, bidKappa)
	askSpreadRet := spreadReturn(gamma, volRiskTerm, askKappa)

	// Back to price space; without a valid mid the return values are used
	// directly.
	bidSpreadF := bidSpreadRet
	askSpreadF := askSpreadRet
	if mid > 0 {
		bidSpreadF = bidSpreadRet * mid
		askSpreadF = askSpreadRet * mid
	}

	bidSpread := decimal.Zero
	if !math.IsNaN(bidSpreadF) && !math.IsInf(bidSpreadF, 0) && bidSpreadF > 0 {
		bidSpread = decimal.NewFromFloat(bidSpreadF)
	}
	askSpread := decimal.Zero
	if !math.IsNaN(askSpreadF) && !math.IsInf(askSpreadF, 0) && askSpreadF > 0 {
		askSpread = decimal.NewFromFloat(askSpreadF)
	}

	bidSpread = boundSpread(bidSpread, midPrice, cfg)
	askSpread = boundSpread(askSpread, midPrice, cfg)

	// Reservation price shift in return space, scaled back by mid.
	riskAdjRet := invRatioSigned * gamma * sigmaSq * tHorizon
	riskAdjF := riskAdjRet
	if mid > 0 {
		riskAdjF = riskAdjRet * mid
	}
	reservation := midPrice.Sub(decimal.NewFromFloat(riskAdjF))
	if !reservation.IsPositive() {
		reservation = midPrice
	}

	rawBid := reservation.Sub(bidSpread.Div(two))
	rawAsk := reservation.Add(askSpread.Div(two))

	tick := decimal.NewFromFloat(cfg.TickSize)
	bidPrice := rawBid
	if rawBid.IsPositive() {
		bidPrice = roundDownToTick(rawBid, tick)
	}
	askPrice := rawAsk
	if rawAsk.IsPositive() {
		askPrice = roundUpToTick(rawAsk, tick)
	}

	// A crossed quote collapses to its midpoint.
	if bidPrice.GreaterThan(askPrice) {
		m := bidPrice.Add(askPrice).Div(two)
		bidPrice = m
		askPrice = m
	}

	finalSpread := askPrice.Sub(bidPrice)
	if !finalSpread.IsPositive() {
		finalSpread = bidSpread.Add(askSpread).Div(two)
		if finalSpread.IsNegative() {
			finalSpread = decimal.Zero
		}
	}

	return model.OptimalQuote{
		TimestampMS:      timestampMS,
		ReservationPrice: reservation,
		OptimalSpread:    finalSpread,
		BidPrice:         bidPrice,
		AskPrice:         askPrice,
		Inventory:        inventory,
		Gamma:            gamma,
	}
}
