package calibration

import (
	"math"

	"github.com/shopspring/decimal"
)

// minSamplesForVariance is the minimum number of log returns required for a
// stable variance estimate.
const minSamplesForVariance = 2

// PricePoint is one mid-price observation.
type PricePoint struct {
	TimestampMS int64
	Price       decimal.Decimal
}

// RealizedVolatility estimates sigma in units of 1/sqrt(seconds) from
// irregularly sampled prices: sqrt(sum of squared log returns over total
// elapsed time). Returns 0 when fewer than two valid returns exist.
func RealizedVolatility(prices []PricePoint) float64 {
	returns := collectLogReturns(prices)
	if returns == nil {
		return 0
	}

	var sumSquared, totalSeconds float64
	valid := 0
	for _, r := range returns {
		sumSquared += r.value * r.value
		totalSeconds += r.dtSeconds
		valid++
	}

	if valid < minSamplesForVariance || totalSeconds <= 0 || sumSquared <= 0 {
		return 0
	}

	sigma := math.Sqrt(sumSquared / totalSeconds)
	if !isFinite(sigma) {
		return 0
	}
	return sigma
}

type logReturn struct {
	value     float64
	dtSeconds float64
}

type floatPoint struct {
	ts    int64
	price float64
}

// sanitizePrices drops non-finite and non-positive points.
func sanitizePrices(prices []PricePoint) []floatPoint {
	cleaned := make([]floatPoint, 0, len(prices))
	for _, p := range prices {
		v, _ := p.Price.Float64()
		if isFinite(v) && v > 0 {
			cleaned = append(cleaned, floatPoint{ts: p.TimestampMS, price: v})
		}
	}
	return cleaned
}

// collectLogReturns pairs each log return with its elapsed seconds.
// Returns nil when the series is too short after sanitization.
func collectLogReturns(prices []PricePoint) []logReturn {
	cleaned := sanitizePrices(prices)
	if len(cleaned) < 2 {
		return nil
	}

	returns := make([]logReturn, 0, len(cleaned)-1)
	for i := 1; i < len(cleaned); i++ {
		dtSeconds := float64(cleaned[i].ts-cleaned[i-1].ts) / 1000.0
		if dtSeconds <= 0 {
			continue
		}
		lr := math.Log(cleaned[i].price / cleaned[i-1].price)
		if !isFinite(lr) {
			continue
		}
		returns = append(returns, logReturn{value: lr, dtSeconds: dtSeconds})
	}

	if len(returns) < minSamplesForVariance {
		return nil
	}
	return returns
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
