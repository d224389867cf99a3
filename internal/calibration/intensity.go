package calibration

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// minTradesForEstimation is the minimum fills needed for the MLE.
	minTradesForEstimation = 5

	// DefaultKappa is used when intensity calibration fails.
	DefaultKappa = 10.0
	// DefaultA is used when intensity calibration fails.
	DefaultA = 10.0

	kappaMin = 1e-6
	kappaMax = 1e4
)

// Trade is the minimal trade view the intensity fit needs.
type Trade struct {
	TimestampMS  int64
	Price        decimal.Decimal
	IsBuyerMaker bool
}

// OrderbookPoint is the minimal book state used for intensity calibration.
// Deltas are in return space: |price - mid| / mid.
type OrderbookPoint struct {
	TimestampMS int64
	Mid         decimal.Decimal
	BidMin      float64 // Best bid delta
	BidMax      float64 // Deepest bid delta
	AskMin      float64 // Best ask delta
	AskMax      float64 // Deepest ask delta
}

// IntensityParams are per-side arrival intensity parameters for
// lambda(delta) = A * exp(-kappa * delta).
type IntensityParams struct {
	BidKappa float64
	BidA     float64
	AskKappa float64
	AskA     float64
}

// exposureInterval is the time one range of deltas was quotable on a side.
type exposureInterval struct {
	durationSec float64
	deltaMin    float64
	deltaMax    float64
}

// FitIntensityParameters estimates kappa and A per side using a truncated
// exponential MLE: trade deltas give the numerator, the book's exposure
// integral the normalization. When one side fails to fit, the other side's
// parameters are reused; when both fail, defaults are returned.
func FitIntensityParameters(trades []Trade, points []OrderbookPoint, windowEndTS int64) IntensityParams {
	defaults := IntensityParams{
		BidKappa: DefaultKappa, BidA: DefaultA,
		AskKappa: DefaultKappa, AskA: DefaultA,
	}
	if len(trades) == 0 || len(points) == 0 {
		return defaults
	}

	bidDeltas := collectTradeDeltas(trades, points, true)
	askDeltas := collectTradeDeltas(trades, points, false)

	bidExposures := buildSideExposures(points, windowEndTS, true)
	askExposures := buildSideExposures(points, windowEndTS, false)

	bidKappa, bidA, bidOK := estimateMLESideExposure(bidDeltas, bidExposures)
	askKappa, askA, askOK := estimateMLESideExposure(askDeltas, askExposures)

	switch {
	case bidOK && askOK:
		return IntensityParams{BidKappa: bidKappa, BidA: bidA, AskKappa: askKappa, AskA: askA}
	case bidOK:
		return IntensityParams{BidKappa: bidKappa, BidA: bidA, AskKappa: bidKappa, AskA: bidA}
	case askOK:
		return IntensityParams{BidKappa: askKappa, BidA: askA, AskKappa: askKappa, AskA: askA}
	default:
		return defaults
	}
}

// collectTradeDeltas computes return-space distances from mid for the trades
// that hit the given side, using the most recent book state at each trade.
func collectTradeDeltas(trades []Trade, points []OrderbookPoint, isBid bool) []float64 {
	if len(points) == 0 {
		return nil
	}

	deltas := make([]float64, 0, len(trades))
	obIdx := 0

	for _, trade := range trades {
		// Bid fills are seller-aggressor trades and vice versa.
		if isBid != trade.IsBuyerMaker {
			continue
		}

		obIdx = pointIndexAt(points, trade.TimestampMS, obIdx)
		ob := points[obIdx]

		midF, _ := ob.Mid.Float64()
		if midF <= 0 {
			continue
		}

		var deltaDec decimal.Decimal
		if isBid {
			deltaDec = ob.Mid.Sub(trade.Price)
		} else {
			deltaDec = trade.Price.Sub(ob.Mid)
		}
		if !deltaDec.IsPositive() {
			continue
		}

		delta, _ := deltaDec.Float64()
		delta /= midF
		if isFinite(delta) && delta > 0 {
			deltas = append(deltas, delta)
		}
	}

	return deltas
}

// pointIndexAt advances from hint to the last point with timestamp <= target.
func pointIndexAt(points []OrderbookPoint, targetTS int64, hint int) int {
	idx := hint
	for idx+1 < len(points) && points[idx+1].TimestampMS <= targetTS {
		idx++
	}
	return idx
}

// buildSideExposures turns successive book points into exposure intervals;
// each interval lasts until the next snapshot (or the window end).
func buildSideExposures(points []OrderbookPoint, windowEndTS int64, isBid bool) []exposureInterval {
	exposures := make([]exposureInterval, 0, len(points))

	for i, ob := range points {
		startTS := ob.TimestampMS
		endTS := windowEndTS
		if i+1 < len(points) {
			endTS = points[i+1].TimestampMS
		}
		if endTS <= startTS {
			continue
		}

		durationSec := float64(endTS-startTS) / 1000.0
		deltaMin, deltaMax := ob.AskMin, ob.AskMax
		if isBid {
			deltaMin, deltaMax = ob.BidMin, ob.BidMax
		}
		if !isFinite(deltaMin) || !isFinite(deltaMax) || deltaMax <= deltaMin || deltaMax <= 0 {
			continue
		}

		exposures = append(exposures, exposureInterval{
			durationSec: durationSec,
			deltaMin:    deltaMin,
			deltaMax:    deltaMax,
		})
	}

	return exposures
}

func exposureTerm(kappa float64, exposures []exposureInterval) float64 {
	sum := 0.0
	for _, e := range exposures {
		upper := math.Exp(-kappa * e.deltaMax)
		lower := math.Exp(-kappa * e.deltaMin)
		sum += e.durationSec * (lower - upper)
	}
	return sum
}

// logLikelihood up to an additive constant:
// n*(ln kappa - ln exposure) - kappa*sum(deltas).
func logLikelihood(kappa, n, sumDeltas float64, exposures []exposureInterval) float64 {
	if kappa <= 0 || !isFinite(kappa) || len(exposures) == 0 || n <= 0 {
		return math.Inf(-1)
	}
	exposure := exposureTerm(kappa, exposures)
	if !isFinite(exposure) || exposure <= 0 {
		return math.Inf(-1)
	}
	return n*(math.Log(kappa)-math.Log(exposure)) - kappa*sumDeltas
}

func estimateMLESideExposure(deltas []float64, exposures []exposureInterval) (kappa, a float64, ok bool) {
	if len(deltas) < minTradesForEstimation || len(exposures) == 0 {
		return 0, 0, false
	}

	n := float64(len(deltas))
	sumDeltas := 0.0
	for _, d := range deltas {
		sumDeltas += d
	}
	if sumDeltas <= 0 || !isFinite(sumDeltas) {
		return 0, 0, false
	}

	// Coarse log-space sweep to bracket a good region
	bestKappa := 0.0
	bestLL := math.Inf(-1)
	logMin := math.Log10(kappaMin)
	logMax := math.Log10(kappaMax)
	for i := 0; i <= 60; i++ {
		frac := float64(i) / 60.0
		k := math.Pow(10, logMin+frac*(logMax-logMin))
		ll := logLikelihood(k, n, sumDeltas, exposures)
		if isFinite(ll) && ll > bestLL {
			bestLL = ll
			bestKappa = k
		}
	}
	if bestKappa == 0 {
		return 0, 0, false
	}

	// Golden-section refinement around the best coarse point
	low := math.Max(bestKappa/5, kappaMin)
	high := math.Min(bestKappa*5, kappaMax)
	if high <= low {
		high = math.Min(low*10, kappaMax)
	}

	const phi = 0.61803398875 // golden ratio conjugate
	c := high - (high-low)*phi
	d := low + (high-low)*phi
	fc := logLikelihood(c, n, sumDeltas, exposures)
	fd := logLikelihood(d, n, sumDeltas, exposures)

	for i := 0; i < 32; i++ {
		if fc > fd {
			high = d
			d = c
			fd = fc
			c = high - (high-low)*phi
			fc = logLikelihood(c, n, sumDeltas, exposures)
		} else {
			low = c
			c = d
			fc = fd
			d = low + (high-low)*phi
			fd = logLikelihood(d, n, sumDeltas, exposures)
		}
	}

	if fc > fd {
		bestKappa = c
	} else {
		bestKappa = d
	}

	exposure := exposureTerm(bestKappa, exposures)
	if !isFinite(exposure) || exposure <= 0 {
		return 0, 0, false
	}

	a = n * bestKappa / exposure
	if !isFinite(a) || a <= 0 || !isFinite(bestKappa) || bestKappa <= 0 {
		return 0, 0, false
	}
	return bestKappa, a, true
}
