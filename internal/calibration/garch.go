package calibration

import "math"

const (
	// minReturnsForGARCH is the minimum fixed-step returns for estimation.
	minReturnsForGARCH = 5
	// maxAlphaBetaSum keeps the process stationary.
	maxAlphaBetaSum = 0.999
	// log2Pi is ln(2*pi) for the normal log-likelihood.
	log2Pi = 1.8378770664093453
)

// ForecastGARCHVolatility fits a GARCH(1,1) by grid-based MLE on 1-second
// previous-tick returns and returns the next-step sigma forecast (per
// sqrt-second). The second return is false when the series is too short or
// the fit degenerates.
func ForecastGARCHVolatility(prices []PricePoint) (float64, bool) {
	returns := buildFixedStepReturns(prices, 1.0)
	if len(returns) < minReturnsForGARCH {
		return 0, false
	}
	return fitGARCHForecast(returns)
}

// garchLogLik evaluates the log-likelihood and next-step variance for one
// (alpha, beta) pair, anchoring omega on the unconditional variance var0.
func garchLogLik(returns []float64, alpha, beta, var0 float64) (loglik, sigma2Next float64, ok bool) {
	if alpha < 0 || beta < 0 || alpha+beta >= maxAlphaBetaSum {
		return 0, 0, false
	}

	omega := var0 * (1 - alpha - beta)
	if omega <= 0 {
		return 0, 0, false
	}

	sigma2 := math.Max(var0, 1e-12)
	if !isFinite(sigma2) {
		return 0, 0, false
	}

	for _, r := range returns {
		if sigma2 <= 0 || !isFinite(sigma2) {
			return 0, 0, false
		}
		loglik += -0.5 * (log2Pi + math.Log(sigma2) + (r*r)/sigma2)
		sigma2 = omega + alpha*(r*r) + beta*sigma2
	}

	return loglik, sigma2, true
}

func fitGARCHForecast(returns []float64) (float64, bool) {
	meanSq := 0.0
	for _, r := range returns {
		meanSq += r * r
	}
	meanSq /= float64(len(returns))
	if !isFinite(meanSq) || meanSq <= 0 {
		return 0, false
	}

	bestLoglik := math.Inf(-1)
	bestAlpha, bestBeta := 0.1, 0.85
	bestSigma2Next := meanSq

	// Coarse grid search
	for i := 0; i <= 25; i++ {
		alpha := float64(i) * 0.02
		for j := 0; j <= 49; j++ {
			beta := float64(j) * 0.02
			if alpha+beta >= maxAlphaBetaSum {
				continue
			}
			if ll, s2, ok := garchLogLik(returns, alpha, beta, meanSq); ok && ll > bestLoglik {
				bestLoglik = ll
				bestAlpha = alpha
				bestBeta = beta
				bestSigma2Next = s2
			}
		}
	}

	// Local refinement around the best grid point
	refineSteps := []float64{-0.02, -0.01, -0.005, 0, 0.005, 0.01, 0.02}
	for _, da := range refineSteps {
		for _, db := range refineSteps {
			alpha := math.Max(bestAlpha+da, 0)
			beta := math.Max(bestBeta+db, 0)
			if alpha+beta >= maxAlphaBetaSum {
				continue
			}
			if ll, s2, ok := garchLogLik(returns, alpha, beta, meanSq); ok && ll > bestLoglik {
				bestLoglik = ll
				bestSigma2Next = s2
			}
		}
	}

	if !isFinite(bestLoglik) || !isFinite(bestSigma2Next) || bestSigma2Next <= 0 {
		return 0, false
	}
	return math.Sqrt(bestSigma2Next), true
}

// buildFixedStepReturns resamples the series onto a uniform grid with
// previous-tick interpolation and returns per-step log returns.
func buildFixedStepReturns(prices []PricePoint, stepSeconds float64) []float64 {
	if stepSeconds <= 0 {
		return nil
	}
	cleaned := sanitizePrices(prices)
	if len(cleaned) < 2 {
		return nil
	}

	stepMS := int64(math.Round(stepSeconds * 1000))
	if stepMS == 0 {
		return nil
	}

	resampled := make([]float64, 0, len(cleaned)*2)
	lastPrice := cleaned[0].price
	nextBucket := cleaned[0].ts + stepMS
	resampled = append(resampled, lastPrice)

	for _, p := range cleaned[1:] {
		for nextBucket <= p.ts {
			resampled = append(resampled, lastPrice)
			nextBucket += stepMS
		}
		lastPrice = p.price
	}
	// One final bucket so the last recorded price contributes a return.
	resampled = append(resampled, lastPrice)

	if len(resampled) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(resampled)-1)
	for i := 1; i < len(resampled); i++ {
		lr := math.Log(resampled[i] / resampled[i-1])
		if isFinite(lr) {
			returns = append(returns, lr)
		}
	}

	if len(returns) < minSamplesForVariance {
		return nil
	}
	return returns
}
