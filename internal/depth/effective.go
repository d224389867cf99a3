// Package depth derives effective quote prices from orderbook snapshots: the
// bid and ask at which a fixed notional could actually be executed, rather
// than the top-of-book touch.
package depth

import (
	"github.com/shopspring/decimal"

	"github.com/djienne/spread-analyzer/internal/model"
)

// EffectivePrice walks both sides of the book best-first until the notional
// threshold is covered and returns the marginal and volume-weighted prices
// per side, plus the effective mid. The second return is false when either
// side is empty, the threshold is non-positive, or no quantity accumulates.
func EffectivePrice(snap model.OrderbookSnapshot, volumeThreshold decimal.Decimal) (model.EffectiveQuote, bool) {
	bid, weightedBid, ok := sideEffectivePrice(snap.Bids, volumeThreshold)
	if !ok {
		return model.EffectiveQuote{}, false
	}
	ask, weightedAsk, ok := sideEffectivePrice(snap.Asks, volumeThreshold)
	if !ok {
		return model.EffectiveQuote{}, false
	}

	if bid.IsZero() || ask.IsZero() {
		return model.EffectiveQuote{}, false
	}

	return model.EffectiveQuote{
		Bid:         bid,
		Ask:         ask,
		Mid:         bid.Add(ask).Div(decimal.NewFromInt(2)),
		WeightedBid: weightedBid,
		WeightedAsk: weightedAsk,
	}, true
}

// sideEffectivePrice accumulates price*qty down one side (levels are sorted
// best to worst in the export) until the threshold notional is reached.
// Returns the marginal price of the last level touched and the VWAP of the
// consumed depth. A side that runs out of depth still returns its partial
// walk, as long as anything accumulated.
func sideEffectivePrice(levels []model.PriceLevel, threshold decimal.Decimal) (marginal, vwap decimal.Decimal, ok bool) {
	if len(levels) == 0 || !threshold.IsPositive() {
		return decimal.Zero, decimal.Zero, false
	}

	var (
		accumulatedValue decimal.Decimal
		accumulatedQty   decimal.Decimal
		weightedPriceSum decimal.Decimal
		finalPrice       decimal.Decimal
	)

	for _, level := range levels {
		if !level.Price.IsPositive() || !level.Qty.IsPositive() {
			continue
		}

		remaining := threshold.Sub(accumulatedValue)
		if !remaining.IsPositive() {
			break
		}

		value := level.Price.Mul(level.Qty)
		if value.GreaterThanOrEqual(remaining) {
			// Partial fill of this level covers the threshold.
			neededQty := remaining.Div(level.Price)
			accumulatedValue = accumulatedValue.Add(remaining)
			accumulatedQty = accumulatedQty.Add(neededQty)
			weightedPriceSum = weightedPriceSum.Add(level.Price.Mul(neededQty))
			finalPrice = level.Price
			break
		}

		accumulatedValue = accumulatedValue.Add(value)
		accumulatedQty = accumulatedQty.Add(level.Qty)
		weightedPriceSum = weightedPriceSum.Add(level.Price.Mul(level.Qty))
		finalPrice = level.Price
	}

	if accumulatedQty.IsZero() {
		return decimal.Zero, decimal.Zero, false
	}
	if finalPrice.IsZero() {
		return decimal.Zero, decimal.Zero, false
	}

	return finalPrice, weightedPriceSum.Div(accumulatedQty), true
}
