package analysis

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/djienne/spread-analyzer/internal/model"
)

// JoinedTrade is one trade annotated with its nearest orderbook snapshot and
// the derived distance fields.
type JoinedTrade struct {
	Trade       model.TradeEvent
	SnapshotTS  int64
	Mid         decimal.Decimal
	BestBid     decimal.Decimal
	BestAsk     decimal.Decimal
	Spread      decimal.Decimal
	DistFromMid decimal.Decimal

	// Relative fields, float64 on purpose: a zero mid yields Inf/NaN here
	// instead of a decimal division panic.
	DistFromMidBps  float64
	MarketSpreadBps float64
}

// JoinNearest matches each trade to the snapshot with the closest timestamp
// and computes the derived fields. Snapshots must be sorted by timestamp,
// which the dataset loader guarantees.
func JoinNearest(trades []model.TradeEvent, books []model.OrderbookSnapshot) ([]JoinedTrade, error) {
	if len(books) == 0 {
		return nil, errors.New("no orderbook snapshots to join against")
	}

	rows := make([]JoinedTrade, 0, len(trades))
	for _, tr := range trades {
		snap := books[nearestIndex(books, tr.TimestampMS)]

		mid := snap.Mid()
		spread := snap.Spread()
		dist := tr.Price.Sub(mid)

		midF, _ := mid.Float64()
		distF, _ := dist.Float64()
		spreadF, _ := spread.Float64()

		rows = append(rows, JoinedTrade{
			Trade:           tr,
			SnapshotTS:      snap.TimestampMS,
			Mid:             mid,
			BestBid:         snap.BestBid(),
			BestAsk:         snap.BestAsk(),
			Spread:          spread,
			DistFromMid:     dist,
			DistFromMidBps:  distF / midF * 10000,
			MarketSpreadBps: spreadF / midF * 10000,
		})
	}

	return rows, nil
}

// nearestIndex returns the index of the snapshot minimizing the absolute
// timestamp distance to ts. The earlier snapshot wins exact ties.
func nearestIndex(books []model.OrderbookSnapshot, ts int64) int {
	i := sort.Search(len(books), func(j int) bool {
		return books[j].TimestampMS >= ts
	})
	if i == 0 {
		return 0
	}
	if i == len(books) {
		return len(books) - 1
	}
	if ts-books[i-1].TimestampMS <= books[i].TimestampMS-ts {
		return i - 1
	}
	return i
}
