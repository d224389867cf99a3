package dataset

import "github.com/djienne/spread-analyzer/internal/model"

// DataEvent is a single item in the merged stream: exactly one of Trade or
// Book is set.
type DataEvent struct {
	Trade *model.TradeEvent
	Book  *model.OrderbookSnapshot
}

// TimestampMS returns the event time.
func (e DataEvent) TimestampMS() int64 {
	if e.Trade != nil {
		return e.Trade.TimestampMS
	}
	return e.Book.TimestampMS
}

// Events merges the two sorted series into one timestamp-ordered stream.
// Trades sort before snapshots at equal timestamps. Exact duplicate trades
// (same timestamp, price, quantity and side) are dropped; distinct trades at
// the same timestamp are all kept.
func Events(trades []model.TradeEvent, books []model.OrderbookSnapshot) []DataEvent {
	events := make([]DataEvent, 0, len(trades)+len(books))

	ti, bi := 0, 0
	for ti < len(trades) && bi < len(books) {
		if trades[ti].TimestampMS <= books[bi].TimestampMS {
			events = append(events, DataEvent{Trade: &trades[ti]})
			ti++
		} else {
			events = append(events, DataEvent{Book: &books[bi]})
			bi++
		}
	}
	for ; ti < len(trades); ti++ {
		events = append(events, DataEvent{Trade: &trades[ti]})
	}
	for ; bi < len(books); bi++ {
		events = append(events, DataEvent{Book: &books[bi]})
	}

	return dedupEvents(events)
}

type tradeKey struct {
	price string
	qty   string
	side  model.Side
}

func dedupEvents(events []DataEvent) []DataEvent {
	out := events[:0]
	seen := make(map[tradeKey]struct{})
	var currentTS int64

	for _, ev := range events {
		if ev.Trade == nil {
			out = append(out, ev)
			continue
		}

		if ev.Trade.TimestampMS != currentTS {
			currentTS = ev.Trade.TimestampMS
			clear(seen)
		}

		key := tradeKey{
			price: ev.Trade.Price.String(),
			qty:   ev.Trade.Quantity.String(),
			side:  ev.Trade.Side,
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ev)
	}

	return out
}
