package model

import "github.com/shopspring/decimal"

// -----------------------------------------------------------------------------
// Trades
// -----------------------------------------------------------------------------

// Side is the taker side of an executed trade, as recorded in the CSV.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// TradeEvent represents a single executed trade.
type TradeEvent struct {
	TimestampMS int64           // Exchange timestamp (ms since epoch)
	Price       decimal.Decimal // Execution price
	Quantity    decimal.Decimal // Base quantity (zero when the export omits it)
	Side        Side            // "buy" or "sell"; other values are carried as-is
}

// IsBuyerMaker reports whether the buyer was the passive side of the trade,
// i.e. the aggressor sold into the bid.
func (t TradeEvent) IsBuyerMaker() bool { return t.Side == SideSell }

// -----------------------------------------------------------------------------
// Orderbook
// -----------------------------------------------------------------------------

// PriceLevel is a single depth level.
type PriceLevel struct {
	Price decimal.Decimal
	Qty   decimal.Decimal
}

// OrderbookSnapshot is a full depth snapshot at one point in time.
// Bids and Asks are stored best level first.
type OrderbookSnapshot struct {
	TimestampMS int64
	Bids        []PriceLevel
	Asks        []PriceLevel
}

// BestBid returns the top-of-book bid price, zero when the side is empty.
func (s OrderbookSnapshot) BestBid() decimal.Decimal {
	if len(s.Bids) == 0 {
		return decimal.Zero
	}
	return s.Bids[0].Price
}

// BestAsk returns the top-of-book ask price, zero when the side is empty.
func (s OrderbookSnapshot) BestAsk() decimal.Decimal {
	if len(s.Asks) == 0 {
		return decimal.Zero
	}
	return s.Asks[0].Price
}

// Mid returns (BestBid + BestAsk) / 2.
func (s OrderbookSnapshot) Mid() decimal.Decimal {
	return s.BestBid().Add(s.BestAsk()).Div(decimal.NewFromInt(2))
}

// Spread returns BestAsk - BestBid.
func (s OrderbookSnapshot) Spread() decimal.Decimal {
	return s.BestAsk().Sub(s.BestBid())
}

// -----------------------------------------------------------------------------
// Quotes
// -----------------------------------------------------------------------------

// EffectiveQuote is a depth-weighted view of the book: the prices at which a
// fixed notional could actually be bought or sold.
type EffectiveQuote struct {
	Bid         decimal.Decimal // Marginal price of the last bid unit consumed
	Ask         decimal.Decimal // Marginal price of the last ask unit consumed
	Mid         decimal.Decimal // (Bid + Ask) / 2
	WeightedBid decimal.Decimal // VWAP of the consumed bid depth
	WeightedAsk decimal.Decimal // VWAP of the consumed ask depth
}

// OptimalQuote is a calculated two-sided quote for one point in time.
type OptimalQuote struct {
	TimestampMS      int64
	ReservationPrice decimal.Decimal
	OptimalSpread    decimal.Decimal // Final bid/ask distance after tick rounding
	BidPrice         decimal.Decimal
	AskPrice         decimal.Decimal
	Inventory        decimal.Decimal // Inventory level the quote was computed for
	Gamma            float64         // Effective risk aversion after mode/bounds
}
