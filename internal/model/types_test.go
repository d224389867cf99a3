package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestOrderbookSnapshot_MidAndSpread(t *testing.T) {
	s := OrderbookSnapshot{
		TimestampMS: 999,
		Bids:        []PriceLevel{{Price: dec("99"), Qty: dec("1")}},
		Asks:        []PriceLevel{{Price: dec("100"), Qty: dec("2")}},
	}

	if got := s.Mid(); !got.Equal(dec("99.5")) {
		t.Errorf("Mid() = %s, want 99.5", got)
	}
	if got := s.Spread(); !got.Equal(dec("1")) {
		t.Errorf("Spread() = %s, want 1", got)
	}
	if got := s.BestBid(); !got.Equal(dec("99")) {
		t.Errorf("BestBid() = %s, want 99", got)
	}
	if got := s.BestAsk(); !got.Equal(dec("100")) {
		t.Errorf("BestAsk() = %s, want 100", got)
	}
}

func TestOrderbookSnapshot_EmptySides(t *testing.T) {
	var s OrderbookSnapshot

	if !s.BestBid().IsZero() || !s.BestAsk().IsZero() {
		t.Errorf("empty book best prices = %s/%s, want 0/0", s.BestBid(), s.BestAsk())
	}
	if !s.Mid().IsZero() {
		t.Errorf("empty book Mid() = %s, want 0", s.Mid())
	}
}

func TestTradeEvent_IsBuyerMaker(t *testing.T) {
	cases := []struct {
		side Side
		want bool
	}{
		{SideBuy, false},
		{SideSell, true},
		{Side("unknown"), false},
	}

	for _, tc := range cases {
		tr := TradeEvent{Side: tc.side}
		if got := tr.IsBuyerMaker(); got != tc.want {
			t.Errorf("IsBuyerMaker() for side %q = %v, want %v", tc.side, got, tc.want)
		}
	}
}
