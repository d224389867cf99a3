package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/djienne/spread-analyzer/internal/model"
)

func joined(side model.Side, distBps, spreadBps float64) JoinedTrade {
	return JoinedTrade{
		Trade:           model.TradeEvent{Side: side, Price: dec("100"), TimestampMS: 1},
		Mid:             dec("100"),
		DistFromMidBps:  distBps,
		MarketSpreadBps: spreadBps,
	}
}

func TestSummarize_SidePartition(t *testing.T) {
	rows := []JoinedTrade{
		joined(model.SideBuy, 10, 5),
		joined(model.SideBuy, -4, 5),
		joined(model.SideSell, -6, 7),
		joined(model.Side("liquidation"), 100, 9), // excluded from both subsets
	}

	sum := Summarize(rows)

	if sum.TotalTrades != 4 {
		t.Errorf("TotalTrades = %d, want 4", sum.TotalTrades)
	}
	if sum.BuyCount != 2 || sum.SellCount != 1 {
		t.Errorf("Buy/Sell counts = %d/%d, want 2/1", sum.BuyCount, sum.SellCount)
	}
	if sum.BuyCount+sum.SellCount == sum.TotalTrades {
		t.Error("unknown side should be excluded from subsets but counted in total")
	}
	if sum.BuyMeanBps != 3 { // (10 + -4) / 2, signed
		t.Errorf("BuyMeanBps = %v, want 3", sum.BuyMeanBps)
	}
	if sum.SellMeanBps != -6 {
		t.Errorf("SellMeanBps = %v, want -6", sum.SellMeanBps)
	}
}

func TestSummarize_SidePartitionCoversTotalWhenSidesClean(t *testing.T) {
	rows := []JoinedTrade{
		joined(model.SideBuy, 1, 1),
		joined(model.SideSell, 2, 1),
		joined(model.SideSell, 3, 1),
	}
	sum := Summarize(rows)
	if sum.BuyCount+sum.SellCount != sum.TotalTrades {
		t.Errorf("subset counts %d+%d should sum to total %d",
			sum.BuyCount, sum.SellCount, sum.TotalTrades)
	}
}

func TestSummarize_DistanceUsesAbsoluteValues(t *testing.T) {
	rows := []JoinedTrade{
		joined(model.SideBuy, -8, 4),
		joined(model.SideSell, 2, 6),
	}
	sum := Summarize(rows)

	if sum.DistMeanBps != 5 { // (8+2)/2
		t.Errorf("DistMeanBps = %v, want 5", sum.DistMeanBps)
	}
	if sum.SpreadMinBps != 4 || sum.SpreadMaxBps != 6 {
		t.Errorf("spread min/max = %v/%v, want 4/6", sum.SpreadMinBps, sum.SpreadMaxBps)
	}
}

func TestSummarize_TotalSpreadIsDoubledHalfSpread(t *testing.T) {
	rows := []JoinedTrade{
		joined(model.SideBuy, 1, 1),
		joined(model.SideBuy, -2, 1),
		joined(model.SideSell, 3, 1),
		joined(model.SideSell, -4, 1),
	}
	sum := Summarize(rows)

	if sum.RecommendedHalfSpreadBps != sum.DistP75Bps {
		t.Errorf("half-spread %v should equal p75 %v", sum.RecommendedHalfSpreadBps, sum.DistP75Bps)
	}
	if sum.RecommendedTotalSpreadBps != 2*sum.RecommendedHalfSpreadBps {
		t.Errorf("total %v should be double the half-spread %v",
			sum.RecommendedTotalSpreadBps, sum.RecommendedHalfSpreadBps)
	}
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil)
	if sum.TotalTrades != 0 {
		t.Errorf("TotalTrades = %d, want 0", sum.TotalTrades)
	}
	if !math.IsNaN(sum.SpreadMeanBps) || !math.IsNaN(sum.DistP75Bps) {
		t.Error("empty input statistics should be NaN, printed as-is")
	}
}

func TestWriteReport(t *testing.T) {
	rows := []JoinedTrade{
		joined(model.SideBuy, 10, 5),
		joined(model.SideSell, -6, 7),
	}
	sum := Summarize(rows)

	var b strings.Builder
	if err := WriteReport(&b, sum, rows); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"TRADE VS ORDERBOOK ANALYSIS",
		"Total Trades: 2",
		"Market Spread (Best Bid/Ask):",
		"Trade Distance from Mid:",
		"Buy trades:  1",
		"Sell trades: 1",
		"Recommended Quote Spread:",
		"Sample Trades (first 20):",
		"timestamp_ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReport_SampleCapped(t *testing.T) {
	rows := make([]JoinedTrade, 30)
	for i := range rows {
		rows[i] = joined(model.SideBuy, float64(i), 1)
		rows[i].Trade.TimestampMS = int64(1_000_000 + i)
	}

	var b strings.Builder
	if err := WriteReport(&b, Summarize(rows), rows); err != nil {
		t.Fatal(err)
	}

	if strings.Contains(b.String(), "1000025") {
		t.Error("report should list only the first 20 rows")
	}
	if !strings.Contains(b.String(), "1000019") {
		t.Error("report should include the 20th row")
	}
}
