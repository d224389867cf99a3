package analysis

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/djienne/spread-analyzer/internal/model"
	"github.com/djienne/spread-analyzer/internal/stats"
)

// Half-spread percentile used for the quote recommendation: wide enough to
// capture three quarters of observed executions.
const recommendationPercentile = 75

// sampleRows is how many joined rows the report lists verbatim.
const sampleRows = 20

// Summary holds the descriptive statistics of a joined trade set.
type Summary struct {
	TotalTrades int

	// Market spread at the matched snapshots, bps.
	SpreadMeanBps   float64
	SpreadMedianBps float64
	SpreadMinBps    float64
	SpreadMaxBps    float64

	// Absolute trade distance from mid, bps.
	DistMeanBps   float64
	DistMedianBps float64
	DistP75Bps    float64
	DistP95Bps    float64

	// Side subsets; signed mean distance. Trades with any other side value
	// are counted in TotalTrades but in neither subset.
	BuyCount    int
	BuyMeanBps  float64
	SellCount   int
	SellMeanBps float64

	RecommendedHalfSpreadBps  float64
	RecommendedTotalSpreadBps float64
}

// Summarize computes the report statistics over the joined rows.
func Summarize(rows []JoinedTrade) Summary {
	spreadBps := make([]float64, len(rows))
	distBps := make([]float64, len(rows))
	var buyBps, sellBps []float64

	for i, r := range rows {
		spreadBps[i] = r.MarketSpreadBps
		distBps[i] = r.DistFromMidBps

		switch r.Trade.Side {
		case model.SideBuy:
			buyBps = append(buyBps, r.DistFromMidBps)
		case model.SideSell:
			sellBps = append(sellBps, r.DistFromMidBps)
		}
	}

	absDist := stats.Abs(distBps)
	halfSpread := stats.Percentile(absDist, recommendationPercentile)

	return Summary{
		TotalTrades:               len(rows),
		SpreadMeanBps:             stats.Mean(spreadBps),
		SpreadMedianBps:           stats.Median(spreadBps),
		SpreadMinBps:              stats.Min(spreadBps),
		SpreadMaxBps:              stats.Max(spreadBps),
		DistMeanBps:               stats.Mean(absDist),
		DistMedianBps:             stats.Median(absDist),
		DistP75Bps:                stats.Percentile(absDist, 75),
		DistP95Bps:                stats.Percentile(absDist, 95),
		BuyCount:                  len(buyBps),
		BuyMeanBps:                stats.Mean(buyBps),
		SellCount:                 len(sellBps),
		SellMeanBps:               stats.Mean(sellBps),
		RecommendedHalfSpreadBps:  halfSpread,
		RecommendedTotalSpreadBps: 2 * halfSpread,
	}
}

// WriteReport renders the fixed-format text report: totals, spread and
// distance statistics, side breakdown, the quote recommendation, and the
// first rows of the joined table.
func WriteReport(w io.Writer, sum Summary, rows []JoinedTrade) error {
	rule := strings.Repeat("=", 80)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "TRADE VS ORDERBOOK ANALYSIS")
	fmt.Fprintln(w, rule)

	fmt.Fprintf(w, "\nTotal Trades: %d\n", sum.TotalTrades)

	fmt.Fprintf(w, "\nMarket Spread (Best Bid/Ask):\n")
	fmt.Fprintf(w, "  Average: %.2f bps\n", sum.SpreadMeanBps)
	fmt.Fprintf(w, "  Median:  %.2f bps\n", sum.SpreadMedianBps)
	fmt.Fprintf(w, "  Min:     %.2f bps\n", sum.SpreadMinBps)
	fmt.Fprintf(w, "  Max:     %.2f bps\n", sum.SpreadMaxBps)

	fmt.Fprintf(w, "\nTrade Distance from Mid:\n")
	fmt.Fprintf(w, "  Average: %.2f bps\n", sum.DistMeanBps)
	fmt.Fprintf(w, "  Median:  %.2f bps\n", sum.DistMedianBps)
	fmt.Fprintf(w, "  75th percentile: %.2f bps\n", sum.DistP75Bps)
	fmt.Fprintf(w, "  95th percentile: %.2f bps\n", sum.DistP95Bps)

	fmt.Fprintf(w, "\nBuy vs Sell:\n")
	fmt.Fprintf(w, "  Buy trades:  %d (avg %.2f bps from mid)\n", sum.BuyCount, sum.BuyMeanBps)
	fmt.Fprintf(w, "  Sell trades: %d (avg %.2f bps from mid)\n", sum.SellCount, sum.SellMeanBps)

	fmt.Fprintf(w, "\nRecommended Quote Spread:\n")
	fmt.Fprintf(w, "  To capture 75%% of trades: %.2f bps total spread\n", sum.RecommendedTotalSpreadBps)
	fmt.Fprintf(w, "  Half-spread for bid/ask: %.2f bps each side\n", sum.RecommendedHalfSpreadBps)

	fmt.Fprintf(w, "\nSample Trades (first %d):\n", sampleRows)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "timestamp_ms\tside\tprice\tmid\tdist_from_mid\tdist_from_mid_bps\tmarket_spread_bps\t")
	for i, r := range rows {
		if i >= sampleRows {
			break
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.2f\t%.2f\t\n",
			r.Trade.TimestampMS,
			r.Trade.Side,
			r.Trade.Price.String(),
			r.Mid.String(),
			r.DistFromMid.String(),
			r.DistFromMidBps,
			r.MarketSpreadBps,
		)
	}
	return tw.Flush()
}
