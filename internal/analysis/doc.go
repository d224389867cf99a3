// Package analysis implements the trade-versus-orderbook comparison: the
// nearest-snapshot join, the summary statistics derived from it, and the
// printed report.
//
// The join matches every trade to exactly one snapshot, the one minimizing
// |snapshot.timestamp - trade.timestamp|; exact ties go to the earlier
// snapshot so the result is deterministic for a fixed input order. Basis
// point fields are computed in float64, so a zero mid price flows through as
// Inf/NaN rather than failing the run.
package analysis
