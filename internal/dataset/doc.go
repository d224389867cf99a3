// Package dataset loads the static trade and orderbook depth CSV exports and
// exposes them as in-memory series plus a merged, timestamp-ordered event
// stream.
//
// Expected files:
//   - trades.csv: columns timestamp_ms, side, price (quantity optional)
//   - orderbook_depth.csv: timestamp plus bid_priceN/bid_qtyN/ask_priceN/ask_qtyN
//     groups, best level first; leading datetime/market/seq columns are ignored
//
// Columns are located by header name and the depth level count is detected
// from the header, so exports with different depth truncation load unchanged.
// Malformed rows are fatal: this is batch analysis input, not a live feed.
package dataset
