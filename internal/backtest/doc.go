// Package backtest replays a merged trade and orderbook stream against the
// quote model. Snapshots drive calibration and requoting; trades crossing the
// active quotes fill at the quoted price with maker fees, subject to quote
// validity, per-side fill cooldowns and inventory caps. Data gaps re-enter a
// warm-up period during which no quotes are placed.
package backtest
