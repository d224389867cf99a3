// Package model defines shared data types used across the spread analysis suite.
//
// Conventions:
//   - Prices and quantities: shopspring/decimal values, parsed verbatim from CSV
//   - Timestamps: int64 milliseconds since Unix epoch (the unit of both input files)
//   - Orderbook sides: best level first, as laid out in the depth export
package model
