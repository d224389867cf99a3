// Package calibration estimates the market parameters the quote model needs:
// volatility (realized and GARCH-forecast) and the order arrival intensity
// parameters kappa and A, fitted per side by maximum likelihood.
//
// All deltas are kept in return space (relative to mid), so kappa is
// dimensionless and transfers across price levels. The Engine type maintains
// the rolling windows and recalibration schedule used by the sliding-window
// calculator and the backtester.
package calibration
