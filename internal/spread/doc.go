// Package spread computes optimal two-sided quotes from the Avellaneda-Stoikov
// closed-form solution, using calibrated volatility and per-side arrival
// intensity. Spreads are computed in return space so the model parameters stay
// dimensionless, then converted back to price space, bounded in basis points
// and rounded to the tick grid.
package spread
