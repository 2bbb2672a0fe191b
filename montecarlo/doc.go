// Package montecarlo simulates correlated price paths for a base asset and
// an equity that tracks it through a beta factor model, calibrates that
// model from price history, and summarizes simulated terminal prices into
// risk metrics.
//
// Everything in this package is a pure function of its arguments: the
// random source is passed explicitly to every call, scenario presets live
// in an immutable Catalog, and no result is cached. A run with the same
// seed and inputs is bit-for-bit reproducible.
//
// Time is measured in trading days, with 252 of them per year. Annual
// drift and volatility are converted to daily log-return moments with
//
//	mean = (μ - σ²/2) / 252
//	std  = σ / √252
//
// and prices are compounded as start·exp(Σ log-returns).
package montecarlo

// TradingDays is the number of trading days per year.
const TradingDays = 252
