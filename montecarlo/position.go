package montecarlo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// PositionRisk is the simulated outcome of holding shares of the derived
// equity bought at an average entry price.
type PositionRisk struct {
	Shares        float64 `json:"shares"`
	AvgEntryPrice float64 `json:"avg_entry_price"`
	CostBasis     float64 `json:"cost_basis"`

	// Value holds the risk metrics of the terminal position value measured
	// against the cost basis, so VaR and CVaR are dollar losses.
	Value *Metrics `json:"value"`

	MeanPnL        float64           `json:"mean_pnl"`
	PnLPercentiles map[Level]float64 `json:"pnl_percentiles"`
}

// ComputePositionRisk maps simulated terminal prices of the derived equity
// to position values and P&L, then computes risk metrics on the values.
func ComputePositionRisk(derivedTerminal []float64, shares, avgEntryPrice float64, levels []Level) (*PositionRisk, error) {
	if !(shares > 0) || math.IsInf(shares, 0) {
		return nil, fmt.Errorf("%w: shares must be positive, got %v", ErrInvalidParameter, shares)
	}
	if !(avgEntryPrice > 0) || math.IsInf(avgEntryPrice, 0) {
		return nil, fmt.Errorf("%w: average entry price must be positive, got %v", ErrInvalidParameter, avgEntryPrice)
	}
	values := make([]float64, len(derivedTerminal))
	pnl := make([]float64, len(derivedTerminal))
	for i, price := range derivedTerminal {
		values[i] = shares * price
		pnl[i] = shares * (price - avgEntryPrice)
	}

	cost := shares * avgEntryPrice
	metrics, err := ComputeRiskMetrics(values, cost, levels)
	if err != nil {
		return nil, err
	}

	r := &PositionRisk{
		Shares:         shares,
		AvgEntryPrice:  avgEntryPrice,
		CostBasis:      cost,
		Value:          metrics,
		MeanPnL:        stat.Mean(pnl, nil),
		PnLPercentiles: make(map[Level]float64, len(metrics.Percentiles)),
	}
	sorted := sortedCopy(pnl)
	for c := range metrics.Percentiles {
		r.PnLPercentiles[c] = quantile(sorted, float64(c))
	}
	return r, nil
}
