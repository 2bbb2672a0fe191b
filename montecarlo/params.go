package montecarlo

import (
	"fmt"
	"math"
)

// Parameters describes the annualized dynamics of the base asset and of
// the equity derived from it.
type Parameters struct {
	AnnualDrift      float64 `json:"annual_drift" yaml:"annual_drift"`           // μ of the base asset
	AnnualVolatility float64 `json:"annual_volatility" yaml:"annual_volatility"` // σ of the base asset
	Beta             float64 `json:"beta" yaml:"beta"`
	Alpha            float64 `json:"alpha" yaml:"alpha"`                     // annual excess return of the equity
	IdioVolatility   float64 `json:"idio_volatility" yaml:"idio_volatility"` // annual residual volatility of the equity
}

// Validate checks that every field is finite and volatilities are not negative.
func (p Parameters) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"annual drift", p.AnnualDrift},
		{"annual volatility", p.AnnualVolatility},
		{"beta", p.Beta},
		{"alpha", p.Alpha},
		{"idiosyncratic volatility", p.IdioVolatility},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidParameter, f.name, f.value)
		}
	}
	if p.AnnualVolatility < 0 {
		return fmt.Errorf("%w: annual volatility must be >= 0, got %v", ErrInvalidParameter, p.AnnualVolatility)
	}
	if p.IdioVolatility < 0 {
		return fmt.Errorf("%w: idiosyncratic volatility must be >= 0, got %v", ErrInvalidParameter, p.IdioVolatility)
	}
	return nil
}

// dailyMean is the mean of the base daily log-return.
func (p Parameters) dailyMean() float64 {
	return (p.AnnualDrift - 0.5*p.AnnualVolatility*p.AnnualVolatility) / TradingDays
}

func (p Parameters) dailyStd() float64     { return p.AnnualVolatility / math.Sqrt(TradingDays) }
func (p Parameters) dailyAlpha() float64   { return p.Alpha / TradingDays }
func (p Parameters) dailyIdioStd() float64 { return p.IdioVolatility / math.Sqrt(TradingDays) }
