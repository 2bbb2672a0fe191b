package montecarlo

import (
	"fmt"
	"math"

	"github.com/etnz/treasury/date"
	"gonum.org/v1/gonum/stat"
)

// Observation is the close of the base asset and of the derived equity on
// the same day.
type Observation struct {
	On      date.Date `json:"on"`
	Base    float64   `json:"base"`
	Derived float64   `json:"derived"`
}

// Calibration is the outcome of fitting the beta factor model on history.
type Calibration struct {
	Params      Parameters `json:"params"`
	Correlation float64    `json:"correlation"`
	RSquared    float64    `json:"r_squared"`
	Returns     int        `json:"returns"` // number of daily returns used
	From        date.Date  `json:"from"`
	To          date.Date  `json:"to"`
}

// EstimateBetaParameters fits
//
//	r_derived = β·r_base + α_daily + residual
//
// by ordinary least squares on daily log-returns, and annualizes the
// result. The base drift and volatility come from the mean and standard
// deviation of the base returns.
//
// When lookbackDays is positive only the most recent lookbackDays
// observations are used. Observations must be in strictly increasing date
// order with positive prices.
func EstimateBetaParameters(obs []Observation, lookbackDays int) (*Calibration, error) {
	if lookbackDays < 0 {
		return nil, fmt.Errorf("%w: lookback must be >= 0 days, got %d", ErrInvalidParameter, lookbackDays)
	}
	if lookbackDays > 0 && len(obs) > lookbackDays {
		obs = obs[len(obs)-lookbackDays:]
	}
	if len(obs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 observations, got %d", ErrInsufficientData, len(obs))
	}
	for i, o := range obs {
		if !(o.Base > 0) || !(o.Derived > 0) || math.IsInf(o.Base, 0) || math.IsInf(o.Derived, 0) {
			return nil, fmt.Errorf("%w: prices on %v must be positive and finite", ErrInvalidParameter, o.On)
		}
		if i > 0 && !o.On.After(obs[i-1].On) {
			return nil, fmt.Errorf("%w: observation %v is not after %v", ErrInvalidParameter, o.On, obs[i-1].On)
		}
	}

	x := make([]float64, len(obs)-1)
	y := make([]float64, len(obs)-1)
	for i := 1; i < len(obs); i++ {
		x[i-1] = math.Log(obs[i].Base / obs[i-1].Base)
		y[i-1] = math.Log(obs[i].Derived / obs[i-1].Derived)
	}

	// NaN with a single return.
	if v := stat.Variance(x, nil); !(v > 0) {
		return nil, fmt.Errorf("%w: base returns have no variance over %d returns", ErrDegenerateData, len(x))
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	mean, std := stat.MeanStdDev(x, nil)

	residuals := make([]float64, len(x))
	for i := range x {
		residuals[i] = y[i] - (alpha + beta*x[i])
	}

	c := &Calibration{
		Params: Parameters{
			AnnualDrift:      mean * TradingDays,
			AnnualVolatility: std * math.Sqrt(TradingDays),
			Beta:             beta,
			Alpha:            alpha * TradingDays,
			IdioVolatility:   stat.StdDev(residuals, nil) * math.Sqrt(TradingDays),
		},
		Correlation: finiteOrZero(stat.Correlation(x, y, nil)),
		RSquared:    finiteOrZero(stat.RSquared(x, y, nil, alpha, beta)),
		Returns:     len(x),
		From:        obs[0].On,
		To:          obs[len(obs)-1].On,
	}
	return c, nil
}

// finiteOrZero maps the NaN of a constant derived series to 0.
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
