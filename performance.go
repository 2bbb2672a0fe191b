package treasury

import (
	"fmt"
	"math"
	"slices"

	"github.com/etnz/treasury/date"
	"github.com/etnz/treasury/montecarlo"
	"gonum.org/v1/gonum/stat"
)

// ReturnsMetrics describes the simple daily returns of a price series.
type ReturnsMetrics struct {
	From, To   date.Date
	Days       int     // number of daily returns
	Cumulative float64 // last / first - 1
	Annualized float64 // (1 + mean daily return)^252 - 1
	Volatility float64 // annualized standard deviation
	Sharpe     float64 // Annualized / Volatility, risk-free rate of 0
}

// Returns computes the return metrics of h.
func Returns(h *date.History[float64]) (*ReturnsMetrics, error) {
	if h.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 prices, got %d", montecarlo.ErrInsufficientData, h.Len())
	}
	var returns []float64
	var prev float64
	first := true
	for _, v := range h.Values() {
		if !first {
			returns = append(returns, v/prev-1)
		}
		prev, first = v, false
	}
	from, p0 := h.First()
	to, p1 := h.Latest()

	mean, std := stat.MeanStdDev(returns, nil)
	if len(returns) < 2 {
		std = 0
	}
	r := &ReturnsMetrics{
		From:       from,
		To:         to,
		Days:       len(returns),
		Cumulative: p1/p0 - 1,
		Annualized: math.Pow(1+mean, montecarlo.TradingDays) - 1,
		Volatility: std * math.Sqrt(montecarlo.TradingDays),
	}
	if r.Volatility > 0 {
		r.Sharpe = r.Annualized / r.Volatility
	}
	return r, nil
}

// DrawdownThreshold is the depth below which a drawdown is not reported.
const DrawdownThreshold = 0.05

// Drawdown is a fall from a peak, down to a trough.
type Drawdown struct {
	Peak, Trough date.Date
	Recovered    date.Date // zero while below the peak
	Depth        float64   // negative fraction of the peak, -0.25 is a 25% fall
}

// Duration returns the number of days from peak to trough.
func (d Drawdown) Duration() int { return d.Trough.Sub(d.Peak) }

// DrawdownMetrics describes the drawdowns of a price series.
type DrawdownMetrics struct {
	Max     Drawdown
	Current float64    // drawdown of the last price
	Top     []Drawdown // deepest first, only those beyond DrawdownThreshold
}

// Drawdowns finds the drawdown episodes of h and returns the top n of them.
func Drawdowns(h *date.History[float64], n int) (*DrawdownMetrics, error) {
	if h.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 prices, got %d", montecarlo.ErrInsufficientData, h.Len())
	}

	var episodes []Drawdown
	var peakOn date.Date
	var peak float64
	var open *Drawdown
	m := &DrawdownMetrics{}
	for on, v := range h.Values() {
		if v >= peak {
			if open != nil {
				open.Recovered = on
				episodes = append(episodes, *open)
				open = nil
			}
			peak, peakOn = v, on
			m.Current = 0
			continue
		}
		dd := v/peak - 1
		m.Current = dd
		if open == nil {
			open = &Drawdown{Peak: peakOn, Trough: on, Depth: dd}
		}
		if dd < open.Depth {
			open.Trough, open.Depth = on, dd
		}
	}
	if open != nil {
		episodes = append(episodes, *open)
	}

	slices.SortStableFunc(episodes, func(a, b Drawdown) int {
		switch {
		case a.Depth < b.Depth:
			return -1
		case a.Depth > b.Depth:
			return 1
		}
		return 0
	})
	if len(episodes) > 0 {
		m.Max = episodes[0]
	}
	for _, e := range episodes {
		if len(m.Top) == n || e.Depth > -DrawdownThreshold {
			break
		}
		m.Top = append(m.Top, e)
	}
	return m, nil
}

// BetaPoint is the beta fitted over the window ending on a day.
type BetaPoint struct {
	On          date.Date
	Beta        float64
	Correlation float64
}

// RollingBeta fits the beta factor model on every window of window
// consecutive observations.
func RollingBeta(obs []montecarlo.Observation, window int) ([]BetaPoint, error) {
	if window < 3 {
		return nil, fmt.Errorf("%w: rolling window must hold at least 3 observations, got %d", montecarlo.ErrInvalidParameter, window)
	}
	var points []BetaPoint
	for end := window; end <= len(obs); end++ {
		c, err := montecarlo.EstimateBetaParameters(obs[end-window:end], 0)
		if err != nil {
			return nil, fmt.Errorf("window ending %v: %w", obs[end-1].On, err)
		}
		points = append(points, BetaPoint{On: c.To, Beta: c.Params.Beta, Correlation: c.Correlation})
	}
	return points, nil
}
