package montecarlo

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// Level is a probability in (0, 1), used both as a percentile level and
// as a VaR confidence level.
type Level float64

// DefaultLevels are the levels reported when the caller gives none.
var DefaultLevels = []Level{0.01, 0.05, 0.10, 0.25, 0.50, 0.75, 0.90, 0.95, 0.99}

func (l Level) String() string { return strconv.FormatFloat(float64(l), 'f', -1, 64) }

// MarshalText lets a Level be used as a JSON object key.
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Level) UnmarshalText(b []byte) error {
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid level %q: %w", b, err)
	}
	*l = Level(v)
	return nil
}

func checkLevels(levels []Level) error {
	for _, c := range levels {
		if !(c > 0 && c < 1) {
			return fmt.Errorf("%w: level must be in (0, 1), got %v", ErrInvalidParameter, float64(c))
		}
	}
	return nil
}

// Metrics summarizes a distribution of terminal values against the value
// it started from. Losses (VaR, CVaR) are expressed in the unit of the
// input and are positive when the value went down.
type Metrics struct {
	Start        float64           `json:"start"`
	Paths        int               `json:"paths"`
	MeanReturn   float64           `json:"mean_return"`
	StdReturn    float64           `json:"std_return"`
	MedianReturn float64           `json:"median_return"`
	Percentiles  map[Level]float64 `json:"percentiles"`
	VaR          map[Level]float64 `json:"var"`
	CVaR         map[Level]float64 `json:"cvar"`
	ProbLoss     float64           `json:"prob_loss"`
}

// Levels returns the levels of m in increasing order.
func (m *Metrics) Levels() []Level {
	levels := make([]Level, 0, len(m.Percentiles))
	for c := range m.Percentiles {
		levels = append(levels, c)
	}
	slices.Sort(levels)
	return levels
}

// VaRRatio returns the VaR at level c as a fraction of the start value.
func (m *Metrics) VaRRatio(c Level) float64 { return m.VaR[c] / m.Start }

// CVaRRatio returns the CVaR at level c as a fraction of the start value.
func (m *Metrics) CVaRRatio(c Level) float64 { return m.CVaR[c] / m.Start }

// ComputeRiskMetrics summarizes terminal values simulated from start.
//
// Percentiles interpolate linearly between order statistics. VaR at level
// c is start minus the (1-c) percentile, and CVaR at level c is start minus
// the mean of the values at or below that percentile. When levels is
// empty, DefaultLevels is used.
func ComputeRiskMetrics(terminal []float64, start float64, levels []Level) (*Metrics, error) {
	if len(terminal) == 0 {
		return nil, fmt.Errorf("%w: no terminal values", ErrEmptyInput)
	}
	if !(start > 0) || math.IsInf(start, 0) {
		return nil, fmt.Errorf("%w: start value must be positive and finite, got %v", ErrInvalidParameter, start)
	}
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	if err := checkLevels(levels); err != nil {
		return nil, err
	}

	returns := make([]float64, len(terminal))
	losing := 0
	for i, v := range terminal {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: terminal value %d is not finite", ErrInvalidParameter, i)
		}
		returns[i] = v/start - 1
		if v < start {
			losing++
		}
	}
	sorted := sortedCopy(terminal)

	m := &Metrics{
		Start:       start,
		Paths:       len(terminal),
		Percentiles: make(map[Level]float64, len(levels)),
		VaR:         make(map[Level]float64, len(levels)),
		CVaR:        make(map[Level]float64, len(levels)),
		ProbLoss:    float64(losing) / float64(len(terminal)),
	}
	m.MeanReturn, m.StdReturn = stat.PopMeanStdDev(returns, nil)
	m.MedianReturn = quantile(sorted, 0.5)/start - 1

	for _, c := range levels {
		m.Percentiles[c] = quantile(sorted, float64(c))
		threshold := quantile(sorted, 1-float64(c))
		m.VaR[c] = start - threshold
		m.CVaR[c] = start - tailMean(sorted, threshold)
	}
	return m, nil
}

// quantile returns the p-quantile of sorted, interpolating linearly between
// the two closest order statistics at rank p·(n-1).
func quantile(sorted []float64, p float64) float64 {
	h := p * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// tailMean returns the mean of the values of sorted that are <= threshold.
// The minimum is always in the tail since no quantile is below it.
func tailMean(sorted []float64, threshold float64) float64 {
	n, _ := slices.BinarySearch(sorted, threshold)
	for n < len(sorted) && sorted[n] <= threshold {
		n++
	}
	if n == 0 {
		return sorted[0]
	}
	return stat.Mean(sorted[:n], nil)
}

func sortedCopy(x []float64) []float64 {
	s := slices.Clone(x)
	slices.Sort(s)
	return s
}
