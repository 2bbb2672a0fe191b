package montecarlo

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeRiskMetrics(t *testing.T) {
	terminal := []float64{90, 100, 110, 120, 80}
	m, err := ComputeRiskMetrics(terminal, 100, []Level{0.10, 0.25, 0.50, 0.75, 0.90})
	if err != nil {
		t.Fatalf("ComputeRiskMetrics() error = %v", err)
	}

	if !near(m.MeanReturn, 0) {
		t.Errorf("MeanReturn = %v want 0", m.MeanReturn)
	}
	if !near(m.StdReturn, math.Sqrt(0.02)) {
		t.Errorf("StdReturn = %v want %v", m.StdReturn, math.Sqrt(0.02))
	}
	if !near(m.MedianReturn, 0) {
		t.Errorf("MedianReturn = %v want 0", m.MedianReturn)
	}
	if !near(m.ProbLoss, 0.4) {
		t.Errorf("ProbLoss = %v want 0.4", m.ProbLoss)
	}
	if m.Paths != 5 {
		t.Errorf("Paths = %d want 5", m.Paths)
	}

	tests := []struct {
		level            Level
		percentile       float64
		valueAtRisk      float64
		conditionalValue float64
	}{
		{level: 0.10, percentile: 84, valueAtRisk: -16, conditionalValue: 5},
		{level: 0.25, percentile: 90, valueAtRisk: -10, conditionalValue: 5},
		{level: 0.50, percentile: 100, valueAtRisk: 0, conditionalValue: 10},
		{level: 0.75, percentile: 110, valueAtRisk: 10, conditionalValue: 15},
		{level: 0.90, percentile: 116, valueAtRisk: 16, conditionalValue: 20},
	}
	for _, tc := range tests {
		t.Run(tc.level.String(), func(t *testing.T) {
			if got := m.Percentiles[tc.level]; !near(got, tc.percentile) {
				t.Errorf("Percentiles[%v] = %v want %v", tc.level, got, tc.percentile)
			}
			if got := m.VaR[tc.level]; !near(got, tc.valueAtRisk) {
				t.Errorf("VaR[%v] = %v want %v", tc.level, got, tc.valueAtRisk)
			}
			if got := m.CVaR[tc.level]; !near(got, tc.conditionalValue) {
				t.Errorf("CVaR[%v] = %v want %v", tc.level, got, tc.conditionalValue)
			}
		})
	}

	if got := m.VaRRatio(0.90); !near(got, 0.16) {
		t.Errorf("VaRRatio(0.90) = %v want 0.16", got)
	}
	if got := m.CVaRRatio(0.90); !near(got, 0.20) {
		t.Errorf("CVaRRatio(0.90) = %v want 0.20", got)
	}
}

func TestComputeRiskMetricsOnEnsemble(t *testing.T) {
	e, err := SimulateBasePaths(100000, base, 365, 5000, NewSource(99))
	if err != nil {
		t.Fatal(err)
	}
	m, err := ComputeRiskMetrics(e.BaseTerminal(), 100000, nil)
	if err != nil {
		t.Fatalf("ComputeRiskMetrics() error = %v", err)
	}
	levels := m.Levels()
	if len(levels) != len(DefaultLevels) {
		t.Fatalf("Levels() = %v want %v", levels, DefaultLevels)
	}
	for i, c := range levels {
		if i > 0 && m.Percentiles[c] < m.Percentiles[levels[i-1]] {
			t.Errorf("Percentiles[%v] = %v is below Percentiles[%v] = %v", c, m.Percentiles[c], levels[i-1], m.Percentiles[levels[i-1]])
		}
		if m.CVaR[c] < m.VaR[c] {
			t.Errorf("CVaR[%v] = %v is below VaR[%v] = %v", c, m.CVaR[c], c, m.VaR[c])
		}
	}
	if m.ProbLoss <= 0 || m.ProbLoss >= 1 {
		t.Errorf("ProbLoss = %v want strictly between 0 and 1", m.ProbLoss)
	}
}

func TestComputeRiskMetricsScaleInvariance(t *testing.T) {
	terminal := []float64{71, 94, 100, 103, 122, 131, 150, 88}
	doubled := make([]float64, len(terminal))
	for i, v := range terminal {
		doubled[i] = 2 * v
	}
	m1, err := ComputeRiskMetrics(terminal, 100, nil)
	if err != nil {
		t.Fatal(err)
	}
	m2, err := ComputeRiskMetrics(doubled, 200, nil)
	if err != nil {
		t.Fatal(err)
	}
	if m1.ProbLoss != m2.ProbLoss {
		t.Errorf("ProbLoss = %v, %v want equal", m1.ProbLoss, m2.ProbLoss)
	}
	for _, c := range DefaultLevels {
		if !near(m1.VaRRatio(c), m2.VaRRatio(c)) || !near(m1.CVaRRatio(c), m2.CVaRRatio(c)) {
			t.Errorf("level %v: ratios %v/%v and %v/%v want equal", c, m1.VaRRatio(c), m1.CVaRRatio(c), m2.VaRRatio(c), m2.CVaRRatio(c))
		}
	}
}

func TestComputeRiskMetricsSingleValue(t *testing.T) {
	m, err := ComputeRiskMetrics([]float64{80}, 100, []Level{0.95})
	if err != nil {
		t.Fatal(err)
	}
	if m.VaR[0.95] != 20 || m.CVaR[0.95] != 20 || m.ProbLoss != 1 || m.StdReturn != 0 {
		t.Errorf("ComputeRiskMetrics([80]) = %+v", m)
	}
}

func TestComputeRiskMetricsErrors(t *testing.T) {
	tests := []struct {
		name     string
		terminal []float64
		start    float64
		levels   []Level
		want     error
	}{
		{name: "empty", start: 100, want: ErrEmptyInput},
		{name: "zero start", terminal: []float64{1}, start: 0, want: ErrInvalidParameter},
		{name: "level one", terminal: []float64{1}, start: 1, levels: []Level{1}, want: ErrInvalidParameter},
		{name: "level zero", terminal: []float64{1}, start: 1, levels: []Level{0}, want: ErrInvalidParameter},
		{name: "NaN value", terminal: []float64{1, math.NaN()}, start: 1, want: ErrInvalidParameter},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeRiskMetrics(tc.terminal, tc.start, tc.levels)
			if !errors.Is(err, tc.want) {
				t.Errorf("ComputeRiskMetrics() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestMetricsJSONKeys(t *testing.T) {
	m, err := ComputeRiskMetrics([]float64{90, 110}, 100, []Level{0.95})
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if !strings.Contains(string(b), `"var":{"0.95":`) {
		t.Errorf("json.Marshal() = %s want levels as object keys", b)
	}
}
