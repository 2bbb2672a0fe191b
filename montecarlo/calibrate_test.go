package montecarlo

import (
	"errors"
	"math"
	"testing"

	"github.com/etnz/treasury/date"
	"github.com/google/go-cmp/cmp"
)

// observations turns a single simulated path into daily observations.
func observations(t *testing.T, p Parameters, days int, seed uint64) []Observation {
	t.Helper()
	e, err := SimulateJointPaths(40000, 300, p, days-1, 1, NewSource(seed))
	if err != nil {
		t.Fatalf("SimulateJointPaths() error = %v", err)
	}
	start := date.New(2022, 1, 1)
	obs := make([]Observation, days)
	for i := range obs {
		obs[i] = Observation{On: start.Add(i), Base: e.Base.At(0, i), Derived: e.Derived.At(0, i)}
	}
	return obs
}

func TestEstimateBetaParametersRecoversModel(t *testing.T) {
	obs := observations(t, base, 1000, 11)

	c, err := EstimateBetaParameters(obs, 0)
	if err != nil {
		t.Fatalf("EstimateBetaParameters() error = %v", err)
	}
	if c.Returns != 999 {
		t.Errorf("Returns = %d want 999", c.Returns)
	}
	if c.From != obs[0].On || c.To != obs[999].On {
		t.Errorf("From, To = %v, %v want %v, %v", c.From, c.To, obs[0].On, obs[999].On)
	}
	checks := []struct {
		name      string
		got, want float64
		tolerance float64
	}{
		{"beta", c.Params.Beta, 1.5, 0.1},
		{"idio volatility", c.Params.IdioVolatility, 0.30, 0.05},
		{"annual volatility", c.Params.AnnualVolatility, 0.80, 0.1},
	}
	for _, check := range checks {
		if math.Abs(check.got-check.want) > check.tolerance {
			t.Errorf("%s = %.4f want %.4f ± %v", check.name, check.got, check.want, check.tolerance)
		}
	}
	if c.Correlation <= 0.9 || c.RSquared <= 0.8 {
		t.Errorf("Correlation, RSquared = %.3f, %.3f want a strong fit", c.Correlation, c.RSquared)
	}
}

func TestEstimateBetaParametersExactFit(t *testing.T) {
	// derived doubles every base move, with no noise and no alpha
	bases := []float64{100, 110, 99, 120, 118}
	obs := make([]Observation, len(bases))
	for i, b := range bases {
		obs[i] = Observation{On: date.New(2024, 3, 1).Add(i), Base: b, Derived: 10 * math.Pow(b/100, 2)}
	}
	c, err := EstimateBetaParameters(obs, 0)
	if err != nil {
		t.Fatalf("EstimateBetaParameters() error = %v", err)
	}
	if math.Abs(c.Params.Beta-2) > 1e-9 || math.Abs(c.Params.Alpha) > 1e-9 || c.Params.IdioVolatility > 1e-9 {
		t.Errorf("Params = %+v want beta 2, alpha 0, idio 0", c.Params)
	}
	if math.Abs(c.RSquared-1) > 1e-9 {
		t.Errorf("RSquared = %v want 1", c.RSquared)
	}
}

func TestEstimateBetaParametersLookback(t *testing.T) {
	obs := observations(t, base, 200, 5)

	got, err := EstimateBetaParameters(obs, 60)
	if err != nil {
		t.Fatal(err)
	}
	want, err := EstimateBetaParameters(obs[140:], 0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(date.Date{})); diff != "" {
		t.Errorf("EstimateBetaParameters(lookback 60) mismatch (-want +got):\n%s", diff)
	}

	// a lookback longer than the history uses everything
	all, err := EstimateBetaParameters(obs, 10000)
	if err != nil {
		t.Fatal(err)
	}
	if all.Returns != 199 {
		t.Errorf("Returns = %d want 199", all.Returns)
	}
}

func TestEstimateBetaParametersErrors(t *testing.T) {
	on := date.New(2024, 1, 1)
	tests := []struct {
		name     string
		obs      []Observation
		lookback int
		want     error
	}{
		{name: "empty", want: ErrInsufficientData},
		{name: "single", obs: []Observation{{On: on, Base: 1, Derived: 1}}, want: ErrInsufficientData},
		{
			name: "lookback of one",
			obs: []Observation{
				{On: on, Base: 1, Derived: 1},
				{On: on.Add(1), Base: 2, Derived: 2},
				{On: on.Add(2), Base: 3, Derived: 3},
			},
			lookback: 1,
			want:     ErrInsufficientData,
		},
		{
			name: "flat base",
			obs: []Observation{
				{On: on, Base: 100, Derived: 1},
				{On: on.Add(1), Base: 100, Derived: 2},
				{On: on.Add(2), Base: 100, Derived: 3},
			},
			want: ErrDegenerateData,
		},
		{
			name: "single return",
			obs: []Observation{
				{On: on, Base: 100, Derived: 1},
				{On: on.Add(1), Base: 110, Derived: 2},
			},
			want: ErrDegenerateData,
		},
		{
			name: "unordered",
			obs: []Observation{
				{On: on.Add(1), Base: 100, Derived: 1},
				{On: on, Base: 110, Derived: 2},
			},
			want: ErrInvalidParameter,
		},
		{
			name: "duplicate day",
			obs: []Observation{
				{On: on, Base: 100, Derived: 1},
				{On: on, Base: 110, Derived: 2},
			},
			want: ErrInvalidParameter,
		},
		{
			name: "zero price",
			obs: []Observation{
				{On: on, Base: 100, Derived: 0},
				{On: on.Add(1), Base: 110, Derived: 2},
			},
			want: ErrInvalidParameter,
		},
		{
			name:     "negative lookback",
			obs:      []Observation{{On: on, Base: 1, Derived: 1}, {On: on.Add(1), Base: 2, Derived: 2}},
			lookback: -1,
			want:     ErrInvalidParameter,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EstimateBetaParameters(tc.obs, tc.lookback)
			if !errors.Is(err, tc.want) {
				t.Errorf("EstimateBetaParameters() error = %v, want %v", err, tc.want)
			}
		})
	}
}
