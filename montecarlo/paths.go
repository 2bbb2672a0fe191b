package montecarlo

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NewSource returns a seeded random source. Two sources with the same seed
// produce the same ensemble.
func NewSource(seed uint64) rand.Source { return rand.NewSource(seed) }

// RandomSeed returns a seed for callers that did not ask for one. Recording
// it keeps the run replayable.
func RandomSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// Ensemble is a set of simulated price paths. Row i is path i, column t is
// trading day t, and column 0 holds the start price.
type Ensemble struct {
	Base    *mat.Dense
	Derived *mat.Dense // nil when only the base asset was simulated
}

// Paths returns the number of simulated paths.
func (e *Ensemble) Paths() int {
	r, _ := e.Base.Dims()
	return r
}

// Horizon returns the number of simulated trading days.
func (e *Ensemble) Horizon() int {
	_, c := e.Base.Dims()
	return c - 1
}

// BaseTerminal returns the base asset price of every path on the last day.
func (e *Ensemble) BaseTerminal() []float64 { return mat.Col(nil, e.Horizon(), e.Base) }

// DerivedTerminal returns the derived asset price of every path on the last
// day, or nil in single-asset mode.
func (e *Ensemble) DerivedTerminal() []float64 {
	if e.Derived == nil {
		return nil
	}
	return mat.Col(nil, e.Horizon(), e.Derived)
}

// SimulateBasePaths simulates numPaths geometric Brownian motion paths of
// horizonDays trading days for the base asset only.
func SimulateBasePaths(baseStart float64, p Parameters, horizonDays, numPaths int, src rand.Source) (*Ensemble, error) {
	if err := checkPathArgs(p, horizonDays, numPaths, src, baseStart); err != nil {
		return nil, err
	}
	e := &Ensemble{Base: mat.NewDense(numPaths, horizonDays+1, nil)}
	simulate(e, baseStart, 0, p, src)
	return e, nil
}

// SimulateJointPaths simulates numPaths paths of the base asset and of the
// derived equity. For a given path and day both assets see the same base
// return; the equity adds alpha and an independent idiosyncratic shock:
//
//	r_derived = β·r_base + α/252 + ε,  ε ~ N(0, σ_idio/√252)
func SimulateJointPaths(baseStart, derivedStart float64, p Parameters, horizonDays, numPaths int, src rand.Source) (*Ensemble, error) {
	if err := checkPathArgs(p, horizonDays, numPaths, src, baseStart, derivedStart); err != nil {
		return nil, err
	}
	e := &Ensemble{
		Base:    mat.NewDense(numPaths, horizonDays+1, nil),
		Derived: mat.NewDense(numPaths, horizonDays+1, nil),
	}
	simulate(e, baseStart, derivedStart, p, src)
	return e, nil
}

func checkPathArgs(p Parameters, horizonDays, numPaths int, src rand.Source, starts ...float64) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if horizonDays < 0 {
		return fmt.Errorf("%w: horizon must be >= 0 days, got %d", ErrInvalidParameter, horizonDays)
	}
	if numPaths < 1 {
		return fmt.Errorf("%w: path count must be >= 1, got %d", ErrInvalidParameter, numPaths)
	}
	if src == nil {
		return fmt.Errorf("%w: nil random source", ErrInvalidParameter)
	}
	for _, s := range starts {
		if !(s > 0) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: start price must be positive and finite, got %v", ErrInvalidParameter, s)
		}
	}
	return nil
}

// simulate fills e in place. Draws are consumed path by path, day by day,
// base shock first, so a seed fully determines the ensemble.
func simulate(e *Ensemble, baseStart, derivedStart float64, p Parameters, src rand.Source) {
	rnd := rand.New(src)
	numPaths, cols := e.Base.Dims()
	horizon := cols - 1

	mean, std := p.dailyMean(), p.dailyStd()
	alpha, idio := p.dailyAlpha(), p.dailyIdioStd()

	base := make([]float64, horizon)
	derived := make([]float64, horizon)
	row := make([]float64, cols)
	for i := 0; i < numPaths; i++ {
		for t := range base {
			base[t] = mean + std*rnd.NormFloat64()
			if e.Derived != nil {
				derived[t] = p.Beta*base[t] + alpha + idio*rnd.NormFloat64()
			}
		}
		e.Base.SetRow(i, compound(row, baseStart, base))
		if e.Derived != nil {
			e.Derived.SetRow(i, compound(row, derivedStart, derived))
		}
	}
}

// compound writes start·exp(cumsum(logReturns)) into dst, with dst[0] = start.
// logReturns is overwritten by its cumulative sum.
func compound(dst []float64, start float64, logReturns []float64) []float64 {
	dst[0] = start
	floats.CumSum(logReturns, logReturns)
	for t, c := range logReturns {
		dst[t+1] = start * math.Exp(c)
	}
	return dst
}

// PercentileBands returns, for every day of m, the c-quantile of the prices across
// paths for each level c. The result is indexed [level][day].
func PercentileBands(m *mat.Dense, levels []Level) ([][]float64, error) {
	if err := checkLevels(levels); err != nil {
		return nil, err
	}
	rows, cols := m.Dims()
	out := make([][]float64, len(levels))
	for i := range out {
		out[i] = make([]float64, cols)
	}
	col := make([]float64, rows)
	for t := 0; t < cols; t++ {
		mat.Col(col, t, m)
		sorted := sortedCopy(col)
		for i, c := range levels {
			out[i][t] = quantile(sorted, float64(c))
		}
	}
	return out, nil
}
