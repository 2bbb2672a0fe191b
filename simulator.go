package treasury

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/treasury/date"
	"github.com/etnz/treasury/montecarlo"
	"github.com/etnz/treasury/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLookback is the number of daily closes used by live calibration.
const DefaultLookback = 365

// Archive keeps a record of simulation runs.
type Archive interface {
	SaveRun(ctx context.Context, r store.Run) error
}

// Simulator runs scenarios of the catalog against the book.
//
// A Simulator holds no mutable state: it is safe for concurrent use as
// long as Book is not modified.
type Simulator struct {
	Catalog *montecarlo.Catalog
	Book    *Book
	Archive Archive       // optional
	Logger  *zap.Logger   // zap.L() when nil
	Timeout time.Duration // no deadline when zero

	// Defaults for requests leaving them zero, the scenario's own when zero.
	HorizonDays int
	NumPaths    int
}

// SimulationRequest selects a scenario and what to override in it.
type SimulationRequest struct {
	Scenario    string              `json:"scenario"`
	On          date.Date           `json:"on,omitempty"`           // day of the starting prices, the latest BTC close when zero
	HorizonDays int                 `json:"horizon_days,omitempty"` // simulator then scenario default when zero
	NumPaths    int                 `json:"num_paths,omitempty"`    // simulator then scenario default when zero
	Seed        *uint64             `json:"seed,omitempty"`         // a fresh seed when nil
	Calibrate   bool                `json:"calibrate,omitempty"`
	Lookback    int                 `json:"lookback,omitempty"` // DefaultLookback when zero
	Position    string              `json:"position,omitempty"` // label of a book position
	Holding     *montecarlo.Holding `json:"holding,omitempty"`  // explicit holding, wins over Position
	Levels      []montecarlo.Level  `json:"levels,omitempty"`
	Bands       bool                `json:"bands,omitempty"` // compute fan chart bands
}

// SimulationResult is the outcome of Simulator.Simulate.
type SimulationResult struct {
	RunID         string                  `json:"run_id"`
	CreatedAt     time.Time               `json:"created_at"`
	Scenario      montecarlo.Scenario     `json:"scenario"` // with the parameters actually used
	On            date.Date               `json:"on"`
	PositionLabel string                  `json:"position_label,omitempty"`
	Calibration   *montecarlo.Calibration `json:"calibration,omitempty"`
	*montecarlo.Result
}

func (s *Simulator) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}

// scenarioLabel is the catalog name of a scenario, "unknown" for names
// outside the catalog so that metric labels stay bounded.
func (s *Simulator) scenarioLabel(name string) string {
	sc, err := s.Catalog.Get(name)
	if err != nil {
		return "unknown"
	}
	return sc.Name
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

// Request resolves req into a montecarlo request without running it.
func (s *Simulator) Request(req SimulationRequest) (montecarlo.Request, *SimulationResult, error) {
	sc, err := s.Catalog.Get(req.Scenario)
	if err != nil {
		return montecarlo.Request{}, nil, err
	}
	res := &SimulationResult{RunID: uuid.NewString(), CreatedAt: time.Now().UTC()}

	on := req.On
	if on.IsZero() {
		if s.Book.Market.Prices(s.Book.BaseTicker).Len() == 0 {
			return montecarlo.Request{}, nil, fmt.Errorf("%w: no %s price", ErrNoData, s.Book.BaseTicker)
		}
		on, _ = s.Book.Market.Prices(s.Book.BaseTicker).Latest()
	}
	res.On = on
	baseStart, ok := s.Book.Market.PriceAsOf(s.Book.BaseTicker, on)
	if !ok {
		return montecarlo.Request{}, nil, fmt.Errorf("%w: no %s price on or before %v", ErrNoData, s.Book.BaseTicker, on)
	}
	derivedStart, ok := s.Book.Market.PriceAsOf(s.Book.EquityTicker, on)
	if !ok {
		return montecarlo.Request{}, nil, fmt.Errorf("%w: no %s price on or before %v", ErrNoData, s.Book.EquityTicker, on)
	}

	sc.HorizonDays = firstNonZero(req.HorizonDays, s.HorizonDays, sc.HorizonDays)
	sc.NumPaths = firstNonZero(req.NumPaths, s.NumPaths, sc.NumPaths)
	if req.Calibrate {
		lookback := req.Lookback
		if lookback == 0 {
			lookback = DefaultLookback
		}
		cal, err := montecarlo.EstimateBetaParameters(s.Book.Observations(date.Date{}, on), lookback)
		if err != nil {
			return montecarlo.Request{}, nil, fmt.Errorf("cannot calibrate %s on %s: %w", s.Book.EquityTicker, s.Book.BaseTicker, err)
		}
		sc.Params.Beta = cal.Params.Beta
		sc.Params.Alpha = cal.Params.Alpha
		sc.Params.IdioVolatility = cal.Params.IdioVolatility
		res.Calibration = cal
	}
	res.Scenario = sc

	seed := montecarlo.RandomSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}
	mreq := montecarlo.Request{
		Scenario:     sc.Name,
		Params:       sc.Params,
		BaseStart:    baseStart,
		DerivedStart: derivedStart,
		HorizonDays:  sc.HorizonDays,
		NumPaths:     sc.NumPaths,
		Seed:         seed,
		Levels:       req.Levels,
		Holding:      req.Holding,
	}
	if mreq.Holding == nil && req.Position != "" {
		p, err := s.Book.Position(req.Position)
		if err != nil {
			return montecarlo.Request{}, nil, err
		}
		mreq.Holding = &montecarlo.Holding{Shares: p.Shares.Float(), AvgEntryPrice: p.AvgEntryPrice.Float()}
		res.PositionLabel = p.Label
	}
	if req.Bands {
		mreq.BandLevels = montecarlo.FanLevels
	}
	return mreq, res, nil
}

// Simulate runs req. The computation is abandoned when ctx is done or the
// simulator timeout expires, and the context error is returned.
func (s *Simulator) Simulate(ctx context.Context, req SimulationRequest) (*SimulationResult, error) {
	mreq, res, err := s.Request(req)
	if err != nil {
		SimulationRuns.WithLabelValues(s.scenarioLabel(req.Scenario), "invalid").Inc()
		return nil, err
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	log := s.logger().With(zap.String("run_id", res.RunID), zap.String("scenario", mreq.Scenario))
	log.Info("simulation started",
		zap.Int("horizon_days", mreq.HorizonDays),
		zap.Int("num_paths", mreq.NumPaths),
		zap.Uint64("seed", mreq.Seed),
		zap.Stringer("on", res.On),
		zap.Bool("calibrated", res.Calibration != nil))

	if err := ctx.Err(); err != nil {
		SimulationRuns.WithLabelValues(mreq.Scenario, "canceled").Inc()
		return nil, err
	}
	type outcome struct {
		r   *montecarlo.Result
		err error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		r, err := montecarlo.Run(mreq)
		done <- outcome{r, err}
	}()

	select {
	case <-ctx.Done():
		SimulationRuns.WithLabelValues(mreq.Scenario, "canceled").Inc()
		log.Warn("simulation abandoned", zap.Error(ctx.Err()))
		return nil, ctx.Err()
	case o := <-done:
		elapsed := time.Since(start)
		SimulationDuration.Observe(elapsed.Seconds())
		if o.err != nil {
			SimulationRuns.WithLabelValues(mreq.Scenario, "failed").Inc()
			log.Error("simulation failed", zap.Error(o.err))
			return nil, o.err
		}
		SimulationRuns.WithLabelValues(mreq.Scenario, "ok").Inc()
		SimulatedPaths.Add(float64(mreq.NumPaths))
		res.Result = o.r
		log.Info("simulation completed",
			zap.Duration("elapsed", elapsed),
			zap.Float64("prob_loss", o.r.Derived.ProbLoss))
	}

	if s.Archive != nil {
		if err := s.archive(ctx, res); err != nil {
			// the result is still good
			log.Error("cannot archive simulation", zap.Error(err))
		}
	}
	return res, nil
}

func (s *Simulator) archive(ctx context.Context, res *SimulationResult) error {
	summary := *res
	if res.Result != nil {
		r := *res.Result
		r.Bands = nil
		summary.Result = &r
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return s.Archive.SaveRun(ctx, store.Run{
		ID:           res.RunID,
		CreatedAt:    res.CreatedAt,
		Scenario:     res.Scenario.Name,
		HorizonDays:  res.Request.HorizonDays,
		NumPaths:     res.Request.NumPaths,
		Seed:         res.Request.Seed,
		SnapshotDate: res.On.String(),
		Summary:      data,
	})
}

// IsInvalidRequest reports whether err comes from a request that can never
// succeed as is, as opposed to a failure while serving it.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, montecarlo.ErrInvalidParameter) ||
		errors.Is(err, montecarlo.ErrInsufficientData) ||
		errors.Is(err, montecarlo.ErrDegenerateData) ||
		errors.Is(err, montecarlo.ErrEmptyInput)
}
