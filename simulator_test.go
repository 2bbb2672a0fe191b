package treasury

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/etnz/treasury/montecarlo"
	"github.com/etnz/treasury/store"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeArchive struct {
	runs []store.Run
	err  error
}

func (a *fakeArchive) SaveRun(ctx context.Context, r store.Run) error {
	if a.err != nil {
		return a.err
	}
	a.runs = append(a.runs, r)
	return nil
}

func testSimulator(t *testing.T) (*Simulator, *fakeArchive, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	archive := &fakeArchive{}
	return &Simulator{
		Catalog: montecarlo.Presets(),
		Book:    testBook(t),
		Archive: archive,
		Logger:  zap.New(core),
	}, archive, logs
}

func seed(v uint64) *uint64 { return &v }

func TestSimulator_Simulate(t *testing.T) {
	s, archive, logs := testSimulator(t)

	res, err := s.Simulate(context.Background(), SimulationRequest{
		Scenario: "Base",
		NumPaths: 200,
		Seed:     seed(42),
		Position: "core",
		Bands:    true,
	})
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	if res.Scenario.Name != "base" || res.Request.HorizonDays != 365 || res.Request.NumPaths != 200 {
		t.Errorf("Simulate() ran %q for %d days on %d paths, want base for 365 days on 200 paths",
			res.Scenario.Name, res.Request.HorizonDays, res.Request.NumPaths)
	}
	if res.Request.BaseStart != 100000 || res.Request.DerivedStart != 400 || res.On != day("2025-01-02") {
		t.Errorf("Simulate() started from %v and %v on %v, want the closes of 2025-01-02", res.Request.BaseStart, res.Request.DerivedStart, res.On)
	}
	if res.Position == nil || res.Position.CostBasis != 35000 || res.PositionLabel != "core" {
		t.Errorf("Simulate() position = %+v, want the 35000 cost basis of core", res.Position)
	}
	if res.Bands == nil || len(res.Bands.Derived) != len(montecarlo.FanLevels) || len(res.Bands.Derived[0]) != 366 {
		t.Errorf("Simulate() did not compute the fan chart bands")
	}
	if res.RunID == "" {
		t.Errorf("Simulate() has no run id")
	}

	// The same seed gives the same result.
	again, err := s.Simulate(context.Background(), SimulationRequest{Scenario: "base", NumPaths: 200, Seed: seed(42), Position: "core", Bands: true})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(res.Result, again.Result); diff != "" {
		t.Errorf("Simulate() with the same seed mismatch (-first +second):\n%s", diff)
	}
	if again.RunID == res.RunID {
		t.Errorf("Simulate() reused run id %s", res.RunID)
	}

	if len(archive.runs) != 2 {
		t.Fatalf("Simulate() archived %d runs, want 2", len(archive.runs))
	}
	run := archive.runs[0]
	if run.ID != res.RunID || run.Seed != 42 || run.Scenario != "base" || run.SnapshotDate != "2025-01-02" {
		t.Errorf("archived run = %+v", run)
	}
	var summary map[string]any
	if err := json.Unmarshal(run.Summary, &summary); err != nil {
		t.Fatalf("archived summary is not json: %v", err)
	}
	if _, ok := summary["bands"]; ok {
		t.Errorf("archived summary holds the bands")
	}
	if _, ok := summary["derived"]; !ok {
		t.Errorf("archived summary has no derived metrics")
	}

	if got := logs.FilterMessage("simulation completed").Len(); got != 2 {
		t.Errorf("logged %d completed simulations, want 2", got)
	}
}

func TestSimulator_Simulate_Overrides(t *testing.T) {
	s, _, _ := testSimulator(t)

	res, err := s.Simulate(context.Background(), SimulationRequest{
		Scenario:    "bear",
		On:          day("2025-01-01"),
		HorizonDays: 30,
		NumPaths:    10,
		Holding:     &montecarlo.Holding{Shares: 1, AvgEntryPrice: 200},
		Levels:      []montecarlo.Level{0.95},
	})
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if res.Request.BaseStart != 90000 || res.Request.HorizonDays != 30 || res.Request.NumPaths != 10 {
		t.Errorf("Simulate() request = %+v", res.Request)
	}
	if res.Position == nil || res.Position.CostBasis != 200 {
		t.Errorf("Simulate() ignored the explicit holding")
	}
	if diff := cmp.Diff([]montecarlo.Level{0.95}, res.Derived.Levels()); diff != "" {
		t.Errorf("Simulate() levels mismatch (-want +got):\n%s", diff)
	}
	if res.Bands != nil {
		t.Errorf("Simulate() computed bands that were not asked for")
	}
}

func TestSimulator_Simulate_Defaults(t *testing.T) {
	s, _, _ := testSimulator(t)
	s.HorizonDays, s.NumPaths = 7, 20

	tests := []struct {
		name                  string
		req                   SimulationRequest
		wantHorizon, wantPath int
	}{
		{"simulator defaults", SimulationRequest{Scenario: "base"}, 7, 20},
		{"request wins", SimulationRequest{Scenario: "base", HorizonDays: 3, NumPaths: 5}, 3, 5},
		{"partial request", SimulationRequest{Scenario: "base", NumPaths: 5}, 7, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mreq, _, err := s.Request(tt.req)
			if err != nil {
				t.Fatalf("Request() error = %v", err)
			}
			if mreq.HorizonDays != tt.wantHorizon || mreq.NumPaths != tt.wantPath {
				t.Errorf("Request() = %d days on %d paths, want %d days on %d paths",
					mreq.HorizonDays, mreq.NumPaths, tt.wantHorizon, tt.wantPath)
			}
		})
	}

	s.HorizonDays, s.NumPaths = 0, 0
	mreq, _, err := s.Request(SimulationRequest{Scenario: "base"})
	if err != nil {
		t.Fatal(err)
	}
	if mreq.HorizonDays != 365 || mreq.NumPaths != 5000 {
		t.Errorf("Request() without defaults = %d days on %d paths, want the base scenario 365 days on 5000 paths", mreq.HorizonDays, mreq.NumPaths)
	}
}

func TestSimulator_Simulate_Calibrate(t *testing.T) {
	s, _, _ := testSimulator(t)
	// Rebuild a month of closes where MSTR moves twice as much as BTC.
	s.Book.Market = NewMarketData()
	start := day("2025-01-01")
	for i := 0; i < 30; i++ {
		btc := 100000 * math.Exp(0.02*math.Sin(float64(i)))
		s.Book.Market.Append(BTC, start.Add(i), btc)
		s.Book.Market.Append(MSTR, start.Add(i), 400*math.Pow(btc/100000, 2))
	}

	res, err := s.Simulate(context.Background(), SimulationRequest{Scenario: "bull", NumPaths: 10, HorizonDays: 5, Calibrate: true, Lookback: 20})
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if res.Calibration == nil || res.Calibration.Returns != 19 {
		t.Fatalf("Simulate() calibration = %+v, want 19 returns", res.Calibration)
	}
	if got := res.Scenario.Params.Beta; math.Abs(got-2) > 1e-9 {
		t.Errorf("calibrated beta = %v, want 2", got)
	}
	bull, _ := montecarlo.Presets().Get("bull")
	if res.Scenario.Params.AnnualDrift != bull.Params.AnnualDrift {
		t.Errorf("calibration changed the BTC drift to %v", res.Scenario.Params.AnnualDrift)
	}
}

func TestSimulator_Simulate_Errors(t *testing.T) {
	s, archive, _ := testSimulator(t)
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	testCases := []struct {
		name    string
		ctx     context.Context
		req     SimulationRequest
		wantErr error
	}{
		{"unknown scenario", context.Background(), SimulationRequest{Scenario: "moon"}, montecarlo.ErrUnknownScenario},
		{"negative horizon", context.Background(), SimulationRequest{Scenario: "base", HorizonDays: -1}, montecarlo.ErrInvalidParameter},
		{"no price yet", context.Background(), SimulationRequest{Scenario: "base", On: day("2024-01-01")}, ErrNoData},
		{"unknown position", context.Background(), SimulationRequest{Scenario: "base", Position: "nope"}, ErrNoData},
		{"calibration without history", context.Background(), SimulationRequest{Scenario: "base", Calibrate: true}, montecarlo.ErrDegenerateData},
		{"canceled", canceled, SimulationRequest{Scenario: "base", NumPaths: 10}, context.Canceled},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Simulate(tc.ctx, tc.req); !errors.Is(err, tc.wantErr) {
				t.Errorf("Simulate() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
	if len(archive.runs) != 0 {
		t.Errorf("failed simulations were archived")
	}
}

func TestSimulator_Simulate_InvalidScenarioLabels(t *testing.T) {
	s, _, _ := testSimulator(t)

	before := testutil.CollectAndCount(SimulationRuns)
	for i := 0; i < 1000; i++ {
		if _, err := s.Simulate(context.Background(), SimulationRequest{Scenario: fmt.Sprintf("junk-%d", i)}); !errors.Is(err, montecarlo.ErrUnknownScenario) {
			t.Fatalf("Simulate(junk-%d) error = %v, want %v", i, err, montecarlo.ErrUnknownScenario)
		}
	}
	if got := testutil.CollectAndCount(SimulationRuns) - before; got > 1 {
		t.Errorf("unknown scenarios added %d runs series, want at most 1", got)
	}
	if got := testutil.ToFloat64(SimulationRuns.WithLabelValues("unknown", "invalid")); got < 1000 {
		t.Errorf("runs{scenario=unknown,outcome=invalid} = %v, want at least 1000", got)
	}

	// Invalid requests on a known scenario are labeled by its catalog name.
	if _, err := s.Simulate(context.Background(), SimulationRequest{Scenario: "BULL", On: day("2024-01-01")}); !errors.Is(err, ErrNoData) {
		t.Fatalf("Simulate() before the first price error = %v, want %v", err, ErrNoData)
	}
	if got := testutil.ToFloat64(SimulationRuns.WithLabelValues("bull", "invalid")); got < 1 {
		t.Errorf("runs{scenario=bull,outcome=invalid} = %v, want at least 1", got)
	}
}

func TestSimulator_Simulate_ArchiveFailure(t *testing.T) {
	s, archive, logs := testSimulator(t)
	archive.err = errors.New("disk full")

	if _, err := s.Simulate(context.Background(), SimulationRequest{Scenario: "base", NumPaths: 10, HorizonDays: 1}); err != nil {
		t.Fatalf("Simulate() error = %v, want the result despite the archive failure", err)
	}
	if got := logs.FilterMessage("cannot archive simulation").Len(); got != 1 {
		t.Errorf("logged %d archive failures, want 1", got)
	}
}

func TestIsInvalidRequest(t *testing.T) {
	if !IsInvalidRequest(montecarlo.ErrInsufficientData) {
		t.Errorf("IsInvalidRequest(ErrInsufficientData) = false, want true")
	}
	if IsInvalidRequest(context.DeadlineExceeded) {
		t.Errorf("IsInvalidRequest(DeadlineExceeded) = true, want false")
	}
}
