package montecarlo

// Holding is a position in the derived equity.
type Holding struct {
	Shares        float64 `json:"shares"`
	AvgEntryPrice float64 `json:"avg_entry_price"`
}

// Request describes one joint simulation.
type Request struct {
	Scenario     string     `json:"scenario"`
	Params       Parameters `json:"params"`
	BaseStart    float64    `json:"base_start"`
	DerivedStart float64    `json:"derived_start"`
	HorizonDays  int        `json:"horizon_days"`
	NumPaths     int        `json:"num_paths"`
	Seed         uint64     `json:"seed"`
	Levels       []Level    `json:"levels,omitempty"`
	Holding      *Holding   `json:"holding,omitempty"`
	BandLevels   []Level    `json:"band_levels,omitempty"` // per-day percentile bands, none when empty
}

// FanLevels are the band levels of a usual fan chart.
var FanLevels = []Level{0.05, 0.25, 0.50, 0.75, 0.95}

// Bands holds per-day percentiles of an ensemble, indexed [level][day].
type Bands struct {
	Levels  []Level     `json:"levels"`
	Base    [][]float64 `json:"base"`
	Derived [][]float64 `json:"derived"`
}

// Result is the outcome of Run.
type Result struct {
	Request  Request       `json:"request"`
	Base     *Metrics      `json:"base"`
	Derived  *Metrics      `json:"derived"`
	Position *PositionRisk `json:"position,omitempty"`
	Bands    *Bands        `json:"bands,omitempty"`
}

// Run simulates req and summarizes the terminal distributions. It holds no
// state: concurrent calls are independent.
func Run(req Request) (*Result, error) {
	e, err := SimulateJointPaths(req.BaseStart, req.DerivedStart, req.Params, req.HorizonDays, req.NumPaths, NewSource(req.Seed))
	if err != nil {
		return nil, err
	}
	res := &Result{Request: req}
	if res.Base, err = ComputeRiskMetrics(e.BaseTerminal(), req.BaseStart, req.Levels); err != nil {
		return nil, err
	}
	derived := e.DerivedTerminal()
	if res.Derived, err = ComputeRiskMetrics(derived, req.DerivedStart, req.Levels); err != nil {
		return nil, err
	}
	if h := req.Holding; h != nil {
		if res.Position, err = ComputePositionRisk(derived, h.Shares, h.AvgEntryPrice, req.Levels); err != nil {
			return nil, err
		}
	}
	if len(req.BandLevels) > 0 {
		b := &Bands{Levels: req.BandLevels}
		if b.Base, err = PercentileBands(e.Base, req.BandLevels); err != nil {
			return nil, err
		}
		if b.Derived, err = PercentileBands(e.Derived, req.BandLevels); err != nil {
			return nil, err
		}
		res.Bands = b
	}
	return res, nil
}
