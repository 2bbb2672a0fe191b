package montecarlo

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a named set of parameters with the horizon and path count it
// is usually run with.
type Scenario struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Params      Parameters `json:"params" yaml:"params"`
	HorizonDays int        `json:"horizon_days" yaml:"horizon_days"`
	NumPaths    int        `json:"num_paths" yaml:"num_paths"`
}

// Validate checks s can be simulated.
func (s Scenario) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: scenario has no name", ErrInvalidParameter)
	}
	if err := s.Params.Validate(); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	if s.HorizonDays < 0 || s.NumPaths < 1 {
		return fmt.Errorf("%w: scenario %q needs horizon >= 0 and at least one path, got %d days and %d paths",
			ErrInvalidParameter, s.Name, s.HorizonDays, s.NumPaths)
	}
	return nil
}

// Catalog is an immutable set of scenarios indexed by case-insensitive name.
// Build it once at start-up and pass it to whoever needs it.
type Catalog struct {
	scenarios []Scenario // in declaration order
	index     map[string]int
}

// NewCatalog returns a catalog of the given scenarios. A later scenario
// replaces an earlier one with the same name.
func NewCatalog(scenarios ...Scenario) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int, len(scenarios))}
	for _, s := range scenarios {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToLower(s.Name)
		if i, ok := c.index[key]; ok {
			c.scenarios[i] = s
			continue
		}
		c.index[key] = len(c.scenarios)
		c.scenarios = append(c.scenarios, s)
	}
	return c, nil
}

// Presets returns the built-in bear, base, bull and hyper scenarios.
func Presets() *Catalog {
	c, err := NewCatalog(presets...)
	if err != nil {
		panic(err) // presets are constants
	}
	return c
}

var presets = []Scenario{
	{
		Name:        "bear",
		Description: "Bear market: BTC declines, equity amplifies losses",
		Params:      Parameters{AnnualDrift: -0.30, AnnualVolatility: 1.00, Beta: 1.8, Alpha: -0.05, IdioVolatility: 0.40},
		HorizonDays: 365,
		NumPaths:    5000,
	},
	{
		Name:        "base",
		Description: "Base case: moderate BTC appreciation",
		Params:      Parameters{AnnualDrift: 0.20, AnnualVolatility: 0.80, Beta: 1.5, Alpha: 0.0, IdioVolatility: 0.30},
		HorizonDays: 365,
		NumPaths:    5000,
	},
	{
		Name:        "bull",
		Description: "Bull market: strong BTC appreciation, premium expansion",
		Params:      Parameters{AnnualDrift: 0.60, AnnualVolatility: 0.70, Beta: 1.7, Alpha: 0.10, IdioVolatility: 0.35},
		HorizonDays: 365,
		NumPaths:    5000,
	},
	{
		Name:        "hyper",
		Description: "Hyperbitcoinization: extreme BTC growth",
		Params:      Parameters{AnnualDrift: 1.50, AnnualVolatility: 1.20, Beta: 2.0, Alpha: 0.20, IdioVolatility: 0.50},
		HorizonDays: 365,
		NumPaths:    5000,
	},
}

// Get returns the scenario called name.
func (c *Catalog) Get(name string) (Scenario, error) {
	i, ok := c.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownScenario, name, strings.Join(c.Names(), ", "))
	}
	return c.scenarios[i], nil
}

// Names returns the scenario names in declaration order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.scenarios))
	for i, s := range c.scenarios {
		names[i] = s.Name
	}
	return names
}

// Scenarios returns a copy of the scenarios in declaration order.
func (c *Catalog) Scenarios() []Scenario { return slices.Clone(c.scenarios) }

// With returns a new catalog holding c's scenarios plus the given ones.
// c is left unchanged.
func (c *Catalog) With(scenarios ...Scenario) (*Catalog, error) {
	return NewCatalog(append(c.Scenarios(), scenarios...)...)
}

// DecodeCatalog reads scenarios from a YAML document of the form
//
//	scenarios:
//	  - name: halving
//	    horizon_days: 180
//	    num_paths: 10000
//	    params: {annual_drift: 0.4, annual_volatility: 0.9, beta: 1.6, alpha: 0, idio_volatility: 0.3}
func DecodeCatalog(r io.Reader) ([]Scenario, error) {
	var doc struct {
		Scenarios []Scenario `yaml:"scenarios"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("cannot decode scenarios: %w", err)
	}
	for _, s := range doc.Scenarios {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return doc.Scenarios, nil
}
