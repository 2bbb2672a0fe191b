package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/etnz/treasury"
	"github.com/etnz/treasury/date"
	"github.com/etnz/treasury/montecarlo"
	"github.com/etnz/treasury/renderer"
	"github.com/etnz/treasury/store"
	"github.com/google/subcommands"
)

type scenariosCmd struct {
	json bool
}

func (*scenariosCmd) Name() string     { return "scenarios" }
func (*scenariosCmd) Synopsis() string { return "list the simulation scenarios" }
func (*scenariosCmd) Usage() string {
	return `tsy scenarios [-json]

  Lists the preset scenarios and those of the configured scenarios file.
`
}

func (c *scenariosCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print JSON instead of markdown")
}

func (c *scenariosCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := Config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scenarios: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		return printJSON(catalog.Scenarios())
	}
	printMarkdown(renderer.ScenariosMarkdown(catalog))
	return subcommands.ExitSuccess
}

type simulateCmd struct {
	scenario  string
	date      string
	horizon   int
	paths     int
	seed      string
	calibrate bool
	lookback  int
	position  string
	chart     string
	json      bool
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "run a Monte Carlo simulation of a scenario" }
func (*simulateCmd) Usage() string {
	return `tsy simulate [-scenario <name>] [-d <date>] [-horizon <days>] [-paths <n>] [-seed <n>]
             [-calibrate [-lookback <days>]] [-position <label>] [-chart <file.png>] [-json]

  Simulates the joint price paths of the treasury asset and the company's
  shares, then reports the distribution of terminal prices, value at risk
  and expected shortfall, and the risk of the active personal position.

  Runs are archived; the same seed reproduces the same run.
`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.scenario, "scenario", "base", "Scenario name, see 'tsy scenarios'")
	f.StringVar(&c.date, "d", "", "Day of the starting prices, the latest price by default")
	f.IntVar(&c.horizon, "horizon", 0, "Horizon in trading days, the scenario's when zero")
	f.IntVar(&c.paths, "paths", 0, "Number of simulated paths, the scenario's when zero")
	f.StringVar(&c.seed, "seed", "", "Seed of the random source, a fresh one when empty")
	f.BoolVar(&c.calibrate, "calibrate", false, "estimate beta, alpha and idiosyncratic volatility from the price history")
	f.IntVar(&c.lookback, "lookback", treasury.DefaultLookback, "Daily closes used by -calibrate")
	f.StringVar(&c.position, "position", "", "Position label, the active position by default")
	f.StringVar(&c.chart, "chart", "", "Write a fan chart of the treasury asset into this PNG file")
	f.BoolVar(&c.json, "json", false, "print JSON instead of markdown")
}

func (c *simulateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sim, runs, err := OpenSimulator(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}
	defer runs.Close()

	req, err := c.request(sim.Book)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	res, err := sim.Simulate(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error simulating %q: %v\n", c.scenario, err)
		if treasury.IsInvalidRequest(err) || errors.Is(err, montecarlo.ErrUnknownScenario) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}

	if c.chart != "" {
		png, err := renderer.FanChart(res, sim.Book.BaseTicker, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error drawing chart: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(c.chart, png, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing chart: %v\n", err)
			return subcommands.ExitFailure
		}
		res.Bands = nil
	}

	if c.json {
		return printJSON(res)
	}
	printMarkdown(renderer.SimulationMarkdown(res, sim.Book.BaseTicker, sim.Book.EquityTicker))
	return subcommands.ExitSuccess
}

// request turns the flags into a simulation request on b. The active
// position is simulated when none is named.
func (c *simulateCmd) request(b *treasury.Book) (treasury.SimulationRequest, error) {
	var err error
	req := treasury.SimulationRequest{
		Scenario:    c.scenario,
		HorizonDays: c.horizon,
		NumPaths:    c.paths,
		Calibrate:   c.calibrate,
		Lookback:    c.lookback,
		Position:    c.position,
		Bands:       c.chart != "",
	}
	if c.date != "" {
		if req.On, err = parseDay(b, c.date); err != nil {
			return req, err
		}
	}
	if c.seed != "" {
		seed, err := strconv.ParseUint(c.seed, 10, 64)
		if err != nil {
			return req, fmt.Errorf("invalid seed %q: %w", c.seed, err)
		}
		req.Seed = &seed
	}
	if c.position == "" {
		if p, err := b.Position(""); err == nil {
			req.Position = p.Label
		}
	}
	return req, nil
}

type calibrateCmd struct {
	date     string
	lookback int
	json     bool
}

func (*calibrateCmd) Name() string     { return "calibrate" }
func (*calibrateCmd) Synopsis() string { return "estimate the beta model of the shares against bitcoin" }
func (*calibrateCmd) Usage() string {
	return `tsy calibrate [-d <date>] [-lookback <days>] [-json]

  Fits the company's daily log returns against the treasury asset's and
  reports beta, annualized alpha, idiosyncratic volatility and correlation.
`
}

func (c *calibrateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Last day of the history, the latest price by default")
	f.IntVar(&c.lookback, "lookback", treasury.DefaultLookback, "Number of daily closes, all of them when zero")
	f.BoolVar(&c.json, "json", false, "print JSON instead of markdown")
}

func (c *calibrateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, book, err := DecodeBook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}
	on, err := parseDay(book, c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	cal, err := montecarlo.EstimateBetaParameters(book.Observations(date.Date{}, on), c.lookback)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error calibrating: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		return printJSON(cal)
	}
	printMarkdown(renderer.CalibrationMarkdown(cal, book.BaseTicker, book.EquityTicker))
	return subcommands.ExitSuccess
}

type runsCmd struct {
	limit int
}

func (*runsCmd) Name() string     { return "runs" }
func (*runsCmd) Synopsis() string { return "list archived simulation runs" }
func (*runsCmd) Usage() string {
	return `tsy runs [-n <count>] [<run id>]

  Lists the latest archived simulation runs, or prints the JSON summary of
  one run.
`
}

func (c *runsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 20, "Number of runs listed")
}

func (c *runsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := Config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	runs, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening run archive: %v\n", err)
		return subcommands.ExitFailure
	}
	defer runs.Close()

	if f.NArg() > 0 {
		r, err := runs.GetRun(ctx, f.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading run: %v\n", err)
			return subcommands.ExitFailure
		}
		return printJSON(r)
	}
	list, err := runs.ListRuns(ctx, c.limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RunsMarkdown(list))
	return subcommands.ExitSuccess
}

func printJSON(v any) subcommands.ExitStatus {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
