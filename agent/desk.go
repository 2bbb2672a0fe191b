package agent

import (
	"context"
	"fmt"

	"github.com/etnz/treasury"
	"github.com/etnz/treasury/date"
	"github.com/etnz/treasury/docs"
	"github.com/etnz/treasury/montecarlo"
	"github.com/etnz/treasury/renderer"
	"google.golang.org/genai"
)

// NewLead returns the desk lead: it talks to the user and dispatches the
// questions to the experts.
func NewLead(model string, experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Lead",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
You lead the treasury desk of a user who follows a company holding bitcoin
on its balance sheet, and who may own shares of it.

The first message comes with the state of the book: bitcoin held, the latest
closes, the bitcoin NAV, the premium of the market cap over it, and the
user's position. Rely on it and do not ask the user for these figures.

The experts are Tools. They keep the context of your previous questions.
Ask the Analyst for figures computed from the book: NAV and premiums,
tranche cost basis, position P&L, beta calibration and Monte Carlo runs.
Ask the Trader for news, filings, issuance and anything outside the book.

Never make up a figure. When you quote a simulated one, state the scenario,
the horizon in trading days, the number of paths and the seed, and say that
a VaR or CVaR is a loss threshold under the model, not a forecast.
`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewTrader returns the expert grounded on Google Search.
func NewTrader(model string) *Expert {
	return &Expert{
		Name: "Trader",
		Description: `The Trader follows bitcoin markets and the companies holding bitcoin in treasury:
their purchases, convertible notes and preferred stock, at-the-market share issuance and the mNAV
premium the market puts on them. Ask the Trader for recent or external information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
You trade bitcoin and the shares of bitcoin treasury companies.
Search for the latest bitcoin purchases, holdings, shares outstanding, debt
and cash of the company, and for the news moving its premium to bitcoin NAV.
Quote the date and the source of every figure you give.
`}}},
		},
	}
}

// NewAnalyst returns the expert computing the book's figures and running
// the simulations of sim.
func NewAnalyst(model string, sim *treasury.Simulator) *Expert {
	lib := AnalystFunctions(sim)
	return &Expert{
		Name: "Analyst",
		Description: `The Analyst computes from the user's book: bitcoin NAV, balance-sheet NAV and premiums,
the cost basis of the bitcoin tranches, the P&L and bitcoin exposure of the user's share position,
the beta of the shares to bitcoin, and Monte Carlo simulations with VaR and CVaR.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
You are the quantitative analyst of the user's treasury book.
Use the Tools for every figure. Prefer a calibrated simulation when the
question is about the shares, and list the scenarios before picking one.
Explain VaR and CVaR in plain words when you quote them.

` + must(docs.Topic("risk"))}}},
		},
		Library: NewLibrary(lib),
	}
}

// AnalystFunctions returns the tools of the Analyst on the book of sim.
func AnalystFunctions(sim *treasury.Simulator) []Function {
	b := sim.Book
	base, equity := b.BaseTicker, b.EquityTicker
	onSchema := &genai.Schema{
		Type: genai.TypeString,
		Description: `The day of the figures, today when absent.
Dates are based on YYYY-MM-DD:

` + must(docs.Topic("dates")),
	}
	onOnly := &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{"date": onSchema}}
	markdown := func(what string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: "A markdown report of " + what + "."}
	}

	scenarios := &Tool{
		Decl: &genai.FunctionDeclaration{
			Name:        "Scenarios",
			Description: "Scenarios lists the simulation scenarios: " + base + " drift and volatility, beta of " + equity + ", horizon and number of paths.",
			Response:    markdown("the scenarios"),
		},
		Report: func(ctx context.Context, args map[string]any) (string, error) {
			return renderer.ScenariosMarkdown(sim.Catalog), nil
		},
	}

	simulate := &Tool{
		Decl: &genai.FunctionDeclaration{
			Name: "Simulate",
			Description: `Simulate runs a Monte Carlo simulation of ` + base + ` and ` + equity + ` from the latest closes.
It reports the terminal price percentiles, the probability of loss, VaR and CVaR,
and the risk of the user's position when one is named or active.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"scenario":     {Type: genai.TypeString, Description: "The scenario name, as listed by Scenarios."},
					"horizon_days": {Type: genai.TypeInteger, Description: "Trading days to simulate, the configured default when absent."},
					"num_paths":    {Type: genai.TypeInteger, Description: "Number of paths, the configured default when absent."},
					"seed":         {Type: genai.TypeInteger, Description: "Seed of the random draws, to reproduce a run."},
					"calibrate":    {Type: genai.TypeBoolean, Description: "Fit the beta, alpha and idiosyncratic volatility of " + equity + " on history."},
					"position":     {Type: genai.TypeString, Description: "Label of the share position to assess, the active one when absent."},
				},
				Required: []string{"scenario"},
			},
			Response: markdown("the simulation"),
		},
		Report: func(ctx context.Context, args map[string]any) (string, error) {
			req, err := simulationRequest(args)
			if err != nil {
				return "", err
			}
			if req.Position == "" {
				if p, err := b.Position(""); err == nil {
					req.Position = p.Label
				}
			}
			res, err := sim.Simulate(ctx, req)
			if err != nil {
				return "", err
			}
			return renderer.SimulationMarkdown(res, base, equity), nil
		},
	}

	nav := &Tool{
		Decl: &genai.FunctionDeclaration{
			Name:        "NAV",
			Description: "NAV values the company against its bitcoin: bitcoin NAV, balance-sheet NAV, market cap, mNAV and premiums.",
			Parameters:  onOnly,
			Response:    markdown("the NAV figures"),
		},
		Report: func(ctx context.Context, args map[string]any) (string, error) {
			on, err := parseDate(args)
			if err != nil {
				return "", err
			}
			n, err := b.ComputeNAV(on)
			if err != nil {
				return "", err
			}
			return renderer.NAVMarkdown(n, base, equity), nil
		},
	}

	tranches := &Tool{
		Decl: &genai.FunctionDeclaration{
			Name:        "Tranches",
			Description: "Tranches lists the bitcoin purchases of the company with their cost basis and unrealized gain at the " + base + " price of the day.",
			Parameters:  onOnly,
			Response:    markdown("the tranches"),
		},
		Report: func(ctx context.Context, args map[string]any) (string, error) {
			on, err := parseDate(args)
			if err != nil {
				return "", err
			}
			a, err := b.AnalyzeTranches(on)
			if err != nil {
				return "", err
			}
			return renderer.TranchesMarkdown(a, base), nil
		},
	}

	position := &Tool{
		Decl: &genai.FunctionDeclaration{
			Name:        "Position",
			Description: "Position values the user's " + equity + " shares: value, cost basis, P&L and the bitcoin they are exposed to.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date":  onSchema,
					"label": {Type: genai.TypeString, Description: "Label of the position, the active one when absent."},
				},
			},
			Response: markdown("the position"),
		},
		Report: func(ctx context.Context, args map[string]any) (string, error) {
			on, err := parseDate(args)
			if err != nil {
				return "", err
			}
			label, err := optionalString(args, "label")
			if err != nil {
				return "", err
			}
			m, err := b.PositionMetrics(label, on)
			if err != nil {
				return "", err
			}
			return renderer.PositionMarkdown(m, base, equity), nil
		},
	}

	calibrate := &Tool{
		Decl: &genai.FunctionDeclaration{
			Name:        "Calibrate",
			Description: "Calibrate fits the beta, alpha and idiosyncratic volatility of " + equity + " daily log returns on " + base + " ones.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date":     onSchema,
					"lookback": {Type: genai.TypeInteger, Description: fmt.Sprintf("Number of daily closes to fit on, %d when absent.", treasury.DefaultLookback)},
				},
			},
			Response: markdown("the calibration"),
		},
		Report: func(ctx context.Context, args map[string]any) (string, error) {
			on, err := parseDate(args)
			if err != nil {
				return "", err
			}
			lookback := treasury.DefaultLookback
			if err := optionalInt(args, "lookback", &lookback); err != nil {
				return "", err
			}
			cal, err := montecarlo.EstimateBetaParameters(b.Observations(date.Date{}, on), lookback)
			if err != nil {
				return "", err
			}
			return renderer.CalibrationMarkdown(cal, base, equity), nil
		},
	}

	return []Function{scenarios, simulate, nav, tranches, position, calibrate}
}

func simulationRequest(args map[string]any) (treasury.SimulationRequest, error) {
	var req treasury.SimulationRequest
	scenario, ok := args["scenario"].(string)
	if !ok {
		return req, fmt.Errorf("argument 'scenario' is required and must be a string, got %T", args["scenario"])
	}
	req.Scenario = scenario
	if err := optionalInt(args, "horizon_days", &req.HorizonDays); err != nil {
		return req, err
	}
	if err := optionalInt(args, "num_paths", &req.NumPaths); err != nil {
		return req, err
	}
	if v, ok := args["seed"]; ok {
		f, ok := v.(float64)
		if !ok || f < 0 {
			return req, fmt.Errorf("argument 'seed' must be a positive number, got %v", v)
		}
		seed := uint64(f)
		req.Seed = &seed
	}
	if v, ok := args["calibrate"]; ok {
		if req.Calibrate, ok = v.(bool); !ok {
			return req, fmt.Errorf("argument 'calibrate' must be a boolean, got %T", v)
		}
	}
	var err error
	req.Position, err = optionalString(args, "position")
	return req, err
}

// optionalInt sets dst to the JSON number args[name] when present.
func optionalInt(args map[string]any, name string, dst *int) error {
	v, ok := args[name]
	if !ok {
		return nil
	}
	f, ok := v.(float64)
	if !ok {
		return fmt.Errorf("argument %q must be a number, got %T", name, v)
	}
	*dst = int(f)
	return nil
}

func optionalString(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", name, v)
	}
	return s, nil
}

func parseDate(args map[string]any) (date.Date, error) {
	s, err := optionalString(args, "date")
	if err != nil || s == "" {
		return date.Today(), err
	}
	on, err := date.Parse(s)
	if err != nil {
		return date.Today(), fmt.Errorf("argument 'date' must be a valid date, got %q. The date format:\n\n%s", s, must(docs.Topic("dates")))
	}
	return on, nil
}
