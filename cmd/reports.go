package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/treasury"
	"github.com/etnz/treasury/renderer"
	"github.com/google/subcommands"
)

// navCmd holds the flags for the 'nav' subcommand.
type navCmd struct {
	date   string
	record bool
}

func (*navCmd) Name() string     { return "nav" }
func (*navCmd) Synopsis() string { return "display the net asset value of the treasury" }
func (*navCmd) Usage() string {
	return `tsy nav [-d <date>] [-record]

  Displays the bitcoin NAV, balance-sheet NAV and premiums of the treasury
  company on a given day, the latest bitcoin close by default.
`
}

func (c *navCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the report, the latest price by default")
	f.BoolVar(&c.record, "record", false, "append the figures to the snapshots file")
}

func (c *navCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, book, err := DecodeBook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}
	on, err := parseDay(book, c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	nav, err := book.ComputeNAV(on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing NAV: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.NAVMarkdown(nav, book.BaseTicker, book.EquityTicker))

	if c.record {
		if err := treasury.AppendSnapshot(cfg.DataDir, nav.Snapshot()); err != nil {
			fmt.Fprintf(os.Stderr, "Error recording snapshot: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

type tranchesCmd struct {
	date string
}

func (*tranchesCmd) Name() string     { return "tranches" }
func (*tranchesCmd) Synopsis() string { return "display the bitcoin acquisitions and their gains" }
func (*tranchesCmd) Usage() string {
	return `tsy tranches [-d <date>]

  Displays every BTC tranche held on a given day with its cost basis,
  current value and unrealized gain.
`
}

func (c *tranchesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the report, the latest price by default")
}

func (c *tranchesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	a, err := book.AnalyzeTranches(on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing tranches: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.TranchesMarkdown(a, book.BaseTicker))
	return subcommands.ExitSuccess
}

type positionCmd struct {
	date  string
	label string
}

func (*positionCmd) Name() string     { return "position" }
func (*positionCmd) Synopsis() string { return "display a personal position" }
func (*positionCmd) Usage() string {
	return `tsy position [-label <label>] [-d <date>]

  Displays the value, unrealized gain and implied bitcoin exposure of a
  personal position, the active one by default.
`
}

func (c *positionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the report, the latest price by default")
	f.StringVar(&c.label, "label", "", "Position label, the active position by default")
}

func (c *positionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	m, err := book.PositionMetrics(c.label, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error valuing position: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.PositionMarkdown(m, book.BaseTicker, book.EquityTicker))
	return subcommands.ExitSuccess
}

type performanceCmd struct {
	from   string
	to     string
	window int
	top    int
}

func (*performanceCmd) Name() string     { return "performance" }
func (*performanceCmd) Synopsis() string { return "display returns, drawdowns and beta" }
func (*performanceCmd) Usage() string {
	return `tsy performance [-from <date>] [-to <date>] [-window <days>] [-top <n>]

  Displays the return, volatility, Sharpe ratio and drawdowns of the
  treasury asset and the company's shares, and the rolling beta of the
  shares against the asset.
`
}

func (c *performanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First day, the first price by default")
	f.StringVar(&c.to, "to", "", "Last day, the latest price by default")
	f.IntVar(&c.window, "window", 30, "Observations per rolling beta window")
	f.IntVar(&c.top, "top", 5, "Number of drawdowns listed")
}

func (c *performanceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, book, err := DecodeBook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}
	to, err := parseDay(book, c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -to: %v\n", err)
		return subcommands.ExitUsageError
	}
	from, _ := book.Market.Prices(book.BaseTicker).First()
	if c.from != "" {
		if from, err = parseDay(book, c.from); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	var reports []renderer.PerformanceReport
	for _, ticker := range []string{book.BaseTicker, book.EquityTicker} {
		prices := book.Market.Prices(ticker).Between(from, to)
		r := renderer.PerformanceReport{Ticker: ticker}
		if r.Returns, err = treasury.Returns(prices); err != nil {
			fmt.Fprintf(os.Stderr, "Error computing %s returns: %v\n", ticker, err)
			return subcommands.ExitFailure
		}
		if r.Drawdowns, err = treasury.Drawdowns(prices, c.top); err != nil {
			fmt.Fprintf(os.Stderr, "Error computing %s drawdowns: %v\n", ticker, err)
			return subcommands.ExitFailure
		}
		if ticker == book.EquityTicker {
			// too short a history only lacks the beta
			r.Beta, _ = treasury.RollingBeta(book.Observations(from, to), c.window)
		}
		reports = append(reports, r)
	}
	printMarkdown(renderer.PerformanceMarkdown(reports...))
	return subcommands.ExitSuccess
}

