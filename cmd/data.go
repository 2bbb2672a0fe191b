package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/treasury"
	"github.com/etnz/treasury/date"
	"github.com/google/subcommands"
)

type addPriceCmd struct {
	ticker string
	date   string
	price  float64
}

func (*addPriceCmd) Name() string     { return "add-price" }
func (*addPriceCmd) Synopsis() string { return "record the daily close of a ticker" }
func (*addPriceCmd) Usage() string {
	return `tsy add-price -ticker <ticker> -price <price> [-d <date>]

  Records the close of a ticker on a given day, replacing any previous one.
`
}

func (c *addPriceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "ticker", treasury.BTC, "Ticker symbol")
	f.StringVar(&c.date, "d", date.Today().String(), "Day of the close")
	f.Float64Var(&c.price, "price", 0, "Close price in USD (required)")
}

func (c *addPriceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	if !(c.price > 0) {
		fmt.Fprintln(os.Stderr, "Error: -price must be positive.")
		return subcommands.ExitUsageError
	}

	_, book, err := DecodeBook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}
	book.Market.Append(c.ticker, on, c.price)
	if err := EncodeBook(book); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving data: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("✅ %s closed at %s on %s.\n", c.ticker, treasury.USD(c.price), on)
	return subcommands.ExitSuccess
}

type addTrancheCmd struct {
	date   string
	btc    string
	usd    string
	source string
	notes  string
}

func (*addTrancheCmd) Name() string     { return "add-tranche" }
func (*addTrancheCmd) Synopsis() string { return "record a bitcoin acquisition" }
func (*addTrancheCmd) Usage() string {
	return `tsy add-tranche -btc <amount> -usd <amount> [-d <date>] [-source <filing>] [-notes <text>]

  Records a BTC acquisition of the treasury company with its total USD cost.
`
}

func (c *addTrancheCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Day of the acquisition")
	f.StringVar(&c.btc, "btc", "", "Bitcoin acquired (required)")
	f.StringVar(&c.usd, "usd", "", "Total USD spent (required)")
	f.StringVar(&c.source, "source", "", "Where the acquisition was reported, e.g. 8-K")
	f.StringVar(&c.notes, "notes", "", "Free text")
}

func (c *addTrancheCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	btc, err := treasury.ParseQuantity(c.btc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -btc: %v\n", err)
		return subcommands.ExitUsageError
	}
	usd, err := treasury.ParseUSD(c.usd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -usd: %v\n", err)
		return subcommands.ExitUsageError
	}
	t := treasury.Tranche{On: on, BTC: btc, Cost: usd, Source: c.source, Notes: c.notes}

	_, book, err := DecodeBook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := book.AddTranche(t); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := EncodeBook(book); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving data: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("✅ Added %s BTC for %s at %s per BTC, %s BTC held.\n", t.BTC, t.Cost, t.ImpliedPrice(), book.TotalBTC(on))
	return subcommands.ExitSuccess
}

type addStatsCmd struct {
	date       string
	shares     string
	cash       float64
	debtFace   float64
	debtMarket float64
}

func (*addStatsCmd) Name() string     { return "add-stats" }
func (*addStatsCmd) Synopsis() string { return "record the company balance sheet" }
func (*addStatsCmd) Usage() string {
	return `tsy add-stats -shares <count> [-cash <usd>] [-debt-face <usd>] [-debt-market <usd>] [-d <date>]

  Records the shares outstanding, cash and debt of the treasury company on a
  day, replacing any previous record of that day. The market value of the debt
  is its face value when not given.
`
}

func (c *addStatsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Day of the balance sheet")
	f.StringVar(&c.shares, "shares", "", "Shares outstanding (required)")
	f.Float64Var(&c.cash, "cash", 0, "Cash and equivalents in USD")
	f.Float64Var(&c.debtFace, "debt-face", 0, "Face value of the debt in USD")
	f.Float64Var(&c.debtMarket, "debt-market", -1, "Market value of the debt in USD, the face value when negative")
}

func (c *addStatsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	shares, err := treasury.ParseQuantity(c.shares)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -shares: %v\n", err)
		return subcommands.ExitUsageError
	}
	market := c.debtMarket
	if market < 0 {
		market = c.debtFace
	}
	s := treasury.CompanyStats{
		On:                on,
		SharesOutstanding: shares,
		Cash:              treasury.USD(c.cash),
		DebtFace:          treasury.USD(c.debtFace),
		DebtMarket:        treasury.USD(market),
	}

	_, book, err := DecodeBook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := book.AddStats(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := EncodeBook(book); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving data: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("✅ Recorded company stats on %s.\n", on)
	return subcommands.ExitSuccess
}

type setPositionCmd struct {
	label    string
	shares   string
	price    string
	inactive bool
}

func (*setPositionCmd) Name() string     { return "set-position" }
func (*setPositionCmd) Synopsis() string { return "add or replace a personal position" }
func (*setPositionCmd) Usage() string {
	return `tsy set-position -label <label> -shares <count> -price <usd> [-inactive]

  Adds or replaces a personal position in the treasury company's shares.
  The position becomes the active one unless -inactive is given.
`
}

func (c *setPositionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.label, "label", "", "Position label (required)")
	f.StringVar(&c.shares, "shares", "", "Number of shares (required)")
	f.StringVar(&c.price, "price", "", "Average entry price in USD per share (required)")
	f.BoolVar(&c.inactive, "inactive", false, "Keep the currently active position")
}

func (c *setPositionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	shares, err := treasury.ParseQuantity(c.shares)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -shares: %v\n", err)
		return subcommands.ExitUsageError
	}
	price, err := treasury.ParseQuantity(c.price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -price: %v\n", err)
		return subcommands.ExitUsageError
	}
	p := treasury.Position{Label: c.label, Shares: shares, AvgEntryPrice: price, Active: !c.inactive}

	_, book, err := DecodeBook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := book.SetPosition(p); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := EncodeBook(book); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving data: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("✅ Position %q set to %s shares at %s USD.\n", p.Label, p.Shares, price)
	return subcommands.ExitSuccess
}
