// Package cmd implements the tsy command line tool to track a bitcoin
// treasury company and simulate its risk.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/treasury"
	"github.com/etnz/treasury/config"
	"github.com/etnz/treasury/date"
	"github.com/etnz/treasury/store"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")
	c.Register(&topicCmd{}, "")

	c.Register(&addPriceCmd{}, "data")
	c.Register(&importCmd{}, "data")
	c.Register(&addTrancheCmd{}, "data")
	c.Register(&addStatsCmd{}, "data")
	c.Register(&setPositionCmd{}, "data")

	c.Register(&navCmd{}, "reports")
	c.Register(&tranchesCmd{}, "reports")
	c.Register(&positionCmd{}, "reports")
	c.Register(&performanceCmd{}, "reports")

	c.Register(&scenariosCmd{}, "simulation")
	c.Register(&calibrateCmd{}, "simulation")
	c.Register(&simulateCmd{}, "simulation")
	c.Register(&runsCmd{}, "simulation")

	c.Register(&serveCmd{}, "services")
	c.Register(&assistCmd{}, "services")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the configuration file, "+config.DefaultFile+" when it exists")
var dataDir = flag.String("data-dir", "", "Path to the treasury data folder, overrides the configuration")

// Verbose turns on debug logs.
var Verbose = flag.Bool("v", false, "log debug messages")

var loaded *config.Config

// Config loads the configuration once, applying the global flags, and
// installs the global logger.
func Config() (*config.Config, error) {
	if loaded != nil {
		return loaded, nil
	}
	if *dataDir != "" {
		// through the environment so that the database path follows
		os.Setenv(EnvDataDir, *dataDir)
	}
	c, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *Verbose {
		c.LogLevel = "debug"
	}
	zap.ReplaceGlobals(config.NewLogger(c.LogLevel))
	loaded = c
	return c, nil
}

// DecodeBook reads the treasury data folder.
func DecodeBook() (*config.Config, *treasury.Book, error) {
	c, err := Config()
	if err != nil {
		return nil, nil, err
	}
	b, err := treasury.DecodeBook(c.DataDir)
	if err != nil {
		return nil, nil, err
	}
	b.BaseTicker, b.EquityTicker = c.BaseTicker, c.DerivedTicker
	return c, b, nil
}

// EncodeBook writes the book back into the treasury data folder.
func EncodeBook(b *treasury.Book) error {
	c, err := Config()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return err
	}
	return treasury.EncodeBook(c.DataDir, b)
}

// OpenSimulator builds the simulator of the book archiving into the
// returned store. The caller closes the store.
func OpenSimulator(ctx context.Context) (*treasury.Simulator, *store.Store, error) {
	c, b, err := DecodeBook()
	if err != nil {
		return nil, nil, err
	}
	catalog, err := c.Catalog()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(c.DBPath), 0o755); err != nil {
		return nil, nil, err
	}
	runs, err := store.Open(ctx, c.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open run archive: %w", err)
	}
	sim := &treasury.Simulator{
		Catalog: catalog,
		Book:    b,
		Archive: runs,
		Logger:  zap.L(),
		Timeout: c.Timeout,

		HorizonDays: c.HorizonDays,
		NumPaths:    c.NumPaths,
	}
	return sim, runs, nil
}

// latest returns the latest day with a price of the base asset.
func latest(b *treasury.Book) (date.Date, error) {
	if !b.Market.Has(b.BaseTicker) {
		return date.Date{}, fmt.Errorf("%w: no %s price", treasury.ErrNoData, b.BaseTicker)
	}
	on, _ := b.Market.Prices(b.BaseTicker).Latest()
	return on, nil
}

// parseDay parses a date flag, empty meaning the latest base asset price.
func parseDay(b *treasury.Book, s string) (date.Date, error) {
	if s == "" {
		return latest(b)
	}
	return date.Parse(s)
}

// renderMarkdown formats md for the terminal, verbatim when stdout is not one.
func renderMarkdown(md string) string {
	style := "dark"
	if fi, err := os.Stdout.Stat(); err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		style = "notty"
	}
	out, err := glamour.Render(md, style)
	if err != nil {
		return md
	}
	return out
}

func printMarkdown(md string) { fmt.Print(renderMarkdown(md)) }
