package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/treasury"
	"github.com/google/subcommands"
)

type importCmd struct {
	ticker string
	path   string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a price series from a JSON export" }
func (*importCmd) Usage() string {
	return `tsy import -ticker <ticker> [-path <jsonpath>] [<file>]

  Imports daily closes from a JSON document, read from file or stdin.

  -path selects the list of points in the document (default "$.prices").
  A point is either a [timestamp_ms, price] pair or an object with a date
  ("date", "on", "timestamp"...) and a price ("close", "price", "value").
  Nothing is imported if any point is invalid.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "ticker", treasury.BTC, "Ticker of the imported prices")
	f.StringVar(&c.path, "path", treasury.DefaultImportPath, "JSONPath of the list of points")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var r io.Reader = os.Stdin
	switch f.NArg() {
	case 0:
	case 1:
		file, err := os.Open(f.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		r = file
	default:
		fmt.Fprintln(os.Stderr, "Error: import reads at most one file.")
		return subcommands.ExitUsageError
	}

	_, book, err := DecodeBook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}
	n, err := treasury.ImportPrices(book.Market, c.ticker, r, c.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing prices: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := EncodeBook(book); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving data: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("✅ Imported %d %s prices.\n", n, c.ticker)
	return subcommands.ExitSuccess
}
