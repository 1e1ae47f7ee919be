package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/rsu"
	"github.com/etnz/rsu/date"
	"github.com/google/subcommands"
)

// ratesCmd holds the flags for the 'rates' subcommand.
type ratesCmd struct {
	from, to string
	output   string
}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "download USD/BRL PTAX quotes to a rate table" }
func (*ratesCmd) Usage() string {
	return `rsu rates -from <date> [-to <date>] [-o <file>]

  Downloads the PTAX quotes published between two dates and writes them as a
  rate table, one quote per line. The table can then be used with -rates.
`
}

func (c *ratesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First day to download.")
	f.StringVar(&c.to, "to", date.Today().String(), "Last day to download.")
	f.StringVar(&c.output, "o", "", "Rate table to write, stdout if empty.")
}

func (c *ratesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" {
		fmt.Fprintln(os.Stderr, "Error: -from is required")
		return subcommands.ExitUsageError
	}
	from, err := date.ParseAny(c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := date.ParseAny(c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -to: %v\n", err)
		return subcommands.ExitUsageError
	}
	if to.Before(from) {
		fmt.Fprintf(os.Stderr, "Error: %s is before %s\n", to, from)
		return subcommands.ExitUsageError
	}

	log := logger()
	src, err := newBCB(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := src.Prefetch(ctx, date.Range{From: from, To: to}); err != nil {
		fmt.Fprintf(os.Stderr, "Error downloading quotes: %v\n", err)
		return subcommands.ExitFailure
	}

	out := os.Stdout
	if c.output != "" {
		file, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		out = file
	}
	table := src.Table()
	if err := rsu.EncodeRates(out, table); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing rates: %v\n", err)
		return subcommands.ExitFailure
	}
	log.Info().Int("quotes", table.Len()).Stringer("range", table.Range()).Msg("rates written")
	return subcommands.ExitSuccess
}
