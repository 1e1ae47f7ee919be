package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/rsu"
	"github.com/etnz/rsu/date"
	"github.com/etnz/rsu/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	price string
	date  string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the final position and the yearly summaries" }
func (*summaryCmd) Usage() string {
	return `rsu summary [-price <usd>] [-d <date>]

  Displays the final position, the realized profit and one summary per year.
  With -price, the final position is also valued at that share price.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.price, "price", "", "Share price in USD to value the final position.")
	f.StringVar(&c.date, "d", date.Today().String(), "Date of the exchange rate used to value the final position.")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var price rsu.Money
	if c.price != "" {
		p, err := parsePrice(c.price)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing price: %v\n", err)
			return subcommands.ExitUsageError
		}
		price = p
	}
	on, err := date.ParseAny(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	log := logger()
	ops, err := loadOperations(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading operations: %v\n", err)
		return subcommands.ExitFailure
	}
	initial, err := loadInitial()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading initial position: %v\n", err)
		return subcommands.ExitFailure
	}
	resolver, err := newResolver(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading rates: %v\n", err)
		return subcommands.ExitFailure
	}

	v, err := rsu.NewEngine(resolver).Process(ctx, ops, initial)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error valuing portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	log.Info().Int("operations", v.Operations).Stringer("total_return", v.TotalReturn).Msg("portfolio valued")

	s := renderer.NewSummary(v.Final, v.History)
	if c.price != "" {
		rate, err := resolver.Rate(ctx, rsu.USD, rsu.BRL, on)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting exchange rate on %s: %v\n", on, err)
			return subcommands.ExitFailure
		}
		if err := s.WithMarket(v.Final, price, rate); err != nil {
			fmt.Fprintf(os.Stderr, "Error valuing position: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	printMarkdown(renderer.RenderSummary(s))
	return subcommands.ExitSuccess
}

// parsePrice parses a share price in USD.
func parsePrice(s string) (rsu.Money, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return rsu.Money{}, err
	}
	return rsu.NewMoney(v, rsu.USD)
}
