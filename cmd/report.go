package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/rsu/renderer"
	"github.com/google/subcommands"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	replay bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display the position after each operation" }
func (*reportCmd) Usage() string {
	return `rsu report [-replay]

  Replays the operations and displays the position after each one, grouped by year.
  The report starts with the opening position, unless -replay is set.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.replay, "replay", false, "Do not display the opening position.")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := logger()
	history, err := portfolio(ctx, log, !c.replay)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error valuing portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderHistory(renderer.NewHistory(history)))
	return subcommands.ExitSuccess
}
