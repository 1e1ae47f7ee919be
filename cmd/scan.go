package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/rsu"
	"github.com/google/subcommands"
)

// scanCmd holds the flags for the 'scan' subcommand.
type scanCmd struct {
	output string
}

func (*scanCmd) Name() string     { return "scan" }
func (*scanCmd) Synopsis() string { return "convert the operations and confirmations to an operations file" }
func (*scanCmd) Usage() string {
	return `rsu scan [-o <file>]

  Reads the operations file and the confirmation folders, and writes all the
  operations, in chronological order, as a single operations file.
`
}

func (c *scanCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Operations file to write, stdout if empty.")
}

func (c *scanCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ops, err := loadOperations(logger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading operations: %v\n", err)
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
	if err := rsu.EncodeOperations(out, ops); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing operations: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
