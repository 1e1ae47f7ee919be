package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/rsu/export"
	"github.com/google/subcommands"
)

// exportCmd holds the flags for the 'export' subcommand.
type exportCmd struct {
	format string
	dir    string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the portfolio history to files" }
func (*exportCmd) Usage() string {
	return `rsu export [-format csv|xlsx] [-dir <folder>]

  Writes the portfolio history and the yearly summaries as CSV files or as an Excel workbook.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "csv", "Export format: csv, xlsx or none.")
	f.StringVar(&c.dir, "dir", ".", "Folder to write the files to.")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	w, err := export.New(c.format, c.dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	log := logger()
	history, err := portfolio(ctx, log, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error valuing portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	files, err := w.Export(history)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, file := range files {
		fmt.Println(file)
	}
	return subcommands.ExitSuccess
}
