// Package export writes the portfolio history and its yearly summary to files.
package export

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/etnz/rsu"
)

// Base names of the exported files, the extension depends on the format.
const (
	HistoryName = "portfolio_history"
	SummaryName = "yearly_summary"
)

// Writer exports a portfolio history.
type Writer interface {
	// Export writes the history and its yearly summary, and returns the paths written.
	Export(history []rsu.Position) ([]string, error)
}

// Formats lists the supported formats.
var Formats = []string{"csv", "xlsx", "none"}

// New returns the writer for format, writing into dir. Format "none" (or "") exports nothing.
func New(format, dir string) (Writer, error) {
	switch strings.ToLower(format) {
	case "", "none":
		return Noop{}, nil
	case "csv":
		return &CSV{Dir: dir}, nil
	case "xlsx":
		return &XLSX{Dir: dir}, nil
	default:
		return nil, fmt.Errorf("export format %q not supported, want one of %s", format, strings.Join(Formats, ", "))
	}
}

// Noop exports nothing.
type Noop struct{}

func (Noop) Export([]rsu.Position) ([]string, error) { return nil, nil }

// table is a header and its rows, as exported.
type table struct {
	header []string
	rows   [][]any
}

var historyHeader = []string{
	"Date", "Operation", "Operation Quantity", "Final Quantity",
	"Total Cost USD", "Average Price USD", "Total Cost BRL", "Average Price BRL", "Gross Profit BRL",
}

var summaryHeader = []string{
	"Year", "Total Operations", "Final Quantity",
	"Total Cost USD", "Average Price USD", "Total Cost BRL", "Average Price BRL", "Gross Profit BRL",
}

// describe returns the description of the operation that produced p, like "Vesting (+100)".
func describe(p rsu.Position) string {
	switch p.OperationKind {
	case rsu.KindVesting:
		return fmt.Sprintf("Vesting (+%s)", p.OperationQuantity)
	case rsu.KindTrade:
		return fmt.Sprintf("Trade (-%s)", p.OperationQuantity)
	default:
		return "N/A"
	}
}

func historyTable(history []rsu.Position) table {
	t := table{header: historyHeader}
	for _, p := range history {
		t.rows = append(t.rows, []any{
			p.LastUpdated.Format("02/01/2006"),
			describe(p),
			p.OperationQuantity.Value(),
			p.Quantity.Value(),
			p.TotalCostUSD.Amount().Round(2),
			p.AveragePriceUSD.Amount().Round(4),
			p.TotalCostBRL.Amount().Round(2),
			p.AveragePriceBRL.Amount().Round(4),
			p.GrossProfitBRL.Amount().Round(2),
		})
	}
	return t
}

func summaryTable(history []rsu.Position) table {
	t := table{header: summaryHeader}
	for _, s := range rsu.YearlySummaries(history) {
		t.rows = append(t.rows, []any{
			s.Year,
			s.Operations,
			s.FinalQuantity.Value(),
			s.TotalCostUSD.Amount().Round(2),
			s.AveragePriceUSD.Amount().Round(4),
			s.TotalCostBRL.Amount().Round(2),
			s.AveragePriceBRL.Amount().Round(4),
			s.GrossProfitBRL.Amount().Round(2),
		})
	}
	return t
}

// text formats a cell value.
func text(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func (t table) strings() [][]string {
	lines := make([][]string, 0, len(t.rows)+1)
	lines = append(lines, slices.Clone(t.header))
	for _, row := range t.rows {
		line := make([]string, len(row))
		for i, v := range row {
			line[i] = text(v)
		}
		lines = append(lines, line)
	}
	return lines
}

// prepare creates dir if needed.
func prepare(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create export directory: %w", err)
	}
	return dir, nil
}
