package export

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/etnz/rsu"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// XLSX exports to portfolio_history.xlsx and yearly_summary.xlsx.
type XLSX struct {
	Dir string
}

// Sheet names.
const (
	HistorySheet = "Portfolio History"
	SummarySheet = "Yearly Summary"
)

func (w *XLSX) Export(history []rsu.Position) ([]string, error) {
	if len(history) == 0 {
		return nil, nil
	}
	dir, err := prepare(w.Dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, f := range []struct {
		name, sheet string
		t           table
	}{
		{HistoryName, HistorySheet, historyTable(history)},
		{SummaryName, SummarySheet, summaryTable(history)},
	} {
		path := filepath.Join(dir, f.name+".xlsx")
		if err := writeXLSX(path, f.sheet, f.t); err != nil {
			return files, fmt.Errorf("cannot export %s: %w", path, err)
		}
		files = append(files, path)
	}
	return files, nil
}

func writeXLSX(path, sheet string, t table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	header := make([]any, len(t.header))
	for i, h := range t.header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return err
	}

	for i, row := range t.rows {
		cells := slices.Clone(row)
		for j, v := range cells {
			// Amounts are numbers in the spreadsheet.
			if d, ok := v.(decimal.Decimal); ok {
				cells[j] = d.InexactFloat64()
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}
	last, err := excelize.ColumnNumberToName(len(t.header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
		return err
	}
	return f.SaveAs(path)
}
