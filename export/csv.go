package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/rsu"
)

// CSV exports to portfolio_history.csv and yearly_summary.csv.
type CSV struct {
	Dir string
}

func (w *CSV) Export(history []rsu.Position) ([]string, error) {
	if len(history) == 0 {
		return nil, nil
	}
	dir, err := prepare(w.Dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, f := range []struct {
		name string
		t    table
	}{
		{HistoryName, historyTable(history)},
		{SummaryName, summaryTable(history)},
	} {
		path := filepath.Join(dir, f.name+".csv")
		if err := writeCSV(path, f.t); err != nil {
			return files, fmt.Errorf("cannot export %s: %w", path, err)
		}
		files = append(files, path)
	}
	return files, nil
}

func writeCSV(path string, t table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(t.strings()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
