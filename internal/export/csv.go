package export

import (
	"encoding/csv"
	"fmt"
	"os"
)

// csvRow is any row type that can render itself as CSV fields.
type csvRow interface {
	record() []string
}

// writeCSV writes a header row followed by one record per row.
func writeCSV[T csvRow](path string, header []string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row.record()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
