package listing

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Column is one CSV column of a list export.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// ExportCurrentPage writes the currently held items as CSV: a header row
// followed by one row per item. Items on other pages are not fetched.
func (l *List[T]) ExportCurrentPage(w io.Writer) (int, error) {
	if len(l.cfg.Columns) == 0 {
		return 0, fmt.Errorf("%s has no export columns", l.cfg.Name)
	}
	items := l.Snapshot().Items

	cw := csv.NewWriter(w)
	header := make([]string, len(l.cfg.Columns))
	for i, c := range l.cfg.Columns {
		header[i] = c.Header
	}
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(l.cfg.Columns))
	for _, item := range items {
		for i, c := range l.cfg.Columns {
			row[i] = c.Value(item)
		}
		if err := cw.Write(row); err != nil {
			return 0, fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	return len(items), nil
}
