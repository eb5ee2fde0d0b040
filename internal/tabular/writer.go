package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
)

// Write writes t to w with delim, header first, columns in t.Columns order.
func Write(w io.Writer, t *domain.Table, delim rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.Columns))
	for i, r := range t.Rows {
		for j, c := range t.Columns {
			rec[j] = r[c]
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes t to path, creating parent directories. The delimiter
// is chosen by extension.
func WriteFile(path string, t *domain.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, t, Delimiter(path)); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// JoinedTable renders joined records as a table. The therapy code columns
// are included when withTherapy is set.
func JoinedTable(source string, recs []domain.JoinedRecord, withTherapy bool) *domain.Table {
	cols := append([]string{}, domain.JoinedColumns...)
	if withTherapy {
		cols = append(cols, domain.TherapyColumns...)
	}
	t := &domain.Table{Source: source, Columns: cols, Rows: make([]domain.RawRecord, 0, len(recs))}
	for _, r := range recs {
		t.Rows = append(t.Rows, r.Record())
	}
	return t
}
