// Package tabular reads and writes the delimited tables exchanged between
// pipeline stages.
//
// Reading goes through an in-process DuckDB so large source dumps are parsed
// by its CSV sniffer and every cell arrives as VARCHAR; writing uses
// encoding/csv.
package tabular

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/ddl"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
)

// Reader loads delimited files into domain.Tables.
type Reader struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenReader opens an in-memory DuckDB used only for reading files.
func OpenReader(logger *slog.Logger) (*Reader, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reader{db: db, logger: logger.With("component", "tabular")}, nil
}

// Close releases the DuckDB handle.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Delimiter picks the delimiter for path by extension: tab for .tsv and
// .txt, comma otherwise.
func Delimiter(path string) rune {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".txt", ".tab":
		return '\t'
	default:
		return ','
	}
}

// Read loads the whole file at path. The delimiter is chosen by extension.
func (r *Reader) Read(ctx context.Context, path string) (*domain.Table, error) {
	return r.ReadDelim(ctx, path, Delimiter(path))
}

// ReadDelim loads the whole file at path using delim.
func (r *Reader) ReadDelim(ctx context.Context, path string, delim rune) (*domain.Table, error) {
	q, err := ddl.ReadCSV(path, delim)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, path, q)
}

// ReadColumns loads path and fails fast with a MissingColumnError naming the
// file when any required column is absent. Only the header is inspected
// before the check, so a bad file is rejected without reading its rows.
func (r *Reader) ReadColumns(ctx context.Context, path string, required ...string) (*domain.Table, error) {
	delim := Delimiter(path)
	cols, err := r.Columns(ctx, path, delim)
	if err != nil {
		return nil, err
	}
	head := &domain.Table{Source: path, Columns: cols}
	if err := head.RequireColumns(required...); err != nil {
		return nil, err
	}
	return r.ReadDelim(ctx, path, delim)
}

// Select loads only columns of path, in the given order. A missing column
// fails with a MissingColumnError before any row is read.
func (r *Reader) Select(ctx context.Context, path string, columns ...string) (*domain.Table, error) {
	delim := Delimiter(path)
	cols, err := r.Columns(ctx, path, delim)
	if err != nil {
		return nil, err
	}
	head := &domain.Table{Source: path, Columns: cols}
	if err := head.RequireColumns(columns...); err != nil {
		return nil, err
	}
	q, err := ddl.SelectCSV(path, delim, columns)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, path, q)
}

// Columns returns the header of path.
func (r *Reader) Columns(ctx context.Context, path string, delim rune) ([]string, error) {
	q, err := ddl.DescribeCSV(path, delim)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", path, err)
	}
	defer rows.Close() //nolint:errcheck

	describeCols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", path, err)
	}
	var out []string
	for rows.Next() {
		vals := make([]any, len(describeCols))
		var name sql.NullString
		vals[0] = &name
		for i := 1; i < len(vals); i++ {
			vals[i] = new(any)
		}
		if err := rows.Scan(vals...); err != nil {
			return nil, fmt.Errorf("scan describe %s: %w", path, err)
		}
		out = append(out, name.String)
	}
	return out, rows.Err()
}

func (r *Reader) query(ctx context.Context, path, q string) (*domain.Table, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read %s columns: %w", path, err)
	}

	t := &domain.Table{Source: path, Columns: cols}
	vals := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s row %d: %w", path, len(t.Rows)+1, err)
		}
		rec := make(domain.RawRecord, len(cols))
		for i, c := range cols {
			rec[c] = vals[i].String
		}
		t.Rows = append(t.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	r.logger.Debug("table loaded", "path", path, "rows", len(t.Rows), "columns", len(cols))
	return t, nil
}
