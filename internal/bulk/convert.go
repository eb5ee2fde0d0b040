package bulk

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Converter streams a delimited graph export through a Mapping.
type Converter struct {
	Mapping Mapping
	// InComma is the input delimiter (tab for neo4j-admin TSV exports).
	InComma rune
	// Limit stops after this many records when > 0, producing a sample file.
	Limit  int
	Logger *slog.Logger
}

// NewNeptuneConverter converts a neo4j-admin TSV export of kind into a
// Neptune openCypher CSV.
func NewNeptuneConverter(kind Kind, limit int, logger *slog.Logger) *Converter {
	return &Converter{Mapping: NeptuneMapping(kind), InComma: '\t', Limit: limit, Logger: logger}
}

// NewHeaderFixer rewrites the headers of a comma-separated merged graph
// export of kind.
func NewHeaderFixer(kind Kind, logger *slog.Logger) *Converter {
	return &Converter{Mapping: GoldenMapping(kind), InComma: ',', Logger: logger}
}

// Convert reads r and writes the mapped CSV to w. It returns the number of
// records written, excluding the header.
func (c *Converter) Convert(r io.Reader, w io.Writer) (int, error) {
	cr := csv.NewReader(r)
	cr.Comma = c.InComma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("read header: input is empty")
	}
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(c.Mapping.Header()); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	row := make(map[string]string, len(header))
	n := 0
	for c.Limit <= 0 || n < c.Limit {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, fmt.Errorf("read record %d: %w", n+1, err)
		}
		clear(row)
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		if err := cw.Write(c.Mapping.Apply(row)); err != nil {
			return n, fmt.Errorf("write record %d: %w", n+1, err)
		}
		n++
		if c.Logger != nil && n%100000 == 0 {
			c.Logger.Debug("converted records", "count", n)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("flush output: %w", err)
	}
	return n, nil
}

// ConvertFile is Convert over file paths.
func (c *Converter) ConvertFile(inPath, outPath string) (int, error) {
	in, err := os.Open(inPath) //nolint:gosec // path is caller-controlled
	if err != nil {
		return 0, fmt.Errorf("open input: %w", err)
	}
	defer in.Close() //nolint:errcheck

	out, err := os.Create(outPath) //nolint:gosec // path is caller-controlled
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}

	n, err := c.Convert(in, out)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close output: %w", cerr)
	}
	if err != nil {
		return n, err
	}
	if c.Logger != nil {
		c.Logger.Info("conversion finished", "input", inPath, "output", outPath, "records", n)
	}
	return n, nil
}
