package ddl

import (
	"fmt"
	"strings"
)

// ReadCSV generates a query returning every column of a delimited file as
// VARCHAR, so identifiers like "1909.0" or "00123" survive unchanged.
//
//	SELECT * FROM read_csv('path', delim = '\t', header = true, all_varchar = true, ...)
func ReadCSV(path string, delim rune) (string, error) {
	return SelectCSV(path, delim, nil)
}

// SelectCSV is ReadCSV restricted to columns, in the given order.
func SelectCSV(path string, delim rune, columns []string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("source path is required")
	}
	if delim == 0 || delim == '\'' || delim == '\n' {
		return "", fmt.Errorf("invalid delimiter %q", delim)
	}

	proj := "*"
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			quoted[i] = QuoteIdentifier(c)
		}
		proj = strings.Join(quoted, ", ")
	}

	return fmt.Sprintf("SELECT %s FROM read_csv(%s, delim = %s, header = true, all_varchar = true, quote = '\"', null_padding = true, ignore_errors = false)",
		proj,
		QuoteLiteral(path),
		QuoteLiteral(string(delim)),
	), nil
}

// DescribeCSV generates a DESCRIBE statement to discover the header of a
// delimited file without reading its rows.
func DescribeCSV(path string, delim rune) (string, error) {
	q, err := ReadCSV(path, delim)
	if err != nil {
		return "", err
	}
	return "DESCRIBE " + q, nil
}
