// Package ddl builds the DuckDB statements used to read delimited sources.
package ddl

import (
	"strings"
)

// QuoteIdentifier wraps a SQL identifier in double quotes, escaping any
// embedded double-quote characters by doubling them (standard SQL).
//
// Source headers such as "id:ID" or "equivalent_identifiers:string[]" are
// not plain identifiers, so every column reference is quoted unconditionally.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral wraps a string value in single quotes, escaping any
// embedded single-quote characters by doubling them (standard SQL).
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
