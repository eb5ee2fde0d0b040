package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple", input: "variant_ids", want: `"variant_ids"`},
		{name: "typed_header", input: "equivalent_identifiers:string[]", want: `"equivalent_identifiers:string[]"`},
		{name: "with_double_quote", input: `my"col`, want: `"my""col"`},
		{name: "empty", input: "", want: `""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuoteIdentifier(tt.input))
		})
	}
}

func TestQuoteLiteral(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple", input: "data/civic.tsv", want: `'data/civic.tsv'`},
		{name: "with_single_quote", input: "o'brien.tsv", want: `'o''brien.tsv'`},
		{name: "tab", input: "\t", want: "'\t'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuoteLiteral(tt.input))
		})
	}
}
