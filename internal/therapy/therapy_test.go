package therapy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single_drug", in: "Cisplatin", want: []string{"Cisplatin"}},
		{name: "plus", in: "Cytarabine + Daunorubicin", want: []string{"Cytarabine", "Daunorubicin"}},
		{name: "comma_and_word", in: "Dabrafenib, Trametinib and Cetuximab", want: []string{"Dabrafenib", "Trametinib", "Cetuximab"}},
		{name: "with_word_case_insensitive", in: "Nivolumab WITH Ipilimumab", want: []string{"Nivolumab", "Ipilimumab"}},
		{name: "slash_semicolon_ampersand", in: "A/B;C&D", want: []string{"A", "B", "C", "D"}},
		{name: "parenthetical_removed", in: "Imatinib (low dose), Dasatinib", want: []string{"Imatinib", "Dasatinib"}},
		{name: "trailing_dots_trimmed", in: "Cisplatin. , Etoposide.", want: []string{"Cisplatin", "Etoposide"}},
		{name: "hyphen_fallback", in: "Cytarabine-Daunorubicin-Etoposide", want: []string{"Cytarabine", "Daunorubicin", "Etoposide"}},
		{name: "en_dash_fallback", in: "Cisplatin – Etoposide", want: []string{"Cisplatin", "Etoposide"}},
		{name: "hyphen_ignored_when_primary_splits", in: "Anti-PD1, Cisplatin", want: []string{"Anti-PD1", "Cisplatin"}},
		{name: "lone_hyphen_keeps_token", in: "-Cisplatin-", want: []string{"-Cisplatin-"}},
		{name: "only_parenthetical", in: "(none given)", want: nil},
		{name: "only_parenthetical_hyphen_split_raw", in: "(Cisplatin-Etoposide)", want: []string{"(Cisplatin", "Etoposide)"}},
		{name: "only_dots", in: " . ", want: nil},
		{name: "and_inside_word_not_split", in: "Brandamycin", want: []string{"Brandamycin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestCanon(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase", in: "Cisplatin", want: "cisplatin"},
		{name: "stopword_suffix", in: "FOLFOX regimen", want: "folfox"},
		{name: "stopword_prefix", in: "Combination Therapy FOLFOX", want: "folfox"},
		{name: "stopword_inside_word_kept", in: "Radiotherapy", want: "radiotherapy"},
		{name: "punctuation_stripped", in: "Ado-Trastuzumab Emtansine®", want: "ado-trastuzumab emtansine"},
		{name: "plus_kept", in: "5FU+LV", want: "5fu+lv"},
		{name: "whitespace_collapsed", in: "  Pembrolizumab \t  MK ", want: "pembrolizumab mk"},
		{name: "fullwidth_folded", in: "ＣＩＳＰＬＡＴＩＮ", want: "cisplatin"},
		{name: "nbsp_folded", in: "all\u00a0trans retinoic\u00a0acid", want: "all trans retinoic acid"},
		{name: "only_stopword", in: "therapy", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canon(tt.in))
		})
	}
}

func TestKey(t *testing.T) {
	t.Run("order_insensitive", func(t *testing.T) {
		assert.Equal(t, Key("Cytarabine + Daunorubicin"), Key("Daunorubicin, Cytarabine"))
	})
	t.Run("hyphen_three_token_key", func(t *testing.T) {
		assert.Equal(t, ComboKey{"cytarabine", "daunorubicin", "etoposide"}, Key("Cytarabine-Daunorubicin-Etoposide"))
	})
	t.Run("stopword_invariant", func(t *testing.T) {
		assert.Equal(t, ComboKey{"folfox"}, Key("FOLFOX regimen"))
		assert.Equal(t, Key("FOLFOX"), Key("FOLFOX regimen"))
	})
	t.Run("duplicates_removed", func(t *testing.T) {
		assert.Equal(t, ComboKey{"cisplatin"}, Key("Cisplatin and cisplatin"))
	})
	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Key(""))
	})
	t.Run("parenthesised_hyphen_combo", func(t *testing.T) {
		assert.Equal(t, ComboKey{"cisplatin", "etoposide"}, Key("(Cisplatin-Etoposide)"))
	})
}

func scenarioMatcher() *Matcher {
	return NewMatcher([]Entry{
		{Name: "Cisplatin and Etoposide", Code: "C123"},
		{Name: "Cisplatin", Code: "C001"},
		{Name: "Etoposide", Code: "C002"},
	})
}

func TestMatch(t *testing.T) {
	m := scenarioMatcher()

	tests := []struct {
		name       string
		in         string
		wantCombo  string
		wantTokens string
		want       string
		wantOK     bool
	}{
		{name: "combo_preferred", in: "Etoposide, Cisplatin", wantCombo: "C123", wantTokens: "C002,C001", want: "C123", wantOK: true},
		{name: "single_drug", in: "Cisplatin", wantTokens: "C001", want: "C001", wantOK: true},
		{name: "partial_regimen_uses_tokens", in: "Cisplatin, Vincristine", wantTokens: "C001", want: "C001", wantOK: true},
		{name: "hyphenated_combo", in: "Etoposide-Cisplatin", wantCombo: "C123", wantTokens: "C002,C001", want: "C123", wantOK: true},
		{name: "token_codes_deduplicated", in: "Cisplatin + CISPLATIN regimen", wantTokens: "C001", want: "C001", wantOK: true},
		{name: "unknown", in: "Vincristine", wantOK: false},
		{name: "empty", in: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := m.Match(tt.in)
			assert.Equal(t, tt.wantCombo, res.ComboID())
			assert.Equal(t, tt.wantTokens, res.TokenIDs())
			got, ok := res.Resolved()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewMatcher_FirstOccurrenceWins(t *testing.T) {
	m := NewMatcher([]Entry{
		{Name: "Cisplatin", Code: "C001"},
		{Name: "cisplatin therapy", Code: "C999"},
		{Name: "A + B", Code: "X1"},
		{Name: "B/A", Code: "X2"},
		{Name: "Orphan", Code: ""},
	})
	combos, tokens := m.Stats()
	assert.Equal(t, 1, combos)
	assert.Equal(t, 1, tokens)

	got, _ := m.Match("Cisplatin").Resolved()
	assert.Equal(t, "C001", got)
	got, _ = m.Match("b & a").Resolved()
	assert.Equal(t, "X1", got)
}

func TestNewMatcherFromTable(t *testing.T) {
	t.Run("missing_code_column", func(t *testing.T) {
		tbl := &domain.Table{Source: "civic_therapies.csv", Columns: []string{"therapy"}}
		_, err := NewMatcherFromTable(tbl, "", "")
		var colErr *domain.MissingColumnError
		require.ErrorAs(t, err, &colErr)
		assert.Equal(t, "ncitId", colErr.Column)
		assert.Equal(t, "civic_therapies.csv", colErr.File)
	})

	t.Run("builds_tables", func(t *testing.T) {
		tbl := &domain.Table{
			Source:  "ref.csv",
			Columns: []string{"therapy", "ncitId"},
			Rows: []domain.RawRecord{
				{"therapy": "Cisplatin", "ncitId": "C376"},
				{"therapy": "Etoposide", "ncitId": "C491"},
			},
		}
		m, err := NewMatcherFromTable(tbl, "", "")
		require.NoError(t, err)
		got, ok := m.Match("Etoposide + Cisplatin").Resolved()
		require.True(t, ok)
		assert.Equal(t, "C491,C376", got)
	})
}

func TestMapTable(t *testing.T) {
	m := scenarioMatcher()

	t.Run("renames_therapies", func(t *testing.T) {
		tbl := &domain.Table{
			Source:  "big.tsv",
			Columns: []string{"gene_symbol", "therapies"},
			Rows: []domain.RawRecord{
				{"gene_symbol": "BRAF", "therapies": "Etoposide, Cisplatin"},
				{"gene_symbol": "KRAS", "therapies": "Vincristine"},
			},
		}
		require.NoError(t, MapTable(tbl, m))
		assert.Equal(t, []string{"gene_symbol", "therapy", "ncit_combo_id", "ncit_token_ids", "ncit_ids"}, tbl.Columns)
		assert.Equal(t, "C123", tbl.Rows[0]["ncit_ids"])
		assert.Equal(t, "C002,C001", tbl.Rows[0]["ncit_token_ids"])
		assert.Equal(t, "", tbl.Rows[1]["ncit_ids"])
	})

	t.Run("missing_therapy_column", func(t *testing.T) {
		tbl := &domain.Table{Source: "big.tsv", Columns: []string{"gene_symbol"}}
		err := MapTable(tbl, m)
		var colErr *domain.MissingColumnError
		require.ErrorAs(t, err, &colErr)
		assert.Equal(t, "therapy", colErr.Column)
	})
}

func TestMapRecords(t *testing.T) {
	recs := []domain.JoinedRecord{
		{Therapy: "Cisplatin + Etoposide"},
		{Therapy: ""},
	}
	n := MapRecords(recs, scenarioMatcher())
	assert.Equal(t, 1, n)
	assert.Equal(t, "C123", recs[0].NCITIDs)
	assert.Empty(t, recs[1].NCITIDs)
}
