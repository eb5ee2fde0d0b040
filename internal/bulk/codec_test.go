package bulk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{name: "multiple", values: []string{"biolink:Gene", "biolink:NamedThing"}, want: "biolink:Gene;biolink:NamedThing"},
		{name: "single", values: []string{"PMID:1"}, want: "PMID:1"},
		{name: "empty", values: []string{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.values)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.values, Decode(got))
		})
	}

	t.Run("empty_values_skipped", func(t *testing.T) {
		assert.Equal(t, "a;b", Encode([]string{"a", "", "b"}))
	})
}

func TestSplitLabels(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "concatenated", in: "biolink:Genebiolink:NamedThingbiolink:BiologicalEntity", want: "biolink:Gene;biolink:NamedThing;biolink:BiologicalEntity"},
		{name: "already_delimited", in: "biolink:Disease;biolink:NamedThing", want: "biolink:Disease;biolink:NamedThing"},
		{name: "empty_gets_default", in: "", want: "Node"},
		{name: "no_biolink_gets_default", in: "Gene", want: "Node"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLabels(tt.in))
		})
	}
}

func TestSplitIdentifiers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "concatenated", in: "MONDO:0005148DOID:9352UMLS:C0011860", want: "MONDO:0005148;DOID:9352;UMLS:C0011860"},
		{name: "single", in: "NCBIGene:672", want: "NCBIGene:672"},
		{name: "mixed_case_prefix", in: "UniProtKB:P38398ENSEMBL:ENSG00000012048", want: "UniProtKB:P38398;ENSEMBL:ENSG00000012048"},
		{name: "mixed_case_after_value", in: "HGNC:1100NCBIGene:672", want: "HGNC:1100;NCBIGene:672"},
		{name: "already_encoded", in: "DBSNP:rs1;DBSNP:rs2", want: "DBSNP:rs1;DBSNP:rs2"},
		{name: "encoded_and_concatenated", in: "MONDO:1DOID:2;UMLS:C3", want: "MONDO:1;DOID:2;UMLS:C3"},
		{name: "prefix_with_punctuation", in: "KEGG.COMPOUND:C00031CHEBI:17234", want: "KEGG.COMPOUND:C00031;CHEBI:17234"},
		{name: "adjacent_short_prefixes", in: "HP:0001HGNC:5", want: "HP:0001;HGNC:5"},
		{name: "whitespace_breaks_first_value", in: "HGNC:1100 HGNC:1101", want: "HGNC:1101"},
		{name: "no_match_returns_input", in: "not an id", want: "not an id"},
		{name: "empty", in: "", want: ""},
		{name: "prefix_without_value", in: "DOID:", want: "DOID:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitIdentifiers(tt.in))
		})
	}
}

func TestSplitIdentifiers_ReencodeIsStable(t *testing.T) {
	values := []string{"DBSNP:rs1", "DBSNP:rs2", "NCBIGene:672", "UniProtKB:P38398"}
	field := Encode(values)

	once := SplitIdentifiers(field)
	assert.Equal(t, field, once)
	assert.Equal(t, once, SplitIdentifiers(once))
	assert.Equal(t, values, Decode(once))
}

func TestSplitPublications(t *testing.T) {
	assert.Equal(t, "PMID:123;PMID:456", SplitPublications("PMID:123PMID:456"))
	assert.Equal(t, "PMID:1;PMID:2", SplitPublications("PMID:1;PMID:2"))
	assert.Equal(t, "doi:10.1/x", SplitPublications("doi:10.1/x"))
	assert.Equal(t, "", SplitPublications(""))
}
