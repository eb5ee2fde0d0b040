package bulk

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nodesTSV = "id:ID\tname:string\tcategory:LABEL\tequivalent_identifiers:string[]\tinformation_content:float\n" +
	"NCBIGene:672\tBRCA1\tbiolink:Genebiolink:NamedThing\tNCBIGene:672HGNC:1100\t85.2\n" +
	"DOID:1909\tmelanoma\t\t\t\n" +
	"CAID:CA123\tshort row\n"

const edgesTSV = "subject:START_ID\tpredicate:TYPE\tobject:END_ID\tprimary_knowledge_source:string\tpublications:string[]\n" +
	"NCBIGene:672\tbiolink:gene_associated_with_condition\tDOID:1909\tinfores:cbioportal\tPMID:1PMID:22\n" +
	"CAID:CA123\t\tDOID:1909\tinfores:civic\t\n"

func TestConverter_Nodes(t *testing.T) {
	var out bytes.Buffer
	n, err := NewNeptuneConverter(KindNodes, 0, slog.New(slog.DiscardHandler)).Convert(strings.NewReader(nodesTSV), &out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, ":ID,name:String,:LABEL,equivalent_identifiers:String,NCBITaxon:String,information_content:Double,description:String", lines[0])
	assert.Equal(t, "NCBIGene:672,BRCA1,biolink:Gene;biolink:NamedThing,NCBIGene:672;HGNC:1100,,85.2,", lines[1])
	assert.Equal(t, "DOID:1909,melanoma,Node,,,,", lines[2])
	assert.Equal(t, "CAID:CA123,short row,Node,,,,", lines[3])
}

func TestConverter_Edges(t *testing.T) {
	var out bytes.Buffer
	n, err := NewNeptuneConverter(KindEdges, 0, nil).Convert(strings.NewReader(edgesTSV), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], ":START_ID,:END_ID,:TYPE,primary_knowledge_source:String"))
	assert.Equal(t, "NCBIGene:672,DOID:1909,biolink:gene_associated_with_condition,infores:cbioportal,,,,,,,PMID:1;PMID:22,,,", lines[1])
	assert.Equal(t, "CAID:CA123,DOID:1909,RELATED_TO,infores:civic,,,,,,,,,,", lines[2])
}

func TestConverter_Limit(t *testing.T) {
	var out bytes.Buffer
	n, err := NewNeptuneConverter(KindNodes, 1, nil).Convert(strings.NewReader(nodesTSV), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), 2)
}

func TestConverter_EmptyInput(t *testing.T) {
	var out bytes.Buffer
	_, err := NewNeptuneConverter(KindNodes, 0, nil).Convert(strings.NewReader(""), &out)
	assert.Error(t, err)
}

func TestHeaderFixer(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "goldenKG_edges.csv")
	outPath := filepath.Join(dir, "goldenKG_edges_fixed.csv")
	require.NoError(t, os.WriteFile(in, []byte(
		"subject:START_ID,predicate:TYPE,object:END_ID,primary_knowledge_source:string,extra\n"+
			"NCBIGene:672,biolink:related_to,DOID:1909,infores:civic,x\n"), 0o600))

	n, err := NewHeaderFixer(KindEdges, nil).ConvertFile(in, outPath)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t,
		":START_ID,:TYPE,:END_ID,primary_knowledge_source:string,original_subject:string,original_object:string\n"+
			"NCBIGene:672,biolink:related_to,DOID:1909,infores:civic,,\n", string(got))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("edges")
	require.NoError(t, err)
	assert.Equal(t, KindEdges, k)

	_, err = ParseKind("graphs")
	assert.Error(t, err)
}
