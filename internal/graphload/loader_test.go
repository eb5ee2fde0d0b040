package graphload

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/kgx"
)

type batch struct {
	cypher string
	rows   []map[string]any
}

type fakeWriter struct {
	batches   []batch
	schema    int
	failAfter int // fail on this batch number (1-based); 0 never fails
}

func (f *fakeWriter) EnsureSchema(context.Context) { f.schema++ }

func (f *fakeWriter) WriteBatch(_ context.Context, cypher string, rows []map[string]any) error {
	if f.failAfter > 0 && len(f.batches)+1 == f.failAfter {
		return errors.New("connection reset")
	}
	f.batches = append(f.batches, batch{cypher: cypher, rows: rows})
	return nil
}

func sampleNodes() []kgx.Node {
	return []kgx.Node{
		{ID: "NCBIGene:672", Name: "BRCA1", Category: []string{kgx.CategoryGene, kgx.CategoryNamedThing}},
		{ID: "NCBIGene:673", Name: "BRAF", Category: []string{kgx.CategoryGene, kgx.CategoryNamedThing}},
		{ID: "DOID:1612", Name: "breast cancer", Category: []string{kgx.CategoryDisease}},
	}
}

func sampleEdges() []kgx.Edge {
	return []kgx.Edge{
		{Subject: "NCBIGene:672", Predicate: kgx.PredicateGeneAssociatedWith, Object: "DOID:1612", PrimaryKnowledgeSource: kgx.SourceCBioPortal},
		{Subject: "NCBIGene:673", Predicate: "biolink:treats; DROP", Object: "DOID:1612", PrimaryKnowledgeSource: kgx.SourceCIViC},
	}
}

func TestLoader_Load(t *testing.T) {
	w := &fakeWriter{}
	l := NewLoader(w, 1, 0, slog.New(slog.DiscardHandler))

	st, err := l.Load(context.Background(), sampleNodes(), sampleEdges())
	require.NoError(t, err)
	assert.Equal(t, Stats{Nodes: 3, Edges: 2, Batches: 5}, st)
	assert.Equal(t, 1, w.schema)

	require.Len(t, w.batches, 5)
	assert.Contains(t, w.batches[0].cypher, "SET n += r.props, n:`Disease`")
	assert.Contains(t, w.batches[1].cypher, "n:`Gene`, n:`NamedThing`")
	assert.Equal(t, "NCBIGene:672", w.batches[1].rows[0]["id"])
	assert.Equal(t, "NCBIGene:673", w.batches[2].rows[0]["id"])

	assert.Contains(t, w.batches[3].cypher, "MERGE (a)-[e:`gene_associated_with_condition` {primary_knowledge_source: r.source}]->(b)")
	assert.Contains(t, w.batches[4].cypher, "[e:`treatsDROP`")
}

func TestLoader_Batching(t *testing.T) {
	w := &fakeWriter{}
	l := NewLoader(w, 2, 1000, slog.New(slog.DiscardHandler))

	nodes := make([]kgx.Node, 5)
	for i := range nodes {
		nodes[i] = kgx.Node{ID: string(rune('A' + i)), Category: []string{kgx.CategoryGene}}
	}
	st, err := l.Load(context.Background(), nodes, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Batches)
	assert.Len(t, w.batches[2].rows, 1)
}

func TestLoader_Failure(t *testing.T) {
	w := &fakeWriter{failAfter: 2}
	l := NewLoader(w, 10, 0, slog.New(slog.DiscardHandler))

	st, err := l.Load(context.Background(), sampleNodes(), sampleEdges())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load nodes Gene:NamedThing: connection reset")
	assert.Equal(t, 1, st.Nodes)
}

func TestCompact(t *testing.T) {
	ic := 1.5
	got := compact(map[string]any{
		"name":         "",
		"category":     []string{},
		"taxon":        "NCBITaxon:9606",
		"ic":           &ic,
		"missing_ic":   (*float64)(nil),
		"publications": []string{"PMID:1"},
	})
	assert.Equal(t, map[string]any{
		"taxon":        "NCBITaxon:9606",
		"ic":           1.5,
		"publications": []string{"PMID:1"},
	}, got)
}

func TestLabelsAndRelType(t *testing.T) {
	assert.Equal(t, []string{"Gene", "NamedThing"}, labels([]string{"biolink:NamedThing", "biolink:Gene", "biolink:Gene"}))
	assert.Empty(t, labels([]string{"biolink:"}))
	assert.Equal(t, "is_sequence_variant_of", relType(kgx.PredicateIsSequenceVariantOf))
	assert.Equal(t, "related_to", relType(""))
}

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{URI: "neo4j://localhost:7687"}.Enabled())

	_, err := NewClient(context.Background(), Config{}, slog.New(slog.DiscardHandler))
	require.Error(t, err)
}
