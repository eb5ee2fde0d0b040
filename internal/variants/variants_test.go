package variants

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const annotated = `[
  {
    "id": "rs80357906",
    "seq_region_name": "17",
    "start": 43057063,
    "allele_string": "G/A",
    "frequencies": "AFR=0.01;EUR_AF=0.002",
    "transcript_consequences": [
      {"transcript_id": "ENST1"},
      {"transcript_id": "ENST2", "gene_id": 672, "gene_symbol": "BRCA1", "hgvsg": "17:g.43057063G>A"}
    ]
  },
  {
    "id": "rs80357906-dup",
    "seq_region_name": "17",
    "start": "43057063",
    "transcript_consequences": [{"hgvsg": "17:g.43057063G>A"}]
  },
  {
    "id": "rs1",
    "seq_region_name": "X",
    "start": 1,
    "transcript_consequences": []
  }
]`

func TestExtractor_Run(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "annotated.json")
	out := filepath.Join(dir, "out", "variants.json")
	require.NoError(t, os.WriteFile(in, []byte(annotated), 0o644))

	e := NewExtractor(slog.New(slog.DiscardHandler))
	vs, err := e.Extract(in)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "17:g.43057063G>A", vs[0].VariantID)
	assert.Equal(t, "rs80357906", vs[0].Name)
	assert.Equal(t, "43057063", vs[0].Position)
	assert.Equal(t, "NCBIGene:672", vs[0].GeneID)
	assert.Equal(t, "BRCA1", vs[0].GeneSymbol)

	n, err := e.Run(in, out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	for _, code := range []string{`"AFR": 0.01`, `"AMR": null`, `"EAS": null`, `"EUR": 0.002`, `"SAS": null`} {
		assert.Contains(t, string(data), code)
	}
}

func TestExtractor_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"id": "rs1"}`), 0o644))

	tests := []struct {
		name string
		path string
	}{
		{name: "missing_file", path: filepath.Join(dir, "absent.json")},
		{name: "not_an_array", path: bad},
	}
	e := NewExtractor(slog.New(slog.DiscardHandler))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Extract(tt.path)
			require.Error(t, err)
		})
	}
}
