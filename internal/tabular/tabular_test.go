package tabular

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
)

func newTestReader(t *testing.T) *Reader {
	t.Helper()
	r, err := OpenReader(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestDelimiter(t *testing.T) {
	assert.Equal(t, '\t', Delimiter("a/b/Clinical.TSV"))
	assert.Equal(t, '\t', Delimiter("x.txt"))
	assert.Equal(t, ',', Delimiter("ref.csv"))
	assert.Equal(t, ',', Delimiter("noext"))
}

func TestReader_Read(t *testing.T) {
	r := newTestReader(t)
	p := writeFile(t, "mps.tsv", "molecular_profile_id\tvariant_ids\tname\n"+
		"1\t[12, 45]\tBRAF V600E\n"+
		"2\t\t00123\n")

	tbl, err := r.Read(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p, tbl.Source)
	assert.Equal(t, []string{"molecular_profile_id", "variant_ids", "name"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "[12, 45]", tbl.Rows[0]["variant_ids"])
	assert.Equal(t, "", tbl.Rows[1]["variant_ids"])
	assert.Equal(t, "00123", tbl.Rows[1]["name"])
}

func TestReader_ReadColumns(t *testing.T) {
	r := newTestReader(t)
	p := writeFile(t, "civic_therapies.csv", "therapy,code\nCisplatin,C376\n")

	_, err := r.ReadColumns(context.Background(), p, "therapy", "ncitId")
	var colErr *domain.MissingColumnError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, "ncitId", colErr.Column)
	assert.Equal(t, p, colErr.File)

	tbl, err := r.ReadColumns(context.Background(), p, "therapy")
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)
}

func TestReader_Select(t *testing.T) {
	r := newTestReader(t)
	p := writeFile(t, "ref.csv", "ncitId,therapy,synonyms\nC376,Cisplatin,CDDP\n")

	tbl, err := r.Select(context.Background(), p, "therapy", "ncitId")
	require.NoError(t, err)
	assert.Equal(t, []string{"therapy", "ncitId"}, tbl.Columns)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, domain.RawRecord{"therapy": "Cisplatin", "ncitId": "C376"}, tbl.Rows[0])

	_, err = r.Select(context.Background(), p, "therapy", "code")
	var colErr *domain.MissingColumnError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, "code", colErr.Column)
}

func TestReader_MissingFile(t *testing.T) {
	r := newTestReader(t)
	_, err := r.Read(context.Background(), filepath.Join(t.TempDir(), "absent.tsv"))
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	tbl := &domain.Table{
		Columns: []string{"gene_symbol", "therapy"},
		Rows: []domain.RawRecord{
			{"gene_symbol": "BRAF", "therapy": "Dabrafenib, Trametinib"},
			{"gene_symbol": "KRAS"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tbl, '\t'))
	assert.Equal(t, "gene_symbol\ttherapy\nBRAF\tDabrafenib, Trametinib\nKRAS\t\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, tbl, ','))
	assert.Equal(t, "gene_symbol,therapy\nBRAF,\"Dabrafenib, Trametinib\"\nKRAS,\n", buf.String())
}

func TestWriteFileRoundTrip(t *testing.T) {
	r := newTestReader(t)
	p := filepath.Join(t.TempDir(), "nested", "out.tsv")
	recs := []domain.JoinedRecord{{GeneSymbol: "BRAF", Variant: "V600E", DOID: "DOID:1909", NCITIDs: "C123"}}

	require.NoError(t, WriteFile(p, JoinedTable("out", recs, true)))

	tbl, err := r.Read(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, append(append([]string{}, domain.JoinedColumns...), domain.TherapyColumns...), tbl.Columns)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, recs[0], domain.JoinedFromRecord(tbl.Rows[0]))
}
