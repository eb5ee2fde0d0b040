package domain

// RawRecord is one untyped source row keyed by column name.
// Absent and null cells are represented by the empty string.
type RawRecord map[string]string

// Get returns the cell value for column, or "" when absent.
func (r RawRecord) Get(column string) string {
	return r[column]
}

// Table is a materialised source table with its column order preserved.
type Table struct {
	Source  string
	Columns []string
	Rows    []RawRecord
}

// HasColumn reports whether the table carries column.
func (t *Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// RequireColumns returns a MissingColumnError for the first absent column.
func (t *Table) RequireColumns(columns ...string) error {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return ErrMissingColumn(c, t.Source)
		}
	}
	return nil
}

// FirstColumn returns the first of candidates present in the table.
func (t *Table) FirstColumn(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if t.HasColumn(c) {
			return c, true
		}
	}
	return "", false
}

// RenameColumn renames from to to in the header and every row.
func (t *Table) RenameColumn(from, to string) {
	for i, c := range t.Columns {
		if c == from {
			t.Columns[i] = to
		}
	}
	for _, r := range t.Rows {
		if v, ok := r[from]; ok {
			r[to] = v
			delete(r, from)
		}
	}
}

// AddColumn appends column to the header if it is not present yet.
func (t *Table) AddColumn(column string) {
	if !t.HasColumn(column) {
		t.Columns = append(t.Columns, column)
	}
}

// JoinedRecord is one fully expanded and normalised
// (gene, variant, disease, therapy) association.
type JoinedRecord struct {
	GeneSymbol       string `json:"gene_symbol"`
	Variant          string `json:"variant"`
	AlleleRegistryID string `json:"allele_registry_id"`
	Disease          string `json:"disease"`
	DOID             string `json:"doid"`
	Therapy          string `json:"therapy"`
	NCBIGeneID       string `json:"ncbi_gene_id"`
	NCITComboID      string `json:"ncit_combo_id,omitempty"`
	NCITTokenIDs     string `json:"ncit_token_ids,omitempty"`
	NCITIDs          string `json:"ncit_ids,omitempty"`
}

// JoinedColumns is the output column order for JoinedRecord tables.
var JoinedColumns = []string{
	"gene_symbol", "variant", "allele_registry_id", "disease",
	"doid", "therapy", "ncbi_gene_id",
}

// TherapyColumns are appended when therapy codes have been resolved.
var TherapyColumns = []string{"ncit_combo_id", "ncit_token_ids", "ncit_ids"}

// Record converts the joined record to a RawRecord for tabular output.
func (j JoinedRecord) Record() RawRecord {
	return RawRecord{
		"gene_symbol":        j.GeneSymbol,
		"variant":            j.Variant,
		"allele_registry_id": j.AlleleRegistryID,
		"disease":            j.Disease,
		"doid":               j.DOID,
		"therapy":            j.Therapy,
		"ncbi_gene_id":       j.NCBIGeneID,
		"ncit_combo_id":      j.NCITComboID,
		"ncit_token_ids":     j.NCITTokenIDs,
		"ncit_ids":           j.NCITIDs,
	}
}

// JoinedFromRecord is the inverse of JoinedRecord.Record.
func JoinedFromRecord(r RawRecord) JoinedRecord {
	return JoinedRecord{
		GeneSymbol:       r["gene_symbol"],
		Variant:          r["variant"],
		AlleleRegistryID: r["allele_registry_id"],
		Disease:          r["disease"],
		DOID:             r["doid"],
		Therapy:          r["therapy"],
		NCBIGeneID:       r["ncbi_gene_id"],
		NCITComboID:      r["ncit_combo_id"],
		NCITTokenIDs:     r["ncit_token_ids"],
		NCITIDs:          r["ncit_ids"],
	}
}

// GeneDiseaseRecord is one deduplicated cBioPortal (gene, chromosome, disease) row.
type GeneDiseaseRecord struct {
	EntrezGeneID int64  `json:"entrez_gene_id"`
	GeneSymbol   string `json:"gene_symbol"`
	Chr          string `json:"chr"`
	DOID         string `json:"doid"`
}
