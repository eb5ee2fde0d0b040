package expand

import (
	"strings"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/identifier"
)

// TranscriptConsequence is one per-transcript annotation of a variant.
type TranscriptConsequence struct {
	TranscriptID string            `json:"transcript_id"`
	GeneID       domain.FlexString `json:"gene_id"`
	GeneSymbol   string            `json:"gene_symbol"`
	HGVSg        string            `json:"hgvsg"`
	HGVSc        string            `json:"hgvsc"`
	HGVSp        string            `json:"hgvsp"`
}

// VariantRecord is one annotated variant as exported by the 1000 Genomes
// annotation step.
type VariantRecord struct {
	ID                     string                  `json:"id"`
	Chromosome             domain.FlexString       `json:"seq_region_name"`
	Start                  domain.FlexString       `json:"start"`
	AlleleString           string                  `json:"allele_string"`
	Frequencies            string                  `json:"frequencies"`
	TranscriptConsequences []TranscriptConsequence `json:"transcript_consequences"`
}

// CanonicalVariant is the flattened (variant, gene) view of a VariantRecord.
type CanonicalVariant struct {
	VariantID    string      `json:"variant_id"`
	Name         string      `json:"name"`
	Chromosome   string      `json:"chr"`
	Position     string      `json:"position"`
	AlleleString string      `json:"allele_string"`
	GeneID       string      `json:"gene_id"`
	GeneSymbol   string      `json:"gene_symbol"`
	Populations  Populations `json:"populations"`
}

// Consequences selects the canonical identity of rec. The variant id is the
// HGVS g. notation of the first consequence that has one; the gene is taken
// from the first consequence naming a gene. ok is false when no consequence
// carries a usable HGVS g. notation.
func Consequences(rec VariantRecord) (CanonicalVariant, bool) {
	var hgvsg string
	for _, tc := range rec.TranscriptConsequences {
		if s := strings.TrimSpace(tc.HGVSg); s != "" {
			hgvsg = s
			break
		}
	}
	if hgvsg == "" {
		return CanonicalVariant{}, false
	}

	cv := CanonicalVariant{
		VariantID:    hgvsg,
		Name:         strings.TrimSpace(rec.ID),
		Chromosome:   strings.TrimSpace(rec.Chromosome.String()),
		Position:     strings.TrimSpace(rec.Start.String()),
		AlleleString: rec.AlleleString,
		Populations:  ParsePopulations(rec.Frequencies),
	}
	for _, tc := range rec.TranscriptConsequences {
		gene := strings.TrimSpace(tc.GeneID.String())
		if gene == "" {
			continue
		}
		if id, ok := identifier.NCBIGene(gene); ok {
			gene = id.String()
		}
		cv.GeneID = gene
		cv.GeneSymbol = strings.TrimSpace(tc.GeneSymbol)
		break
	}
	return cv, true
}

// Dedupe expands every record and keeps the first canonical variant per id.
// It returns the kept variants and how many records had no usable notation.
func Dedupe(recs []VariantRecord) ([]CanonicalVariant, int) {
	seen := make(map[string]struct{}, len(recs))
	out := make([]CanonicalVariant, 0, len(recs))
	dropped := 0
	for _, rec := range recs {
		cv, ok := Consequences(rec)
		if !ok {
			dropped++
			continue
		}
		if _, dup := seen[cv.VariantID]; dup {
			continue
		}
		seen[cv.VariantID] = struct{}{}
		out = append(out, cv)
	}
	return out, dropped
}
