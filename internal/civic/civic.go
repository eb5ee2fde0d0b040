// Package civic extracts normalised (gene, variant, disease, therapy)
// associations from the CIViC monthly summary dumps.
package civic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/expand"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/identifier"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/listfield"
)

// Source column names.
const (
	colProfileID  = "molecular_profile_id"
	colDisease    = "disease"
	colDOID       = "doid"
	colTherapies  = "therapies"
	colVariantIDs = "variant_ids"
	colVariantID  = "variant_id"
	colVariant    = "variant"
	colFeatureID  = "feature_id"
	colName       = "name"
	colEntrezID   = "entrez_id"
)

// alleleColumns are the spellings of the allele registry column across dump versions.
var alleleColumns = []string{"allele_registry_id", "allele_registry_ids", "allele_registry"}

// TableReader loads a delimited source, failing when required columns are missing.
type TableReader interface {
	ReadColumns(ctx context.Context, path string, required ...string) (*domain.Table, error)
}

// Inputs names the four CIViC summary files.
type Inputs struct {
	ClinicalEvidence  string
	MolecularProfiles string
	Variants          string
	Features          string
}

// Options controls extraction.
type Options struct {
	// ExplodeTherapies emits one row per therapy listed in the evidence row.
	ExplodeTherapies bool
}

// Service extracts joined CIViC records.
type Service struct {
	reader TableReader
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(reader TableReader, logger *slog.Logger) *Service {
	return &Service{reader: reader, logger: logger.With("component", "civic")}
}

// Extract loads the four summaries, expands molecular profiles into their
// variants, left-joins evidence to variants and genes, and normalises
// disease, allele and gene identifiers. Rows that are identical after
// normalisation are emitted once.
func (s *Service) Extract(ctx context.Context, in Inputs, opts Options) ([]domain.JoinedRecord, error) {
	clinical, err := s.reader.ReadColumns(ctx, in.ClinicalEvidence, colProfileID, colDisease, colDOID, colTherapies)
	if err != nil {
		return nil, fmt.Errorf("load clinical evidence: %w", err)
	}
	profiles, err := s.reader.ReadColumns(ctx, in.MolecularProfiles, colProfileID, colVariantIDs)
	if err != nil {
		return nil, fmt.Errorf("load molecular profiles: %w", err)
	}
	variants, err := s.reader.ReadColumns(ctx, in.Variants, colVariantID, colVariant, colFeatureID, colEntrezID)
	if err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}
	features, err := s.reader.ReadColumns(ctx, in.Features, colFeatureID, colName)
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}

	pvs, err := expand.ProfileVariants(profiles, colProfileID, colVariantIDs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("expanded molecular profiles", "profiles", len(profiles.Rows), "pairs", len(pvs))

	j := newJoiner(pvs, variants, features)
	if j.alleleCol == "" {
		s.logger.Warn("no allele registry column in variants file", "file", in.Variants, "candidates", alleleColumns)
	}

	var out []domain.JoinedRecord
	seen := make(map[domain.JoinedRecord]struct{})
	for _, row := range clinical.Rows {
		for _, rec := range j.join(row, opts) {
			if _, dup := seen[rec]; dup {
				continue
			}
			seen[rec] = struct{}{}
			out = append(out, rec)
		}
	}
	s.logger.Info("civic extraction complete", "evidence_rows", len(clinical.Rows), "records", len(out))
	return out, nil
}

// joiner holds the lookup indexes for the left joins.
type joiner struct {
	variantsByProfile map[string][]int64
	variantRows       map[int64]domain.RawRecord
	featureRows       map[string]domain.RawRecord
	alleleCol         string
	featureEntrezCol  string
}

func newJoiner(pvs []expand.ProfileVariant, variants, features *domain.Table) *joiner {
	j := &joiner{
		variantsByProfile: make(map[string][]int64),
		variantRows:       make(map[int64]domain.RawRecord, len(variants.Rows)),
		featureRows:       make(map[string]domain.RawRecord, len(features.Rows)),
	}
	for _, pv := range pvs {
		j.variantsByProfile[pv.ProfileID] = append(j.variantsByProfile[pv.ProfileID], pv.VariantID)
	}
	for _, r := range variants.Rows {
		id, ok := expand.VariantID(r[colVariantID])
		if !ok {
			continue
		}
		if _, dup := j.variantRows[id]; !dup {
			j.variantRows[id] = r
		}
	}
	for _, r := range features.Rows {
		key := expand.NormalizeKey(r[colFeatureID])
		if _, dup := j.featureRows[key]; key != "" && !dup {
			j.featureRows[key] = r
		}
	}
	j.alleleCol, _ = variants.FirstColumn(alleleColumns...)
	j.featureEntrezCol, _ = features.FirstColumn(colEntrezID)
	return j
}

// join expands one evidence row. A profile without variants, or a variant
// missing from the variants table, still yields a row with empty variant
// fields.
func (j *joiner) join(evidence domain.RawRecord, opts Options) []domain.JoinedRecord {
	base := domain.JoinedRecord{
		Disease: strings.TrimSpace(evidence[colDisease]),
		DOID:    identifier.String(identifier.DOID, evidence[colDOID]),
	}

	var partial []domain.JoinedRecord
	ids := j.variantsByProfile[expand.NormalizeKey(evidence[colProfileID])]
	if len(ids) == 0 {
		partial = append(partial, base)
	}
	for _, id := range ids {
		rec := base
		if v, ok := j.variantRows[id]; ok {
			rec.Variant = strings.TrimSpace(v[colVariant])
			if j.alleleCol != "" {
				rec.AlleleRegistryID = identifier.String(identifier.Allele, v[j.alleleCol])
			}
			feature := j.featureRows[expand.NormalizeKey(v[colFeatureID])]
			rec.GeneSymbol = strings.TrimSpace(feature[colName])

			// A blank variant entrez_id falls back to the feature's.
			entrez := strings.TrimSpace(v[colEntrezID])
			if entrez == "" && j.featureEntrezCol != "" {
				entrez = feature[j.featureEntrezCol]
			}
			rec.NCBIGeneID = identifier.String(identifier.NCBIGene, entrez)
		}
		partial = append(partial, rec)
	}

	therapies := []string{strings.TrimSpace(evidence[colTherapies])}
	if opts.ExplodeTherapies {
		therapies = listfield.Parse(evidence[colTherapies])
		if len(therapies) == 0 {
			therapies = []string{""}
		}
	}

	out := make([]domain.JoinedRecord, 0, len(partial)*len(therapies))
	for _, rec := range partial {
		for _, th := range therapies {
			rec.Therapy = th
			out = append(out, rec)
		}
	}
	return out
}
