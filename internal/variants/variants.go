// Package variants flattens annotated 1000 Genomes variants into one
// canonical record per HGVS genomic notation.
package variants

import (
	"fmt"
	"log/slog"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/expand"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/tabular"
)

// Extractor reads annotation exports and writes canonical variants.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger.With("component", "variants")}
}

// Extract decodes the JSON array at path and returns the deduplicated
// canonical variants in input order.
func (e *Extractor) Extract(path string) ([]expand.CanonicalVariant, error) {
	var recs []expand.VariantRecord
	if err := tabular.ReadJSON(path, &recs); err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}
	out, dropped := expand.Dedupe(recs)
	e.logger.Info("variants extracted",
		"records", len(recs), "variants", len(out), "without_hgvsg", dropped)
	return out, nil
}

// Run extracts in and writes the canonical variants to out.
func (e *Extractor) Run(in, out string) (int, error) {
	vs, err := e.Extract(in)
	if err != nil {
		return 0, err
	}
	if err := tabular.WriteJSON(out, vs); err != nil {
		return 0, err
	}
	return len(vs), nil
}
