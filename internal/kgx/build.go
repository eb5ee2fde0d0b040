package kgx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/expand"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/tabular"
)

// TableReader loads a delimited file.
type TableReader interface {
	Read(ctx context.Context, path string) (*domain.Table, error)
}

// Sources names the extracted per-source files. Empty paths are skipped.
type Sources struct {
	CIViC      string // joined CIViC TSV
	CBioPortal string // gene/disease JSON
	Variants   string // canonical variants JSON
}

// Builder assembles a graph from extracted source files.
type Builder struct {
	reader TableReader
	logger *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(reader TableReader, logger *slog.Logger) *Builder {
	return &Builder{reader: reader, logger: logger.With("component", "kgx")}
}

// CIViC projects a joined CIViC file into a new graph.
func (b *Builder) CIViC(ctx context.Context, path string) (*Graph, error) {
	t, err := b.reader.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load civic: %w", err)
	}
	recs := make([]domain.JoinedRecord, len(t.Rows))
	for i, r := range t.Rows {
		recs[i] = domain.JoinedFromRecord(r)
	}
	g := NewGraph("civic")
	b.log("civic", FromCIViC(g, recs))
	return g, nil
}

// CBioPortal projects a gene/disease association file into a new graph.
func (b *Builder) CBioPortal(path string) (*Graph, error) {
	var recs []domain.GeneDiseaseRecord
	if err := tabular.ReadJSON(path, &recs); err != nil {
		return nil, fmt.Errorf("load cbioportal: %w", err)
	}
	g := NewGraph("cbioportal")
	b.log("cbioportal", FromCBioPortal(g, recs))
	return g, nil
}

// Variants projects a canonical variants file into a new graph.
func (b *Builder) Variants(path string) (*Graph, error) {
	var vs []expand.CanonicalVariant
	if err := tabular.ReadJSON(path, &vs); err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}
	g := NewGraph("1kg")
	b.log("1kg", FromVariants(g, vs))
	return g, nil
}

// Build projects every configured source and merges the results into one
// graph named id, in the order CIViC, cBioPortal, 1000 Genomes.
func (b *Builder) Build(ctx context.Context, id string, src Sources) (*Graph, error) {
	merged := NewGraph(id)
	if src.CIViC != "" {
		g, err := b.CIViC(ctx, src.CIViC)
		if err != nil {
			return nil, err
		}
		merged.Merge(g)
	}
	if src.CBioPortal != "" {
		g, err := b.CBioPortal(src.CBioPortal)
		if err != nil {
			return nil, err
		}
		merged.Merge(g)
	}
	if src.Variants != "" {
		g, err := b.Variants(src.Variants)
		if err != nil {
			return nil, err
		}
		merged.Merge(g)
	}
	return merged, nil
}

func (b *Builder) log(source string, st Stats) {
	b.logger.Info("source projected", "source", source, "rows", st.Rows, "skipped", st.Skipped, "edges", st.Edges)
}
