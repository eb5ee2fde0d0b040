package cbioportal

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/tabular"
)

// SymbolLookup resolves Entrez gene ids to symbols.
type SymbolLookup interface {
	Symbols(ctx context.Context, ids []string) map[string]string
}

// Service runs the cBioPortal aggregation.
type Service struct {
	genes  SymbolLookup
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(genes SymbolLookup, logger *slog.Logger) *Service {
	return &Service{genes: genes, logger: logger.With("component", "cbioportal")}
}

// LoadStudyMap reads a JSON object mapping study ids to DOIDs.
func LoadStudyMap(path string) (map[string]string, error) {
	var m map[string]string
	if err := tabular.ReadJSON(path, &m); err != nil {
		return nil, fmt.Errorf("load study map: %w", err)
	}
	return m, nil
}

// Aggregate folds every shard matching pattern, then resolves gene symbols
// in one batched lookup.
func (s *Service) Aggregate(ctx context.Context, pattern string, studyMap map[string]string) ([]domain.GeneDiseaseRecord, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, domain.ErrValidation("invalid shard pattern %q: %v", pattern, err)
	}
	if len(files) == 0 {
		return nil, domain.ErrNotFound("no files match %s", pattern)
	}
	sort.Strings(files)

	acc := NewAccumulator()
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		before := acc.Records
		if err := acc.AddFile(f, studyMap); err != nil {
			s.logger.Warn("skipping shard", "file", f, "error", err)
			continue
		}
		s.logger.Debug("shard processed", "file", filepath.Base(f), "records", acc.Records-before)
	}

	if unmapped := acc.UnmappedStudies(); len(unmapped) > 0 {
		s.logger.Warn("studies without a disease mapping", "count", len(unmapped), "studies", unmapped)
	}
	s.logger.Info("shards aggregated",
		"files", acc.Files, "records", acc.Records, "skipped", acc.Skipped, "associations", acc.Len())

	symbols := s.genes.Symbols(ctx, acc.EntrezIDs())
	return acc.Results(symbols), nil
}

// Run aggregates the shards and writes the associations as an indented JSON array.
func (s *Service) Run(ctx context.Context, pattern, studyMapPath, outPath string) (int, error) {
	studyMap, err := LoadStudyMap(studyMapPath)
	if err != nil {
		return 0, err
	}
	recs, err := s.Aggregate(ctx, pattern, studyMap)
	if err != nil {
		return 0, err
	}
	if err := tabular.WriteJSON(outPath, recs); err != nil {
		return 0, err
	}
	return len(recs), nil
}
