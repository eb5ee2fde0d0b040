package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/bulk"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/cbioportal"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/civic"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/config"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/graphload"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/kgx"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/storage"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/tabular"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/therapy"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/variants"
)

// Standard stage names.
const (
	StageCIViC         = "civic"
	StageTherapy       = "therapy"
	StageCBioPortal    = "cbioportal"
	StageVariants      = "1kg"
	StageKGXCIViC      = "kgx-civic"
	StageKGXCBioPortal = "kgx-cbioportal"
	StageKGXVariants   = "kgx-1kg"
	StageExport        = "export"
	StageBulkNodes     = "bulk-nodes"
	StageBulkEdges     = "bulk-edges"
	StagePublish       = "publish"
	StageLoad          = "load"
)

// Layout names the files a standard run writes under its output directory.
type Layout struct {
	CIViC        string // joined CIViC TSV
	CIViCTherapy string // joined CIViC TSV with NCIT columns
	CBioPortal   string // gene/disease JSON
	Variants     string // canonical variants JSON
	GraphDir     string // KGX and neo4j-admin artifacts
	NeptuneNodes string
	NeptuneEdges string
}

// NewLayout returns the layout for graphID under dir.
func NewLayout(dir, graphID string) Layout {
	extracted := filepath.Join(dir, "extracted")
	neptune := filepath.Join(dir, "neptune")
	return Layout{
		CIViC:        filepath.Join(extracted, "civic.tsv"),
		CIViCTherapy: filepath.Join(extracted, "civic_therapy.tsv"),
		CBioPortal:   filepath.Join(extracted, "cbioportal.json"),
		Variants:     filepath.Join(extracted, "1kg_variants.json"),
		GraphDir:     filepath.Join(dir, "kgx"),
		NeptuneNodes: filepath.Join(neptune, graphID+"_nodes.csv"),
		NeptuneEdges: filepath.Join(neptune, graphID+"_edges.csv"),
	}
}

// TableReader loads delimited files.
type TableReader interface {
	Read(ctx context.Context, path string) (*domain.Table, error)
	ReadColumns(ctx context.Context, path string, required ...string) (*domain.Table, error)
	Select(ctx context.Context, path string, columns ...string) (*domain.Table, error)
}

// GraphLoader writes a graph into a graph database.
type GraphLoader interface {
	Load(ctx context.Context, nodes []kgx.Node, edges []kgx.Edge) (graphload.Stats, error)
}

// Standard builds the stage graph of a full ingestion run.
type Standard struct {
	plan      config.PipelineFile
	layout    Layout
	reader    TableReader
	genes     cbioportal.SymbolLookup
	publisher storage.Publisher // nil: no publish stage
	loader    GraphLoader       // nil: no load stage
	logger    *slog.Logger

	mu        sync.Mutex
	graphs    map[string]*kgx.Graph
	merged    *kgx.Graph
	artifacts kgx.Artifacts
}

// NewStandard creates the standard stage graph for plan. publisher and
// loader are optional.
func NewStandard(plan config.PipelineFile, reader TableReader, genes cbioportal.SymbolLookup,
	publisher storage.Publisher, loader GraphLoader, logger *slog.Logger,
) *Standard {
	return &Standard{
		plan:      plan,
		layout:    NewLayout(plan.OutputDir, plan.GraphID),
		reader:    reader,
		genes:     genes,
		publisher: publisher,
		loader:    loader,
		logger:    logger.With("component", "pipeline"),
		graphs:    make(map[string]*kgx.Graph),
	}
}

// Layout returns where the run writes its files.
func (s *Standard) Layout() Layout { return s.layout }

// Artifacts returns the files written by the export stage.
func (s *Standard) Artifacts() kgx.Artifacts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artifacts
}

// Stages returns the stages for the enabled sources. Publish is scheduled
// only with a publisher and load only with a loader.
func (s *Standard) Stages() []domain.Stage {
	src := s.plan.Sources
	var stages []domain.Stage
	var graphStages []string

	if src.CIViC.Enabled {
		stages = append(stages, domain.Stage{Name: StageCIViC, Run: s.extractCIViC})
		kgxDep := StageCIViC
		if src.CIViC.TherapyReference != "" {
			stages = append(stages, domain.Stage{Name: StageTherapy, DependsOn: []string{StageCIViC}, Run: s.mapTherapies})
			kgxDep = StageTherapy
		}
		stages = append(stages, domain.Stage{Name: StageKGXCIViC, DependsOn: []string{kgxDep}, Run: s.projectCIViC})
		graphStages = append(graphStages, StageKGXCIViC)
	}
	if src.CBioPortal.Enabled {
		stages = append(stages,
			domain.Stage{Name: StageCBioPortal, Run: s.aggregateCBioPortal},
			domain.Stage{Name: StageKGXCBioPortal, DependsOn: []string{StageCBioPortal}, Run: s.projectCBioPortal},
		)
		graphStages = append(graphStages, StageKGXCBioPortal)
	}
	if src.Variants.Enabled {
		stages = append(stages,
			domain.Stage{Name: StageVariants, Run: s.extractVariants},
			domain.Stage{Name: StageKGXVariants, DependsOn: []string{StageVariants}, Run: s.projectVariants},
		)
		graphStages = append(graphStages, StageKGXVariants)
	}

	stages = append(stages,
		domain.Stage{Name: StageExport, DependsOn: graphStages, Run: s.export},
		domain.Stage{Name: StageBulkNodes, DependsOn: []string{StageExport}, Run: s.convert(bulk.KindNodes)},
		domain.Stage{Name: StageBulkEdges, DependsOn: []string{StageExport}, Run: s.convert(bulk.KindEdges)},
	)
	last := []string{StageBulkNodes, StageBulkEdges}
	if s.publisher != nil {
		stages = append(stages, domain.Stage{Name: StagePublish, DependsOn: last, Run: s.publish})
		last = []string{StagePublish}
	}
	if s.loader != nil {
		stages = append(stages, domain.Stage{Name: StageLoad, DependsOn: last, Run: s.load})
	}
	return stages
}

func (s *Standard) extractCIViC(ctx context.Context) (int, error) {
	c := s.plan.Sources.CIViC
	recs, err := civic.NewService(s.reader, s.logger).Extract(ctx, civic.Inputs{
		ClinicalEvidence:  c.ClinicalEvidence,
		MolecularProfiles: c.MolecularProfiles,
		Variants:          c.Variants,
		Features:          c.Features,
	}, civic.Options{ExplodeTherapies: c.ExplodeTherapies})
	if err != nil {
		return 0, err
	}
	if err := tabular.WriteFile(s.layout.CIViC, tabular.JoinedTable(s.layout.CIViC, recs, false)); err != nil {
		return 0, err
	}
	return len(recs), nil
}

func (s *Standard) mapTherapies(ctx context.Context) (int, error) {
	ref, err := s.reader.Select(ctx, s.plan.Sources.CIViC.TherapyReference,
		therapy.ReferenceNameColumn, therapy.ReferenceCodeColumn)
	if err != nil {
		return 0, fmt.Errorf("load therapy reference: %w", err)
	}
	m, err := therapy.NewMatcherFromTable(ref, "", "")
	if err != nil {
		return 0, err
	}
	t, err := s.reader.Read(ctx, s.layout.CIViC)
	if err != nil {
		return 0, fmt.Errorf("load civic: %w", err)
	}
	if err := therapy.MapTable(t, m); err != nil {
		return 0, err
	}
	if err := tabular.WriteFile(s.layout.CIViCTherapy, t); err != nil {
		return 0, err
	}
	return len(t.Rows), nil
}

func (s *Standard) aggregateCBioPortal(ctx context.Context) (int, error) {
	c := s.plan.Sources.CBioPortal
	return cbioportal.NewService(s.genes, s.logger).Run(ctx, c.Shards, c.StudyMap, s.layout.CBioPortal)
}

func (s *Standard) extractVariants(_ context.Context) (int, error) {
	return variants.NewExtractor(s.logger).Run(s.plan.Sources.Variants.Input, s.layout.Variants)
}

func (s *Standard) projectCIViC(ctx context.Context) (int, error) {
	path := s.layout.CIViC
	if s.plan.Sources.CIViC.TherapyReference != "" {
		path = s.layout.CIViCTherapy
	}
	g, err := kgx.NewBuilder(s.reader, s.logger).CIViC(ctx, path)
	return s.keep(StageKGXCIViC, g, err)
}

func (s *Standard) projectCBioPortal(_ context.Context) (int, error) {
	g, err := kgx.NewBuilder(s.reader, s.logger).CBioPortal(s.layout.CBioPortal)
	return s.keep(StageKGXCBioPortal, g, err)
}

func (s *Standard) projectVariants(_ context.Context) (int, error) {
	g, err := kgx.NewBuilder(s.reader, s.logger).Variants(s.layout.Variants)
	return s.keep(StageKGXVariants, g, err)
}

func (s *Standard) keep(stage string, g *kgx.Graph, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.graphs[stage] = g
	s.mu.Unlock()
	return len(g.Edges()), nil
}

// export merges the projected graphs in source order and writes the artifacts.
func (s *Standard) export(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := kgx.NewGraph(s.plan.GraphID)
	for _, stage := range []string{StageKGXCIViC, StageKGXCBioPortal, StageKGXVariants} {
		if g, ok := s.graphs[stage]; ok {
			merged.Merge(g)
		}
	}
	a, err := kgx.Export(s.layout.GraphDir, merged)
	if err != nil {
		return 0, err
	}
	sum := merged.Summarize()
	if len(sum.DanglingIDs) > 0 {
		s.logger.Warn("edges reference unknown nodes", "count", len(sum.DanglingIDs))
	}
	s.merged = merged
	s.artifacts = a
	return sum.EdgeCount, nil
}

func (s *Standard) convert(kind bulk.Kind) func(context.Context) (int, error) {
	return func(_ context.Context) (int, error) {
		a := s.Artifacts()
		in, out := a.NodesTSV, s.layout.NeptuneNodes
		if kind == bulk.KindEdges {
			in, out = a.EdgesTSV, s.layout.NeptuneEdges
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return 0, fmt.Errorf("create neptune dir: %w", err)
		}
		return bulk.NewNeptuneConverter(kind, 0, s.logger).ConvertFile(in, out)
	}
}

func (s *Standard) publish(ctx context.Context) (int, error) {
	files := append(s.Artifacts().Paths(), s.layout.NeptuneNodes, s.layout.NeptuneEdges)
	locations, err := storage.PublishAll(ctx, s.publisher, files, s.logger)
	if err != nil {
		return 0, fmt.Errorf("publish artifacts: %w", err)
	}
	return len(locations), nil
}

func (s *Standard) load(ctx context.Context) (int, error) {
	s.mu.Lock()
	g := s.merged
	s.mu.Unlock()
	if g == nil {
		return 0, domain.ErrValidation("no exported graph to load")
	}
	st, err := s.loader.Load(ctx, g.Nodes(), g.Edges())
	if err != nil {
		return 0, err
	}
	return st.Nodes + st.Edges, nil
}
