package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/config"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/graphload"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/kgx"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/storage"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/testutil"
)

type staticGenes map[string]string

func (s staticGenes) Symbols(_ context.Context, ids []string) map[string]string {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		out[id] = s[id]
	}
	return out
}

type fakeLoader struct {
	nodes []kgx.Node
	edges []kgx.Edge
}

func (f *fakeLoader) Load(_ context.Context, nodes []kgx.Node, edges []kgx.Edge) (graphload.Stats, error) {
	f.nodes, f.edges = nodes, edges
	return graphload.Stats{Nodes: len(nodes), Edges: len(edges), Batches: 2}, nil
}

func deps(stages []domain.Stage) map[string][]string {
	out := make(map[string][]string, len(stages))
	for _, s := range stages {
		out[s.Name] = s.DependsOn
	}
	return out
}

func TestStandard_Stages(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	allSources := config.Sources{
		CIViC:      config.CIViCSource{Enabled: true, TherapyReference: "ref.csv"},
		CBioPortal: config.CBioPortalSource{Enabled: true},
		Variants:   config.VariantsSource{Enabled: true},
	}

	t.Run("full_graph", func(t *testing.T) {
		plan := config.PipelineFile{GraphID: "kg", OutputDir: t.TempDir(), Sources: allSources}
		s := NewStandard(plan, nil, staticGenes{}, storage.NewLocalPublisher(t.TempDir()), &fakeLoader{}, logger)
		got := deps(s.Stages())

		assert.Equal(t, map[string][]string{
			StageCIViC:         nil,
			StageTherapy:       {StageCIViC},
			StageKGXCIViC:      {StageTherapy},
			StageCBioPortal:    nil,
			StageKGXCBioPortal: {StageCBioPortal},
			StageVariants:      nil,
			StageKGXVariants:   {StageVariants},
			StageExport:        {StageKGXCIViC, StageKGXCBioPortal, StageKGXVariants},
			StageBulkNodes:     {StageExport},
			StageBulkEdges:     {StageExport},
			StagePublish:       {StageBulkNodes, StageBulkEdges},
			StageLoad:          {StagePublish},
		}, got)

		levels, err := ResolveExecutionOrder(s.Stages())
		require.NoError(t, err)
		assert.Len(t, levels, 7)
	})

	t.Run("civic_without_therapy_reference", func(t *testing.T) {
		plan := config.PipelineFile{GraphID: "kg", Sources: config.Sources{CIViC: config.CIViCSource{Enabled: true}}}
		got := deps(NewStandard(plan, nil, nil, nil, nil, logger).Stages())

		assert.NotContains(t, got, StageTherapy)
		assert.Equal(t, []string{StageCIViC}, got[StageKGXCIViC])
		assert.NotContains(t, got, StagePublish)
		assert.NotContains(t, got, StageLoad)
	})

	t.Run("load_without_publish", func(t *testing.T) {
		plan := config.PipelineFile{GraphID: "kg", Sources: config.Sources{Variants: config.VariantsSource{Enabled: true}}}
		got := deps(NewStandard(plan, nil, nil, nil, &fakeLoader{}, logger).Stages())

		assert.Equal(t, []string{StageKGXVariants}, got[StageExport])
		assert.Equal(t, []string{StageBulkNodes, StageBulkEdges}, got[StageLoad])
		assert.NotContains(t, got, StageCIViC)
		assert.NotContains(t, got, StageCBioPortal)
	})
}

const shard = `[
  {"entrezGeneId": 672, "studyId": "brca_tcga", "chr": "17"},
  {"entrezGeneId": 672, "studyId": "brca_tcga", "chr": 17}
]`

const annotations = `[
  {
    "id": "rs80357906",
    "seq_region_name": "17",
    "start": 43057063,
    "transcript_consequences": [
      {"transcript_id": "ENST2", "gene_id": 672, "gene_symbol": "BRCA1", "hgvsg": "17:g.43057063G>A"}
    ]
  }
]`

func TestStandard_Execute(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}
	write("mutations_1.json", shard)
	studyMap := write("study_doid.json", `{"brca_tcga": "DOID:1612"}`)
	annotated := write("annotations.json", annotations)

	plan := config.PipelineFile{
		GraphID:   "golden",
		OutputDir: filepath.Join(dir, "out"),
		Sources: config.Sources{
			CBioPortal: config.CBioPortalSource{Enabled: true, Shards: filepath.Join(dir, "mutations_*.json"), StudyMap: studyMap},
			Variants:   config.VariantsSource{Enabled: true, Input: annotated},
		},
	}
	publishDir := filepath.Join(dir, "published")
	loader := &fakeLoader{}
	logger := slog.New(slog.DiscardHandler)
	s := NewStandard(plan, nil, staticGenes{"672": "BRCA1"}, storage.NewLocalPublisher(publishDir), loader, logger)

	repo := testutil.NewMockRunRepo()
	run, err := NewRunner(repo, 0, logger).Execute(context.Background(), plan.GraphID, s.Stages())
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusSuccess, run.Status)

	for name, status := range repo.StageStatuses(run.ID) {
		assert.Equal(t, domain.StageStatusSuccess, status, name)
	}

	a := s.Artifacts()
	assert.Equal(t, kgx.ArtifactsFor(filepath.Join(plan.OutputDir, "kgx"), "golden"), a)
	for _, p := range append(a.Paths(), s.Layout().NeptuneNodes, s.Layout().NeptuneEdges) {
		assert.FileExists(t, p)
		assert.FileExists(t, filepath.Join(publishDir, filepath.Base(p)))
	}

	assert.Len(t, loader.nodes, 3)
	assert.Len(t, loader.edges, 2)
	gene, ok := findNode(loader.nodes, "NCBIGene:672")
	require.True(t, ok)
	assert.Equal(t, "BRCA1", gene.Name)
}

func TestStandard_ExecuteFailsOnMissingShards(t *testing.T) {
	dir := t.TempDir()
	studyMap := filepath.Join(dir, "study_doid.json")
	require.NoError(t, os.WriteFile(studyMap, []byte(`{}`), 0o644))
	plan := config.PipelineFile{
		GraphID:   "golden",
		OutputDir: filepath.Join(dir, "out"),
		Sources: config.Sources{
			CBioPortal: config.CBioPortalSource{Enabled: true, Shards: filepath.Join(dir, "none_*.json"), StudyMap: studyMap},
		},
	}
	logger := slog.New(slog.DiscardHandler)
	s := NewStandard(plan, nil, staticGenes{}, nil, nil, logger)

	repo := testutil.NewMockRunRepo()
	run, err := NewRunner(repo, 0, logger).Execute(context.Background(), plan.GraphID, s.Stages())
	require.Error(t, err)
	require.NotNil(t, run)
	assert.Equal(t, domain.RunStatusFailed, run.Status)

	statuses := repo.StageStatuses(run.ID)
	assert.Equal(t, domain.StageStatusFailed, statuses[StageCBioPortal])
	assert.Equal(t, domain.StageStatusSkipped, statuses[StageExport])
	assert.Equal(t, domain.StageStatusSkipped, statuses[StageBulkEdges])
}

func findNode(nodes []kgx.Node, id string) (kgx.Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return kgx.Node{}, false
}
