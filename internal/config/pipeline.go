package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
)

// DefaultPipelineFile is the pipeline file read when --config is not given.
const DefaultPipelineFile = "midas.yaml"

// Pipeline file defaults.
const (
	DefaultGraphID   = "midas"
	DefaultOutputDir = "out"
)

// PipelineFile represents midas.yaml.
type PipelineFile struct {
	GraphID   string      `yaml:"graph-id"`
	OutputDir string      `yaml:"output-dir"`
	Sources   Sources     `yaml:"sources"`
	Publish   PublishSpec `yaml:"publish,omitempty"`
}

// Sources groups the per-source inputs.
type Sources struct {
	CIViC      CIViCSource      `yaml:"civic"`
	CBioPortal CBioPortalSource `yaml:"cbioportal"`
	Variants   VariantsSource   `yaml:"1000genomes"`
}

// CIViCSource names the CIViC summary dumps.
type CIViCSource struct {
	Enabled           bool   `yaml:"enabled"`
	ClinicalEvidence  string `yaml:"clinical-evidence"`
	MolecularProfiles string `yaml:"molecular-profiles"`
	Variants          string `yaml:"variants"`
	Features          string `yaml:"features"`
	ExplodeTherapies  bool   `yaml:"explode-therapies"`
	// TherapyReference is the NCIT dictionary; empty skips therapy mapping.
	TherapyReference string `yaml:"therapy-reference,omitempty"`
}

// CBioPortalSource names the mutation shards and the study map.
type CBioPortalSource struct {
	Enabled  bool   `yaml:"enabled"`
	Shards   string `yaml:"shards"` // glob
	StudyMap string `yaml:"study-map"`
}

// VariantsSource names the 1000 Genomes annotation dump.
type VariantsSource struct {
	Enabled bool   `yaml:"enabled"`
	Input   string `yaml:"input"`
}

// PublishSpec configures where exported artifacts are uploaded.
type PublishSpec struct {
	Target string `yaml:"target,omitempty"`
}

// LoadPipelineFile reads and validates a pipeline file. Relative input
// paths are resolved against the file's directory.
func LoadPipelineFile(path string) (*PipelineFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound("pipeline file %s not found (run 'midas config init')", path)
		}
		return nil, fmt.Errorf("read pipeline file: %w", err)
	}
	var pf PipelineFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse pipeline file: %w", err)
	}
	pf.applyDefaults()
	pf.resolve(filepath.Dir(path))
	if err := pf.Validate(); err != nil {
		return nil, err
	}
	return &pf, nil
}

func (p *PipelineFile) applyDefaults() {
	if p.GraphID == "" {
		p.GraphID = DefaultGraphID
	}
	if p.OutputDir == "" {
		p.OutputDir = DefaultOutputDir
	}
}

func (p *PipelineFile) resolve(base string) {
	for _, ptr := range []*string{
		&p.OutputDir,
		&p.Sources.CIViC.ClinicalEvidence,
		&p.Sources.CIViC.MolecularProfiles,
		&p.Sources.CIViC.Variants,
		&p.Sources.CIViC.Features,
		&p.Sources.CIViC.TherapyReference,
		&p.Sources.CBioPortal.Shards,
		&p.Sources.CBioPortal.StudyMap,
		&p.Sources.Variants.Input,
	} {
		if *ptr != "" && !filepath.IsAbs(*ptr) {
			*ptr = filepath.Join(base, *ptr)
		}
	}
}

// Validate checks that every enabled source names its inputs and that at
// least one source is enabled.
func (p *PipelineFile) Validate() error {
	s := p.Sources
	if !s.CIViC.Enabled && !s.CBioPortal.Enabled && !s.Variants.Enabled {
		return domain.ErrValidation("pipeline file enables no sources")
	}
	required := []struct {
		on    bool
		key   string
		value string
	}{
		{s.CIViC.Enabled, "sources.civic.clinical-evidence", s.CIViC.ClinicalEvidence},
		{s.CIViC.Enabled, "sources.civic.molecular-profiles", s.CIViC.MolecularProfiles},
		{s.CIViC.Enabled, "sources.civic.variants", s.CIViC.Variants},
		{s.CIViC.Enabled, "sources.civic.features", s.CIViC.Features},
		{s.CBioPortal.Enabled, "sources.cbioportal.shards", s.CBioPortal.Shards},
		{s.CBioPortal.Enabled, "sources.cbioportal.study-map", s.CBioPortal.StudyMap},
		{s.Variants.Enabled, "sources.1000genomes.input", s.Variants.Input},
	}
	for _, r := range required {
		if r.on && r.value == "" {
			return domain.ErrValidation("%s is required when the source is enabled", r.key)
		}
	}
	return nil
}

// PipelineTemplate returns the file written by 'midas config init'.
func PipelineTemplate() PipelineFile {
	return PipelineFile{
		GraphID:   DefaultGraphID,
		OutputDir: DefaultOutputDir,
		Sources: Sources{
			CIViC: CIViCSource{
				Enabled:           true,
				ClinicalEvidence:  "data/civic/ClinicalEvidenceSummaries.tsv",
				MolecularProfiles: "data/civic/MolecularProfileSummaries.tsv",
				Variants:          "data/civic/VariantSummaries.tsv",
				Features:          "data/civic/FeatureSummaries.tsv",
				ExplodeTherapies:  true,
				TherapyReference:  "data/ncit/therapies.csv",
			},
			CBioPortal: CBioPortalSource{
				Enabled:  true,
				Shards:   "data/cbioportal/mutations_*.json",
				StudyMap: "data/cbioportal/study_doid.json",
			},
			Variants: VariantsSource{
				Enabled: false,
				Input:   "data/1kg/annotations.json",
			},
		},
	}
}

// WritePipelineTemplate writes the template to path. An existing file is
// only replaced when force is set.
func WritePipelineTemplate(path string, force bool) error {
	data, err := yaml.Marshal(PipelineTemplate())
	if err != nil {
		return fmt.Errorf("marshal pipeline template: %w", err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, flags, 0o644) //nolint:gosec // path is caller-controlled
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return domain.ErrValidation("%s already exists (use --force to overwrite)", path)
		}
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
