// Package cbioportal aggregates cBioPortal mutation shards into distinct
// (gene, chromosome, disease) associations.
package cbioportal

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
)

// mutation is the subset of a cBioPortal mutation record the aggregation reads.
type mutation struct {
	EntrezGeneID domain.FlexString `json:"entrezGeneId"`
	StudyID      domain.FlexString `json:"studyId"`
	Chr          domain.FlexString `json:"chr"`
}

type geneKey struct {
	entrez int64
	chr    string
	doid   string
}

// Accumulator collects associations across shards. Keys keep first-seen order.
type Accumulator struct {
	keys     []geneKey
	seen     map[geneKey]struct{}
	entrez   map[int64]struct{}
	unmapped map[string]struct{}

	Files   int // shards successfully read
	Records int // records read across shards
	Skipped int // records missing a gene, study or chromosome
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		seen:     make(map[geneKey]struct{}),
		entrez:   make(map[int64]struct{}),
		unmapped: make(map[string]struct{}),
	}
}

// AddFile folds one shard into the accumulator. studyMap maps study ids to
// disease ids. A shard that cannot be read or decoded leaves the accumulator
// unchanged.
func (a *Accumulator) AddFile(path string, studyMap map[string]string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return fmt.Errorf("read shard: %w", err)
	}
	var recs []mutation
	if err := json.Unmarshal(data, &recs); err != nil {
		return fmt.Errorf("decode shard %s: %w", path, err)
	}
	a.add(recs, studyMap)
	a.Files++
	return nil
}

// add folds decoded records into the accumulator.
func (a *Accumulator) add(recs []mutation, studyMap map[string]string) {
	a.Records += len(recs)
	for _, rec := range recs {
		entrez, err := strconv.ParseInt(rec.EntrezGeneID.String(), 10, 64)
		study := rec.StudyID.String()
		chr := rec.Chr.String()
		if err != nil || entrez == 0 || study == "" || chr == "" {
			a.Skipped++
			continue
		}
		a.entrez[entrez] = struct{}{}

		doid := studyMap[study]
		if doid == "" {
			a.unmapped[study] = struct{}{}
			continue
		}
		k := geneKey{entrez: entrez, chr: chr, doid: doid}
		if _, ok := a.seen[k]; ok {
			continue
		}
		a.seen[k] = struct{}{}
		a.keys = append(a.keys, k)
	}
}

// Len returns the number of distinct associations.
func (a *Accumulator) Len() int { return len(a.keys) }

// EntrezIDs returns every gene id seen, sorted numerically.
func (a *Accumulator) EntrezIDs() []string {
	ids := make([]int64, 0, len(a.entrez))
	for id := range a.entrez {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatInt(id, 10)
	}
	return out
}

// UnmappedStudies returns the study ids absent from the study map, sorted.
func (a *Accumulator) UnmappedStudies() []string {
	out := make([]string, 0, len(a.unmapped))
	for s := range a.unmapped {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Results builds the output rows in first-seen order. Genes missing from
// symbols get an ENTREZ:<id> placeholder.
func (a *Accumulator) Results(symbols map[string]string) []domain.GeneDiseaseRecord {
	out := make([]domain.GeneDiseaseRecord, 0, len(a.keys))
	for _, k := range a.keys {
		id := strconv.FormatInt(k.entrez, 10)
		sym := symbols[id]
		if sym == "" {
			sym = "ENTREZ:" + id
		}
		out = append(out, domain.GeneDiseaseRecord{
			EntrezGeneID: k.entrez,
			GeneSymbol:   sym,
			Chr:          k.chr,
			DOID:         k.doid,
		})
	}
	return out
}
