package kgx

import (
	"strconv"
	"strings"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/expand"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/identifier"
)

// Stats counts what a projection emitted.
type Stats struct {
	Rows    int
	Skipped int
	Edges   int
}

// FromCIViC projects joined CIViC records. Rows without a registered allele
// or a DOID are skipped. Genes and resolved therapies are linked when known.
func FromCIViC(g *Graph, recs []domain.JoinedRecord) Stats {
	st := Stats{Rows: len(recs)}
	for _, r := range recs {
		allele := identifier.Parse(r.AlleleRegistryID)
		doid, okDisease := identifier.DOID(r.DOID)
		if !identifier.RegisteredAllele(allele) || !okDisease {
			st.Skipped++
			continue
		}
		variantID := identifier.CURIE(allele)
		diseaseID := doid.String()

		g.AddNode(Node{ID: variantID, Name: r.Variant, Category: []string{CategorySequenceVariant}, NCBITaxon: HumanTaxon})
		g.AddNode(Node{ID: diseaseID, Name: r.Disease, Category: []string{CategoryDisease}})
		st.add(g.AddEdge(curated(variantID, PredicateGeneticallyAssociatedWith, diseaseID)))

		if gene, ok := identifier.NCBIGene(r.NCBIGeneID); ok && r.NCBIGeneID != "" {
			geneID := gene.String()
			g.AddNode(Node{ID: geneID, Name: r.GeneSymbol, Category: []string{CategoryGene}, NCBITaxon: HumanTaxon})
			st.add(g.AddEdge(curated(variantID, PredicateIsSequenceVariantOf, geneID)))
		}

		codes, combo := therapyCodes(r)
		for _, code := range codes {
			id, ok := identifier.NCIT(code)
			if !ok {
				continue
			}
			therapyID := id.String()
			name := ""
			if combo {
				name = r.Therapy
			}
			g.AddNode(Node{ID: therapyID, Name: name, Category: []string{CategoryChemicalEntity}})
			st.add(g.AddEdge(curated(therapyID, PredicateTreats, diseaseID)))
		}
	}
	return st
}

// therapyCodes prefers the combination code over the per-drug codes.
// combo reports whether the single returned code names the whole therapy.
func therapyCodes(r domain.JoinedRecord) (codes []string, combo bool) {
	if r.NCITComboID != "" {
		return []string{r.NCITComboID}, true
	}
	if r.NCITTokenIDs == "" {
		return nil, false
	}
	return strings.Split(r.NCITTokenIDs, ","), false
}

// FromCBioPortal projects gene/disease associations.
func FromCBioPortal(g *Graph, recs []domain.GeneDiseaseRecord) Stats {
	st := Stats{Rows: len(recs)}
	for _, r := range recs {
		if r.EntrezGeneID == 0 || r.DOID == "" {
			st.Skipped++
			continue
		}
		gene := domain.Identifier{Namespace: domain.NamespaceNCBIGene, Value: strconv.FormatInt(r.EntrezGeneID, 10)}
		geneID := gene.String()
		g.AddNode(Node{ID: geneID, Name: r.GeneSymbol, Category: []string{CategoryGene}, NCBITaxon: HumanTaxon})
		g.AddNode(Node{ID: r.DOID, Category: []string{CategoryDisease}})
		st.add(g.AddEdge(Edge{
			Subject:                geneID,
			Predicate:              PredicateGeneAssociatedWith,
			Object:                 r.DOID,
			PrimaryKnowledgeSource: SourceCBioPortal,
		}))
	}
	return st
}

// FromVariants projects 1000 Genomes canonical variants onto their genes.
// Variants without a gene become isolated nodes. Unprefixed gene ids are
// taken to be Ensembl ids.
func FromVariants(g *Graph, vs []expand.CanonicalVariant) Stats {
	st := Stats{Rows: len(vs)}
	for _, v := range vs {
		if v.VariantID == "" {
			st.Skipped++
			continue
		}
		variantID := "HGVS:" + v.VariantID
		var equiv []string
		if strings.HasPrefix(v.Name, "rs") {
			equiv = []string{"DBSNP:" + v.Name}
		}
		g.AddNode(Node{
			ID:                    variantID,
			Name:                  v.Name,
			Category:              []string{CategorySequenceVariant},
			EquivalentIdentifiers: equiv,
			NCBITaxon:             HumanTaxon,
		})
		if v.GeneID == "" {
			continue
		}
		geneID := v.GeneID
		if !strings.Contains(geneID, ":") {
			geneID = "ENSEMBL:" + geneID
		}
		g.AddNode(Node{ID: geneID, Name: v.GeneSymbol, Category: []string{CategoryGene}, NCBITaxon: HumanTaxon})
		st.add(g.AddEdge(Edge{
			Subject:                variantID,
			Predicate:              PredicateIsSequenceVariantOf,
			Object:                 geneID,
			PrimaryKnowledgeSource: Source1000Genomes,
		}))
	}
	return st
}

func curated(subject, predicate, object string) Edge {
	return Edge{
		Subject:                subject,
		Predicate:              predicate,
		Object:                 object,
		PrimaryKnowledgeSource: SourceCIViC,
		KnowledgeLevel:         KnowledgeAssertion,
		AgentType:              ManualAgent,
	}
}

func (s *Stats) add(added bool) {
	if added {
		s.Edges++
	}
}
