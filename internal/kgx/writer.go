package kgx

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/bulk"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/tabular"
)

// Neo4j-admin import headers.
var (
	NodeHeader = []string{
		"id:ID", "name:string", "category:LABEL", "equivalent_identifiers:string[]",
		"NCBITaxon:string", "information_content:float", "description:string",
	}
	EdgeHeader = []string{
		"subject:START_ID", "predicate:TYPE", "object:END_ID",
		"primary_knowledge_source:string", "knowledge_level:string", "agent_type:string",
		"original_subject:string", "original_object:string", "description:string",
		"NCBITaxon:string", "publications:string[]", "object_aspect_qualifier:string",
		"object_direction_qualifier:string", "qualified_predicate:string",
	}
)

// Artifacts lists the files written by Export.
type Artifacts struct {
	NodesJSONL string
	EdgesJSONL string
	NodesTSV   string
	EdgesTSV   string
	Metadata   string
}

// Paths returns every artifact path.
func (a Artifacts) Paths() []string {
	return []string{a.NodesJSONL, a.EdgesJSONL, a.NodesTSV, a.EdgesTSV, a.Metadata}
}

// ArtifactsFor returns the artifact paths for graph id under dir.
func ArtifactsFor(dir, id string) Artifacts {
	p := func(suffix string) string { return filepath.Join(dir, id+suffix) }
	return Artifacts{
		NodesJSONL: p("_nodes.jsonl"),
		EdgesJSONL: p("_edges.jsonl"),
		NodesTSV:   p("_nodes.tsv"),
		EdgesTSV:   p("_edges.tsv"),
		Metadata:   p("_metadata.json"),
	}
}

// Export writes g as KGX JSON Lines, neo4j-admin TSV and a summary under dir.
func Export(dir string, g *Graph) (Artifacts, error) {
	a := ArtifactsFor(dir, g.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return a, fmt.Errorf("create graph dir: %w", err)
	}
	steps := []struct {
		path  string
		write func(io.Writer) error
	}{
		{a.NodesJSONL, func(w io.Writer) error { return writeJSONL(w, g.Nodes()) }},
		{a.EdgesJSONL, func(w io.Writer) error { return writeJSONL(w, g.Edges()) }},
		{a.NodesTSV, func(w io.Writer) error { return WriteNodesTSV(w, g.Nodes()) }},
		{a.EdgesTSV, func(w io.Writer) error { return WriteEdgesTSV(w, g.Edges()) }},
	}
	for _, s := range steps {
		if err := writeFile(s.path, s.write); err != nil {
			return a, err
		}
	}
	if err := tabular.WriteJSON(a.Metadata, g.Summarize()); err != nil {
		return a, err
	}
	return a, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func writeJSONL[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}

// WriteNodesTSV writes nodes in neo4j-admin layout with ';' separated arrays.
func WriteNodesTSV(w io.Writer, nodes []Node) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(NodeHeader); err != nil {
		return err
	}
	for _, n := range nodes {
		ic := ""
		if n.InformationContent != nil {
			ic = strconv.FormatFloat(*n.InformationContent, 'g', -1, 64)
		}
		if err := cw.Write([]string{
			n.ID, n.Name, bulk.Encode(n.Category), bulk.Encode(n.EquivalentIdentifiers),
			n.NCBITaxon, ic, n.Description,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEdgesTSV writes edges in neo4j-admin layout with ';' separated arrays.
func WriteEdgesTSV(w io.Writer, edges []Edge) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(EdgeHeader); err != nil {
		return err
	}
	for _, e := range edges {
		if err := cw.Write([]string{
			e.Subject, e.Predicate, e.Object,
			e.PrimaryKnowledgeSource, e.KnowledgeLevel, e.AgentType,
			e.OriginalSubject, e.OriginalObject, e.Description,
			e.NCBITaxon, bulk.Encode(e.Publications), e.ObjectAspectQualifier,
			e.ObjectDirectionQualifier, e.QualifiedPredicate,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadNodes decodes a KGX nodes JSON Lines file.
func ReadNodes(path string) ([]Node, error) { return readJSONL[Node](path) }

// ReadEdges decodes a KGX edges JSON Lines file.
func ReadEdges(path string) ([]Edge, error) { return readJSONL[Edge](path) }

func readJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var out []T
	dec := json.NewDecoder(bufio.NewReader(f))
	for line := 1; dec.More(); line++ {
		var v T
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode %s line %d: %w", path, line, err)
		}
		out = append(out, v)
	}
	return out, nil
}
