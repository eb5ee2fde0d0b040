package graphload

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/time/rate"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/bulk"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/kgx"
)

// DefaultBatchSize is the number of rows bound to one UNWIND statement.
const DefaultBatchSize = 1000

const constraintCypher = `CREATE CONSTRAINT node_id_unique IF NOT EXISTS FOR (n:` + bulk.DefaultLabel + `) REQUIRE n.id IS UNIQUE`

// BatchWriter executes one parameterised write with $rows bound.
type BatchWriter interface {
	WriteBatch(ctx context.Context, cypher string, rows []map[string]any) error
}

// SchemaWriter is a BatchWriter that can also prepare constraints.
type SchemaWriter interface {
	BatchWriter
	EnsureSchema(ctx context.Context)
}

// Loader writes nodes then edges in batches.
type Loader struct {
	w         BatchWriter
	batchSize int
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewLoader creates a Loader. batchesPerSecond <= 0 disables throttling.
func NewLoader(w BatchWriter, batchSize int, batchesPerSecond float64, logger *slog.Logger) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if batchesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(batchesPerSecond), 1)
	}
	return &Loader{w: w, batchSize: batchSize, limiter: limiter, logger: logger.With("component", "graphload")}
}

// Stats counts what a load wrote.
type Stats struct {
	Nodes   int `json:"nodes"`
	Edges   int `json:"edges"`
	Batches int `json:"batches"`
}

// Load merges nodes and edges. Every node carries the Node label plus one
// label per biolink category; every edge becomes a relationship typed by its
// predicate. Loading is idempotent.
func (l *Loader) Load(ctx context.Context, nodes []kgx.Node, edges []kgx.Edge) (Stats, error) {
	if sw, ok := l.w.(SchemaWriter); ok {
		sw.EnsureSchema(ctx)
	}

	var st Stats
	for _, g := range groupNodes(nodes) {
		n, err := l.writeAll(ctx, nodeCypher(g.key), g.rows)
		st.Batches += n
		if err != nil {
			return st, fmt.Errorf("load nodes %s: %w", g.key, err)
		}
		st.Nodes += len(g.rows)
	}
	for _, g := range groupEdges(edges) {
		n, err := l.writeAll(ctx, edgeCypher(g.key), g.rows)
		st.Batches += n
		if err != nil {
			return st, fmt.Errorf("load edges %s: %w", g.key, err)
		}
		st.Edges += len(g.rows)
	}
	l.logger.Info("graph loaded", "nodes", st.Nodes, "edges", st.Edges, "batches", st.Batches)
	return st, nil
}

func (l *Loader) writeAll(ctx context.Context, cypher string, rows []map[string]any) (int, error) {
	batches := 0
	for start := 0; start < len(rows); start += l.batchSize {
		end := min(start+l.batchSize, len(rows))
		if err := l.limiter.Wait(ctx); err != nil {
			return batches, err
		}
		if err := l.w.WriteBatch(ctx, cypher, rows[start:end]); err != nil {
			return batches, err
		}
		batches++
	}
	return batches, nil
}

type group struct {
	key  string
	rows []map[string]any
}

// groupNodes buckets nodes by their label set, in sorted key order.
func groupNodes(nodes []kgx.Node) []group {
	byKey := make(map[string][]map[string]any)
	for _, n := range nodes {
		key := strings.Join(labels(n.Category), ":")
		byKey[key] = append(byKey[key], map[string]any{
			"id":    n.ID,
			"props": compact(map[string]any{
				"name":                   n.Name,
				"category":               n.Category,
				"equivalent_identifiers": n.EquivalentIdentifiers,
				"NCBITaxon":              n.NCBITaxon,
				"information_content":    n.InformationContent,
				"description":            n.Description,
			}),
		})
	}
	return sortedGroups(byKey)
}

// groupEdges buckets edges by relationship type, in sorted key order.
func groupEdges(edges []kgx.Edge) []group {
	byKey := make(map[string][]map[string]any)
	for _, e := range edges {
		key := relType(e.Predicate)
		byKey[key] = append(byKey[key], map[string]any{
			"subject": e.Subject,
			"object":  e.Object,
			"source":  e.PrimaryKnowledgeSource,
			"props":   compact(map[string]any{
				"predicate":                  e.Predicate,
				"knowledge_level":            e.KnowledgeLevel,
				"agent_type":                 e.AgentType,
				"publications":               e.Publications,
				"original_subject":           e.OriginalSubject,
				"original_object":            e.OriginalObject,
				"description":                e.Description,
				"NCBITaxon":                  e.NCBITaxon,
				"object_aspect_qualifier":    e.ObjectAspectQualifier,
				"object_direction_qualifier": e.ObjectDirectionQualifier,
				"qualified_predicate":        e.QualifiedPredicate,
			}),
		})
	}
	return sortedGroups(byKey)
}

func sortedGroups(byKey map[string][]map[string]any) []group {
	out := make([]group, 0, len(byKey))
	for k, rows := range byKey {
		out = append(out, group{key: k, rows: rows})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// nodeCypher merges on id under the Node label and adds the extra labels.
func nodeCypher(labelKey string) string {
	var b strings.Builder
	b.WriteString("UNWIND $rows AS r\nMERGE (n:" + bulk.DefaultLabel + " {id: r.id})\nSET n += r.props")
	for _, l := range strings.Split(labelKey, ":") {
		if l != "" && l != bulk.DefaultLabel {
			b.WriteString(", n:`" + l + "`")
		}
	}
	return b.String()
}

// edgeCypher merges one relationship per (subject, type, object, source).
func edgeCypher(relType string) string {
	return "UNWIND $rows AS r\n" +
		"MATCH (a:" + bulk.DefaultLabel + " {id: r.subject})\n" +
		"MATCH (b:" + bulk.DefaultLabel + " {id: r.object})\n" +
		"MERGE (a)-[e:`" + relType + "` {primary_knowledge_source: r.source}]->(b)\n" +
		"SET e += r.props"
}

// labels turns biolink categories into sorted Neo4j labels.
func labels(categories []string) []string {
	seen := make(map[string]struct{}, len(categories))
	var out []string
	for _, c := range categories {
		l := sanitize(strings.TrimPrefix(c, "biolink:"))
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// relType derives a relationship type from a predicate CURIE.
func relType(predicate string) string {
	t := sanitize(strings.TrimPrefix(predicate, "biolink:"))
	if t == "" {
		return "related_to"
	}
	return t
}

// sanitize keeps letters, digits and underscores so the value can be
// embedded in a backquoted Cypher identifier.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return -1
	}, s)
}

// compact drops empty properties; Neo4j cannot store nulls.
func compact(m map[string]any) map[string]any {
	for k, v := range m {
		switch x := v.(type) {
		case string:
			if x == "" {
				delete(m, k)
			}
		case []string:
			if len(x) == 0 {
				delete(m, k)
			}
		case *float64:
			if x == nil {
				delete(m, k)
			} else {
				m[k] = *x
			}
		}
	}
	return m
}
