package graph

import (
	"context"
	"fmt"

	"github.com/evangelosroutis/hypothesis-generation/internal/platform/logger"
	"github.com/evangelosroutis/hypothesis-generation/internal/platform/neo4jdb"
)

// Annotation is the read-side view of a GO_Annotation node.
type Annotation struct {
	GOID       string
	Qualifier  string
	Name       string
	Definition string
	Aspect     string
	Embedding  []float32
}

// Reader serves the agent's read-only lookups against the imported graph.
type Reader struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewReader(client *neo4jdb.Client, log *logger.Logger) *Reader {
	return &Reader{client: client, log: log.With("service", "GraphReader")}
}

// GeneAnnotationIDs returns the GO ids linked to a gene merge key.
func (r *Reader) GeneAnnotationIDs(ctx context.Context, uniqueID string) ([]string, error) {
	rows, err := r.client.Query(ctx, `
MATCH (g:Gene {unique_id: $unique_id})-[:HAS_GO_ANNOTATION]->(a:GO_Annotation)
RETURN collect(a.go_id) AS go_ids
`, map[string]any{"unique_id": uniqueID})
	if err != nil {
		return nil, fmt.Errorf("gene annotation ids for %s: %w", uniqueID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toStringSlice(rows[0]["go_ids"]), nil
}

// AnnotationsByIDs fetches annotation nodes, including stored embeddings,
// for a candidate id set.
func (r *Reader) AnnotationsByIDs(ctx context.Context, goIDs []string) ([]Annotation, error) {
	if len(goIDs) == 0 {
		return nil, nil
	}
	rows, err := r.client.Query(ctx, `
MATCH (a:GO_Annotation)
WHERE a.go_id IN $ids
RETURN a.go_id AS go_id, a.qualifier AS qualifier, a.name AS name,
       a.definition AS definition, a.aspect AS aspect, a.embedding AS embedding
`, map[string]any{"ids": goIDs})
	if err != nil {
		return nil, fmt.Errorf("annotations by ids: %w", err)
	}

	out := make([]Annotation, 0, len(rows))
	for _, row := range rows {
		out = append(out, Annotation{
			GOID:       asString(row["go_id"]),
			Qualifier:  asString(row["qualifier"]),
			Name:       asString(row["name"]),
			Definition: asString(row["definition"]),
			Aspect:     asString(row["aspect"]),
			Embedding:  toFloat32Slice(row["embedding"]),
		})
	}
	return out, nil
}

func toStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func toFloat32Slice(v any) []float32 {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float32, 0, len(items))
	for _, item := range items {
		switch n := item.(type) {
		case float64:
			out = append(out, float32(n))
		case float32:
			out = append(out, n)
		case int64:
			out = append(out, float32(n))
		}
	}
	return out
}
