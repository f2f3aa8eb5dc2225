package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/evangelosroutis/hypothesis-generation/internal/graph"
	"github.com/evangelosroutis/hypothesis-generation/internal/platform/logger"
)

// NoAnnotationMarker is attached to an interaction when neither endpoint
// gene carries a usable annotation.
const NoAnnotationMarker = "no annotation available"

// AnnotationSource serves the enricher's graph lookups. Satisfied by
// graph.Reader.
type AnnotationSource interface {
	GeneAnnotationIDs(ctx context.Context, uniqueID string) ([]string, error)
	AnnotationsByIDs(ctx context.Context, goIDs []string) ([]graph.Annotation, error)
}

// Embedder embeds search text for the similarity ranking. Satisfied by the
// platform openai client.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// Interaction is one directed edge of a downstream path.
type Interaction struct {
	StartID    string
	StartNames []string
	EndID      string
	EndNames   []string
	Type       string
	Subtypes   []string
}

func (i Interaction) key() string {
	return i.StartID + "|" + i.EndID + "|" + i.Type + "|" + strings.Join(i.Subtypes, ",")
}

// EnrichedInteraction carries the best-matching annotation description for
// one edge.
type EnrichedInteraction struct {
	Interaction
	Description string
	GOID        string
	Score       float64
}

// Enricher attaches an annotation-derived description to every edge of
// every downstream path by similarity search over the endpoint genes'
// annotation sets.
type Enricher struct {
	annotations  AnnotationSource
	embedder     Embedder
	typeMeanings map[string]string
	concurrency  int
	timeout      time.Duration
	log          *logger.Logger
}

func NewEnricher(annotations AnnotationSource, embedder Embedder, typeMeanings map[string]string, concurrency int, timeout time.Duration, log *logger.Logger) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Enricher{
		annotations:  annotations,
		embedder:     embedder,
		typeMeanings: typeMeanings,
		concurrency:  concurrency,
		timeout:      timeout,
		log:          log.With("service", "InteractionEnricher"),
	}
}

// EnrichPaths resolves every distinct edge once (edges repeat across
// paths), under a bounded worker pool, and reassembles the results in path
// order.
func (e *Enricher) EnrichPaths(ctx context.Context, paths [][]Interaction) ([][]EnrichedInteraction, error) {
	distinct := make(map[string]Interaction)
	for _, path := range paths {
		for _, inter := range path {
			distinct[inter.key()] = inter
		}
	}
	if len(distinct) == 0 {
		return nil, nil
	}

	var mu sync.Mutex
	resolved := make(map[string]EnrichedInteraction, len(distinct))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.concurrency)
	for key, inter := range distinct {
		key, inter := key, inter
		eg.Go(func() error {
			ectx, cancel := context.WithTimeout(egctx, e.timeout)
			defer cancel()
			enriched, err := e.enrichOne(ectx, inter)
			if err != nil {
				return err
			}
			mu.Lock()
			resolved[key] = enriched
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make([][]EnrichedInteraction, 0, len(paths))
	for _, path := range paths {
		enrichedPath := make([]EnrichedInteraction, 0, len(path))
		for _, inter := range path {
			enrichedPath = append(enrichedPath, resolved[inter.key()])
		}
		out = append(out, enrichedPath)
	}
	return out, nil
}

func (e *Enricher) enrichOne(ctx context.Context, inter Interaction) (EnrichedInteraction, error) {
	out := EnrichedInteraction{Interaction: inter, Description: NoAnnotationMarker}

	candidateIDs, err := e.candidateIDs(ctx, inter)
	if err != nil {
		return out, err
	}
	if len(candidateIDs) == 0 {
		return out, nil
	}

	candidates, err := e.annotations.AnnotationsByIDs(ctx, candidateIDs)
	if err != nil {
		return out, fmt.Errorf("enrich %s->%s: %w", inter.StartID, inter.EndID, err)
	}

	vectors, err := e.embedder.Embed(ctx, []string{e.searchText(inter)})
	if err != nil {
		return out, fmt.Errorf("enrich %s->%s: embed search text: %w", inter.StartID, inter.EndID, err)
	}
	if len(vectors) != 1 {
		return out, fmt.Errorf("enrich %s->%s: expected one embedding, got %d", inter.StartID, inter.EndID, len(vectors))
	}

	best, score, found := graph.BestMatch(vectors[0], candidates)
	if !found {
		return out, nil
	}
	out.Description = graph.AnnotationText(best.Qualifier, best.Name, best.Definition, best.Aspect)
	out.GOID = best.GOID
	out.Score = score
	return out, nil
}

// candidateIDs is the union of both endpoint genes' annotation ids.
func (e *Enricher) candidateIDs(ctx context.Context, inter Interaction) ([]string, error) {
	seen := map[string]bool{}
	var ids []string
	for _, geneID := range []string{inter.StartID, inter.EndID} {
		if geneID == "" {
			continue
		}
		goIDs, err := e.annotations.GeneAnnotationIDs(ctx, geneID)
		if err != nil {
			return nil, fmt.Errorf("enrich %s->%s: annotation ids for %s: %w", inter.StartID, inter.EndID, geneID, err)
		}
		for _, id := range goIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// searchText mirrors the text form the annotations were embedded from:
// endpoint names plus the interaction's subtype qualifiers and the
// human-readable meaning of its type.
func (e *Enricher) searchText(inter Interaction) string {
	meaning := inter.Type
	if m, ok := e.typeMeanings[inter.Type]; ok {
		meaning = m
	}
	parts := []string{
		strings.Join(inter.StartNames, " "),
		strings.Join(inter.Subtypes, " "),
		strings.Join(inter.EndNames, " "),
		meaning,
	}
	return strings.Join(parts, ", ")
}

// ParsePaths decodes the downstream query's result rows (one collected
// list of edge records per path) into typed interactions.
func ParsePaths(rows []map[string]any) [][]Interaction {
	var paths [][]Interaction
	for _, row := range rows {
		rawPaths, ok := row["interactions"].([]any)
		if !ok {
			continue
		}
		for _, rawPath := range rawPaths {
			edges, ok := rawPath.([]any)
			if !ok {
				continue
			}
			var path []Interaction
			for _, rawEdge := range edges {
				edge, ok := rawEdge.(map[string]any)
				if !ok {
					continue
				}
				inter := Interaction{
					Type:     stringValue(edge["type"]),
					Subtypes: stringSlice(edge["subtypes"]),
				}
				if start, ok := edge["start"].(map[string]any); ok {
					inter.StartID = stringValue(start["unique_id"])
					inter.StartNames = stringSlice(start["names"])
				}
				if end, ok := edge["end"].(map[string]any); ok {
					inter.EndID = stringValue(end["unique_id"])
					inter.EndNames = stringSlice(end["names"])
				}
				path = append(path, inter)
			}
			if len(path) > 0 {
				paths = append(paths, path)
			}
		}
	}
	return paths
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
