package graph

import (
	"context"
	"fmt"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/sync/errgroup"

	"github.com/evangelosroutis/hypothesis-generation/internal/platform/envutil"
	"github.com/evangelosroutis/hypothesis-generation/internal/platform/logger"
)

// backfillEmbeddings computes and stores an embedding for every annotation
// node that does not have one yet. The embedded text covers the same
// properties the enricher's similarity search ranks against.
func (b *Builder) backfillEmbeddings(ctx context.Context, log *logger.Logger) (int, error) {
	if b.llm == nil {
		log.Warn("no completion client configured; skipping annotation embeddings")
		return 0, nil
	}

	pending, err := b.client.Query(ctx, `
MATCH (a:GO_Annotation)
WHERE a.embedding IS NULL
RETURN a.go_id AS go_id, a.qualifier AS qualifier, a.name AS name, a.definition AS definition, a.aspect AS aspect
`, nil)
	if err != nil {
		return 0, fmt.Errorf("graph builder: list unembedded annotations: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	batchSize := envutil.Int("ANNOTATION_EMBED_BATCH_SIZE", 64)
	if batchSize < 1 {
		batchSize = 1
	}
	conc := envutil.Int("ANNOTATION_EMBED_CONCURRENCY", 4)
	if conc < 1 {
		conc = 1
	}

	var mu sync.Mutex
	updates := make([]map[string]any, 0, len(pending))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(conc)
	for start := 0; start < len(pending); start += batchSize {
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]
		eg.Go(func() error {
			texts := make([]string, 0, len(batch))
			ids := make([]string, 0, len(batch))
			for _, row := range batch {
				ids = append(ids, asString(row["go_id"]))
				texts = append(texts, AnnotationText(
					asString(row["qualifier"]),
					asString(row["name"]),
					asString(row["definition"]),
					asString(row["aspect"]),
				))
			}
			vectors, err := b.llm.Embed(egctx, texts)
			if err != nil {
				return fmt.Errorf("embed annotations: %w", err)
			}
			mu.Lock()
			defer mu.Unlock()
			for i, id := range ids {
				// The driver stores float lists as doubles.
				vec := make([]float64, len(vectors[i]))
				for j, f := range vectors[i] {
					vec[j] = float64(f)
				}
				updates = append(updates, map[string]any{"go_id": id, "embedding": vec})
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}

	session := b.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: b.client.Database,
	})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
UNWIND $rows AS r
MATCH (a:GO_Annotation {go_id: r.go_id})
SET a.embedding = r.embedding
`, map[string]any{"rows": updates})
		if err != nil {
			return nil, err
		}
		return nil, consumeOnly(ctx, res)
	})
	if err != nil {
		return 0, fmt.Errorf("graph builder: store annotation embeddings: %w", err)
	}
	return len(updates), nil
}

// AnnotationText is the canonical text form of an annotation, shared by the
// embedding backfill and the enricher's similarity queries.
func AnnotationText(qualifier, name, definition, aspect string) string {
	return fmt.Sprintf("qualifier: %s\nname: %s\ndefinition: %s\naspect: %s", qualifier, name, definition, aspect)
}

func consumeOnly(ctx context.Context, res neo4j.ResultWithContext) error {
	_, err := res.Consume(ctx)
	return err
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
