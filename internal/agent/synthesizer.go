package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/evangelosroutis/hypothesis-generation/internal/platform/logger"
)

// QuerySynthesizer turns a question into a Cypher query using the fixed
// per-category instruction/exemplar bundle and the live schema description.
// It is stateless per call; the category selects the bundle.
type QuerySynthesizer struct {
	llm    TextGenerator
	schema string
	log    *logger.Logger
}

func NewQuerySynthesizer(llm TextGenerator, schema string, log *logger.Logger) *QuerySynthesizer {
	return &QuerySynthesizer{
		llm:    llm,
		schema: schema,
		log:    log.With("service", "QuerySynthesizer"),
	}
}

func (s *QuerySynthesizer) Synthesize(ctx context.Context, category Category, question string) (string, error) {
	bundle, err := bundleFor(category)
	if err != nil {
		return "", err
	}
	system := fmt.Sprintf(bundle.synthesis, s.schema, question)
	raw, err := s.llm.GenerateText(ctx, system, question)
	if err != nil {
		return "", fmt.Errorf("synthesize query: %w", err)
	}
	query := sanitizeQuery(raw)
	if query == "" {
		return "", fmt.Errorf("synthesize query: completion contained no query text")
	}
	s.log.Debug("synthesized query", "category", string(category), "query", query)
	return query, nil
}

// Correct asks for a repaired query given the failing statement and the
// store's error message.
func (s *QuerySynthesizer) Correct(ctx context.Context, category Category, failedQuery, storeError string) (string, error) {
	bundle, err := bundleFor(category)
	if err != nil {
		return "", err
	}
	system := fmt.Sprintf(bundle.correction, s.schema, failedQuery, storeError)
	raw, err := s.llm.GenerateText(ctx, system, "Return the corrected Cypher query.")
	if err != nil {
		return "", fmt.Errorf("correct query: %w", err)
	}
	query := sanitizeQuery(raw)
	if query == "" {
		return "", fmt.Errorf("correct query: completion contained no query text")
	}
	s.log.Debug("corrected query", "category", string(category), "query", query)
	return query, nil
}

// sanitizeQuery strips code fences and label prefixes the model sometimes
// wraps around the query despite instructions.
func sanitizeQuery(raw string) string {
	q := strings.TrimSpace(raw)
	if strings.HasPrefix(q, "```") {
		q = strings.TrimPrefix(q, "```cypher")
		q = strings.TrimPrefix(q, "```")
		if idx := strings.LastIndex(q, "```"); idx >= 0 {
			q = q[:idx]
		}
	}
	q = strings.TrimSpace(q)
	lower := strings.ToLower(q)
	if strings.HasPrefix(lower, "cypher:") {
		q = strings.TrimSpace(q[len("cypher:"):])
	}
	return q
}
