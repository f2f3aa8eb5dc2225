// Package agent answers natural-language questions about genes, diseases
// and gene-gene interactions against the imported pathway graph.
package agent

import (
	"context"
	"fmt"

	"github.com/evangelosroutis/hypothesis-generation/internal/platform/logger"
)

// QueryFailureAnswer is the user-visible answer when query execution could
// not be recovered within the retry budget. It is distinct from
// NotFoundAnswer so callers can tell "found nothing" from "broke".
const QueryFailureAnswer = "I could not query the database for this question. Please try rephrasing it."

// Agent composes classification, query synthesis, bounded-retry execution,
// conditional enrichment and answer synthesis into one call.
type Agent struct {
	classifier *Classifier
	synth      *QuerySynthesizer
	executor   *Executor
	enricher   *Enricher
	answer     *AnswerSynthesizer
	log        *logger.Logger
}

func New(classifier *Classifier, synth *QuerySynthesizer, executor *Executor, enricher *Enricher, answer *AnswerSynthesizer, log *logger.Logger) *Agent {
	return &Agent{
		classifier: classifier,
		synth:      synth,
		executor:   executor,
		enricher:   enricher,
		answer:     answer,
		log:        log.With("service", "Agent"),
	}
}

// Ask runs the full pipeline for one question. On unrecoverable query
// failure it returns QueryFailureAnswer together with the error; pipeline
// state is local to the call, so concurrent Asks are independent.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	category, err := a.classifier.Classify(ctx, question)
	if err != nil {
		return "", err
	}

	query, err := a.synth.Synthesize(ctx, category, question)
	if err != nil {
		return "", err
	}

	rows, err := a.executor.Run(ctx, category, query)
	if err != nil {
		return QueryFailureAnswer, err
	}

	var facts string
	switch category {
	case CategoryDiseaseAssociation:
		facts = FormatRows(rows)
	case CategoryDownstreamInteraction:
		paths := ParsePaths(rows)
		if len(paths) > 0 {
			enriched, err := a.enricher.EnrichPaths(ctx, paths)
			if err != nil {
				return "", fmt.Errorf("enrich interactions: %w", err)
			}
			facts = FormatPaths(enriched)
		}
	default:
		return "", fmt.Errorf("unhandled category %q", category)
	}

	answer, err := a.answer.Render(ctx, category, question, facts)
	if err != nil {
		return "", err
	}
	a.log.Info("answered question", "category", string(category), "found", facts != "")
	return answer, nil
}
