package agent

import (
	"context"
	"fmt"

	"github.com/evangelosroutis/hypothesis-generation/internal/platform/logger"
)

// TextGenerator is the completion surface the agent needs. Satisfied by
// the platform openai client.
type TextGenerator interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

// Classifier routes a question to one of the two supported categories with
// a single few-shot completion call.
type Classifier struct {
	llm TextGenerator
	log *logger.Logger
}

func NewClassifier(llm TextGenerator, log *logger.Logger) *Classifier {
	return &Classifier{llm: llm, log: log.With("service", "IntentClassifier")}
}

func (c *Classifier) Classify(ctx context.Context, question string) (Category, error) {
	system := fmt.Sprintf(classificationPrompt, question)
	label, err := c.llm.GenerateText(ctx, system, question)
	if err != nil {
		return "", fmt.Errorf("classify question: %w", err)
	}
	category, err := ParseCategory(label)
	if err != nil {
		c.log.Warn("unroutable classification label", "label", label)
		return "", err
	}
	c.log.Debug("classified question", "category", string(category))
	return category, nil
}
