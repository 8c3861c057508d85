package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docpixie/docpixie/errors"
	"github.com/docpixie/docpixie/pkg/logging"
	"github.com/docpixie/docpixie/provider"
)

const (
	classifyMaxTokens   = 450
	classifyTemperature = 0.1
)

// classification is the decoded classifier verdict.
type classification struct {
	Reasoning      string `json:"reasoning"`
	NeedsDocuments bool   `json:"needs_documents"`
}

// queryClassifier decides whether a query needs document retrieval at all.
// It is a hard gate: a negative verdict short-circuits the whole pipeline.
type queryClassifier struct {
	llm    provider.Provider
	prompt string
	log    *slog.Logger
}

func newQueryClassifier(llm provider.Provider, cfg *Config) *queryClassifier {
	return &queryClassifier{
		llm:    llm,
		prompt: cfg.ClassifierPrompt,
		log:    logging.WithComponent(cfg.Name + ".classifier"),
	}
}

func (c *queryClassifier) Classify(ctx context.Context, query string) (*classification, error) {
	prompt := renderPrompt(c.prompt, "query", query)

	out, err := c.llm.ProcessText(ctx, []provider.Message{
		provider.SystemText(systemClassifier),
		provider.UserText(prompt),
	}, classifyMaxTokens, classifyTemperature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrQueryClassification, err)
	}

	verdict, err := decodeJSON[classification](out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrQueryClassification, err)
	}
	if verdict.Reasoning == "" {
		return nil, fmt.Errorf("%w: response missing reasoning", errors.ErrQueryClassification)
	}

	c.log.Debug("classified query", "needs_documents", verdict.NeedsDocuments, "reasoning", verdict.Reasoning)
	return verdict, nil
}
