package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docpixie/docpixie/errors"
	"github.com/docpixie/docpixie/pkg/logging"
	"github.com/docpixie/docpixie/provider"
)

const (
	reformulateMaxTokens   = 1024
	reformulateTemperature = 0.2
)

// queryReformulator rewrites a follow-up query so it stands alone: pronouns
// and references are resolved against the condensed conversation context
// without merging in earlier questions.
type queryReformulator struct {
	llm    provider.Provider
	prompt string
	log    *slog.Logger
}

func newQueryReformulator(llm provider.Provider, cfg *Config) *queryReformulator {
	return &queryReformulator{
		llm:    llm,
		prompt: cfg.ReformulationPrompt,
		log:    logging.WithComponent(cfg.Name + ".reformulator"),
	}
}

func (r *queryReformulator) Reformulate(ctx context.Context, query, conversationContext string) (string, error) {
	prompt := renderPrompt(r.prompt,
		"conversation_context", conversationContext,
		"recent_topics", recentTopics(conversationContext),
		"current_query", query)

	out, err := r.llm.ProcessText(ctx, []provider.Message{
		provider.SystemText(systemReformulator),
		provider.UserText(prompt),
	}, reformulateMaxTokens, reformulateTemperature)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrQueryReformulation, err)
	}

	decoded, err := decodeJSON[struct {
		ReformulatedQuery string `json:"reformulated_query"`
	}](out)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrQueryReformulation, err)
	}
	if strings.TrimSpace(decoded.ReformulatedQuery) == "" {
		return "", fmt.Errorf("%w: response missing reformulated_query", errors.ErrQueryReformulation)
	}

	reformulated := strings.TrimSpace(decoded.ReformulatedQuery)
	if reformulated != query {
		r.log.Debug("reformulated query", "original", query, "reformulated", reformulated)
	}
	return reformulated, nil
}

// recentTopics extracts the last few user lines from the formatted context as
// a lightweight topic hint for the reformulation prompt.
func recentTopics(conversationContext string) string {
	var topics []string
	for _, line := range strings.Split(conversationContext, "\n") {
		if rest, ok := strings.CutPrefix(line, "User: "); ok {
			topics = append(topics, strings.TrimSpace(rest))
		}
	}
	if len(topics) > 3 {
		topics = topics[len(topics)-3:]
	}
	if len(topics) == 0 {
		return "None"
	}
	return strings.Join(topics, "; ")
}
