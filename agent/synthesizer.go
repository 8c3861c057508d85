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
	synthesisMaxTokens   = 2048
	synthesisTemperature = 0.2
)

const noFindingsAnswer = "I couldn't find any relevant information to answer your query."

// responseSynthesizer combines all task findings into the final answer. This
// is the one stage with an intentional silent fallback: the raw findings are
// already computed, so on call failure a deterministic concatenation beats
// surfacing an error at the pipeline's last step.
type responseSynthesizer struct {
	llm    provider.Provider
	prompt string
	log    *slog.Logger
}

func newResponseSynthesizer(llm provider.Provider, cfg *Config) *responseSynthesizer {
	return &responseSynthesizer{
		llm:    llm,
		prompt: cfg.SynthesisPrompt,
		log:    logging.WithComponent(cfg.Name + ".synthesizer"),
	}
}

func (s *responseSynthesizer) Synthesize(ctx context.Context, originalQuery string, results []TaskResult) string {
	if len(results) == 0 {
		return noFindingsAnswer
	}

	answer, err := s.call(ctx, originalQuery, results)
	if err != nil {
		s.log.Error("synthesis failed, falling back to concatenated findings", "error", err)
		return fallbackAnswer(results)
	}
	return answer
}

// call makes the synthesis model call. An empty reply counts as a failure
// so the caller always has a non-empty answer to fall back to.
func (s *responseSynthesizer) call(ctx context.Context, originalQuery string, results []TaskResult) (string, error) {
	prompt := renderPrompt(s.prompt,
		"original_query", originalQuery,
		"results_text", formatResults(results))

	out, err := s.llm.ProcessText(ctx, []provider.Message{
		provider.SystemText(systemSynthesizer),
		provider.UserText(prompt),
	}, synthesisMaxTokens, synthesisTemperature)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrResponseSynthesis, err)
	}

	answer := strings.TrimSpace(out)
	if answer == "" {
		return "", fmt.Errorf("%w: model returned an empty answer", errors.ErrResponseSynthesis)
	}
	return answer, nil
}

func formatResults(results []TaskResult) string {
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		blocks = append(blocks, fmt.Sprintf("Task %d: %s\nDescription: %s\nFindings:\n%s",
			i+1, r.Task.Name, r.Task.Description, r.Analysis))
	}
	return strings.Join(blocks, "\n\n")
}

// fallbackAnswer deterministically concatenates each task heading with its
// analysis, no second model call.
func fallbackAnswer(results []TaskResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("## ")
		b.WriteString(r.Task.Name)
		b.WriteString("\n")
		b.WriteString(r.Analysis)
	}
	return b.String()
}
