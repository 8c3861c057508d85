package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/docpixie/docpixie/document"
	"github.com/docpixie/docpixie/errors"
	"github.com/docpixie/docpixie/pkg/logging"
	"github.com/docpixie/docpixie/provider"
)

const (
	selectMaxTokens   = 200
	selectTemperature = 0.1
)

type pageSelection struct {
	SelectedPages []int  `json:"selected_pages"`
	Reasoning     string `json:"reasoning"`
}

// pageSelector picks the relevant subset of a task's candidate pages by
// showing the vision model every candidate image tagged with a 1-based
// ordinal. Selection order is the model's relevance order and is preserved.
type pageSelector struct {
	llm      provider.Provider
	prompt   string
	maxPages int
	detail   provider.Detail
	log      *slog.Logger
}

func newPageSelector(llm provider.Provider, cfg *Config) *pageSelector {
	return &pageSelector{
		llm:      llm,
		prompt:   cfg.PageSelectionPrompt,
		maxPages: cfg.MaxPagesPerTask,
		detail:   provider.DetailLow,
		log:      logging.WithComponent(cfg.Name + ".selector"),
	}
}

// Select returns the candidate pages the model judged relevant to the task.
// Candidate sets at or under the page cap pass through without a call.
func (s *pageSelector) Select(ctx context.Context, taskName, taskDescription string, candidates []document.Page) ([]document.Page, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidate pages", errors.ErrPageSelection)
	}
	if len(candidates) <= s.maxPages {
		s.log.Debug("returning all candidate pages", "pages", len(candidates))
		return document.ClonePages(candidates), nil
	}

	prompt := renderPrompt(s.prompt,
		"max_pages", strconv.Itoa(s.maxPages),
		"query", taskName,
		"query_description", taskDescription)

	parts := []provider.Part{provider.TextPart{Text: prompt}}
	for i, page := range candidates {
		parts = append(parts,
			provider.ImagePart{Path: page.ImagePath, Detail: s.detail},
			provider.TextPart{Text: fmt.Sprintf("[Page %d]", i+1)},
		)
	}

	msgs := []provider.Message{
		provider.SystemText(systemPageSelector),
		provider.UserParts(parts...),
	}

	out, err := s.llm.ProcessMultimodal(ctx, msgs, selectMaxTokens, selectTemperature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrPageSelection, err)
	}

	decoded, err := decodeJSON[pageSelection](out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrPageSelection, err)
	}

	selected := make([]document.Page, 0, len(decoded.SelectedPages))
	for _, ordinal := range decoded.SelectedPages {
		if ordinal < 1 || ordinal > len(candidates) {
			s.log.Warn("discarding out-of-range page ordinal", "ordinal", ordinal, "candidates", len(candidates))
			continue
		}
		selected = append(selected, candidates[ordinal-1])
		if len(selected) == s.maxPages {
			break
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: model selected no valid pages", errors.ErrPageSelection)
	}

	s.log.Info("selected pages", "selected", len(selected), "candidates", len(candidates))
	return selected, nil
}
