package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docpixie/docpixie/document"
	"github.com/docpixie/docpixie/pkg/logging"
	"github.com/docpixie/docpixie/provider"
)

const (
	pageSummaryMaxTokens  = 200
	docSummaryMaxTokens   = 400
	summarizerTemperature = 0.3
)

// Summarizer generates page and document summaries at ingestion time. The
// document summary feeds the planner's catalogue, so a missing summary
// degrades planning quality but is never fatal.
type Summarizer struct {
	llm    provider.Provider
	detail provider.Detail
	log    *slog.Logger
}

// NewSummarizer builds a summarizer backed by the given vision provider.
func NewSummarizer(llm provider.Provider, opts ...Option) *Summarizer {
	cfg := applyOptions(nil, opts)
	return &Summarizer{
		llm:    llm,
		detail: cfg.ImageDetail,
		log:    logging.WithComponent(cfg.Name + ".summarizer"),
	}
}

// SummarizeDocument generates per-page summaries plus one whole-document
// summary and stores them on the document in place. Individual page failures
// are logged and skipped.
func (s *Summarizer) SummarizeDocument(ctx context.Context, doc *document.Document) error {
	s.log.Info("summarizing document", "document", doc.Name, "pages", doc.PageCount())

	for i := range doc.Pages {
		summary, err := s.summarizePage(ctx, doc.Pages[i])
		if err != nil {
			s.log.Error("page summary failed", "document", doc.Name, "page", doc.Pages[i].Number, "error", err)
			continue
		}
		if doc.Pages[i].Metadata == nil {
			doc.Pages[i].Metadata = make(map[string]any, 1)
		}
		doc.Pages[i].Metadata["summary"] = summary
	}

	summary, err := s.summarizeWholeDocument(ctx, doc)
	if err != nil {
		return fmt.Errorf("document summary for %s: %w", doc.Name, err)
	}
	doc.Summary = summary
	return nil
}

func (s *Summarizer) summarizePage(ctx context.Context, page document.Page) (string, error) {
	msgs := []provider.Message{
		provider.SystemText(systemPageSummarizer),
		provider.UserParts(
			provider.TextPart{Text: pageSummaryPrompt},
			provider.ImagePart{Path: page.ImagePath, Detail: s.detail},
		),
	}

	out, err := s.llm.ProcessMultimodal(ctx, msgs, pageSummaryMaxTokens, summarizerTemperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// summarizeWholeDocument sends every page image in a single vision call.
func (s *Summarizer) summarizeWholeDocument(ctx context.Context, doc *document.Document) (string, error) {
	parts := []provider.Part{
		provider.TextPart{Text: renderPrompt(documentSummaryPrompt, "document_name", doc.Name)},
	}
	for _, page := range doc.Pages {
		parts = append(parts, provider.ImagePart{Path: page.ImagePath, Detail: s.detail})
	}

	msgs := []provider.Message{
		provider.SystemText(systemDocumentSummarizer),
		provider.UserParts(parts...),
	}

	out, err := s.llm.ProcessMultimodal(ctx, msgs, docSummaryMaxTokens, summarizerTemperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
