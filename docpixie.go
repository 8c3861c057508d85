// Package docpixie is the embedding facade for the document Q&A pipeline.
// It wires a vision provider, a document store, and the adaptive agent from
// a single configuration and exposes document management plus Query.
//
// Pages are images. Callers render documents to page images (one file per
// page) before ingestion; docpixie never parses PDFs itself.
package docpixie

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/docpixie/docpixie/agent"
	"github.com/docpixie/docpixie/config"
	"github.com/docpixie/docpixie/contrib/provider/claude"
	"github.com/docpixie/docpixie/contrib/provider/gemini"
	"github.com/docpixie/docpixie/contrib/provider/openai"
	"github.com/docpixie/docpixie/contrib/provider/openrouter"
	"github.com/docpixie/docpixie/contrib/storage/mongo"
	"github.com/docpixie/docpixie/document"
	pixieerrors "github.com/docpixie/docpixie/errors"
	"github.com/docpixie/docpixie/message"
	"github.com/docpixie/docpixie/pkg/logging"
	"github.com/docpixie/docpixie/provider"
	"github.com/docpixie/docpixie/storage"
	"github.com/docpixie/docpixie/storage/local"
	"github.com/docpixie/docpixie/storage/memory"
)

// Pixie bundles the provider, the document store, and the agent behind one
// handle. It is safe for concurrent use when its storage backend is.
type Pixie struct {
	cfg        *config.Config
	llm        provider.Provider
	store      storage.Storage
	agent      *agent.Agent
	summarizer *agent.Summarizer
	closers    []func(context.Context) error
}

// New builds a Pixie from configuration. The context is only used for
// backend handshakes during construction.
func New(ctx context.Context, cfg *config.Config, opts ...agent.Option) (*Pixie, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pixie{cfg: cfg}

	llm, err := p.buildProvider(ctx)
	if err != nil {
		return nil, err
	}
	p.llm = llm

	store, err := p.buildStorage()
	if err != nil {
		p.Close(ctx)
		return nil, err
	}
	p.store = store

	agentOpts := append([]agent.Option{
		agent.WithMaxIterations(cfg.Agent.MaxIterations),
		agent.WithMaxPagesPerTask(cfg.Agent.MaxPagesPerTask),
		agent.WithMaxTasksPerPlan(cfg.Agent.MaxTasksPerPlan),
		agent.WithMaxConversationTurns(cfg.Agent.MaxConversationTurns),
		agent.WithImageDetail(provider.Detail(cfg.Agent.ImageDetail)),
		agent.WithTokenizerModel(cfg.Agent.TokenizerModel),
	}, opts...)

	p.agent = agent.New(llm, store, agentOpts...)
	p.summarizer = agent.NewSummarizer(llm, agentOpts...)
	return p, nil
}

func (p *Pixie) buildProvider(ctx context.Context) (provider.Provider, error) {
	pc := p.cfg.Provider
	switch pc.Type {
	case config.ProviderClaude:
		cfg := claude.DefaultConfig(pc.APIKey, pc.BaseURL)
		if pc.Model != "" {
			cfg.Model = pc.Model
		}
		return claude.New(cfg), nil
	case config.ProviderGemini:
		cfg := gemini.DefaultConfig(pc.APIKey)
		if pc.Model != "" {
			cfg.Model = pc.Model
		}
		g, err := gemini.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("build gemini provider: %w", err)
		}
		p.closers = append(p.closers, func(context.Context) error { return g.Close() })
		return g, nil
	case config.ProviderOpenRouter:
		cfg := openrouter.DefaultConfig(pc.APIKey)
		if pc.Model != "" {
			cfg.Model = pc.Model
		}
		return openrouter.New(cfg), nil
	default:
		cfg := openai.DefaultConfig().WithAPIKey(pc.APIKey).WithBaseURL(pc.BaseURL)
		if pc.Model != "" {
			cfg.WithModel(pc.Model)
		}
		return openai.New(cfg), nil
	}
}

func (p *Pixie) buildStorage() (storage.Storage, error) {
	sc := p.cfg.Storage
	switch sc.Type {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageMongo:
		cfg := mongo.DefaultConfig()
		cfg.URI = sc.MongoURI
		if sc.MongoDatabase != "" {
			cfg.Database = sc.MongoDatabase
		}
		store, err := mongo.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("build mongo storage: %w", err)
		}
		p.closers = append(p.closers, store.Close)
		return store, nil
	default:
		store, err := local.New(sc.Path)
		if err != nil {
			return nil, fmt.Errorf("build local storage: %w", err)
		}
		return store, nil
	}
}

// AddDocumentImages ingests a document from pre-rendered page images, in
// page order. The document is summarized with the vision model and saved;
// a summarization failure still saves the document, without a summary.
func (p *Pixie) AddDocumentImages(ctx context.Context, name string, imagePaths []string) (*document.Document, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: document name is empty", pixieerrors.ErrInvalidInput)
	}
	if len(imagePaths) == 0 {
		return nil, fmt.Errorf("%w: no page images given", pixieerrors.ErrInvalidInput)
	}

	doc := &document.Document{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    document.StatusProcessing,
		CreatedAt: time.Now(),
	}
	for i, path := range imagePaths {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: page image %s: %v", pixieerrors.ErrInvalidInput, path, err)
		}
		doc.Pages = append(doc.Pages, document.Page{
			Number:    i + 1,
			ImagePath: path,
		})
	}

	log := logging.WithComponent("docpixie")
	if err := p.summarizer.SummarizeDocument(ctx, doc); err != nil {
		log.Warn("document summarization failed, saving without summary",
			"document", doc.Name, "error", err)
	}
	doc.Status = document.StatusCompleted

	if err := p.store.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	// Return the stored view so callers see backend-assigned page paths.
	stored, err := p.store.GetDocument(ctx, doc.ID)
	if err != nil {
		return doc, nil
	}
	return stored, nil
}

// Query answers a question over the stored documents. It never returns an
// error; failures surface as an apologetic answer in the result.
func (p *Pixie) Query(ctx context.Context, query string, history []*message.Message) *agent.QueryResult {
	return p.agent.Query(ctx, query, history)
}

// GetDocument returns a stored document by id.
func (p *Pixie) GetDocument(ctx context.Context, id string) (*document.Document, error) {
	return p.store.GetDocument(ctx, id)
}

// ListDocuments returns metadata for all stored documents, newest first.
func (p *Pixie) ListDocuments(ctx context.Context) ([]document.Info, error) {
	infos, err := p.store.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// DeleteDocument removes a stored document.
func (p *Pixie) DeleteDocument(ctx context.Context, id string) error {
	return p.store.DeleteDocument(ctx, id)
}

// Close releases backend connections. It is safe to call after a failed New.
func (p *Pixie) Close(ctx context.Context) error {
	var first error
	for _, close := range p.closers {
		if err := close(ctx); err != nil && first == nil {
			first = err
		}
	}
	p.closers = nil
	return first
}
