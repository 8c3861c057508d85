// Package memory provides an in-process document store. Useful for tests and
// short-lived sessions; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/docpixie/docpixie/document"
	"github.com/docpixie/docpixie/errors"
	"github.com/docpixie/docpixie/storage"
)

// Store keeps documents in a map guarded by a mutex. Documents are deep-
// copied on the way in and out so callers can't mutate stored state.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*document.Document
}

var _ storage.Storage = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{docs: make(map[string]*document.Document)}
}

// SaveDocument stores a deep copy of the document, replacing any existing
// entry with the same id.
func (s *Store) SaveDocument(ctx context.Context, doc *document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document has no id", errors.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc.Clone()
	return nil
}

// GetDocument returns a deep copy of the document with the given id.
func (s *Store) GetDocument(ctx context.Context, id string) (*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", errors.ErrNotFound, id)
	}
	return doc.Clone(), nil
}

// ListDocuments returns metadata for every stored document, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]document.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]document.Info, 0, len(s.docs))
	for _, doc := range s.docs {
		infos = append(infos, document.Info{
			ID:        doc.ID,
			Name:      doc.Name,
			Summary:   doc.Summary,
			PageCount: doc.PageCount(),
			Status:    doc.Status,
			CreatedAt: doc.CreatedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// DeleteDocument removes a document by id.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("%w: document %s", errors.ErrNotFound, id)
	}
	delete(s.docs, id)
	return nil
}

// UpdateSummary replaces the stored summary for a document.
func (s *Store) UpdateSummary(ctx context.Context, id, summary string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return fmt.Errorf("%w: document %s", errors.ErrNotFound, id)
	}
	doc.Summary = summary
	return nil
}

// GetAllDocuments returns deep copies of every stored document, newest first.
func (s *Store) GetAllDocuments(ctx context.Context) ([]*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*document.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc.Clone())
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}
