// Package storage defines the document persistence interface the agent and
// facade depend on. Backends live in subpackages and under contrib/storage.
package storage

import (
	"context"

	"github.com/docpixie/docpixie/document"
)

// Storage is the document store contract. The agent itself only calls
// GetAllDocuments (once per query, to build the planner's catalogue); the
// remaining operations serve ingestion and management.
type Storage interface {
	// SaveDocument persists a document and its page records.
	SaveDocument(ctx context.Context, doc *document.Document) error

	// GetDocument returns a document by id, or errors.ErrNotFound.
	GetDocument(ctx context.Context, id string) (*document.Document, error)

	// ListDocuments returns lightweight metadata for all documents.
	ListDocuments(ctx context.Context) ([]document.Info, error)

	// DeleteDocument removes a document. Deleting an unknown id returns
	// errors.ErrNotFound.
	DeleteDocument(ctx context.Context, id string) error

	// UpdateSummary replaces the stored summary for a document.
	UpdateSummary(ctx context.Context, id, summary string) error

	// GetAllDocuments returns every stored document with its full page list.
	GetAllDocuments(ctx context.Context) ([]*document.Document, error)
}
