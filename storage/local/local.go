// Package local persists documents on the local filesystem. Each document
// gets its own directory holding a metadata.json plus copies of its page
// images, so the store survives restarts without any external service.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/docpixie/docpixie/document"
	"github.com/docpixie/docpixie/errors"
	"github.com/docpixie/docpixie/pkg/logging"
	"github.com/docpixie/docpixie/storage"
)

const metadataFile = "metadata.json"

// Store is a filesystem-backed document store.
type Store struct {
	basePath string
	log      *slog.Logger
}

var _ storage.Storage = (*Store)(nil)

// New creates the base directory if needed and returns the store.
func New(basePath string) (*Store, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: storage path is empty", errors.ErrInvalidInput)
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	log := logging.WithComponent("storage.local")
	log.Info("initialized local storage", "path", basePath)
	return &Store{basePath: basePath, log: log}, nil
}

func (s *Store) docDir(id string) string {
	return filepath.Join(s.basePath, id)
}

func (s *Store) metadataPath(id string) string {
	return filepath.Join(s.docDir(id), metadataFile)
}

func (s *Store) pagesDir(id string) string {
	return filepath.Join(s.docDir(id), "pages")
}

// metadata is the on-disk document record. Page image paths point inside the
// store's own pages directory.
type metadata struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Summary   string          `json:"summary,omitempty"`
	Status    document.Status `json:"status"`
	PageCount int             `json:"page_count"`
	Pages     []document.Page `json:"pages"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SaveDocument copies the document's page images into the store and writes
// the metadata record. A failed save removes the partial directory.
func (s *Store) SaveDocument(ctx context.Context, doc *document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document has no id", errors.ErrInvalidInput)
	}

	pagesDir := s.pagesDir(doc.ID)
	if err := os.MkdirAll(pagesDir, 0o755); err != nil {
		return fmt.Errorf("create document directory: %w", err)
	}

	stored := make([]document.Page, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		dest := filepath.Join(pagesDir, fmt.Sprintf("page_%03d%s", page.Number, filepath.Ext(page.ImagePath)))
		if err := copyFile(page.ImagePath, dest); err != nil {
			s.log.Warn("skipping page image", "document", doc.ID, "page", page.Number, "error", err)
			continue
		}
		copied := page
		copied.ImagePath = dest
		stored = append(stored, copied)
	}

	meta := metadata{
		ID:        doc.ID,
		Name:      doc.Name,
		Summary:   doc.Summary,
		Status:    doc.Status,
		PageCount: len(stored),
		Pages:     stored,
		Metadata:  doc.Metadata,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: time.Now(),
	}
	if err := s.writeMetadata(doc.ID, &meta); err != nil {
		os.RemoveAll(s.docDir(doc.ID))
		return err
	}

	s.log.Info("saved document", "document", doc.ID, "pages", len(stored))
	return nil
}

// GetDocument loads a document by id.
func (s *Store) GetDocument(ctx context.Context, id string) (*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	meta, err := s.readMetadata(id)
	if err != nil {
		return nil, err
	}
	return &document.Document{
		ID:        meta.ID,
		Name:      meta.Name,
		Pages:     meta.Pages,
		Summary:   meta.Summary,
		Status:    meta.Status,
		Metadata:  meta.Metadata,
		CreatedAt: meta.CreatedAt,
	}, nil
}

// ListDocuments returns metadata for every stored document, newest first.
// Unreadable document directories are skipped.
func (s *Store) ListDocuments(ctx context.Context) ([]document.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("read storage directory: %w", err)
	}

	var infos []document.Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.readMetadata(entry.Name())
		if err != nil {
			s.log.Warn("skipping unreadable document", "document", entry.Name(), "error", err)
			continue
		}
		infos = append(infos, document.Info{
			ID:        meta.ID,
			Name:      meta.Name,
			Summary:   meta.Summary,
			PageCount: meta.PageCount,
			Status:    meta.Status,
			CreatedAt: meta.CreatedAt,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// DeleteDocument removes the document directory and everything in it.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(s.metadataPath(id)); os.IsNotExist(err) {
		return fmt.Errorf("%w: document %s", errors.ErrNotFound, id)
	}
	if err := os.RemoveAll(s.docDir(id)); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	s.log.Info("deleted document", "document", id)
	return nil
}

// UpdateSummary rewrites the stored summary without touching page data.
func (s *Store) UpdateSummary(ctx context.Context, id, summary string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	meta, err := s.readMetadata(id)
	if err != nil {
		return err
	}
	meta.Summary = summary
	meta.UpdatedAt = time.Now()
	return s.writeMetadata(id, meta)
}

// GetAllDocuments loads every stored document with its full page list.
func (s *Store) GetAllDocuments(ctx context.Context) ([]*document.Document, error) {
	infos, err := s.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]*document.Document, 0, len(infos))
	for _, info := range infos {
		doc, err := s.GetDocument(ctx, info.ID)
		if err != nil {
			s.log.Warn("skipping unreadable document", "document", info.ID, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Store) readMetadata(id string) (*metadata, error) {
	data, err := os.ReadFile(s.metadataPath(id))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: document %s", errors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata for %s: %w", id, err)
	}
	var meta metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata for %s: %w", id, err)
	}
	return &meta, nil
}

func (s *Store) writeMetadata(id string, meta *metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata for %s: %w", id, err)
	}
	if err := os.WriteFile(s.metadataPath(id), data, 0o644); err != nil {
		return fmt.Errorf("write metadata for %s: %w", id, err)
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
