package memory

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/docpixie/docpixie/document"
	"github.com/docpixie/docpixie/errors"
)

func newDoc(id string, createdAt time.Time) *document.Document {
	return &document.Document{
		ID:        id,
		Name:      "doc " + id,
		Status:    document.StatusCompleted,
		CreatedAt: createdAt,
		Pages: []document.Page{
			{Number: 1, ImagePath: "/tmp/" + id + "-1.jpg"},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := New()

	doc := newDoc("a", time.Now())
	if err := store.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}

	got, err := store.GetDocument(ctx, "a")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if got.Name != doc.Name || got.PageCount() != 1 {
		t.Errorf("got %+v", got)
	}

	// Stored state is isolated from caller mutations in both directions.
	doc.Name = "mutated input"
	got.Name = "mutated output"
	fresh, _ := store.GetDocument(ctx, "a")
	if fresh.Name != "doc a" {
		t.Errorf("stored document leaked a shared reference: %q", fresh.Name)
	}
}

func TestSaveRejectsMissingID(t *testing.T) {
	store := New()
	err := store.SaveDocument(context.Background(), &document.Document{})
	if !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestGetNotFound(t *testing.T) {
	store := New()
	_, err := store.GetDocument(context.Background(), "missing")
	if !stderrors.Is(err, errors.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := New()

	base := time.Now()
	store.SaveDocument(ctx, newDoc("old", base.Add(-time.Hour)))
	store.SaveDocument(ctx, newDoc("new", base))

	infos, err := store.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(infos) != 2 || infos[0].ID != "new" || infos[1].ID != "old" {
		t.Errorf("listing order = %v", infos)
	}

	docs, err := store.GetAllDocuments(ctx)
	if err != nil {
		t.Fatalf("GetAllDocuments() error = %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "new" {
		t.Errorf("GetAllDocuments order = %v", docs)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := New()
	store.SaveDocument(ctx, newDoc("a", time.Now()))

	if err := store.DeleteDocument(ctx, "a"); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
	if err := store.DeleteDocument(ctx, "a"); !stderrors.Is(err, errors.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestUpdateSummary(t *testing.T) {
	ctx := context.Background()
	store := New()
	store.SaveDocument(ctx, newDoc("a", time.Now()))

	if err := store.UpdateSummary(ctx, "a", "fresh summary"); err != nil {
		t.Fatalf("UpdateSummary() error = %v", err)
	}
	got, _ := store.GetDocument(ctx, "a")
	if got.Summary != "fresh summary" {
		t.Errorf("summary = %q", got.Summary)
	}

	if err := store.UpdateSummary(ctx, "missing", "x"); !stderrors.Is(err, errors.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestContextCancellation(t *testing.T) {
	store := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.SaveDocument(ctx, newDoc("a", time.Now())); err == nil {
		t.Error("SaveDocument() ignored cancelled context")
	}
	if _, err := store.GetAllDocuments(ctx); err == nil {
		t.Error("GetAllDocuments() ignored cancelled context")
	}
}
