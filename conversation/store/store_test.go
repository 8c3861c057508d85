package store

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/docpixie/docpixie/conversation"
	"github.com/docpixie/docpixie/errors"
	"github.com/docpixie/docpixie/message"
)

// storeUnderTest builds each locally-runnable backend; redis and postgres
// need live services and are exercised against their interfaces elsewhere.
func storesUnderTest(t *testing.T) map[string]conversation.Store {
	t.Helper()
	file, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return map[string]conversation.Store{
		"inmemory": NewInMemoryStore(),
		"file":     file,
	}
}

func sampleRecord(title string) *conversation.Record {
	rec := conversation.NewRecord(title)
	rec.Append(message.New(message.RoleUser, title))
	rec.Append(message.New(message.RoleAssistant, "the answer"))
	return rec
}

func TestSaveAndGet(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := sampleRecord("first question")

			if err := store.Save(ctx, rec); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := store.Get(ctx, rec.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Title != rec.Title || len(got.Messages) != 2 {
				t.Errorf("got %+v", got)
			}
			if got.Messages[0].Content != "first question" {
				t.Errorf("message content = %q", got.Messages[0].Content)
			}
		})
	}
}

func TestGetNotFound(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), "no-such-id")
			if !stderrors.Is(err, errors.ErrNotFound) {
				t.Errorf("error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestSaveReplaces(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := sampleRecord("q")
			store.Save(ctx, rec)

			rec.Append(message.New(message.RoleUser, "follow-up"))
			store.Save(ctx, rec)

			got, err := store.Get(ctx, rec.ID)
			if err != nil {
				t.Fatal(err)
			}
			if len(got.Messages) != 3 {
				t.Errorf("messages = %d, want 3", len(got.Messages))
			}
		})
	}
}

func TestListRecentFirst(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			older := sampleRecord("older")
			older.UpdatedAt = time.Now().Add(-time.Hour)
			newer := sampleRecord("newer")

			store.Save(ctx, older)
			store.Save(ctx, newer)

			recs, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(recs) != 2 {
				t.Fatalf("records = %d, want 2", len(recs))
			}
			if recs[0].Title != "newer" || recs[1].Title != "older" {
				t.Errorf("order = %q, %q", recs[0].Title, recs[1].Title)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := sampleRecord("q")
			store.Save(ctx, rec)

			if err := store.Delete(ctx, rec.ID); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if err := store.Delete(ctx, rec.ID); !stderrors.Is(err, errors.ErrNotFound) {
				t.Errorf("second delete error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestInMemoryIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	rec := sampleRecord("q")
	store.Save(ctx, rec)

	got, _ := store.Get(ctx, rec.ID)
	got.Messages[0].Content = "mutated"

	fresh, _ := store.Get(ctx, rec.ID)
	if fresh.Messages[0].Content != "q" {
		t.Errorf("stored record leaked a shared reference: %q", fresh.Messages[0].Content)
	}
}
