// Package store provides conversation store backends: in-memory, local
// file, Redis, and PostgreSQL.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/docpixie/docpixie/conversation"
	"github.com/docpixie/docpixie/errors"
	"github.com/docpixie/docpixie/message"
)

// InMemoryStore keeps conversations in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*conversation.Record
}

var _ conversation.Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*conversation.Record)}
}

// Save writes or replaces a conversation record.
func (s *InMemoryStore) Save(ctx context.Context, rec *conversation.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("%w: conversation has no id", errors.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = cloneRecord(rec)
	return nil
}

// Get returns a conversation by id.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*conversation.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: conversation %s", errors.ErrNotFound, id)
	}
	return cloneRecord(rec), nil
}

// List returns all conversations, most recently updated first.
func (s *InMemoryStore) List(ctx context.Context) ([]*conversation.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*conversation.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Delete removes a conversation by id.
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("%w: conversation %s", errors.ErrNotFound, id)
	}
	delete(s.records, id)
	return nil
}

func cloneRecord(rec *conversation.Record) *conversation.Record {
	out := *rec
	out.Messages = message.CloneMessages(rec.Messages)
	return &out
}
