// Package conversation defines multi-turn conversation records and the
// store contract used to persist them between queries.
package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docpixie/docpixie/message"
)

const titleMaxRunes = 60

// Record is one persisted conversation: an ordered message log plus
// bookkeeping. The message log is append-only.
type Record struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Messages  []*message.Message `json:"messages"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	TotalCost float64            `json:"total_cost"`
}

// NewRecord creates an empty conversation titled after the first query.
func NewRecord(title string) *Record {
	now := time.Now()
	return &Record{
		ID:        uuid.NewString(),
		Title:     TruncateTitle(title),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a message to the log and updates bookkeeping.
func (r *Record) Append(msg *message.Message) {
	r.Messages = append(r.Messages, msg)
	r.TotalCost += msg.Cost
	r.UpdatedAt = time.Now()
}

// Turns returns the number of conversation turns recorded so far.
func (r *Record) Turns() int {
	return message.CountTurns(r.Messages)
}

// TruncateTitle shortens a query into a display title.
func TruncateTitle(query string) string {
	title := strings.TrimSpace(query)
	if runes := []rune(title); len(runes) > titleMaxRunes {
		title = string(runes[:titleMaxRunes]) + "..."
	}
	return title
}

// Store persists conversation records. Implementations live in the store
// subpackage.
type Store interface {
	// Save writes or replaces a conversation record.
	Save(ctx context.Context, rec *Record) error

	// Get returns a conversation by id, or errors.ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns all conversations ordered by most recently updated.
	List(ctx context.Context) ([]*Record, error)

	// Delete removes a conversation. Deleting an unknown id returns
	// errors.ErrNotFound.
	Delete(ctx context.Context, id string) error
}
