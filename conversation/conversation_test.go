package conversation

import (
	"strings"
	"testing"

	"github.com/docpixie/docpixie/message"
)

func TestNewRecord(t *testing.T) {
	rec := NewRecord("What was Q3 revenue?")
	if rec.ID == "" {
		t.Error("record has no id")
	}
	if rec.Title != "What was Q3 revenue?" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestTruncateTitle(t *testing.T) {
	long := strings.Repeat("é", 80)
	got := TruncateTitle("  " + long + "  ")
	if want := strings.Repeat("é", 60) + "..."; got != want {
		t.Errorf("TruncateTitle() = %q, want %q", got, want)
	}

	if got := TruncateTitle("short"); got != "short" {
		t.Errorf("TruncateTitle() = %q", got)
	}
}

func TestAppendTracksCostAndTurns(t *testing.T) {
	rec := NewRecord("q")
	created := rec.UpdatedAt

	user := message.New(message.RoleUser, "question")
	answer := message.New(message.RoleAssistant, "answer")
	answer.Cost = 0.05

	rec.Append(user)
	rec.Append(answer)

	if rec.Turns() != 1 {
		t.Errorf("turns = %d, want 1", rec.Turns())
	}
	if rec.TotalCost != 0.05 {
		t.Errorf("total cost = %v, want 0.05", rec.TotalCost)
	}
	if !rec.UpdatedAt.After(created) && !rec.UpdatedAt.Equal(created) {
		t.Error("UpdatedAt went backwards")
	}
	if len(rec.Messages) != 2 {
		t.Errorf("messages = %d, want 2", len(rec.Messages))
	}
}
