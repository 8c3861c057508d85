package message

import (
	"testing"
)

func TestCountTurns(t *testing.T) {
	msgs := []*Message{
		New(RoleUser, "q1"),
		New(RoleAssistant, "a1"),
		New(RoleUser, "q2"),
		New(RoleAssistant, "a2"),
		New(RoleUser, "q3"),
	}
	if got := CountTurns(msgs); got != 3 {
		t.Errorf("CountTurns() = %d, want 3", got)
	}
	if got := CountTurns(nil); got != 0 {
		t.Errorf("CountTurns(nil) = %d", got)
	}
}

func TestCloneMessages(t *testing.T) {
	msgs := []*Message{New(RoleUser, "hello")}
	clones := CloneMessages(msgs)

	clones[0].Content = "changed"
	if msgs[0].Content != "hello" {
		t.Error("clone shares the message")
	}

	if CloneMessages(nil) != nil {
		t.Error("CloneMessages(nil) should be nil")
	}
	if Clone(nil) != nil {
		t.Error("Clone(nil) should be nil")
	}
}
