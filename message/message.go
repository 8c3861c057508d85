package message

import "time"

// Role represents the role of the message sender
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message represents a single message in a conversation. Messages are
// treated as immutable once appended to a conversation log.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Cost      float64   `json:"cost,omitempty"` // Pipeline cost attributed to this message
}

// New creates a new message with the given role and content
func New(role Role, content string) *Message {
	return &Message{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// Clone creates a copy of the message.
func Clone(msg *Message) *Message {
	if msg == nil {
		return nil
	}
	cloned := *msg
	return &cloned
}

// CloneMessages copies a slice of messages.
func CloneMessages(msgs []*Message) []*Message {
	if len(msgs) == 0 {
		return nil
	}
	clones := make([]*Message, 0, len(msgs))
	for _, msg := range msgs {
		clones = append(clones, Clone(msg))
	}
	return clones
}

// CountTurns counts conversation turns. A turn is one user message plus
// its assistant reply, so only user-authored messages are counted.
func CountTurns(msgs []*Message) int {
	turns := 0
	for _, msg := range msgs {
		if msg.Role == RoleUser {
			turns++
		}
	}
	return turns
}
