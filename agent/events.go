package agent

import "github.com/docpixie/docpixie/document"

// TokenCounter abstracts token counting and truncation so the agent can run
// with a real encoder or a test stub.
type TokenCounter interface {
	Count(text string) int
	Truncate(text string, maxTokens int) string
}

// Observer receives progress events from the execution loop. Implementations
// must not block; the agent calls them inline.
type Observer interface {
	PlanCreated(plan *Plan)
	TaskStarted(task *Task)
	PagesSelected(task *Task, pages []document.Page)
	TaskCompleted(result TaskResult)
	PlanUpdated(plan *Plan, action string)
}

// NopObserver ignores all events. Embed it to implement only the hooks you need.
type NopObserver struct{}

func (NopObserver) PlanCreated(*Plan)                    {}
func (NopObserver) TaskStarted(*Task)                    {}
func (NopObserver) PagesSelected(*Task, []document.Page) {}
func (NopObserver) TaskCompleted(TaskResult)             {}
func (NopObserver) PlanUpdated(*Plan, string)            {}

// runeCounter is the fallback token counter used when no encoder is
// available. It approximates four characters per token.
type runeCounter struct{}

func (runeCounter) Count(text string) int {
	n := len([]rune(text))
	return (n + 3) / 4
}

func (runeCounter) Truncate(text string, maxTokens int) string {
	runes := []rune(text)
	limit := maxTokens * 4
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
