package agent

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/docpixie/docpixie/errors"
	"github.com/docpixie/docpixie/message"
)

func newTestContextProcessor(llm *stubLLM, opts ...Option) *contextProcessor {
	return newContextProcessor(llm, applyOptions(nil, opts))
}

func historyOfTurns(n int) []*message.Message {
	var msgs []*message.Message
	for i := 1; i <= n; i++ {
		msgs = append(msgs,
			message.New(message.RoleUser, fmt.Sprintf("question %d", i)),
			message.New(message.RoleAssistant, fmt.Sprintf("answer %d", i)),
		)
	}
	return msgs
}

func TestProcessPassthroughUnderThreshold(t *testing.T) {
	llm := &stubLLM{}
	proc := newTestContextProcessor(llm, WithMaxConversationTurns(8))

	history := historyOfTurns(3)
	text, display, err := proc.Process(context.Background(), history, "next question")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(llm.textCalls) != 0 {
		t.Errorf("model called %d times under the turn threshold", len(llm.textCalls))
	}
	if !strings.Contains(text, "User: question 1") || !strings.Contains(text, "Assistant: answer 3") {
		t.Errorf("context text = %q", text)
	}
	if len(display) != len(history) {
		t.Errorf("display messages = %d, want %d", len(display), len(history))
	}
	// Display messages are clones, not aliases.
	display[0].Content = "mutated"
	if history[0].Content == "mutated" {
		t.Error("display message aliases the input history")
	}
}

func TestProcessSummarizesLongHistory(t *testing.T) {
	llm := &stubLLM{}
	llm.queueText("They discussed quarterly financials.")
	proc := newTestContextProcessor(llm,
		WithMaxConversationTurns(8), WithTurnsToSummarize(5), WithTurnsToKeepFull(3))

	history := historyOfTurns(10)
	text, display, err := proc.Process(context.Background(), history, "current question")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if !strings.Contains(text, "Previous Conversation Summary:\nThey discussed quarterly financials.") {
		t.Errorf("context missing summary block: %q", text)
	}
	if !strings.Contains(text, "Current Query: current question") {
		t.Errorf("context missing current query: %q", text)
	}
	// The first five turns are folded into the summary; they must not
	// appear verbatim.
	if strings.Contains(text, "question 2") {
		t.Errorf("summarized turn leaked verbatim: %q", text)
	}
	if !strings.Contains(text, "question 10") {
		t.Errorf("recent turn missing from context: %q", text)
	}

	// Display: one synthetic summary message plus the kept tail.
	if len(display) != 1+3*2 {
		t.Fatalf("display messages = %d, want 7", len(display))
	}
	if display[0].Role != message.RoleSystem || !strings.Contains(display[0].Content, "[Conversation Summary of First 5 Turns]") {
		t.Errorf("display[0] = %+v, want summary system message", display[0])
	}

	// The summarization call should only see the folded turns.
	sent := llm.textCalls[0].userText()
	if !strings.Contains(sent, "question 5") || strings.Contains(sent, "question 6") {
		t.Errorf("summarizer saw wrong slice: %q", sent)
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	history := historyOfTurns(10)

	llm := &stubLLM{}
	llm.queueText("They discussed quarterly financials.")
	llm.queueText("They discussed quarterly financials.")
	proc := newTestContextProcessor(llm,
		WithMaxConversationTurns(8), WithTurnsToSummarize(5), WithTurnsToKeepFull(3))

	first, firstDisplay, err := proc.Process(context.Background(), history, "current question")
	if err != nil {
		t.Fatalf("first Process() error = %v", err)
	}
	second, secondDisplay, err := proc.Process(context.Background(), history, "current question")
	if err != nil {
		t.Fatalf("second Process() error = %v", err)
	}

	if first != second {
		t.Errorf("repeated Process() diverged:\nfirst  = %q\nsecond = %q", first, second)
	}
	if len(firstDisplay) != len(secondDisplay) {
		t.Fatalf("display lengths diverged: %d vs %d", len(firstDisplay), len(secondDisplay))
	}
	for i := range firstDisplay {
		if firstDisplay[i].Role != secondDisplay[i].Role || firstDisplay[i].Content != secondDisplay[i].Content {
			t.Errorf("display[%d] diverged: %+v vs %+v", i, firstDisplay[i], secondDisplay[i])
		}
	}
	// Both calls summarize the same folded slice.
	if len(llm.textCalls) != 2 {
		t.Fatalf("summarizer called %d times, want 2", len(llm.textCalls))
	}
	if llm.textCalls[0].userText() != llm.textCalls[1].userText() {
		t.Error("summarizer received different inputs across calls")
	}
}

func TestProcessSummarizationFailure(t *testing.T) {
	llm := &stubLLM{}
	llm.queueTextErr(fmt.Errorf("model offline"))
	proc := newTestContextProcessor(llm, WithMaxConversationTurns(4))

	_, _, err := proc.Process(context.Background(), historyOfTurns(6), "q")
	if !stderrors.Is(err, errors.ErrContextProcessing) {
		t.Errorf("error = %v, want ErrContextProcessing", err)
	}
}

func TestFormatMessages(t *testing.T) {
	msgs := []*message.Message{
		message.New(message.RoleUser, "hello"),
		message.New(message.RoleAssistant, "hi there"),
	}
	got := formatMessages(msgs)
	want := "User: hello\n\nAssistant: hi there"
	if got != want {
		t.Errorf("formatMessages() = %q, want %q", got, want)
	}
}
