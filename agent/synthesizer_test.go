package agent

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/docpixie/docpixie/errors"
)

func newTestSynthesizer(llm *stubLLM) *responseSynthesizer {
	return newResponseSynthesizer(llm, applyOptions(nil, nil))
}

func taskResults(analyses ...string) []TaskResult {
	results := make([]TaskResult, 0, len(analyses))
	for i, analysis := range analyses {
		task := NewTask(fmt.Sprintf("task %d", i+1), fmt.Sprintf("description %d", i+1), "")
		results = append(results, NewTaskResult(task, nil, analysis))
	}
	return results
}

func TestSynthesizeSuccess(t *testing.T) {
	llm := &stubLLM{}
	llm.queueText("  A polished answer.  ")

	got := newTestSynthesizer(llm).Synthesize(context.Background(), "query", taskResults("finding"))
	if got != "A polished answer." {
		t.Errorf("answer = %q", got)
	}

	sent := llm.textCalls[0].userText()
	if !strings.Contains(sent, "Task 1: task 1") || !strings.Contains(sent, "finding") {
		t.Errorf("synthesis prompt missing findings: %q", sent)
	}
}

func TestSynthesizeNoResults(t *testing.T) {
	llm := &stubLLM{}
	got := newTestSynthesizer(llm).Synthesize(context.Background(), "query", nil)
	if got != noFindingsAnswer {
		t.Errorf("answer = %q, want %q", got, noFindingsAnswer)
	}
	if len(llm.textCalls) != 0 {
		t.Errorf("model called with no findings to synthesize")
	}
}

func TestSynthesizeFallbackOnError(t *testing.T) {
	llm := &stubLLM{}
	llm.queueTextErr(fmt.Errorf("model offline"))

	got := newTestSynthesizer(llm).Synthesize(context.Background(), "query", taskResults("alpha", "beta"))
	want := "## task 1\nalpha\n\n## task 2\nbeta"
	if got != want {
		t.Errorf("fallback = %q, want %q", got, want)
	}
}

func TestSynthesizeCallWrapsSentinel(t *testing.T) {
	llm := &stubLLM{}
	llm.queueTextErr(fmt.Errorf("model offline"))
	llm.queueText("   ")

	synth := newTestSynthesizer(llm)
	if _, err := synth.call(context.Background(), "query", taskResults("alpha")); !stderrors.Is(err, errors.ErrResponseSynthesis) {
		t.Errorf("call failure error = %v, want ErrResponseSynthesis", err)
	}
	if _, err := synth.call(context.Background(), "query", taskResults("alpha")); !stderrors.Is(err, errors.ErrResponseSynthesis) {
		t.Errorf("empty answer error = %v, want ErrResponseSynthesis", err)
	}
}

func TestSynthesizeFallbackOnEmptyAnswer(t *testing.T) {
	llm := &stubLLM{}
	llm.queueText("   ")

	got := newTestSynthesizer(llm).Synthesize(context.Background(), "query", taskResults("alpha"))
	if got != "## task 1\nalpha" {
		t.Errorf("fallback = %q", got)
	}
}
