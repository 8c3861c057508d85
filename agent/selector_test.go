package agent

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/docpixie/docpixie/document"
	"github.com/docpixie/docpixie/errors"
)

func newTestSelector(llm *stubLLM, maxPages int) *pageSelector {
	cfg := applyOptions(nil, []Option{WithMaxPagesPerTask(maxPages)})
	return newPageSelector(llm, cfg)
}

func candidatePageSet(n int) []document.Page {
	pages := make([]document.Page, 0, n)
	for i := 1; i <= n; i++ {
		pages = append(pages, document.Page{Number: i, ImagePath: fmt.Sprintf("/tmp/p%d.jpg", i)})
	}
	return pages
}

func TestSelectPassthroughUnderCap(t *testing.T) {
	llm := &stubLLM{}
	selector := newTestSelector(llm, 6)

	candidates := candidatePageSet(4)
	selected, err := selector.Select(context.Background(), "task", "desc", candidates)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(selected) != 4 {
		t.Errorf("selected = %d, want all 4", len(selected))
	}
	if len(llm.multiCalls) != 0 {
		t.Errorf("model called %d times for a passthrough", len(llm.multiCalls))
	}
}

func TestSelectPreservesModelOrder(t *testing.T) {
	llm := &stubLLM{}
	llm.queueMulti(`{"selected_pages": [5, 1, 3], "reasoning": "relevance order"}`)
	selector := newTestSelector(llm, 6)

	selected, err := selector.Select(context.Background(), "task", "desc", candidatePageSet(8))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	got := []int{selected[0].Number, selected[1].Number, selected[2].Number}
	if got[0] != 5 || got[1] != 1 || got[2] != 3 {
		t.Errorf("selection order = %v, want [5 1 3]", got)
	}
	// Every candidate image is shown to the model.
	if n := llm.multiCalls[0].imageCount(); n != 8 {
		t.Errorf("images sent = %d, want 8", n)
	}
}

func TestSelectDiscardsOutOfRange(t *testing.T) {
	llm := &stubLLM{}
	llm.queueMulti(`{"selected_pages": [0, 2, 99, -1]}`)
	selector := newTestSelector(llm, 6)

	selected, err := selector.Select(context.Background(), "task", "desc", candidatePageSet(8))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(selected) != 1 || selected[0].Number != 2 {
		t.Errorf("selected = %v, want only page 2", selected)
	}
}

func TestSelectCapsAtMaxPages(t *testing.T) {
	llm := &stubLLM{}
	llm.queueMulti(`{"selected_pages": [1, 2, 3, 4, 5]}`)
	selector := newTestSelector(llm, 2)

	selected, err := selector.Select(context.Background(), "task", "desc", candidatePageSet(5))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(selected) != 2 {
		t.Errorf("selected = %d, want cap of 2", len(selected))
	}
}

func TestSelectNoValidPages(t *testing.T) {
	llm := &stubLLM{}
	llm.queueMulti(`{"selected_pages": [99, 100]}`)
	selector := newTestSelector(llm, 2)

	_, err := selector.Select(context.Background(), "task", "desc", candidatePageSet(5))
	if !stderrors.Is(err, errors.ErrPageSelection) {
		t.Errorf("error = %v, want ErrPageSelection", err)
	}
}

func TestSelectBadJSON(t *testing.T) {
	llm := &stubLLM{}
	llm.queueMulti("pages 1 and 2 look relevant")
	selector := newTestSelector(llm, 2)

	_, err := selector.Select(context.Background(), "task", "desc", candidatePageSet(5))
	if !stderrors.Is(err, errors.ErrPageSelection) {
		t.Errorf("error = %v, want ErrPageSelection", err)
	}
}

func TestSelectCallFailure(t *testing.T) {
	llm := &stubLLM{}
	llm.queueMultiErr(fmt.Errorf("vision endpoint down"))
	selector := newTestSelector(llm, 2)

	_, err := selector.Select(context.Background(), "task", "desc", candidatePageSet(5))
	if !stderrors.Is(err, errors.ErrPageSelection) {
		t.Errorf("error = %v, want ErrPageSelection", err)
	}
}

func TestSelectEmptyCandidates(t *testing.T) {
	llm := &stubLLM{}
	selector := newTestSelector(llm, 2)

	_, err := selector.Select(context.Background(), "task", "desc", nil)
	if !stderrors.Is(err, errors.ErrPageSelection) {
		t.Errorf("error = %v, want ErrPageSelection", err)
	}
}
