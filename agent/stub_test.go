package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/docpixie/docpixie/document"
	"github.com/docpixie/docpixie/errors"
	"github.com/docpixie/docpixie/provider"
)

// stubReply is one queued model response.
type stubReply struct {
	out string
	err error
}

// stubCall captures the arguments of one provider call.
type stubCall struct {
	msgs        []provider.Message
	maxTokens   int64
	temperature float64
}

// userText extracts the concatenated text parts of the last user message.
func (c stubCall) userText() string {
	var text string
	for _, msg := range c.msgs {
		if msg.Role != "user" {
			continue
		}
		text = ""
		for _, part := range msg.Parts {
			if tp, ok := part.(provider.TextPart); ok {
				text += tp.Text
			}
		}
	}
	return text
}

// imageCount counts the image parts across all messages.
func (c stubCall) imageCount() int {
	n := 0
	for _, msg := range c.msgs {
		for _, part := range msg.Parts {
			if _, ok := part.(provider.ImagePart); ok {
				n++
			}
		}
	}
	return n
}

// stubLLM replays queued responses and records every call. An exhausted
// queue fails the call so tests notice unexpected extra stage invocations.
type stubLLM struct {
	textQueue  []stubReply
	multiQueue []stubReply

	textCalls  []stubCall
	multiCalls []stubCall
}

func (s *stubLLM) queueText(outs ...string) {
	for _, out := range outs {
		s.textQueue = append(s.textQueue, stubReply{out: out})
	}
}

func (s *stubLLM) queueTextErr(err error) {
	s.textQueue = append(s.textQueue, stubReply{err: err})
}

func (s *stubLLM) queueMulti(outs ...string) {
	for _, out := range outs {
		s.multiQueue = append(s.multiQueue, stubReply{out: out})
	}
}

func (s *stubLLM) queueMultiErr(err error) {
	s.multiQueue = append(s.multiQueue, stubReply{err: err})
}

func (s *stubLLM) ProcessText(ctx context.Context, msgs []provider.Message, maxTokens int64, temperature float64) (string, error) {
	s.textCalls = append(s.textCalls, stubCall{msgs: msgs, maxTokens: maxTokens, temperature: temperature})
	if len(s.textQueue) == 0 {
		return "", fmt.Errorf("unexpected text call %d", len(s.textCalls))
	}
	reply := s.textQueue[0]
	s.textQueue = s.textQueue[1:]
	return reply.out, reply.err
}

func (s *stubLLM) ProcessMultimodal(ctx context.Context, msgs []provider.Message, maxTokens int64, temperature float64) (string, error) {
	s.multiCalls = append(s.multiCalls, stubCall{msgs: msgs, maxTokens: maxTokens, temperature: temperature})
	if len(s.multiQueue) == 0 {
		return "", fmt.Errorf("unexpected multimodal call %d", len(s.multiCalls))
	}
	reply := s.multiQueue[0]
	s.multiQueue = s.multiQueue[1:]
	return reply.out, reply.err
}

// costStubLLM wraps stubLLM with per-call cost reporting in the style of
// metered API gateways: every completed call books a flat cost, consumable
// exactly once.
type costStubLLM struct {
	stubLLM
	perCall float64
	pending bool
}

func (s *costStubLLM) ProcessText(ctx context.Context, msgs []provider.Message, maxTokens int64, temperature float64) (string, error) {
	out, err := s.stubLLM.ProcessText(ctx, msgs, maxTokens, temperature)
	if err == nil {
		s.pending = true
	}
	return out, err
}

func (s *costStubLLM) ProcessMultimodal(ctx context.Context, msgs []provider.Message, maxTokens int64, temperature float64) (string, error) {
	out, err := s.stubLLM.ProcessMultimodal(ctx, msgs, maxTokens, temperature)
	if err == nil {
		s.pending = true
	}
	return out, err
}

func (s *costStubLLM) LastCost() (float64, bool) {
	if !s.pending {
		return 0, false
	}
	s.pending = false
	return s.perCall, true
}

// stubStorage serves a fixed document set and counts reads.
type stubStorage struct {
	docs      []*document.Document
	getAll    int
	allErr    error
	saved     []*document.Document
	saveErr   error
	summaries map[string]string
}

func (s *stubStorage) SaveDocument(ctx context.Context, doc *document.Document) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, doc)
	return nil
}

func (s *stubStorage) GetDocument(ctx context.Context, id string) (*document.Document, error) {
	for _, doc := range s.docs {
		if doc.ID == id {
			return doc, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (s *stubStorage) ListDocuments(ctx context.Context) ([]document.Info, error) {
	infos := make([]document.Info, 0, len(s.docs))
	for _, doc := range s.docs {
		infos = append(infos, document.Info{ID: doc.ID, Name: doc.Name, PageCount: doc.PageCount()})
	}
	return infos, nil
}

func (s *stubStorage) DeleteDocument(ctx context.Context, id string) error { return nil }

func (s *stubStorage) UpdateSummary(ctx context.Context, id, summary string) error {
	if s.summaries == nil {
		s.summaries = map[string]string{}
	}
	s.summaries[id] = summary
	return nil
}

func (s *stubStorage) GetAllDocuments(ctx context.Context) ([]*document.Document, error) {
	s.getAll++
	if s.allErr != nil {
		return nil, s.allErr
	}
	return s.docs, nil
}

// docsOf is slice-literal sugar for stubStorage fixtures.
func docsOf(docs ...*document.Document) []*document.Document {
	return docs
}

// testDoc builds a document with the given number of pages.
func testDoc(id, name string, pages int) *document.Document {
	doc := &document.Document{
		ID:        id,
		Name:      name,
		Status:    document.StatusCompleted,
		CreatedAt: time.Now(),
	}
	for i := 1; i <= pages; i++ {
		doc.Pages = append(doc.Pages, document.Page{
			Number:    i,
			ImagePath: fmt.Sprintf("/tmp/%s-page-%d.jpg", id, i),
		})
	}
	return doc
}

// recordingObserver captures pipeline events for assertions.
type recordingObserver struct {
	planCreated int
	started     []string
	completed   []string
	selected    map[string]int
	planUpdated int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{selected: map[string]int{}}
}

func (o *recordingObserver) PlanCreated(plan *Plan) { o.planCreated++ }

func (o *recordingObserver) TaskStarted(task *Task) { o.started = append(o.started, task.Name) }

func (o *recordingObserver) PagesSelected(task *Task, pages []document.Page) {
	o.selected[task.Name] = len(pages)
}

func (o *recordingObserver) TaskCompleted(result TaskResult) {
	o.completed = append(o.completed, result.Task.Name)
}

func (o *recordingObserver) PlanUpdated(plan *Plan, reason string) { o.planUpdated++ }
