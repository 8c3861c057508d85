// Package agent implements the adaptive vision-based document analysis
// pipeline: conversation context processing, query reformulation and
// classification, task planning, per-task page selection and analysis, and
// final response synthesis.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/docpixie/docpixie/document"
	"github.com/docpixie/docpixie/errors"
	"github.com/docpixie/docpixie/message"
	"github.com/docpixie/docpixie/pkg/logging"
	"github.com/docpixie/docpixie/pkg/telemetry"
	"github.com/docpixie/docpixie/pkg/tokenizer"
	"github.com/docpixie/docpixie/provider"
	"github.com/docpixie/docpixie/storage"
)

const (
	analysisMaxTokens   = 600
	analysisTemperature = 0.3

	memorySnippetRunes = 100
)

const (
	directAnswerPrefix = "This query doesn't require document analysis. "
	noDocumentsAnswer  = "I don't have any documents to analyze. Please upload some documents first."
)

// Agent orchestrates the full query pipeline. Tasks execute strictly one at
// a time; the plan is mutated only between sequential stage calls, so the
// agent carries no locking.
type Agent struct {
	llm   provider.Provider
	store storage.Storage
	cfg   *Config

	contextProc  *contextProcessor
	reformulator *queryReformulator
	classifier   *queryClassifier
	planner      *taskPlanner
	selector     *pageSelector
	synthesizer  *responseSynthesizer

	counter  TokenCounter
	observer Observer
	tracer   trace.Tracer
	log      *slog.Logger
}

// New builds an agent from a provider and storage backend. Options override
// the default limits and prompts.
func New(llm provider.Provider, store storage.Storage, opts ...Option) *Agent {
	cfg := applyOptions(nil, opts)
	log := logging.WithComponent(cfg.Name)

	counter := cfg.counter
	if counter == nil {
		enc, err := tokenizer.New(cfg.TokenizerModel)
		if err != nil {
			log.Warn("token encoder unavailable, using rune approximation", "model", cfg.TokenizerModel, "error", err)
			counter = runeCounter{}
		} else {
			counter = enc
		}
	}

	observer := cfg.observer
	if observer == nil {
		observer = NopObserver{}
	}

	return &Agent{
		llm:          llm,
		store:        store,
		cfg:          cfg,
		contextProc:  newContextProcessor(llm, cfg),
		reformulator: newQueryReformulator(llm, cfg),
		classifier:   newQueryClassifier(llm, cfg),
		planner:      newTaskPlanner(llm, counter, cfg),
		selector:     newPageSelector(llm, cfg),
		synthesizer:  newResponseSynthesizer(llm, cfg),
		counter:      counter,
		observer:     observer,
		tracer:       otel.Tracer("docpixie/agent"),
		log:          log,
	}
}

// Query runs the full pipeline for one user query. It never returns an
// error: any failure is folded into a well-formed result with the error text
// in the answer field.
func (a *Agent) Query(ctx context.Context, query string, history []*message.Message) *QueryResult {
	start := time.Now()

	ctx, span := a.tracer.Start(ctx, "agent.query",
		trace.WithAttributes(attribute.Int("history_messages", len(history))))

	result, err := a.run(ctx, start, query, history)
	telemetry.End(span, err)
	if err != nil {
		a.log.Error("query failed", "error", err)
		return &QueryResult{
			Query:          query,
			Answer:         fmt.Sprintf("I encountered an error while processing your query: %v", err),
			ProcessingTime: time.Since(start),
		}
	}
	return result
}

func (a *Agent) run(ctx context.Context, start time.Time, query string, history []*message.Message) (*QueryResult, error) {
	costs := newCostTracker(a.llm)

	// Context processing and reformulation only apply when history exists.
	processed := ""
	reformulated := query
	if len(history) > 0 {
		var err error
		processed, _, err = a.contextProc.Process(ctx, history, query)
		if err != nil {
			return nil, err
		}
		costs.poll()

		reformulated, err = a.reformulator.Reformulate(ctx, query, processed)
		if err != nil {
			return nil, err
		}
		costs.poll()
		a.log.Info("reformulated query", "original", query, "reformulated", reformulated)
	}

	verdict, err := a.classifier.Classify(ctx, reformulated)
	if err != nil {
		return nil, err
	}
	costs.poll()

	if !verdict.NeedsDocuments {
		a.log.Info("query answered without documents", "reasoning", verdict.Reasoning)
		return &QueryResult{
			Query:          query,
			Answer:         directAnswerPrefix + verdict.Reasoning,
			ProcessingTime: time.Since(start),
			TotalCost:      costs.total(),
		}, nil
	}

	docs, err := a.store.GetAllDocuments(ctx)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		a.log.Warn("no documents available for analysis")
		return &QueryResult{
			Query:          query,
			Answer:         noDocumentsAnswer,
			ProcessingTime: time.Since(start),
			TotalCost:      costs.total(),
		}, nil
	}
	a.log.Info("analyzing documents", "documents", len(docs))

	plan, err := a.planner.CreateInitialPlan(ctx, reformulated, docs)
	if err != nil {
		return nil, err
	}
	costs.poll()
	a.notify(func(o Observer) { o.PlanCreated(plan) })

	results, iterations := a.executePlan(ctx, plan, reformulated, docs, history, costs)

	answer := a.synthesizer.Synthesize(ctx, reformulated, results)
	costs.poll()

	var allPages []document.Page
	for _, r := range results {
		allPages = append(allPages, r.SelectedPages...)
	}

	return &QueryResult{
		Query:           query,
		Answer:          answer,
		SelectedPages:   allPages,
		TaskResults:     results,
		TotalIterations: iterations,
		ProcessingTime:  time.Since(start),
		TotalCost:       costs.total(),
	}, nil
}

// executePlan runs the adaptive loop: dequeue, select pages, analyze, then
// let the planner revise the remainder. The iteration cap is a graceful stop.
func (a *Agent) executePlan(ctx context.Context, plan *Plan, query string, docs []*document.Document, history []*message.Message, costs *costTracker) ([]TaskResult, int) {
	var results []TaskResult
	iteration := 0

	for plan.HasPending() && iteration < a.cfg.MaxIterations {
		iteration++

		task := plan.NextPending()
		task.Status = TaskInProgress
		a.log.Info("executing task", "iteration", iteration, "task", task.Name)
		a.notify(func(o Observer) { o.TaskStarted(task) })

		result := a.executeTask(ctx, task, docs, history)
		task.Status = TaskCompleted
		results = append(results, result)
		costs.poll()

		a.log.Info("task completed", "task", task.Name, "pages_analyzed", result.PagesAnalyzed)
		a.notify(func(o Observer) { o.TaskCompleted(result) })

		if !plan.HasPending() {
			break
		}

		before := len(plan.Tasks)
		if err := a.planner.UpdatePlan(ctx, plan, result, query, docs); err != nil {
			a.log.Error("plan update failed, continuing with current plan", "error", err)
			continue
		}
		costs.poll()
		if len(plan.Tasks) != before {
			a.notify(func(o Observer) { o.PlanUpdated(plan, "updated") })
		}
	}

	a.log.Info("task execution finished", "iterations", iteration, "tasks_completed", len(results))
	return results, iteration
}

// executeTask resolves the task's candidate pages, selects the relevant
// subset, and analyzes it. Failures are absorbed here so one task never
// aborts the query.
func (a *Agent) executeTask(ctx context.Context, task *Task, docs []*document.Document, history []*message.Message) TaskResult {
	candidates := a.candidatePages(task, docs)

	selected, err := a.selector.Select(ctx, task.Name, task.Description, candidates)
	if err != nil {
		a.log.Error("task failed", "task", task.Name, "error", err)
		return NewTaskResult(task, nil, fmt.Sprintf("Task execution failed: %v", err))
	}
	a.notify(func(o Observer) { o.PagesSelected(task, selected) })

	analysis, err := a.analyzePages(ctx, task, selected, history)
	if err != nil {
		a.log.Error("page analysis failed", "task", task.Name, "error", err)
		analysis = fmt.Sprintf("Page analysis failed for task %s: %v", task.Name, err)
	}
	return NewTaskResult(task, selected, analysis)
}

// candidatePages returns the pages of the task's assigned document, or every
// page across all documents when no valid assignment exists. The unassigned
// path defeats per-task scoping and is logged as degraded.
func (a *Agent) candidatePages(task *Task, docs []*document.Document) []document.Page {
	if task.Document != "" {
		for _, doc := range docs {
			if doc.ID == task.Document {
				a.log.Debug("task scoped to document", "task", task.Name, "document", doc.Name, "pages", doc.PageCount())
				return doc.Pages
			}
		}
		a.log.Warn("assigned document not found, using all pages", "task", task.Name, "document", task.Document)
	} else {
		a.log.Warn("task has no document assignment, using all pages", "task", task.Name)
	}

	var pages []document.Page
	for _, doc := range docs {
		pages = append(pages, doc.Pages...)
	}
	return pages
}

func (a *Agent) analyzePages(ctx context.Context, task *Task, pages []document.Page, history []*message.Message) (string, error) {
	prompt := renderPrompt(a.cfg.TaskAnalysisPrompt,
		"task_description", task.Description,
		"memory_summary", a.memorySummary(history))

	parts := []provider.Part{provider.TextPart{Text: prompt}}
	for i, page := range pages {
		parts = append(parts,
			provider.ImagePart{Path: page.ImagePath, Detail: a.cfg.ImageDetail},
			provider.TextPart{Text: fmt.Sprintf("[Page %d from document]", i+1)},
		)
	}

	msgs := []provider.Message{
		provider.SystemText(systemDocPixie),
		provider.UserParts(parts...),
	}

	out, err := a.llm.ProcessMultimodal(ctx, msgs, analysisMaxTokens, analysisTemperature)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrTaskAnalysis, err)
	}
	return strings.TrimSpace(out), nil
}

// memorySummary builds a short rolling context block from the most recent
// conversation messages, each truncated.
func (a *Agent) memorySummary(history []*message.Message) string {
	if len(history) == 0 {
		return "CONVERSATION CONTEXT: This is the first query in the conversation."
	}

	recent := history
	if len(recent) > a.cfg.MemoryMessageLimit {
		recent = recent[len(recent)-a.cfg.MemoryMessageLimit:]
	}

	lines := []string{"CONVERSATION CONTEXT:"}
	for _, msg := range recent {
		role := "Assistant"
		if msg.Role == message.RoleUser {
			role = "User"
		}
		content := msg.Content
		if runes := []rune(content); len(runes) > memorySnippetRunes {
			content = string(runes[:memorySnippetRunes]) + "..."
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", role, content))
	}
	return strings.Join(lines, "\n")
}

// notify dispatches an observer event. Observer panics are swallowed so a
// broken progress sink cannot affect pipeline correctness.
func (a *Agent) notify(fn func(Observer)) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("observer panicked", "panic", r)
		}
	}()
	fn(a.observer)
}

// costTracker accumulates per-call costs from providers that report them.
type costTracker struct {
	reporter provider.CostReporter
	sum      float64
}

func newCostTracker(llm provider.Provider) *costTracker {
	t := &costTracker{}
	if r, ok := llm.(provider.CostReporter); ok {
		t.reporter = r
	}
	return t
}

func (t *costTracker) poll() {
	if t.reporter == nil {
		return
	}
	if cost, ok := t.reporter.LastCost(); ok {
		t.sum += cost
	}
}

func (t *costTracker) total() float64 {
	return t.sum
}
