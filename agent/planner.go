package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docpixie/docpixie/document"
	"github.com/docpixie/docpixie/errors"
	"github.com/docpixie/docpixie/pkg/logging"
	"github.com/docpixie/docpixie/provider"
)

const (
	planMaxTokens   = 500
	planTemperature = 0.3
)

// planAction is the closed set of plan-update decisions the model may emit.
type planAction string

const (
	actionContinue    planAction = "continue"
	actionAddTasks    planAction = "add_tasks"
	actionRemoveTasks planAction = "remove_tasks"
	actionModifyTasks planAction = "modify_tasks"
)

type plannedTask struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Document    string `json:"document"`
}

type initialPlanResponse struct {
	Tasks []plannedTask `json:"tasks"`
}

type taskModification struct {
	TaskID         string `json:"task_id"`
	NewName        string `json:"new_name"`
	NewDescription string `json:"new_description"`
	NewDocument    string `json:"new_document"`
}

type planUpdateResponse struct {
	Action        planAction         `json:"action"`
	Reason        string             `json:"reason"`
	NewTasks      []plannedTask      `json:"new_tasks"`
	TasksToRemove []string           `json:"tasks_to_remove"`
	ModifiedTasks []taskModification `json:"modified_tasks"`
}

// taskPlanner creates the initial task plan and adaptively rewrites it after
// each completed task. Plans are mutated in place; the planner touches
// pending tasks only.
type taskPlanner struct {
	llm           provider.Provider
	initialPrompt string
	updatePrompt  string
	maxTasks      int
	findingsLimit int
	counter       TokenCounter
	log           *slog.Logger
}

func newTaskPlanner(llm provider.Provider, counter TokenCounter, cfg *Config) *taskPlanner {
	return &taskPlanner{
		llm:           llm,
		initialPrompt: cfg.PlannerPrompt,
		updatePrompt:  cfg.PlanUpdatePrompt,
		maxTasks:      cfg.MaxTasksPerPlan,
		findingsLimit: cfg.FindingsTokenLimit,
		counter:       counter,
		log:           logging.WithComponent(cfg.Name + ".planner"),
	}
}

// CreateInitialPlan asks the model for the minimum set of tasks needed to
// answer the query, each scoped to one document from the catalogue.
func (p *taskPlanner) CreateInitialPlan(ctx context.Context, query string, docs []*document.Document) (*Plan, error) {
	prompt := renderPrompt(p.initialPrompt,
		"query", query,
		"documents", documentCatalogue(docs))

	out, err := p.llm.ProcessText(ctx, []provider.Message{
		provider.SystemText(systemAdaptivePlanner),
		provider.UserText(prompt),
	}, planMaxTokens, planTemperature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrTaskPlanning, err)
	}

	decoded, err := decodeJSON[initialPlanResponse](out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (raw response: %s)", errors.ErrTaskPlanning, err, out)
	}
	if len(decoded.Tasks) == 0 {
		return nil, fmt.Errorf("%w: plan contains no tasks", errors.ErrTaskPlanning)
	}

	validIDs := documentIDSet(docs)
	plan := &Plan{InitialQuery: query}
	for _, pt := range decoded.Tasks {
		plan.Add(p.buildTask(pt, validIDs))
		if len(plan.Tasks) == p.maxTasks {
			p.log.Debug("limited initial tasks", "max", p.maxTasks)
			break
		}
	}

	p.log.Info("created initial plan", "tasks", len(plan.Tasks))
	return plan, nil
}

// UpdatePlan lets the model revise the remaining plan after a completed task.
// Exactly one action is applied; CurrentIteration advances by one regardless.
func (p *taskPlanner) UpdatePlan(ctx context.Context, plan *Plan, latest TaskResult, originalQuery string, docs []*document.Document) error {
	findings := latest.Analysis
	if p.counter != nil {
		findings = p.counter.Truncate(findings, p.findingsLimit)
	}

	prompt := renderPrompt(p.updatePrompt,
		"original_query", originalQuery,
		"available_documents", documentCatalogue(docs),
		"current_plan_status", planStatus(plan),
		"completed_task_name", latest.Task.Name,
		"task_findings", findings,
		"progress_summary", progressSummary(plan, latest))

	out, err := p.llm.ProcessText(ctx, []provider.Message{
		provider.SystemText(systemAdaptivePlanner),
		provider.UserText(prompt),
	}, planMaxTokens, planTemperature)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrTaskPlanning, err)
	}

	decoded, err := decodeJSON[planUpdateResponse](out)
	if err != nil {
		return fmt.Errorf("%w: %v (raw response: %s)", errors.ErrTaskPlanning, err, out)
	}

	if err := p.apply(plan, decoded, docs); err != nil {
		return err
	}
	plan.CurrentIteration++
	return nil
}

func (p *taskPlanner) apply(plan *Plan, update *planUpdateResponse, docs []*document.Document) error {
	validIDs := documentIDSet(docs)

	switch update.Action {
	case actionContinue:
		p.log.Debug("continuing with current plan", "reason", update.Reason)

	case actionAddTasks:
		for _, pt := range update.NewTasks {
			if len(plan.Tasks) >= p.maxTasks {
				p.log.Warn("plan at task capacity, dropping new task", "task", pt.Name)
				break
			}
			task := p.buildTask(pt, validIDs)
			plan.Add(task)
			p.log.Info("added task", "task", task.Name, "document", task.Document)
		}

	case actionRemoveTasks:
		for _, id := range update.TasksToRemove {
			if plan.Remove(id) {
				p.log.Info("removed task", "task_id", id)
			}
		}

	case actionModifyTasks:
		for _, mod := range update.ModifiedTasks {
			task := plan.Find(mod.TaskID)
			if task == nil || task.Status != TaskPending {
				continue
			}
			if mod.NewName != "" {
				task.Name = mod.NewName
			}
			if mod.NewDescription != "" {
				task.Description = mod.NewDescription
			}
			if mod.NewDocument != "" {
				task.Document = validDocumentID(mod.NewDocument, validIDs)
			}
			p.log.Info("modified task", "task_id", task.ID, "task", task.Name)
		}

	default:
		return fmt.Errorf("%w: unknown plan action %q", errors.ErrTaskPlanning, update.Action)
	}
	return nil
}

func (p *taskPlanner) buildTask(pt plannedTask, validIDs map[string]struct{}) *Task {
	name := pt.Name
	if name == "" {
		name = "Unnamed Task"
	}
	return NewTask(name, pt.Description, validDocumentID(pt.Document, validIDs))
}

// validDocumentID nulls out assignments that don't match the catalogue so the
// task falls back to all pages instead of failing on a phantom document.
func validDocumentID(id string, validIDs map[string]struct{}) string {
	if _, ok := validIDs[id]; ok {
		return id
	}
	return ""
}

func documentIDSet(docs []*document.Document) map[string]struct{} {
	ids := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		ids[doc.ID] = struct{}{}
	}
	return ids
}

// documentCatalogue formats the id, name, and summary of each document for
// planning prompts.
func documentCatalogue(docs []*document.Document) string {
	if len(docs) == 0 {
		return "No documents available"
	}
	entries := make([]string, 0, len(docs))
	for _, doc := range docs {
		summary := doc.Summary
		if summary == "" {
			summary = fmt.Sprintf("Document with %d pages", doc.PageCount())
		}
		entries = append(entries, fmt.Sprintf("%s: %s\nSummary: %s", doc.ID, doc.Name, summary))
	}
	return strings.Join(entries, "\n\n")
}

func planStatus(plan *Plan) string {
	lines := make([]string, 0, len(plan.Tasks))
	for _, t := range plan.Tasks {
		lines = append(lines, fmt.Sprintf("- %s: %s", t.Name, t.Status))
	}
	return strings.Join(lines, "\n")
}

func progressSummary(plan *Plan, latest TaskResult) string {
	completed := plan.Completed()
	if len(completed) == 0 {
		return fmt.Sprintf("Just completed first task: %s", latest.Task.Name)
	}
	lines := make([]string, 0, len(completed))
	for _, t := range completed {
		lines = append(lines, fmt.Sprintf("✓ %s", t.Name))
	}
	return "Completed tasks:\n" + strings.Join(lines, "\n")
}
