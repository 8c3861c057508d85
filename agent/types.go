package agent

import (
	"time"

	"github.com/google/uuid"

	"github.com/docpixie/docpixie/document"
)

// TaskStatus tracks a task through the execution loop.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// Task is one focused sub-task in the agent's plan, scoped to a single
// document. The planner creates tasks and may rewrite them while pending;
// only the orchestrator moves their status.
type Task struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Document    string     `json:"document,omitempty"` // Assigned document id, may be empty
}

// NewTask creates a pending task with a fresh id.
func NewTask(name, description, documentID string) *Task {
	return &Task{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Status:      TaskPending,
		Document:    documentID,
	}
}

// Plan is the agent's mutable task plan for one query. It is owned by the
// orchestrator and mutated in place between sequential calls, so it carries
// no locking.
type Plan struct {
	InitialQuery     string  `json:"initial_query"`
	Tasks            []*Task `json:"tasks"`
	CurrentIteration int     `json:"current_iteration"`
}

// NextPending returns the first pending task in list order (FIFO), or nil.
func (p *Plan) NextPending() *Task {
	for _, t := range p.Tasks {
		if t.Status == TaskPending {
			return t
		}
	}
	return nil
}

// HasPending reports whether any task is still pending.
func (p *Plan) HasPending() bool {
	return p.NextPending() != nil
}

// Find returns the task with the given id, or nil.
func (p *Plan) Find(id string) *Task {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Add appends a task to the plan.
func (p *Plan) Add(t *Task) {
	p.Tasks = append(p.Tasks, t)
}

// Remove deletes a pending task by id. Non-pending tasks are never removed.
func (p *Plan) Remove(id string) bool {
	for i, t := range p.Tasks {
		if t.ID == id {
			if t.Status != TaskPending {
				return false
			}
			p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Completed returns all completed tasks in plan order.
func (p *Plan) Completed() []*Task {
	var out []*Task
	for _, t := range p.Tasks {
		if t.Status == TaskCompleted {
			out = append(out, t)
		}
	}
	return out
}

// TaskResult captures the outcome of executing one task. Immutable once
// produced.
type TaskResult struct {
	Task          *Task           `json:"task"`
	SelectedPages []document.Page `json:"selected_pages"`
	Analysis      string          `json:"analysis"`
	PagesAnalyzed int             `json:"pages_analyzed"`
}

// NewTaskResult builds a result and derives the analyzed-page count.
func NewTaskResult(task *Task, pages []document.Page, analysis string) TaskResult {
	return TaskResult{
		Task:          task,
		SelectedPages: pages,
		Analysis:      analysis,
		PagesAnalyzed: len(pages),
	}
}

// QueryResult is the terminal output of one query. Success and error results
// share this shape; callers render them identically.
type QueryResult struct {
	Query           string          `json:"query"`
	Answer          string          `json:"answer"`
	SelectedPages   []document.Page `json:"selected_pages"` // Concatenated across tasks, not deduplicated
	TaskResults     []TaskResult    `json:"task_results"`
	TotalIterations int             `json:"total_iterations"`
	ProcessingTime  time.Duration   `json:"processing_time"`
	TotalCost       float64         `json:"total_cost"`
}

// UniquePages returns the selected pages deduplicated by image path,
// preserving first-seen order.
func (r *QueryResult) UniquePages() []document.Page {
	seen := make(map[string]struct{}, len(r.SelectedPages))
	var out []document.Page
	for _, p := range r.SelectedPages {
		if _, ok := seen[p.ImagePath]; ok {
			continue
		}
		seen[p.ImagePath] = struct{}{}
		out = append(out, p)
	}
	return out
}
