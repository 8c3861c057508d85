package agent

import (
	"testing"

	"github.com/docpixie/docpixie/document"
)

func TestPlanQueueSemantics(t *testing.T) {
	a := NewTask("a", "", "")
	b := NewTask("b", "", "")
	plan := &Plan{Tasks: []*Task{a, b}}

	if got := plan.NextPending(); got != a {
		t.Errorf("NextPending() = %v, want first task", got)
	}

	a.Status = TaskCompleted
	if got := plan.NextPending(); got != b {
		t.Errorf("NextPending() = %v, want second task", got)
	}

	b.Status = TaskCompleted
	if plan.HasPending() {
		t.Error("HasPending() = true with no pending tasks")
	}
	if got := len(plan.Completed()); got != 2 {
		t.Errorf("Completed() = %d tasks, want 2", got)
	}
}

func TestPlanRemovePendingOnly(t *testing.T) {
	done := NewTask("done", "", "")
	done.Status = TaskCompleted
	pending := NewTask("pending", "", "")
	plan := &Plan{Tasks: []*Task{done, pending}}

	if plan.Remove(done.ID) {
		t.Error("Remove() deleted a completed task")
	}
	if !plan.Remove(pending.ID) {
		t.Error("Remove() refused a pending task")
	}
	if plan.Remove("no-such-id") {
		t.Error("Remove() reported success for unknown id")
	}
	if len(plan.Tasks) != 1 {
		t.Errorf("tasks = %d, want 1", len(plan.Tasks))
	}
}

func TestQueryResultUniquePages(t *testing.T) {
	p1 := document.Page{Number: 1, ImagePath: "/tmp/a.jpg"}
	p2 := document.Page{Number: 2, ImagePath: "/tmp/b.jpg"}

	result := &QueryResult{SelectedPages: []document.Page{p1, p2, p1, p2, p1}}
	unique := result.UniquePages()
	if len(unique) != 2 {
		t.Fatalf("unique pages = %d, want 2", len(unique))
	}
	if unique[0].ImagePath != "/tmp/a.jpg" || unique[1].ImagePath != "/tmp/b.jpg" {
		t.Errorf("unique pages out of first-seen order: %v", unique)
	}
	// The raw slice keeps duplicates.
	if len(result.SelectedPages) != 5 {
		t.Errorf("selected pages mutated: %d", len(result.SelectedPages))
	}
}

func TestNewTaskResultCountsPages(t *testing.T) {
	task := NewTask("t", "", "")
	pages := []document.Page{{Number: 1}, {Number: 2}}

	result := NewTaskResult(task, pages, "analysis")
	if result.PagesAnalyzed != 2 {
		t.Errorf("PagesAnalyzed = %d, want 2", result.PagesAnalyzed)
	}

	empty := NewTaskResult(task, nil, "failed")
	if empty.PagesAnalyzed != 0 {
		t.Errorf("PagesAnalyzed = %d, want 0", empty.PagesAnalyzed)
	}
}
