package document

import (
	"time"
)

// Status represents document processing status
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Page represents a single rendered document page. Pages are immutable:
// the pipeline only ever reads them.
type Page struct {
	Number    int            `json:"page_number"` // 1-based, unique within a document
	ImagePath string         `json:"image_path"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Document represents a processed document with its rendered pages.
// Documents are owned by the storage backend and read-only to the agent.
type Document struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Pages     []Page         `json:"pages"`
	Summary   string         `json:"summary,omitempty"`
	Status    Status         `json:"status"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Page returns the page with the given number, or nil.
func (d *Document) Page(number int) *Page {
	for i := range d.Pages {
		if d.Pages[i].Number == number {
			return &d.Pages[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Pages = ClonePages(d.Pages)
	if d.Metadata != nil {
		out.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// ClonePages copies a page slice, including per-page metadata maps.
func ClonePages(pages []Page) []Page {
	if len(pages) == 0 {
		return nil
	}
	out := make([]Page, len(pages))
	for i, p := range pages {
		out[i] = p
		if p.Metadata != nil {
			out[i].Metadata = make(map[string]any, len(p.Metadata))
			for k, v := range p.Metadata {
				out[i].Metadata[k] = v
			}
		}
	}
	return out
}

// Info is the lightweight listing view of a stored document.
type Info struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Summary   string    `json:"summary,omitempty"`
	PageCount int       `json:"page_count"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
