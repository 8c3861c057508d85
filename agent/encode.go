package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

const decodeErrSnippetLen = 120

// decodeJSON unmarshals a model reply into T. Replies often arrive wrapped
// in a markdown code fence, so the fence is stripped first. On failure the
// error carries a snippet of what the model actually sent, since the caller
// only sees its own prompt.
func decodeJSON[T any](raw string) (*T, error) {
	clean := stripFences(raw)
	var out T
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("decode JSON: %v (model sent %q)", err, truncateForError(clean))
	}
	return &out, nil
}

// stripFences removes a leading markdown code fence, its optional language
// tag, and anything after the closing fence.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	body, fenced := strings.CutPrefix(trimmed, "```")
	if !fenced {
		return trimmed
	}
	body = strings.TrimPrefix(body, "json")
	body = strings.TrimPrefix(body, "JSON")
	if inner, _, closed := strings.Cut(body, "```"); closed {
		body = inner
	}
	return strings.TrimSpace(body)
}

func truncateForError(s string) string {
	if len(s) <= decodeErrSnippetLen {
		return s
	}
	return s[:decodeErrSnippetLen] + "..."
}
