package agent

import (
	"strings"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	tests := []struct {
		name    string
		raw     string
		want    payload
		wantErr bool
	}{
		{"plain", `{"name": "a", "count": 2}`, payload{"a", 2}, false},
		{"fenced", "```json\n{\"name\": \"a\", \"count\": 2}\n```", payload{"a", 2}, false},
		{"fenced uppercase", "```JSON\n{\"name\": \"a\"}\n```", payload{Name: "a"}, false},
		{"fence without language", "```\n{\"count\": 7}\n```", payload{Count: 7}, false},
		{"surrounding whitespace", "  \n {\"name\": \"a\"} \n", payload{Name: "a"}, false},
		{"prose", "the name is a", payload{}, true},
		{"empty", "", payload{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeJSON[payload](tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && *got != tt.want {
				t.Errorf("decodeJSON() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestDecodeJSONErrorCarriesReply(t *testing.T) {
	_, err := decodeJSON[struct{}]("the name is a")
	if err == nil || !strings.Contains(err.Error(), `"the name is a"`) {
		t.Errorf("error = %v, want the model reply quoted", err)
	}

	long := strings.Repeat("x", 300)
	_, err = decodeJSON[struct{}](long)
	if err == nil || !strings.Contains(err.Error(), "...") {
		t.Errorf("error = %v, want truncated reply", err)
	}
	if err != nil && strings.Contains(err.Error(), long) {
		t.Error("error should not carry the full oversized reply")
	}
}

func TestRenderPrompt(t *testing.T) {
	got := renderPrompt("Answer {{query}} using {{documents}}; repeat: {{query}}",
		"query", "Q", "documents", "D")
	want := "Answer Q using D; repeat: Q"
	if got != want {
		t.Errorf("renderPrompt() = %q, want %q", got, want)
	}
}
