// Package provider defines the model-vendor interface the pipeline calls
// through. Adapters for concrete vendors live under contrib/provider.
package provider

import (
	"context"
)

// Provider is the interface every model adapter implements. All calls are
// point-to-point request/response; there is no streaming at this layer.
type Provider interface {
	// ProcessText sends text-only messages and returns the model reply.
	ProcessText(ctx context.Context, msgs []Message, maxTokens int64, temperature float64) (string, error)

	// ProcessMultimodal sends messages mixing text and page images and
	// returns the model reply.
	ProcessMultimodal(ctx context.Context, msgs []Message, maxTokens int64, temperature float64) (string, error)
}

// CostReporter is optionally implemented by adapters that can account the
// cost of their most recent call. The agent polls it after call groups to
// accumulate a per-query total.
type CostReporter interface {
	// LastCost returns the cost of the last completed call in USD.
	// ok is false when the adapter has no cost information.
	LastCost() (cost float64, ok bool)
}

// Detail is the image fidelity requested for a vision call.
type Detail string

const (
	DetailLow  Detail = "low"
	DetailHigh Detail = "high"
)

// Message is one provider-bound message: a role plus ordered content parts.
type Message struct {
	Role  string
	Parts []Part
}

// Part is a closed union of message content kinds. Adapters switch over the
// concrete types exhaustively and reject anything else, so a new kind cannot
// be silently dropped.
type Part interface {
	part()
}

// TextPart carries plain text content.
type TextPart struct {
	Text string
}

func (TextPart) part() {}

// ImagePart references a page image on disk along with the fidelity the
// adapter should request from the vendor.
type ImagePart struct {
	Path   string
	Detail Detail
}

func (ImagePart) part() {}

// SystemText builds a system message with a single text part.
func SystemText(text string) Message {
	return Message{Role: "system", Parts: []Part{TextPart{Text: text}}}
}

// UserParts builds a user message from ordered content parts.
func UserParts(parts ...Part) Message {
	return Message{Role: "user", Parts: parts}
}

// UserText builds a user message with a single text part.
func UserText(text string) Message {
	return Message{Role: "user", Parts: []Part{TextPart{Text: text}}}
}

// AssistantText builds an assistant message with a single text part.
func AssistantText(text string) Message {
	return Message{Role: "assistant", Parts: []Part{TextPart{Text: text}}}
}
