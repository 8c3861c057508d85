// Package openrouter adapts the OpenRouter chat completions API to the
// provider interface. OpenRouter speaks the OpenAI wire format and reports
// per-request cost in its usage block, so this adapter also implements
// provider.CostReporter.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/docpixie/docpixie/provider"
)

const openRouterAPIURL = "https://openrouter.ai/api/v1/chat/completions"

// Config holds OpenRouter provider configuration
type Config struct {
	APIKey string
	Model  string
}

// DefaultConfig returns default OpenRouter configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey: apiKey,
		Model:  "openai/gpt-4o",
	}
}

// Provider implements the provider interface for OpenRouter
type Provider struct {
	config *Config
	client *http.Client

	mu       sync.Mutex
	lastCost float64
	hasCost  bool
}

var (
	_ provider.Provider     = (*Provider)(nil)
	_ provider.CostReporter = (*Provider)(nil)
)

// New creates a new OpenRouter provider
func New(config *Config) *Provider {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.Model == "" {
		config.Model = "openai/gpt-4o"
	}
	return &Provider{
		config: config,
		client: &http.Client{},
	}
}

// orContentPart is one entry of a multimodal content array.
type orContentPart struct {
	Type     string      `json:"type"`
	Text     string      `json:"text,omitempty"`
	ImageURL *orImageURL `json:"image_url,omitempty"`
}

type orImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// orMessage carries either a plain string or a content-part array.
type orMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type orRequest struct {
	Model       string      `json:"model"`
	Messages    []orMessage `json:"messages"`
	MaxTokens   int64       `json:"max_tokens,omitempty"`
	Temperature float64     `json:"temperature"`
	Usage       orUsageOpts `json:"usage"`
}

// orUsageOpts asks OpenRouter to include cost accounting in the response.
type orUsageOpts struct {
	Include bool `json:"include"`
}

type orResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		Cost float64 `json:"cost"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// ProcessText sends text-only messages.
func (p *Provider) ProcessText(ctx context.Context, msgs []provider.Message, maxTokens int64, temperature float64) (string, error) {
	return p.complete(ctx, msgs, maxTokens, temperature)
}

// ProcessMultimodal sends messages mixing text and page images.
func (p *Provider) ProcessMultimodal(ctx context.Context, msgs []provider.Message, maxTokens int64, temperature float64) (string, error) {
	return p.complete(ctx, msgs, maxTokens, temperature)
}

// LastCost reports the cost of the most recent completed call.
func (p *Provider) LastCost() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasCost {
		return 0, false
	}
	p.hasCost = false
	return p.lastCost, true
}

func (p *Provider) complete(ctx context.Context, msgs []provider.Message, maxTokens int64, temperature float64) (string, error) {
	if p.config.APIKey == "" {
		return "", fmt.Errorf("OpenRouter API key not configured")
	}

	converted, err := convertMessages(msgs)
	if err != nil {
		return "", err
	}

	req := orRequest{
		Model:       p.config.Model,
		Messages:    converted,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Usage:       orUsageOpts{Include: true},
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", openRouterAPIURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.config.APIKey))
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenRouter API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp orResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("OpenRouter API error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	if resp.Usage != nil {
		p.mu.Lock()
		p.lastCost = resp.Usage.Cost
		p.hasCost = true
		p.mu.Unlock()
	}

	return resp.Choices[0].Message.Content, nil
}

func convertMessages(msgs []provider.Message) ([]orMessage, error) {
	out := make([]orMessage, 0, len(msgs))
	for _, msg := range msgs {
		if textOnly(msg) {
			out = append(out, orMessage{Role: msg.Role, Content: joinText(msg)})
			continue
		}
		parts := make([]orContentPart, 0, len(msg.Parts))
		for _, part := range msg.Parts {
			switch pt := part.(type) {
			case provider.TextPart:
				parts = append(parts, orContentPart{Type: "text", Text: pt.Text})
			case provider.ImagePart:
				url, err := provider.ImageDataURL(pt.Path)
				if err != nil {
					return nil, err
				}
				parts = append(parts, orContentPart{
					Type:     "image_url",
					ImageURL: &orImageURL{URL: url, Detail: string(pt.Detail)},
				})
			default:
				return nil, fmt.Errorf("unsupported content part %T", part)
			}
		}
		out = append(out, orMessage{Role: msg.Role, Content: parts})
	}
	return out, nil
}

func textOnly(msg provider.Message) bool {
	for _, part := range msg.Parts {
		if _, ok := part.(provider.TextPart); !ok {
			return false
		}
	}
	return true
}

func joinText(msg provider.Message) string {
	text := ""
	for _, part := range msg.Parts {
		if tp, ok := part.(provider.TextPart); ok {
			text += tp.Text
		}
	}
	return text
}
