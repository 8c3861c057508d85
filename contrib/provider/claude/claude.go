// Package claude adapts the Anthropic Messages API to the provider
// interface. Page images are sent as base64 blocks.
package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/docpixie/docpixie/provider"
)

// Config holds Claude provider configuration
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// DefaultConfig returns default Claude configuration
func DefaultConfig(apiKey, baseURL string) *Config {
	return &Config{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   "claude-3-5-sonnet-20241022",
	}
}

// Provider implements the provider interface for Claude
type Provider struct {
	config *Config
	client anthropic.Client
}

var _ provider.Provider = (*Provider)(nil)

// New creates a new Claude provider using the official SDK
func New(config *Config) *Provider {
	if config.Model == "" {
		config.Model = "claude-3-5-sonnet-20241022"
	}

	options := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithAuthToken(""),
	}
	if config.BaseURL != "" {
		options = append(options, option.WithBaseURL(config.BaseURL))
	}

	return &Provider{
		config: config,
		client: anthropic.NewClient(options...),
	}
}

// ProcessText sends text-only messages.
func (p *Provider) ProcessText(ctx context.Context, msgs []provider.Message, maxTokens int64, temperature float64) (string, error) {
	return p.complete(ctx, msgs, maxTokens, temperature)
}

// ProcessMultimodal sends messages mixing text and page images.
func (p *Provider) ProcessMultimodal(ctx context.Context, msgs []provider.Message, maxTokens int64, temperature float64) (string, error) {
	return p.complete(ctx, msgs, maxTokens, temperature)
}

func (p *Provider) complete(ctx context.Context, msgs []provider.Message, maxTokens int64, temperature float64) (string, error) {
	var systemPrompts []string
	conversation := make([]anthropic.MessageParam, 0, len(msgs))

	for _, msg := range msgs {
		switch msg.Role {
		case "system":
			systemPrompts = append(systemPrompts, joinText(msg))
		case "user":
			blocks, err := convertParts(msg.Parts)
			if err != nil {
				return "", err
			}
			conversation = append(conversation, anthropic.NewUserMessage(blocks...))
		case "assistant":
			conversation = append(conversation, anthropic.NewAssistantMessage(anthropic.NewTextBlock(joinText(msg))))
		default:
			return "", fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.config.Model),
		Messages:  conversation,
		MaxTokens: maxTokens,
	}
	if len(systemPrompts) > 0 {
		params.System = []anthropic.TextBlockParam{
			{Text: strings.Join(systemPrompts, "\n")},
		}
	}
	if temperature > 0 {
		params.Temperature = param.NewOpt(temperature)
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("no text content returned from Claude")
	}
	return text.String(), nil
}

func convertParts(parts []provider.Part) ([]anthropic.ContentBlockParamUnion, error) {
	out := make([]anthropic.ContentBlockParamUnion, 0, len(parts))
	for _, part := range parts {
		switch p := part.(type) {
		case provider.TextPart:
			out = append(out, anthropic.NewTextBlock(p.Text))
		case provider.ImagePart:
			data, err := provider.EncodeImage(p.Path)
			if err != nil {
				return nil, err
			}
			out = append(out, anthropic.NewImageBlockBase64(provider.MediaType(p.Path), data))
		default:
			return nil, fmt.Errorf("unsupported content part %T", part)
		}
	}
	return out, nil
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
