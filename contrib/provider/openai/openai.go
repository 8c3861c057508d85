// Package openai adapts the OpenAI chat completions API to the provider
// interface, including vision input for page images.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/docpixie/docpixie/provider"
)

// Config holds OpenAI provider configuration
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// WithBaseURL set BaseURL.
func (cfg *Config) WithBaseURL(url string) *Config {
	cfg.BaseURL = url
	return cfg
}

// WithAPIKey set api key.
func (cfg *Config) WithAPIKey(apiKey string) *Config {
	cfg.APIKey = apiKey
	return cfg
}

// WithModel set model.
func (cfg *Config) WithModel(model string) *Config {
	cfg.Model = model
	return cfg
}

// DefaultConfig returns default OpenAI configuration
func DefaultConfig() *Config {
	return &Config{
		Model: "gpt-4o",
	}
}

// Provider implements the provider interface for OpenAI
type Provider struct {
	config *Config
	client openai.Client
}

var _ provider.Provider = (*Provider)(nil)

// New creates a new OpenAI provider using the official SDK
func New(config *Config) *Provider {
	if config.Model == "" {
		config.Model = "gpt-4o"
	}

	options := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		options = append(options, option.WithBaseURL(config.BaseURL))
	}

	return &Provider{
		config: config,
		client: openai.NewClient(options...),
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
	converted, err := convertMessages(msgs)
	if err != nil {
		return "", err
	}

	params := openai.ChatCompletionNewParams{
		Messages: converted,
		Model:    openai.ChatModel(p.config.Model),
	}
	if temperature > 0 {
		params.Temperature = param.NewOpt(temperature)
	}
	if maxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(maxTokens)
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}
	return completion.Choices[0].Message.Content, nil
}

func convertMessages(msgs []provider.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case "system":
			out = append(out, openai.SystemMessage(joinText(msg)))
		case "assistant":
			out = append(out, openai.AssistantMessage(joinText(msg)))
		case "user":
			parts, err := convertParts(msg.Parts)
			if err != nil {
				return nil, err
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: parts,
					},
				},
			})
		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}
	return out, nil
}

func convertParts(parts []provider.Part) ([]openai.ChatCompletionContentPartUnionParam, error) {
	out := make([]openai.ChatCompletionContentPartUnionParam, 0, len(parts))
	for _, part := range parts {
		switch p := part.(type) {
		case provider.TextPart:
			out = append(out, openai.TextContentPart(p.Text))
		case provider.ImagePart:
			url, err := provider.ImageDataURL(p.Path)
			if err != nil {
				return nil, err
			}
			out = append(out, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL:    url,
				Detail: string(p.Detail),
			}))
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
