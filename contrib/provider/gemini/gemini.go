// Package gemini adapts the Google Generative AI SDK to the provider
// interface. Page images are sent as inline image data.
package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/docpixie/docpixie/provider"
)

// Config holds Gemini provider configuration
type Config struct {
	APIKey string
	Model  string
}

// DefaultConfig returns default Gemini configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey: apiKey,
		Model:  "gemini-1.5-flash",
	}
}

// Provider implements the provider interface for Google Gemini
type Provider struct {
	config *Config
	client *genai.Client
}

var _ provider.Provider = (*Provider)(nil)

// New creates a new Gemini provider using the official SDK
func New(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.Model == "" {
		config.Model = "gemini-1.5-flash"
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &Provider{config: config, client: client}, nil
}

// Close releases the underlying client connection.
func (p *Provider) Close() error {
	return p.client.Close()
}

// ProcessText sends text-only messages.
func (p *Provider) ProcessText(ctx context.Context, msgs []provider.Message, maxTokens int64, temperature float64) (string, error) {
	return p.generate(ctx, msgs, maxTokens, temperature)
}

// ProcessMultimodal sends messages mixing text and page images.
func (p *Provider) ProcessMultimodal(ctx context.Context, msgs []provider.Message, maxTokens int64, temperature float64) (string, error) {
	return p.generate(ctx, msgs, maxTokens, temperature)
}

// generate flattens the messages into a single GenerateContent call. System
// messages become the model's system instruction; the remaining content is
// sent in order.
func (p *Provider) generate(ctx context.Context, msgs []provider.Message, maxTokens int64, temperature float64) (string, error) {
	model := p.client.GenerativeModel(p.config.Model)
	if temperature > 0 {
		model.SetTemperature(float32(temperature))
	}
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}

	var systemTexts []string
	var parts []genai.Part
	for _, msg := range msgs {
		if msg.Role == "system" {
			systemTexts = append(systemTexts, joinText(msg))
			continue
		}
		for _, part := range msg.Parts {
			switch pt := part.(type) {
			case provider.TextPart:
				parts = append(parts, genai.Text(pt.Text))
			case provider.ImagePart:
				data, err := os.ReadFile(pt.Path)
				if err != nil {
					return "", fmt.Errorf("read image %s: %w", pt.Path, err)
				}
				format := strings.TrimPrefix(provider.MediaType(pt.Path), "image/")
				parts = append(parts, genai.ImageData(format, data))
			default:
				return "", fmt.Errorf("unsupported content part %T", part)
			}
		}
	}
	if len(systemTexts) > 0 {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(strings.Join(systemTexts, "\n"))},
		}
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := firstText(resp)
	if text == "" {
		return "", fmt.Errorf("no text content returned from Gemini")
	}
	return text, nil
}

func firstText(r *genai.GenerateContentResponse) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	for _, c := range r.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
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
