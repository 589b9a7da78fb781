// Package gemini adapts Google's Gemini models to llm.Provider.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/HerbHall/lankaportal/pkg/llm"
)

// DefaultModel is the free-tier model used when none is configured.
const DefaultModel = "gemini-1.5-flash"

var _ llm.Provider = (*Provider)(nil)

// Provider generates text with the Gemini API.
type Provider struct {
	client *genai.Client
	model  string
}

// New connects to the Gemini API with apiKey. Extra client options are
// appended after the key.
func New(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Provider, error) {
	if apiKey == "" {
		return nil, llm.NewProviderError(llm.ErrCodeAuthentication, "gemini api key is not set", nil)
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Provider{client: client, model: model}, nil
}

func (p *Provider) Name() string { return "gemini" }

// Generate sends prompt as a single text part. A GenerativeModel is built
// per call because its settings are not safe to share between goroutines.
func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.CallOption) (*llm.Response, error) {
	o := llm.ApplyOptions(opts...)

	m := p.client.GenerativeModel(p.model)
	if o.Temperature != nil {
		m.SetTemperature(*o.Temperature)
	}
	if o.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(o.MaxTokens))
	}
	if o.System != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(o.System)}}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, mapError(err)
	}

	text := textOf(resp)
	if text == "" {
		return nil, llm.NewProviderError(llm.ErrCodeEmptyResponse, "no content generated", nil)
	}
	out := &llm.Response{Content: text, Model: p.model}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}

// Close releases the underlying client.
func (p *Provider) Close() error {
	return p.client.Close()
}

// textOf joins the text parts of the first candidate.
func textOf(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}
