// Package openai adapts the OpenAI chat completions API (and compatible
// servers) to llm.Provider.
package openai

import (
	"context"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/HerbHall/lankaportal/pkg/llm"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

var _ llm.Provider = (*Provider)(nil)

// Config configures a Provider. BaseURL targets an OpenAI-compatible server
// and must include the /v1 suffix.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Provider generates text with chat completions.
type Provider struct {
	client *goopenai.Client
	model  string
}

// New creates a Provider.
func New(cfg Config) *Provider {
	oc := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Provider{client: goopenai.NewClientWithConfig(oc), model: model}
}

func (p *Provider) Name() string { return "openai" }

// Generate sends prompt as a single user message.
func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.CallOption) (*llm.Response, error) {
	o := llm.ApplyOptions(opts...)

	msgs := make([]goopenai.ChatCompletionMessage, 0, 2)
	if o.System != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: o.System})
	}
	msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: prompt})

	req := goopenai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  msgs,
		MaxTokens: o.MaxTokens,
	}
	if o.Temperature != nil {
		req.Temperature = *o.Temperature
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, llm.NewProviderError(llm.ErrCodeEmptyResponse, "no completion returned", nil)
	}
	return &llm.Response{
		Content:    resp.Choices[0].Message.Content,
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
