// Package llm defines the text generation capability used by the insight
// module. Backends live under internal/llm.
package llm

import "context"

// Provider generates text from a prompt.
type Provider interface {
	// Name identifies the backend in logs and health details.
	Name() string
	// Generate returns a single completion for prompt.
	Generate(ctx context.Context, prompt string, opts ...CallOption) (*Response, error)
}

// Response is one completion.
type Response struct {
	Content    string `json:"content"`
	Model      string `json:"model"`
	TokensUsed int    `json:"tokens_used,omitempty"`
}

// CallOptions holds per-call generation settings. Zero values mean the
// backend default.
type CallOptions struct {
	Temperature *float32
	MaxTokens   int
	System      string
}

// CallOption configures a single Generate call.
type CallOption func(*CallOptions)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) CallOption {
	return func(o *CallOptions) { o.Temperature = &t }
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) CallOption {
	return func(o *CallOptions) { o.MaxTokens = n }
}

// WithSystem sets a system instruction.
func WithSystem(s string) CallOption {
	return func(o *CallOptions) { o.System = s }
}

// ApplyOptions folds opts into a CallOptions value.
func ApplyOptions(opts ...CallOption) CallOptions {
	var o CallOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Noop is a Provider that always returns an empty completion. It is the
// default when no backend is configured.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) Generate(ctx context.Context, _ string, _ ...CallOption) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewProviderError(ErrCodeTimeout, "request cancelled", err)
	}
	return &Response{Model: "noop"}, nil
}
