package openai

import (
	"errors"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/HerbHall/lankaportal/pkg/llm"
)

// mapError translates go-openai and network errors into typed
// llm.ProviderError values.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if llm.IsContextError(err) {
		return llm.NewProviderError(llm.ErrCodeTimeout, "request timed out or cancelled", err)
	}

	// API error bodies.
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		hint := strings.Contains(strings.ToLower(apiErr.Message), "model")
		return llm.NewProviderError(llm.CodeForStatus(apiErr.HTTPStatusCode, hint), apiErr.Message, err)
	}

	// Non-JSON error responses.
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return llm.NewProviderError(llm.CodeForStatus(reqErr.HTTPStatusCode, false), "openai request failed", err)
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "dial tcp") {
		return llm.NewProviderError(llm.ErrCodeServerError, "openai server unreachable", err)
	}

	return llm.NewProviderError(llm.ErrCodeServerError, "openai error", err)
}
