package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies provider failures independently of the backend.
type ErrorCode string

const (
	ErrCodeTimeout        ErrorCode = "timeout"
	ErrCodeAuthentication ErrorCode = "authentication"
	ErrCodeModelNotFound  ErrorCode = "model_not_found"
	ErrCodeRateLimited    ErrorCode = "rate_limited"
	ErrCodeInvalidRequest ErrorCode = "invalid_request"
	ErrCodeServerError    ErrorCode = "server_error"
	ErrCodeEmptyResponse  ErrorCode = "empty_response"
)

// ProviderError is the error type returned by every Provider.
type ProviderError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// NewProviderError wraps err with a code and message.
func NewProviderError(code ErrorCode, message string, err error) *ProviderError {
	return &ProviderError{Code: code, Message: message, Err: err}
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("llm %s: %s", e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether the same call may succeed later.
func (e *ProviderError) Retryable() bool {
	switch e.Code {
	case ErrCodeTimeout, ErrCodeRateLimited, ErrCodeServerError:
		return true
	}
	return false
}

// CodeOf returns the code of the ProviderError in err's chain, or "" when
// there is none.
func CodeOf(err error) ErrorCode {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// CodeForStatus maps an HTTP status returned by a backend API to an
// ErrorCode. modelHint reports whether the body mentioned the model, which
// separates an unknown model from an unknown route on 404.
func CodeForStatus(status int, modelHint bool) ErrorCode {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrCodeAuthentication
	case status == http.StatusNotFound && modelHint:
		return ErrCodeModelNotFound
	case status == http.StatusTooManyRequests:
		return ErrCodeRateLimited
	case status >= 500:
		return ErrCodeServerError
	case status >= 400:
		return ErrCodeInvalidRequest
	}
	return ErrCodeServerError
}

// IsContextError reports whether err came from a cancelled or expired context.
func IsContextError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
