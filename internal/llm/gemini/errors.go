package gemini

import (
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/HerbHall/lankaportal/pkg/llm"
)

// mapError translates Gemini REST and gRPC errors into typed
// llm.ProviderError values.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if llm.IsContextError(err) {
		return llm.NewProviderError(llm.ErrCodeTimeout, "request timed out or cancelled", err)
	}

	// Prompt or response blocked by safety settings.
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return llm.NewProviderError(llm.ErrCodeInvalidRequest, "content blocked", err)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		hint := strings.Contains(strings.ToLower(gerr.Message), "model")
		return llm.NewProviderError(llm.CodeForStatus(gerr.Code, hint), gerr.Message, err)
	}

	if s, ok := status.FromError(err); ok {
		return llm.NewProviderError(codeForGRPC(s.Code(), s.Message()), s.Message(), err)
	}

	return llm.NewProviderError(llm.ErrCodeServerError, "gemini error", err)
}

func codeForGRPC(c codes.Code, msg string) llm.ErrorCode {
	switch c {
	case codes.Unauthenticated, codes.PermissionDenied:
		return llm.ErrCodeAuthentication
	case codes.NotFound:
		if strings.Contains(strings.ToLower(msg), "model") {
			return llm.ErrCodeModelNotFound
		}
		return llm.ErrCodeInvalidRequest
	case codes.ResourceExhausted:
		return llm.ErrCodeRateLimited
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return llm.ErrCodeInvalidRequest
	case codes.DeadlineExceeded, codes.Canceled:
		return llm.ErrCodeTimeout
	}
	return llm.ErrCodeServerError
}
