package server

import (
	"encoding/json"
	"net/http"
)

// Problem types for RFC 7807 Problem Details responses.
const (
	ProblemTypeNotFound     = "https://lankaportal.lk/problems/not-found"
	ProblemTypeBadRequest   = "https://lankaportal.lk/problems/bad-request"
	ProblemTypeInternal     = "https://lankaportal.lk/problems/internal-error"
	ProblemTypeUnauthorized = "https://lankaportal.lk/problems/unauthorized"
	ProblemTypeForbidden    = "https://lankaportal.lk/problems/forbidden"
	ProblemTypeRateLimited  = "https://lankaportal.lk/problems/rate-limited"
	ProblemTypeConflict     = "https://lankaportal.lk/problems/conflict"
	ProblemTypeBadGateway   = "https://lankaportal.lk/problems/bad-gateway"
	ProblemTypeUnavailable  = "https://lankaportal.lk/problems/unavailable"
	ProblemTypeGeneric      = "about:blank"
)

// TypeFor maps an HTTP status to its problem type URI.
func TypeFor(status int) string {
	switch status {
	case http.StatusNotFound:
		return ProblemTypeNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ProblemTypeBadRequest
	case http.StatusInternalServerError:
		return ProblemTypeInternal
	case http.StatusUnauthorized:
		return ProblemTypeUnauthorized
	case http.StatusForbidden:
		return ProblemTypeForbidden
	case http.StatusTooManyRequests:
		return ProblemTypeRateLimited
	case http.StatusConflict:
		return ProblemTypeConflict
	case http.StatusBadGateway:
		return ProblemTypeBadGateway
	case http.StatusServiceUnavailable:
		return ProblemTypeUnavailable
	default:
		return ProblemTypeGeneric
	}
}

// Error writes a problem response for status with the standard title.
func Error(w http.ResponseWriter, r *http.Request, status int, detail string) {
	p := Problem{
		Type:   TypeFor(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
	if r != nil {
		p.Instance = r.URL.Path
	}
	WriteProblem(w, p)
}

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// WriteProblem writes an RFC 7807 Problem Details JSON response.
func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
