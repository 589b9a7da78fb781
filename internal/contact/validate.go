package contact

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Field length caps, counted in characters.
const (
	maxName    = 100
	maxEmail   = 254
	maxSubject = 150
	maxMessage = 5000
)

// Submission is the body of POST /contact.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// FieldError describes one invalid field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every invalid field of a submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	return strings.Join(parts, "; ")
}

// Normalize trims every field.
func (s Submission) Normalize() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Subject: strings.TrimSpace(s.Subject),
		Message: strings.TrimSpace(s.Message),
	}
}

// Validate checks a normalized submission and returns a *ValidationError
// listing every problem, or nil.
func (s Submission) Validate() error {
	var errs []FieldError
	check := func(field, value string, limit int) bool {
		switch n := utf8.RuneCountInString(value); {
		case n == 0:
			errs = append(errs, FieldError{field, "is required"})
			return false
		case n > limit:
			errs = append(errs, FieldError{field, fmt.Sprintf("must be at most %d characters", limit)})
			return false
		}
		return true
	}

	check("name", s.Name, maxName)
	if check("email", s.Email, maxEmail) {
		addr, err := mail.ParseAddress(s.Email)
		if err != nil || addr.Address != s.Email || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@")+1:], ".") {
			errs = append(errs, FieldError{"email", "is not a valid address"})
		}
	}
	check("subject", s.Subject, maxSubject)
	check("message", s.Message, maxMessage)

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
