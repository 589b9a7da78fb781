package contact

import (
	"errors"
	"strings"
	"testing"
)

func TestSubmission_Validate(t *testing.T) {
	valid := Submission{Name: "Nimal", Email: "nimal@example.lk", Subject: "Tour", Message: "Hello"}

	tests := []struct {
		name   string
		mutate func(*Submission)
		fields []string
	}{
		{"valid", func(*Submission) {}, nil},
		{"missing name", func(s *Submission) { s.Name = "" }, []string{"name"}},
		{"display name email", func(s *Submission) { s.Email = "Nimal <nimal@example.lk>" }, []string{"email"}},
		{"no domain dot", func(s *Submission) { s.Email = "nimal@localhost" }, []string{"email"}},
		{"not an email", func(s *Submission) { s.Email = "nimal" }, []string{"email"}},
		{"long subject", func(s *Submission) { s.Subject = strings.Repeat("a", maxSubject+1) }, []string{"subject"}},
		{"sinhala message at cap", func(s *Submission) { s.Message = strings.Repeat("ආ", maxMessage) }, nil},
		{"everything missing", func(s *Submission) { *s = Submission{} }, []string{"name", "email", "subject", "message"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			if tt.fields == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if len(ve.Fields) != len(tt.fields) {
				t.Fatalf("fields = %+v, want %v", ve.Fields, tt.fields)
			}
			for i, f := range tt.fields {
				if ve.Fields[i].Field != f {
					t.Errorf("field %d = %s, want %s", i, ve.Fields[i].Field, f)
				}
			}
		})
	}
}

func TestSubmission_Normalize(t *testing.T) {
	s := Submission{Name: "  Nimal ", Email: " nimal@example.lk\n", Subject: "\tHi", Message: " x "}.Normalize()
	if s.Name != "Nimal" || s.Email != "nimal@example.lk" || s.Subject != "Hi" || s.Message != "x" {
		t.Errorf("Normalize = %+v", s)
	}
}
