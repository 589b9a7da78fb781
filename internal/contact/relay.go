package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/HerbHall/lankaportal/internal/services"
)

// Relay forwards contact messages to a third-party form endpoint.
type Relay struct {
	endpoint  string
	client    *http.Client
	userAgent string
}

// NewRelay creates a Relay posting to endpoint.
func NewRelay(endpoint string, client *http.Client, userAgent string) *Relay {
	if client == nil {
		client = http.DefaultClient
	}
	return &Relay{endpoint: endpoint, client: client, userAgent: userAgent}
}

type relayPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	ReplyTo string `json:"_replyto"`
}

// Forward posts msg as JSON. Any non-2xx response is an error; the request
// is not retried.
func (r *Relay) Forward(ctx context.Context, msg *services.ContactMessage) error {
	body, err := json.Marshal(relayPayload{
		Name:    msg.Name,
		Email:   msg.Email,
		Subject: msg.Subject,
		Message: msg.Message,
		ReplyTo: msg.Email,
	})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to form endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("form endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
