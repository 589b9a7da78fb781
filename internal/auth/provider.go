// Package auth resolves visitor sessions. Two interchangeable providers
// exist: an offline LocalProvider and a GoTrue-compatible RemoteProvider.
// The provider is chosen once at startup.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
)

var (
	// ErrUnauthorized means the token is missing, invalid, expired or revoked.
	ErrUnauthorized = errors.New("auth: unauthorized")
	// ErrInvalidCredentials means sign-in was rejected.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// User is the signed-in visitor.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Session is a resolved session. Token is empty for the simulated local
// session that needs no sign-in.
type Session struct {
	Token     string    `json:"token,omitempty"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Credentials are submitted to SignIn.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// Code is a one-time password, required when the provider has TOTP
	// enabled.
	Code string `json:"code,omitempty"`
}

// ChangeKind is the kind of a session change.
type ChangeKind string

const (
	SignedIn  ChangeKind = "signed_in"
	SignedOut ChangeKind = "signed_out"
)

// Change describes a sign-in or sign-out.
type Change struct {
	Kind ChangeKind `json:"kind"`
	User User       `json:"user"`
	At   time.Time  `json:"at"`
}

// Provider is the session backend.
type Provider interface {
	// Name identifies the backend.
	Name() string
	// Session resolves token to a session or returns ErrUnauthorized.
	Session(ctx context.Context, token string) (*Session, error)
	// SignIn exchanges credentials for a session.
	SignIn(ctx context.Context, creds Credentials) (*Session, error)
	// SignOut ends the session for token.
	SignOut(ctx context.Context, token string) error
	// Subscribe registers fn for session changes and returns a func that
	// removes it.
	Subscribe(fn func(Change)) func()
}

// TokenFromRequest returns the bearer token of r, or "".
func TokenFromRequest(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// notifier fans session changes out to subscribers.
type notifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Change)
}

func (n *notifier) Subscribe(fn func(Change)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]func(Change))
	}
	n.nextID++
	id := n.nextID
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *notifier) notify(c Change) {
	n.mu.RLock()
	fns := make([]func(Change), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.RUnlock()
	for _, fn := range fns {
		fn(c)
	}
}
