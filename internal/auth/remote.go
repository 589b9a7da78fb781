package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var _ Provider = (*RemoteProvider)(nil)

// RemoteConfig configures a RemoteProvider.
type RemoteConfig struct {
	// URL is the project base URL; /auth/v1 is appended.
	URL        string
	APIKey     string
	UserAgent  string
	HTTPClient *http.Client
	Now        func() time.Time
}

// RemoteProvider talks to a GoTrue-compatible auth server.
type RemoteProvider struct {
	notifier
	base   string
	apiKey string
	ua     string
	client *http.Client
	now    func() time.Time
}

// NewRemoteProvider creates a RemoteProvider.
func NewRemoteProvider(cfg RemoteConfig) (*RemoteProvider, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("remote auth: url is required")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &RemoteProvider{
		base:   strings.TrimRight(cfg.URL, "/") + "/auth/v1",
		apiKey: cfg.APIKey,
		ua:     cfg.UserAgent,
		client: cfg.HTTPClient,
		now:    cfg.Now,
	}, nil
}

func (p *RemoteProvider) Name() string { return "remote" }

type remoteUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Metadata struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

func (u remoteUser) toUser() User {
	name := u.Metadata.Name
	if name == "" {
		name = u.Metadata.FullName
	}
	return User{ID: u.ID, Email: u.Email, Name: name}
}

type tokenResponse struct {
	AccessToken string     `json:"access_token"`
	ExpiresIn   int        `json:"expires_in"`
	User        remoteUser `json:"user"`
}

// Session fetches the user for token.
func (p *RemoteProvider) Session(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	var u remoteUser
	if err := p.do(ctx, http.MethodGet, "/user", token, nil, &u); err != nil {
		return nil, err
	}
	return &Session{Token: token, User: u.toUser()}, nil
}

// SignIn uses the password grant.
func (p *RemoteProvider) SignIn(ctx context.Context, creds Credentials) (*Session, error) {
	var tr tokenResponse
	err := p.do(ctx, http.MethodPost, "/token?grant_type=password", "", creds, &tr)
	if err != nil {
		if isStatus(err, http.StatusBadRequest, http.StatusUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	s := &Session{Token: tr.AccessToken, User: tr.User.toUser()}
	if tr.ExpiresIn > 0 {
		s.ExpiresAt = p.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	p.notify(Change{Kind: SignedIn, User: s.User, At: p.now()})
	return s, nil
}

// SignOut revokes token on the server.
func (p *RemoteProvider) SignOut(ctx context.Context, token string) error {
	s, err := p.Session(ctx, token)
	if err != nil {
		return err
	}
	if err := p.do(ctx, http.MethodPost, "/logout", token, nil, nil); err != nil {
		return err
	}
	p.notify(Change{Kind: SignedOut, User: s.User, At: p.now()})
	return nil
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("remote auth: status %d: %s", e.status, e.body)
}

func isStatus(err error, codes ...int) bool {
	var se *statusError
	if !errors.As(err, &se) {
		return false
	}
	for _, c := range codes {
		if se.status == c {
			return true
		}
	}
	return false
}

func (p *RemoteProvider) do(ctx context.Context, method, path, token string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.base+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.apiKey != "" {
		req.Header.Set("apikey", p.apiKey)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if p.ua != "" {
		req.Header.Set("User-Agent", p.ua)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote auth %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
