package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goTrue is a minimal GoTrue stand-in with one account and one token.
func goTrue(t *testing.T) *httptest.Server {
	t.Helper()
	user := map[string]any{
		"id":            "8f1c",
		"email":         "kumari@example.lk",
		"user_metadata": map[string]any{"full_name": "Kumari"},
	}
	revoked := false

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		var creds Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "correct" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		revoked = false
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-1",
			"expires_in":   3600,
			"user":         user,
		})
	})
	mux.HandleFunc("GET /auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		if revoked || r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(user)
	})
	mux.HandleFunc("POST /auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		revoked = true
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /broken/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRemote_SignInSessionSignOut(t *testing.T) {
	srv := goTrue(t)
	p, err := NewRemoteProvider(RemoteConfig{URL: srv.URL + "/", APIKey: "anon-key"})
	require.NoError(t, err)
	ctx := context.Background()

	var changes []Change
	p.Subscribe(func(c Change) { changes = append(changes, c) })

	s, err := p.SignIn(ctx, Credentials{Email: "kumari@example.lk", Password: "correct"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", s.Token)
	assert.Equal(t, User{ID: "8f1c", Email: "kumari@example.lk", Name: "Kumari"}, s.User)
	assert.False(t, s.ExpiresAt.IsZero())

	got, err := p.Session(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, s.User, got.User)

	require.NoError(t, p.SignOut(ctx, "tok-1"))
	_, err = p.Session(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.Len(t, changes, 2)
	assert.Equal(t, SignedIn, changes[0].Kind)
	assert.Equal(t, SignedOut, changes[1].Kind)
}

func TestRemote_Errors(t *testing.T) {
	srv := goTrue(t)
	p, _ := NewRemoteProvider(RemoteConfig{URL: srv.URL, APIKey: "anon-key"})
	ctx := context.Background()

	_, err := p.SignIn(ctx, Credentials{Email: "kumari@example.lk", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.Session(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	broken, _ := NewRemoteProvider(RemoteConfig{URL: srv.URL + "/broken"})
	_, err = broken.Session(ctx, "tok-1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthorized), "server errors are not auth failures")

	_, err = NewRemoteProvider(RemoteConfig{})
	assert.Error(t, err)
}
