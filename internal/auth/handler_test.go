package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HerbHall/lankaportal/internal/config"
	"github.com/HerbHall/lankaportal/internal/event"
	"github.com/HerbHall/lankaportal/internal/plugin"
	"github.com/HerbHall/lankaportal/internal/testutil"
)

func newTestServer(t *testing.T, settings map[string]any) (*Module, *httptest.Server) {
	t.Helper()
	v := viper.New()
	v.Set("jwt_secret", "handler-secret")
	v.Set("local_user.email", "traveller@lankaportal.local")
	for k, val := range settings {
		v.Set(k, val)
	}

	m := New()
	require.NoError(t, m.Init(t.Context(), plugin.Dependencies{
		Config: config.New(v),
		Logger: zap.NewNop(),
		Bus:    event.NewBus(zap.NewNop()),
	}))
	t.Cleanup(func() { _ = m.Stop() })

	mux := http.NewServeMux()
	for _, r := range m.Routes() {
		mux.HandleFunc(r.Method+" /auth"+r.Path, r.Handler)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return m, srv
}

func signIn(t *testing.T, srv *httptest.Server, body string) Session {
	t.Helper()
	resp, err := http.Post(srv.URL+"/auth/sign-in", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	return s
}

func call(t *testing.T, srv *httptest.Server, method, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, http.NoBody)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandler_SignInSessionSignOut(t *testing.T) {
	_, srv := newTestServer(t, map[string]any{"auto_session": false})

	s := signIn(t, srv, `{"email":"sunil@example.lk","password":"x"}`)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, "sunil@example.lk", s.User.Email)

	resp := call(t, srv, http.MethodGet, "/auth/session", s.Token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, srv, http.MethodGet, "/auth/session", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))

	resp = call(t, srv, http.MethodPost, "/auth/sign-out", s.Token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = call(t, srv, http.MethodGet, "/auth/session", s.Token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_SignInEmptyBodyAndBadJSON(t *testing.T) {
	_, srv := newTestServer(t, nil)

	s := signIn(t, srv, "")
	assert.Equal(t, "traveller@lankaportal.local", s.User.Email)

	resp, err := http.Post(srv.URL+"/auth/sign-in", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_AutoSession(t *testing.T) {
	m, srv := newTestServer(t, nil)

	resp := call(t, srv, http.MethodGet, "/auth/session", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	s, err := m.Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, "traveller@lankaportal.local", s.User.Email)
}

func TestHandler_EventsStreamOwnChanges(t *testing.T) {
	_, srv := newTestServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/auth/events"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	// Another visitor's sign-in is not delivered to this stream.
	signIn(t, srv, `{"email":"someone@else.lk"}`)
	own := signIn(t, srv, "")

	var c Change
	require.NoError(t, wsjson.Read(ctx, conn, &c))
	assert.Equal(t, SignedIn, c.Kind)
	assert.Equal(t, own.User.ID, c.User.ID)
}

func TestHandler_EventsRequireSession(t *testing.T) {
	_, srv := newTestServer(t, map[string]any{"auto_session": false})
	resp := call(t, srv, http.MethodGet, "/auth/events", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestModule_PublishesOnBus(t *testing.T) {
	bus := testutil.NewMockBus()
	m := New()
	require.NoError(t, m.Init(t.Context(), plugin.Dependencies{
		Config: config.New(nil),
		Logger: zap.NewNop(),
		Bus:    bus,
	}))

	_, err := m.Provider().SignIn(t.Context(), Credentials{})
	require.NoError(t, err)
	assert.Equal(t, []string{TopicSessionChanged}, bus.Topics())

	require.NoError(t, m.Stop())
	_, _ = m.Provider().SignIn(t.Context(), Credentials{})
	assert.Len(t, bus.Events(), 1, "no events after Stop")
}

func TestModule_UnknownProvider(t *testing.T) {
	v := viper.New()
	v.Set("provider", "ldap")
	err := New().Init(t.Context(), plugin.Dependencies{Config: config.New(v), Logger: zap.NewNop()})
	assert.Error(t, err)
}
