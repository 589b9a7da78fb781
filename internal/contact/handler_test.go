package contact

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HerbHall/lankaportal/internal/config"
	"github.com/HerbHall/lankaportal/internal/metrics"
	"github.com/HerbHall/lankaportal/internal/plugin"
	"github.com/HerbHall/lankaportal/internal/services"
	"github.com/HerbHall/lankaportal/internal/testutil"
)

const validBody = `{"name":"Nimal","email":"nimal@example.lk","subject":"Ella train","message":"Which seat side is best?"}`

type fixture struct {
	mux  *http.ServeMux
	bus  *testutil.MockBus
	hits *atomic.Int32
}

// newFixture wires the module to a fake form endpoint answering status.
// A zero status means no endpoint is configured.
func newFixture(t *testing.T, status int, settings map[string]any) fixture {
	t.Helper()
	f := fixture{bus: testutil.NewMockBus(), hits: &atomic.Int32{}}

	v := viper.New()
	if status != 0 {
		endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f.hits.Add(1)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "LankaPortal/"))
			var p map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			assert.Equal(t, "nimal@example.lk", p["_replyto"])
			w.WriteHeader(status)
		}))
		t.Cleanup(endpoint.Close)
		v.Set("endpoint", endpoint.URL)
	}
	for k, val := range settings {
		v.Set(k, val)
	}

	m := New()
	require.NoError(t, m.Init(t.Context(), plugin.Dependencies{
		Config:  config.New(v),
		Logger:  zap.NewNop(),
		Store:   testutil.NewStore(t),
		Bus:     f.bus,
		Metrics: metrics.New(),
	}))
	require.NoError(t, m.ValidateConfig())

	f.mux = http.NewServeMux()
	for _, r := range m.Routes() {
		f.mux.HandleFunc(r.Method+" /contact"+r.Path, r.Handler)
	}
	return f
}

func (f fixture) do(method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, httptest.NewRequest(method, target, strings.NewReader(body)))
	return w
}

func TestSubmit_Delivered(t *testing.T) {
	f := newFixture(t, http.StatusOK, nil)

	w := f.do(http.MethodPost, "/contact", validBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var msg services.ContactMessage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&msg))
	assert.Equal(t, services.ContactSent, msg.Status)
	assert.NotEmpty(t, msg.ID)
	assert.EqualValues(t, 1, f.hits.Load())

	w = f.do(http.MethodGet, "/contact/messages/"+msg.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var stored services.ContactMessage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stored))
	assert.Equal(t, services.ContactSent, stored.Status)

	assert.Equal(t, []string{TopicSubmitted}, f.bus.Topics())
}

func TestSubmit_DeliveryFailure(t *testing.T) {
	f := newFixture(t, http.StatusInternalServerError, nil)

	w := f.do(http.MethodPost, "/contact", validBody)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "could not be delivered")
	assert.EqualValues(t, 1, f.hits.Load(), "no retries")

	w = f.do(http.MethodGet, "/contact/messages", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list services.ListResult[services.ContactMessage]
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, services.ContactFailed, list.Items[0].Status)
	assert.Contains(t, list.Items[0].Error, "500")
}

func TestSubmit_StoredWithoutEndpoint(t *testing.T) {
	f := newFixture(t, 0, nil)

	w := f.do(http.MethodPost, "/contact", validBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var msg services.ContactMessage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&msg))
	assert.Equal(t, services.ContactStored, msg.Status)
}

func TestSubmit_Invalid(t *testing.T) {
	f := newFixture(t, http.StatusOK, nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"not json", `{`, "invalid request body"},
		{"missing fields", `{"name":"Nimal"}`, "email is required"},
		{"bad email", `{"name":"N","email":"nope","subject":"s","message":"m"}`, "email is not a valid address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/contact", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
	assert.Zero(t, f.hits.Load())
}

func TestSubmit_RateLimited(t *testing.T) {
	f := newFixture(t, http.StatusOK, map[string]any{"rate_limit": 0.001, "rate_burst": 2})

	assert.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/contact", validBody).Code)
	assert.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/contact", validBody).Code)
	w := f.do(http.MethodPost, "/contact", validBody)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.EqualValues(t, 2, f.hits.Load())
}

func TestListMessages(t *testing.T) {
	f := newFixture(t, 0, nil)
	for range 3 {
		require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/contact", validBody).Code)
	}

	w := f.do(http.MethodGet, "/contact/messages?limit=2&offset=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list services.ListResult[services.ContactMessage]
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Equal(t, 3, list.Total)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 1, list.Offset)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/contact/messages?limit=x", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/contact/messages?sort=email", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/contact/messages/nope", "").Code)
}

func TestModule_RequiresStoreAndValidEndpoint(t *testing.T) {
	err := New().Init(t.Context(), plugin.Dependencies{Config: config.New(nil), Logger: zap.NewNop()})
	assert.Error(t, err)

	v := viper.New()
	v.Set("endpoint", "ftp://forms.example")
	m := New()
	require.NoError(t, m.Init(t.Context(), plugin.Dependencies{
		Config: config.New(v),
		Logger: zap.NewNop(),
		Store:  testutil.NewStore(t),
	}))
	assert.Error(t, m.ValidateConfig())
}
