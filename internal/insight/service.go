// Package insight generates short travel tips for catalog searches with an
// LLM. Only the latest request per client is ever answered.
package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/HerbHall/lankaportal/internal/metrics"
	"github.com/HerbHall/lankaportal/pkg/llm"
)

// ErrSuperseded is returned to a caller whose request was replaced by a
// newer one from the same client.
var ErrSuperseded = errors.New("insight: superseded by a newer request")

const systemPrompt = "You are a concise Sri Lanka travel guide. Answer in plain text without lists or markdown."

const promptTemplate = `A visitor browsing a Sri Lanka travel guide searched for %q.
In at most two sentences, give one practical tip related to that search.`

// Options tune a Service. Zero values fall back to the defaults below and
// a negative Debounce disables debouncing.
type Options struct {
	Debounce  time.Duration
	Timeout   time.Duration
	TTL       time.Duration
	MaxTokens int
}

const (
	defaultDebounce  = 300 * time.Millisecond
	defaultTimeout   = 10 * time.Second
	defaultTTL       = 10 * time.Minute
	defaultMaxTokens = 120
)

type call struct {
	cancel context.CancelCauseFunc
}

// Service answers insight requests with last-input-wins semantics per
// client key.
type Service struct {
	provider llm.Provider
	cache    Cache
	logger   *zap.Logger
	metrics  *metrics.Metrics
	opts     Options

	mu       sync.Mutex
	inflight map[string]*call
}

// NewService creates a Service. cache may be nil to disable caching.
func NewService(provider llm.Provider, cache Cache, logger *zap.Logger, m *metrics.Metrics, opts Options) *Service {
	if opts.Debounce < 0 {
		opts.Debounce = 0
	} else if opts.Debounce == 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	return &Service{
		provider: provider,
		cache:    cache,
		logger:   logger,
		metrics:  m,
		opts:     opts,
		inflight: make(map[string]*call),
	}
}

// Normalize folds case and collapses whitespace so equivalent searches
// share a cache entry.
func Normalize(q string) string {
	return strings.Join(strings.Fields(cases.Fold().String(q)), " ")
}

// Insight returns a tip for query on behalf of client. Queries shorter than
// two characters return "" without calling the provider. A newer call for
// the same client cancels this one, which then returns ErrSuperseded.
func (s *Service) Insight(ctx context.Context, client, query string) (string, error) {
	key := Normalize(query)
	if utf8.RuneCountInString(key) < 2 {
		return "", nil
	}

	ctx, done := s.begin(ctx, client)
	defer done()

	if s.cache != nil {
		v, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Debug("insight cache read failed", zap.Error(err))
		} else if ok {
			s.metrics.Insight("hit")
			return v, nil
		}
	}

	if s.opts.Debounce > 0 {
		t := time.NewTimer(s.opts.Debounce)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", s.abort(ctx)
		case <-t.C:
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	resp, err := s.provider.Generate(genCtx, fmt.Sprintf(promptTemplate, strings.TrimSpace(query)),
		llm.WithSystem(systemPrompt),
		llm.WithMaxTokens(s.opts.MaxTokens),
	)
	if ctx.Err() != nil {
		return "", s.abort(ctx)
	}
	if err != nil {
		s.metrics.Insight("failed")
		return "", fmt.Errorf("generate insight: %w", err)
	}

	text := strings.TrimSpace(resp.Content)
	if s.cache != nil && text != "" {
		if err := s.cache.Set(ctx, key, text, s.opts.TTL); err != nil {
			s.logger.Debug("insight cache write failed", zap.Error(err))
		}
	}
	s.metrics.Insight("generated")
	return text, nil
}

// begin registers a new call for client, cancelling any call in flight.
func (s *Service) begin(parent context.Context, client string) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)
	c := &call{cancel: cancel}

	s.mu.Lock()
	if prev, ok := s.inflight[client]; ok {
		prev.cancel(ErrSuperseded)
	}
	s.inflight[client] = c
	s.mu.Unlock()

	return ctx, func() {
		s.mu.Lock()
		if s.inflight[client] == c {
			delete(s.inflight, client)
		}
		s.mu.Unlock()
		cancel(context.Canceled)
	}
}

func (s *Service) abort(ctx context.Context) error {
	s.metrics.Insight("cancelled")
	return context.Cause(ctx)
}

// pending reports whether client has a call in flight.
func (s *Service) pending(client string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[client]
	return ok
}
