package insight

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/HerbHall/lankaportal/internal/config"
	"github.com/HerbHall/lankaportal/internal/llm/gemini"
	"github.com/HerbHall/lankaportal/internal/llm/openai"
	"github.com/HerbHall/lankaportal/internal/plugin"
	"github.com/HerbHall/lankaportal/internal/ratelimit"
	"github.com/HerbHall/lankaportal/pkg/llm"
	pkgplugin "github.com/HerbHall/lankaportal/pkg/plugin"
)

var (
	_ plugin.Plugin           = (*Module)(nil)
	_ pkgplugin.HealthChecker = (*Module)(nil)
)

const (
	redisKeyPrefix = "lankaportal:insight:"
	janitorEvery   = time.Minute
	limiterIdle    = 10 * time.Minute
)

// Module exposes search insights as the "insight" module.
type Module struct {
	logger   *zap.Logger
	provider llm.Provider
	cache    Cache
	limiter  *ratelimit.Keyed
	service  *Service
	handler  *Handler

	// Overrides the configured provider. Set by tests.
	providerOverride llm.Provider

	stop context.CancelFunc
	done chan struct{}
}

// New creates the insight module. The LLM backend is chosen from config in
// Init.
func New() *Module { return &Module{} }

// NewWithProvider creates the insight module with a fixed provider.
func NewWithProvider(p llm.Provider) *Module { return &Module{providerOverride: p} }

func (m *Module) Name() string    { return "insight" }
func (m *Module) Version() string { return "1.0.0" }

func (m *Module) Init(ctx context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger
	cfg := deps.Config

	provider := m.providerOverride
	if provider == nil {
		p, err := newProvider(ctx, cfg)
		if err != nil {
			return err
		}
		provider = p
	}
	m.provider = provider

	cache, err := newCache(cfg)
	if err != nil {
		return err
	}
	m.cache = cache

	m.limiter = ratelimit.New(cfg.GetFloat64("rate_limit"), cfg.GetInt("rate_burst"))
	m.service = NewService(provider, cache, deps.Logger, deps.Metrics, Options{
		Debounce:  cfg.GetDuration("debounce"),
		Timeout:   cfg.GetDuration("timeout"),
		TTL:       cfg.GetDuration("cache_ttl"),
		MaxTokens: cfg.GetInt("max_tokens"),
	})
	m.handler = NewHandler(m.service, m.limiter, deps.Logger, deps.Metrics)

	m.logger.Info("insight provider selected", zap.String("provider", provider.Name()))
	return nil
}

// Start runs a janitor that drops idle rate limit buckets and expired
// memory cache entries.
func (m *Module) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.stop = cancel
	m.done = make(chan struct{})
	go m.janitor(ctx)
	return nil
}

func (m *Module) Stop() error {
	if m.stop != nil {
		m.stop()
		<-m.done
	}
	var firstErr error
	for _, c := range []any{m.cache, m.provider} {
		if closer, ok := c.(io.Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m *Module) Routes() []plugin.Route {
	if m.handler == nil {
		return nil
	}
	return m.handler.Routes()
}

// Service returns the insight service for in-process callers.
func (m *Module) Service() *Service { return m.service }

// Health is degraded when the Redis cache is unreachable; insights still
// work without it.
func (m *Module) Health(ctx context.Context) pkgplugin.HealthStatus {
	details := map[string]string{}
	if m.provider != nil {
		details["provider"] = m.provider.Name()
	}
	if rc, ok := m.cache.(*RedisCache); ok {
		if err := rc.Ping(ctx); err != nil {
			details["cache"] = err.Error()
			return pkgplugin.HealthStatus{Status: pkgplugin.HealthDegraded, Details: details}
		}
	}
	return pkgplugin.HealthStatus{Status: pkgplugin.HealthOK, Details: details}
}

func (m *Module) janitor(ctx context.Context) {
	defer close(m.done)
	t := time.NewTicker(janitorEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n := m.limiter.Sweep(limiterIdle)
			if mc, ok := m.cache.(*MemoryCache); ok {
				n += mc.Purge()
			}
			if n > 0 {
				m.logger.Debug("insight janitor", zap.Int("removed", n))
			}
		}
	}
}

func newProvider(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	switch name := cfg.GetString("provider"); name {
	case "", "noop":
		return llm.Noop{}, nil
	case "gemini":
		p, err := gemini.New(ctx, cfg.GetString("gemini.api_key"), cfg.GetString("gemini.model"))
		if err != nil {
			return nil, fmt.Errorf("gemini provider: %w", err)
		}
		return p, nil
	case "openai":
		return openai.New(openai.Config{
			APIKey:  cfg.GetString("openai.api_key"),
			Model:   cfg.GetString("openai.model"),
			BaseURL: cfg.GetString("openai.base_url"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown insight provider %q", name)
	}
}

func newCache(cfg *config.Config) (Cache, error) {
	switch kind := cfg.GetString("cache"); kind {
	case "", "memory":
		return NewMemoryCache(nil), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.GetString("redis_addr")})
		return NewRedisCache(client, redisKeyPrefix), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown insight cache %q", kind)
	}
}
