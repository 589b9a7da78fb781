package contact

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/HerbHall/lankaportal/internal/plugin"
	"github.com/HerbHall/lankaportal/internal/ratelimit"
	"github.com/HerbHall/lankaportal/internal/services"
	"github.com/HerbHall/lankaportal/internal/version"
	pkgplugin "github.com/HerbHall/lankaportal/pkg/plugin"
)

var (
	_ plugin.Plugin       = (*Module)(nil)
	_ pkgplugin.Validator = (*Module)(nil)
)

const defaultTimeout = 10 * time.Second

// Module exposes the contact form as the "contact" module.
type Module struct {
	handler *Handler
}

// New creates the contact module.
func New() *Module { return &Module{} }

func (m *Module) Name() string    { return "contact" }
func (m *Module) Version() string { return "1.0.0" }

// Init migrates the contact table. Without modules.contact.endpoint
// messages are only stored.
func (m *Module) Init(ctx context.Context, deps plugin.Dependencies) error {
	if deps.Store == nil {
		return errors.New("contact module requires a store")
	}
	repo, err := services.NewSQLiteContactRepository(ctx, deps.Store)
	if err != nil {
		return fmt.Errorf("contact repository: %w", err)
	}

	cfg := deps.Config
	timeout := cfg.GetDuration("timeout")
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	h := &Handler{
		repo:    repo,
		limiter: ratelimit.New(cfg.GetFloat64("rate_limit"), cfg.GetInt("rate_burst")),
		bus:     deps.Bus,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		timeout: timeout,
	}
	if endpoint := cfg.GetString("endpoint"); endpoint != "" {
		h.relay = NewRelay(endpoint, &http.Client{Timeout: timeout}, version.UserAgent())
	} else {
		deps.Logger.Warn("no contact endpoint configured, messages will only be stored")
	}
	m.handler = h
	return nil
}

func (m *Module) Start(context.Context) error { return nil }
func (m *Module) Stop() error                 { return nil }

func (m *Module) Routes() []plugin.Route {
	if m.handler == nil {
		return nil
	}
	return m.handler.Routes()
}

// ValidateConfig rejects an endpoint that is not an http(s) URL.
func (m *Module) ValidateConfig() error {
	if m.handler == nil || m.handler.relay == nil {
		return nil
	}
	u, err := url.Parse(m.handler.relay.endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("contact endpoint %q is not an http(s) URL", m.handler.relay.endpoint)
	}
	return nil
}
