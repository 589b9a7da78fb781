package auth

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/HerbHall/lankaportal/internal/config"
	"github.com/HerbHall/lankaportal/internal/plugin"
	"github.com/HerbHall/lankaportal/internal/version"
	pkgplugin "github.com/HerbHall/lankaportal/pkg/plugin"
)

var (
	_ plugin.Plugin           = (*Module)(nil)
	_ pkgplugin.HealthChecker = (*Module)(nil)
)

// Module exposes the session API as the "auth" module.
type Module struct {
	provider    Provider
	handler     *Handler
	logger      *zap.Logger
	unsubscribe func()
}

// New creates the auth module. The provider is chosen from config in Init.
func New() *Module { return &Module{} }

func (m *Module) Name() string    { return "auth" }
func (m *Module) Version() string { return "1.0.0" }

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger
	p, err := newProvider(deps.Config)
	if err != nil {
		return err
	}
	m.provider = p

	if deps.Bus != nil {
		bus := deps.Bus
		m.unsubscribe = p.Subscribe(func(c Change) {
			_ = bus.Publish(context.Background(), pkgplugin.Event{
				Topic:     TopicSessionChanged,
				Source:    m.Name(),
				Timestamp: c.At,
				Payload:   c,
			})
		})
	}
	m.handler = NewHandler(p, deps.Bus, deps.Logger)
	m.logger.Info("auth provider selected", zap.String("provider", p.Name()))
	return nil
}

func (m *Module) Start(context.Context) error { return nil }

func (m *Module) Stop() error {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	return nil
}

func (m *Module) Routes() []plugin.Route {
	if m.handler == nil {
		return nil
	}
	return m.handler.Routes()
}

// Provider returns the active session backend.
func (m *Module) Provider() Provider { return m.provider }

// Resolve returns the session of r's bearer token.
func (m *Module) Resolve(r *http.Request) (*Session, error) {
	return m.provider.Session(r.Context(), TokenFromRequest(r))
}

func (m *Module) Health(context.Context) pkgplugin.HealthStatus {
	if m.provider == nil {
		return pkgplugin.HealthStatus{Status: pkgplugin.HealthDown, Details: map[string]string{"provider": "not initialized"}}
	}
	return pkgplugin.HealthStatus{Status: pkgplugin.HealthOK, Details: map[string]string{"provider": m.provider.Name()}}
}

func newProvider(cfg *config.Config) (Provider, error) {
	switch name := cfg.GetString("provider"); name {
	case "", "local":
		return NewLocalProvider(LocalConfig{
			Secret:      []byte(cfg.GetString("jwt_secret")),
			TTL:         cfg.GetDuration("token_ttl"),
			AutoSession: !cfg.IsSet("auto_session") || cfg.GetBool("auto_session"),
			DefaultUser: User{
				Email: cfg.GetString("local_user.email"),
				Name:  cfg.GetString("local_user.name"),
			},
			PasswordHash: cfg.GetString("local_user.password_hash"),
			TOTPSecret:   cfg.GetString("local_user.totp_secret"),
		})
	case "remote":
		return NewRemoteProvider(RemoteConfig{
			URL:       cfg.GetString("remote.url"),
			APIKey:    cfg.GetString("remote.api_key"),
			UserAgent: version.UserAgent(),
		})
	default:
		return nil, fmt.Errorf("unknown auth provider %q", name)
	}
}
