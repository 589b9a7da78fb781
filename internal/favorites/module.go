package favorites

import (
	"context"

	"go.uber.org/zap"

	"github.com/HerbHall/lankaportal/internal/auth"
	"github.com/HerbHall/lankaportal/internal/catalog"
	"github.com/HerbHall/lankaportal/internal/plugin"
	pkgplugin "github.com/HerbHall/lankaportal/pkg/plugin"
)

var _ plugin.Plugin = (*Module)(nil)

// Module exposes favorites as the "favorites" module.
type Module struct {
	engine      *catalog.Engine
	sessions    SessionResolver
	store       *Store
	handler     *Handler
	logger      *zap.Logger
	unsubscribe func()
}

// New creates the favorites module over the shared catalog engine.
func New(engine *catalog.Engine, sessions SessionResolver) *Module {
	return &Module{engine: engine, sessions: sessions, store: NewStore()}
}

func (m *Module) Name() string    { return "favorites" }
func (m *Module) Version() string { return "1.0.0" }

// Init clears a user's favorites when they sign out.
func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger
	m.handler = NewHandler(m.store, m.engine, m.sessions, deps.Logger)
	if deps.Bus != nil {
		m.unsubscribe = deps.Bus.Subscribe(auth.TopicSessionChanged, m.onSessionChanged)
	}
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

// Store returns the favorites store.
func (m *Module) Store() *Store { return m.store }

func (m *Module) onSessionChanged(_ context.Context, e pkgplugin.Event) {
	c, ok := e.Payload.(auth.Change)
	if !ok || c.Kind != auth.SignedOut {
		return
	}
	m.store.Clear(c.User.ID)
	m.logger.Debug("favorites cleared on sign-out", zap.String("user_id", c.User.ID))
}
