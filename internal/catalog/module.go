package catalog

import (
	"context"
	"fmt"

	"github.com/HerbHall/lankaportal/internal/plugin"
	"github.com/HerbHall/lankaportal/pkg/content"
	pkgplugin "github.com/HerbHall/lankaportal/pkg/plugin"
)

var (
	_ plugin.Plugin           = (*Module)(nil)
	_ pkgplugin.HealthChecker = (*Module)(nil)
)

// Module exposes the catalog API as the "catalog" module.
type Module struct {
	lib     *content.Library
	engine  *Engine
	handler *Handler
}

// New creates the catalog module over lib.
func New(lib *content.Library) *Module {
	return &Module{lib: lib, engine: NewEngine(lib)}
}

func (m *Module) Name() string    { return "catalog" }
func (m *Module) Version() string { return "1.0.0" }

// Engine returns the query engine so other modules can share it.
func (m *Module) Engine() *Engine { return m.engine }

// Init parses the embedded content eagerly so bad content fails startup
// instead of the first request.
func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	if err := m.lib.Load(); err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	m.handler = NewHandler(m.engine, deps.Logger, deps.Metrics,
		deps.Config.GetInt("page_size"), deps.Config.GetInt("max_page_size"))
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

// Health reports down when the content failed to load.
func (m *Module) Health(context.Context) pkgplugin.HealthStatus {
	if err := m.lib.Load(); err != nil {
		return pkgplugin.HealthStatus{Status: pkgplugin.HealthDown, Details: map[string]string{"content": err.Error()}}
	}
	return pkgplugin.HealthStatus{Status: pkgplugin.HealthOK}
}
