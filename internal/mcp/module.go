package mcp

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/HerbHall/lankaportal/internal/catalog"
	"github.com/HerbHall/lankaportal/internal/plugin"
	"github.com/HerbHall/lankaportal/internal/version"
)

var _ plugin.Plugin = (*Module)(nil)

// Module serves the catalog tools as the "mcp" module at /api/v1/mcp.
type Module struct {
	tools   *Tools
	server  *mcp.Server
	handler http.Handler
}

// New creates the MCP module over engine.
func New(engine *catalog.Engine) *Module {
	return &Module{tools: NewTools(engine)}
}

func (m *Module) Name() string    { return "mcp" }
func (m *Module) Version() string { return "1.0.0" }

// Init builds the MCP server. With modules.mcp.stateless set, each request
// is served without a session.
func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.server = NewServer(m.tools)
	m.handler = mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return m.server
	}, &mcp.StreamableHTTPOptions{
		Stateless:    deps.Config.GetBool("stateless"),
		JSONResponse: deps.Config.GetBool("json_response"),
	})
	deps.Logger.Info("mcp tools ready", zap.String("version", version.Short()))
	return nil
}

func (m *Module) Start(context.Context) error { return nil }
func (m *Module) Stop() error                 { return nil }

// Routes mounts the streamable HTTP endpoint for every method it speaks.
func (m *Module) Routes() []plugin.Route {
	if m.handler == nil {
		return nil
	}
	return []plugin.Route{{Path: "", Handler: m.handler.ServeHTTP}}
}

// Server returns the MCP server, e.g. for an in-process transport.
func (m *Module) Server() *mcp.Server { return m.server }

// NewServer creates an MCP server with every catalog tool registered.
func NewServer(tools *Tools) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "lankaportal-catalog",
		Title:   "LankaPortal travel catalog",
		Version: version.Short(),
	}, nil)
	tools.Register(s)
	return s
}
