package plugin

import (
	"context"

	"github.com/HerbHall/lankaportal/internal/config"
	"github.com/HerbHall/lankaportal/internal/metrics"
	pkgplugin "github.com/HerbHall/lankaportal/pkg/plugin"
	"go.uber.org/zap"
)

// Route is re-exported so modules only import this package.
type Route = pkgplugin.Route

// Dependencies are the shared services handed to every module at Init.
// Store and Bus may be nil in tests; modules that need them must check.
// A nil Metrics disables instrumentation.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   pkgplugin.Store
	Bus     pkgplugin.EventBus
	Metrics *metrics.Metrics
}

// Plugin defines the interface that all LankaPortal modules must implement.
type Plugin interface {
	// Name returns the module's unique identifier (e.g., "catalog", "auth").
	// It is also the URL segment the module's routes are mounted under.
	Name() string

	// Version returns the module's semantic version.
	Version() string

	// Init wires the module with its config subtree and shared services.
	Init(ctx context.Context, deps Dependencies) error

	// Start begins the module's background operations.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the module.
	Stop() error

	// Routes returns the HTTP routes this module exposes.
	Routes() []Route
}
