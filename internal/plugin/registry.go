package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/HerbHall/lankaportal/internal/config"
	pkgplugin "github.com/HerbHall/lankaportal/pkg/plugin"
	"go.uber.org/zap"
)

// Info describes a registered module for the /modules listing.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Enabled bool   `json:"enabled"`
}

// Registry manages the lifecycle of all registered modules.
type Registry struct {
	mu       sync.RWMutex
	plugins  map[string]Plugin
	order    []string
	disabled map[string]bool
	logger   *zap.Logger
}

// NewRegistry creates a new module registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		plugins:  make(map[string]Plugin),
		disabled: make(map[string]bool),
		logger:   logger,
	}
}

// Register adds a module to the registry.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("module %q already registered", name)
	}

	r.plugins[name] = p
	r.order = append(r.order, name)
	r.logger.Info("module registered", zap.String("name", name), zap.String("version", p.Version()))
	return nil
}

// InitAll initializes every enabled module with its modules.<name> config
// subtree. A module is disabled only when modules.<name>.enabled is
// explicitly false; disabled modules are never started or mounted.
func (r *Registry) InitAll(ctx context.Context, deps Dependencies) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	root := deps.Config
	if root == nil {
		root = config.New(nil)
	}

	for _, name := range r.order {
		p := r.plugins[name]

		key := "modules." + name + ".enabled"
		if root.IsSet(key) && !root.GetBool(key) {
			r.disabled[name] = true
			r.logger.Info("module disabled, skipping", zap.String("name", name))
			continue
		}

		r.logger.Info("initializing module", zap.String("name", name))
		moduleDeps := deps
		moduleDeps.Config = root.Sub("modules." + name)
		moduleDeps.Logger = r.logger.Named(name)
		if err := p.Init(ctx, moduleDeps); err != nil {
			return fmt.Errorf("failed to initialize module %q: %w", name, err)
		}

		if v, ok := p.(pkgplugin.Validator); ok {
			if err := v.ValidateConfig(); err != nil {
				return fmt.Errorf("invalid config for module %q: %w", name, err)
			}
		}
	}
	return nil
}

// StartAll starts all enabled modules.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		if r.disabled[name] {
			continue
		}
		p := r.plugins[name]
		r.logger.Info("starting module", zap.String("name", name))
		if err := p.Start(ctx); err != nil {
			return fmt.Errorf("failed to start module %q: %w", name, err)
		}
	}
	return nil
}

// StopAll stops enabled modules in reverse order.
func (r *Registry) StopAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.order) - 1; i >= 0; i-- {
		name := r.order[i]
		if r.disabled[name] {
			continue
		}
		p := r.plugins[name]
		r.logger.Info("stopping module", zap.String("name", name))
		if err := p.Stop(); err != nil {
			r.logger.Error("failed to stop module", zap.String("name", name), zap.Error(err))
		}
	}
}

// Get returns a module by name.
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// Enabled reports whether the named module is registered and not disabled.
func (r *Registry) Enabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.plugins[name]
	return ok && !r.disabled[name]
}

// All returns all registered modules in registration order.
func (r *Registry) All() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.plugins[name])
	}
	return result
}

// Infos describes every registered module in registration order.
func (r *Registry) Infos() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, Info{
			Name:    name,
			Version: r.plugins[name].Version(),
			Enabled: !r.disabled[name],
		})
	}
	return out
}

// AllRoutes returns the routes of every enabled module keyed by module name.
func (r *Registry) AllRoutes() map[string][]Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make(map[string][]Route)
	for _, name := range r.order {
		if r.disabled[name] {
			continue
		}
		if pr := r.plugins[name].Routes(); len(pr) > 0 {
			routes[name] = pr
		}
	}
	return routes
}

// Health collects the status of every enabled module that reports one.
// The overall status is the worst individual status.
func (r *Registry) Health(ctx context.Context) (string, map[string]pkgplugin.HealthStatus) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	overall := pkgplugin.HealthOK
	details := make(map[string]pkgplugin.HealthStatus)
	for _, name := range r.order {
		if r.disabled[name] {
			continue
		}
		hc, ok := r.plugins[name].(pkgplugin.HealthChecker)
		if !ok {
			continue
		}
		st := hc.Health(ctx)
		details[name] = st
		if severity(st.Status) > severity(overall) {
			overall = st.Status
		}
	}
	return overall, details
}

func severity(status string) int {
	switch status {
	case pkgplugin.HealthDown:
		return 2
	case pkgplugin.HealthDegraded:
		return 1
	default:
		return 0
	}
}
