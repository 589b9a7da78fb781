package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/HerbHall/lankaportal/docs" // registers the OpenAPI description
	"github.com/HerbHall/lankaportal/internal/metrics"
	"github.com/HerbHall/lankaportal/internal/plugin"
	"github.com/HerbHall/lankaportal/internal/version"
	pkgplugin "github.com/HerbHall/lankaportal/pkg/plugin"
)

// Server is the LankaPortal HTTP server.
type Server struct {
	httpServer *http.Server
	registry   *plugin.Registry
	metrics    *metrics.Metrics
	logger     *zap.Logger
	mux        *http.ServeMux
}

// New creates a server that mounts every enabled module of reg under
// /api/v1/{module}. A nil m disables /metrics and request instrumentation.
func New(addr string, reg *plugin.Registry, m *metrics.Metrics, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           m.Middleware(mux),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		registry: reg,
		metrics:  m,
		logger:   logger,
		mux:      mux,
	}

	s.registerCoreRoutes()
	s.mountModuleRoutes()

	return s
}

// Handler returns the root handler, including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// registerCoreRoutes sets up routes that are always available.
func (s *Server) registerCoreRoutes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/modules", s.handleModules)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
	s.mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

// mountModuleRoutes registers all module routes under /api/v1/{module}.
func (s *Server) mountModuleRoutes() {
	for name, routes := range s.registry.AllRoutes() {
		for _, route := range routes {
			pattern := fmt.Sprintf("/api/v1/%s%s", name, route.Path)
			if route.Method != "" {
				pattern = route.Method + " " + pattern
			}
			s.mux.HandleFunc(pattern, route.Handler)
			s.logger.Debug("mounted route",
				zap.String("module", name),
				zap.String("pattern", pattern),
			)
		}
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// handleHealth reports build info and the health of each module.
//
//	@Summary		Health check
//	@Tags			system
//	@Produce		json
//	@Success		200 {object} map[string]any
//	@Failure		503 {object} map[string]any
//	@Router			/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, modules := s.registry.Health(r.Context())

	code := http.StatusOK
	if status == pkgplugin.HealthDown {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-LankaPortal-Version", version.Short())
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"service": "lankaportal",
		"version": version.Map(),
		"modules": modules,
	})
}

// handleModules lists the registered modules and whether each is enabled.
//
//	@Summary		List modules
//	@Tags			system
//	@Produce		json
//	@Success		200 {array} plugin.Info
//	@Router			/modules [get]
func (s *Server) handleModules(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-LankaPortal-Version", version.Short())
	_ = json.NewEncoder(w).Encode(s.registry.Infos())
}
