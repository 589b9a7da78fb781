package booking

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/HerbHall/lankaportal/internal/catalog"
	"github.com/HerbHall/lankaportal/internal/plugin"
	pkgplugin "github.com/HerbHall/lankaportal/pkg/plugin"
)

var (
	_ plugin.Plugin           = (*Module)(nil)
	_ pkgplugin.HealthChecker = (*Module)(nil)
)

const defaultSweepSchedule = "@every 1m"

// Module exposes the checkout wizard as the "booking" module.
type Module struct {
	engine   *catalog.Engine
	logger   *zap.Logger
	manager  *Manager
	handler  *Handler
	sched    *cron.Cron
	schedule string
}

// New creates the booking module. Checkouts are for items of engine.
func New(engine *catalog.Engine) *Module {
	return &Module{engine: engine}
}

func (m *Module) Name() string    { return "booking" }
func (m *Module) Version() string { return "1.0.0" }

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger
	cfg := deps.Config

	m.manager = NewManager(deps.Logger, deps.Metrics, deps.Bus, Options{
		ProcessingDelay: cfg.GetDuration("processing_delay"),
		SessionTTL:      cfg.GetDuration("session_ttl"),
		Retention:       cfg.GetDuration("retention"),
	})
	m.handler = NewHandler(m.manager, m.engine, deps.Logger)

	m.schedule = cfg.GetString("sweep_schedule")
	if m.schedule == "" {
		m.schedule = defaultSweepSchedule
	}
	m.sched = cron.New(
		cron.WithLogger(cron.PrintfLogger(zap.NewStdLog(deps.Logger))),
		cron.WithChain(cron.Recover(cron.PrintfLogger(zap.NewStdLog(deps.Logger)))),
	)
	if _, err := m.sched.AddFunc(m.schedule, m.sweep); err != nil {
		return fmt.Errorf("booking sweep schedule %q: %w", m.schedule, err)
	}
	return nil
}

func (m *Module) Start(context.Context) error {
	m.sched.Start()
	return nil
}

// Stop waits for a running sweep, then aborts in-flight processing.
func (m *Module) Stop() error {
	if m.sched != nil {
		<-m.sched.Stop().Done()
	}
	if m.manager != nil {
		m.manager.Close()
	}
	return nil
}

func (m *Module) Routes() []plugin.Route {
	if m.handler == nil {
		return nil
	}
	return m.handler.Routes()
}

// Manager returns the checkout manager.
func (m *Module) Manager() *Manager { return m.manager }

func (m *Module) Health(context.Context) pkgplugin.HealthStatus {
	details := map[string]string{"sweep_schedule": m.schedule}
	if m.manager != nil {
		details["checkouts"] = fmt.Sprint(m.manager.Len())
	}
	return pkgplugin.HealthStatus{Status: pkgplugin.HealthOK, Details: details}
}

func (m *Module) sweep() {
	if n := m.manager.ExpireStale(); n > 0 {
		m.logger.Info("expired stale checkouts", zap.Int("count", n))
	}
}
