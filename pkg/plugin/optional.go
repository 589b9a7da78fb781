package plugin

import "context"

// HealthStatus is a module's self-reported health.
type HealthStatus struct {
	Status  string            `json:"status"` // "ok", "degraded" or "down"
	Details map[string]string `json:"details,omitempty"`
}

// Health states.
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
	HealthDown     = "down"
)

// HealthChecker is implemented by modules that report their health status.
type HealthChecker interface {
	Health(ctx context.Context) HealthStatus
}

// Validator is implemented by modules that validate their config post-init.
type Validator interface {
	ValidateConfig() error
}
