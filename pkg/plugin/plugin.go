// Package plugin holds the types shared between LankaPortal modules and the
// infrastructure that hosts them: events, storage and optional capabilities.
package plugin

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

// Route is an HTTP route exposed by a module. Path is relative to the
// module's mount point. An empty Method matches every method.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Event is a message published on the event bus.
type Event struct {
	Topic     string    `json:"topic"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// EventHandler receives events for a subscribed topic.
type EventHandler func(ctx context.Context, event Event)

// EventBus is an in-process publish/subscribe channel between modules.
type EventBus interface {
	// Publish delivers event to every subscriber before returning.
	Publish(ctx context.Context, event Event) error
	// PublishAsync delivers event on a separate goroutine.
	PublishAsync(ctx context.Context, event Event)
	// Subscribe registers handler for topic and returns an unsubscribe func.
	Subscribe(topic string, handler EventHandler) func()
	// SubscribeAll registers handler for every topic.
	SubscribeAll(handler EventHandler) func()
}

// Migration is one versioned schema change for a module.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// Store is the shared SQL database handed to modules that persist data.
type Store interface {
	DB() *sql.DB
	Tx(ctx context.Context, fn func(tx *sql.Tx) error) error
	Migrate(ctx context.Context, module string, migrations []Migration) error
}
