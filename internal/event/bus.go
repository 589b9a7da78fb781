// Package event provides the in-process event bus used for module
// notifications such as session changes.
package event

import (
	"context"
	"sync"

	"github.com/HerbHall/lankaportal/pkg/plugin"
	"go.uber.org/zap"
)

// Compile-time interface guard.
var _ plugin.EventBus = (*Bus)(nil)

type subscription struct {
	id      uint64
	handler plugin.EventHandler
}

// Bus is a synchronous, topic-keyed event bus. Handler panics are recovered
// and logged so one bad subscriber cannot break publishing.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	topics map[string][]subscription
	all    []subscription
	logger *zap.Logger
}

// NewBus creates an empty Bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		topics: make(map[string][]subscription),
		logger: logger,
	}
}

// Publish calls every handler subscribed to event.Topic, then every
// SubscribeAll handler, before returning.
func (b *Bus) Publish(ctx context.Context, event plugin.Event) error {
	for _, s := range b.handlersFor(event.Topic) {
		b.dispatch(ctx, s, event)
	}
	return nil
}

// PublishAsync runs Publish on a new goroutine.
func (b *Bus) PublishAsync(ctx context.Context, event plugin.Event) {
	go func() {
		_ = b.Publish(ctx, event)
	}()
}

// Subscribe registers handler for a single topic.
func (b *Bus) Subscribe(topic string, handler plugin.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.topics[topic] = removeSubscription(b.topics[topic], id)
		if len(b.topics[topic]) == 0 {
			delete(b.topics, topic)
		}
	}
}

// SubscribeAll registers handler for every topic.
func (b *Bus) SubscribeAll(handler plugin.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.all = removeSubscription(b.all, id)
	}
}

// handlersFor snapshots the handlers for topic so none run under the lock.
func (b *Bus) handlersFor(topic string) []subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]subscription, 0, len(b.topics[topic])+len(b.all))
	out = append(out, b.topics[topic]...)
	out = append(out, b.all...)
	return out
}

func (b *Bus) dispatch(ctx context.Context, s subscription, event plugin.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("topic", event.Topic),
				zap.Any("panic", r),
			)
		}
	}()
	s.handler(ctx, event)
}

func removeSubscription(subs []subscription, id uint64) []subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}
