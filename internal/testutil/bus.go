package testutil

import (
	"context"
	"sync"

	"github.com/HerbHall/lankaportal/pkg/plugin"
)

var _ plugin.EventBus = (*MockBus)(nil)

// MockBus records every published event and delivers it synchronously to
// subscribers, including events sent with PublishAsync, so tests never
// have to wait on goroutines.
type MockBus struct {
	mu       sync.Mutex
	events   []plugin.Event
	handlers map[string][]plugin.EventHandler
	all      []plugin.EventHandler
}

// NewMockBus returns a new MockBus.
func NewMockBus() *MockBus {
	return &MockBus{handlers: make(map[string][]plugin.EventHandler)}
}

// Publish records the event and runs matching handlers.
func (b *MockBus) Publish(ctx context.Context, event plugin.Event) error {
	b.mu.Lock()
	b.events = append(b.events, event)
	hs := append([]plugin.EventHandler(nil), b.handlers[event.Topic]...)
	hs = append(hs, b.all...)
	b.mu.Unlock()

	for _, h := range hs {
		h(ctx, event)
	}
	return nil
}

// PublishAsync behaves like Publish.
func (b *MockBus) PublishAsync(ctx context.Context, event plugin.Event) {
	_ = b.Publish(ctx, event)
}

// Subscribe registers h for topic. The returned func is a no-op; tests
// build a fresh bus instead of unsubscribing.
func (b *MockBus) Subscribe(topic string, h plugin.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], h)
	return func() {}
}

// SubscribeAll registers h for every topic.
func (b *MockBus) SubscribeAll(h plugin.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
	return func() {}
}

// Events returns a copy of all recorded events.
func (b *MockBus) Events() []plugin.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]plugin.Event, len(b.events))
	copy(out, b.events)
	return out
}

// Topics returns the topics of the recorded events in publish order.
func (b *MockBus) Topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Topic)
	}
	return out
}

// Reset clears recorded events. Subscriptions are kept.
func (b *MockBus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}
