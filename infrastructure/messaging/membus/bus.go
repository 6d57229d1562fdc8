// Package membus provides the in-process EventBus implementation. The core
// is single-threaded and cooperative, so delivery is synchronous and in
// subscription order.
package membus

import (
	"sync"

	"go.uber.org/zap"

	"graphcore/application/ports"
	"graphcore/domain/events"
)

type subscription struct {
	id      int
	handler ports.EventHandler
}

// Bus is an in-memory publish/subscribe event bus
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscription
	logger *zap.Logger
}

// New creates an empty bus
func New(logger *zap.Logger) *Bus {
	return &Bus{
		subs:   make(map[string][]subscription),
		logger: logger,
	}
}

// Publish delivers the event synchronously to all handlers registered for
// its type
func (b *Bus) Publish(event events.DomainEvent) {
	b.mu.RLock()
	handlers := make([]ports.EventHandler, 0, len(b.subs[event.GetEventType()]))
	for _, sub := range b.subs[event.GetEventType()] {
		handlers = append(handlers, sub.handler)
	}
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	b.logger.Debug("Publishing event",
		zap.String("type", event.GetEventType()),
		zap.String("aggregateID", event.GetAggregateID()),
		zap.Int("subscribers", len(handlers)),
	)

	for _, h := range handlers {
		h(event)
	}
}

// Subscribe registers a handler for an event type. The returned function
// removes the subscription.
func (b *Bus) Subscribe(eventType string, handler ports.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[eventType] = append(b.subs[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[eventType]
		for i, sub := range subs {
			if sub.id == id {
				b.subs[eventType] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}
