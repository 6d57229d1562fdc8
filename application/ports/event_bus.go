// Package ports defines the interfaces the application layer depends on,
// keeping the core free of implicit global collaborators.
package ports

import "graphcore/domain/events"

// EventHandler consumes a single domain event
type EventHandler func(event events.DomainEvent)

// EventBus is the narrow publish/subscribe boundary between the graph core
// and its collaborators (presentation layer, persistence layer). An
// implementation is injected into the link manager; the core never reaches
// for ambient global state.
type EventBus interface {
	// Publish delivers the event to every handler subscribed to its type
	Publish(event events.DomainEvent)

	// Subscribe registers a handler for an event type and returns an
	// unsubscribe function
	Subscribe(eventType string, handler EventHandler) (unsubscribe func())
}
