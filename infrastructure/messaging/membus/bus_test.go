package membus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graphcore/domain/events"
)

func TestBus_PublishReachesSubscribers(t *testing.T) {
	bus := New(zap.NewNop())

	var received []string
	bus.Subscribe(events.TypeNodeAdded, func(e events.DomainEvent) {
		received = append(received, "first:"+e.GetAggregateID())
	})
	bus.Subscribe(events.TypeNodeAdded, func(e events.DomainEvent) {
		received = append(received, "second:"+e.GetAggregateID())
	})
	bus.Subscribe(events.TypeNodeRemoved, func(e events.DomainEvent) {
		received = append(received, "wrong type")
	})

	bus.Publish(events.NewNodeAdded("n1", time.Now()))

	// Synchronous delivery in subscription order
	assert.Equal(t, []string{"first:n1", "second:n1"}, received)
}

func TestBus_PublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := New(zap.NewNop())
	assert.NotPanics(t, func() {
		bus.Publish(events.NewNodeAdded("n1", time.Now()))
	})
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New(zap.NewNop())

	calls := 0
	unsubscribe := bus.Subscribe(events.TypeNodeAdded, func(events.DomainEvent) { calls++ })
	bus.Subscribe(events.TypeNodeAdded, func(events.DomainEvent) { calls += 10 })

	bus.Publish(events.NewNodeAdded("n1", time.Now()))
	require.Equal(t, 11, calls)

	unsubscribe()
	unsubscribe() // second call is harmless

	bus.Publish(events.NewNodeAdded("n2", time.Now()))
	assert.Equal(t, 21, calls)
}

func TestBus_EventsCarryIdentity(t *testing.T) {
	first := events.NewNodeAdded("n1", time.Now())
	second := events.NewNodeAdded("n1", time.Now())

	assert.NotEmpty(t, first.GetEventID())
	assert.NotEqual(t, first.GetEventID(), second.GetEventID())
	assert.Equal(t, events.TypeNodeAdded, first.GetEventType())
}
