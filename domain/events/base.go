package events

import (
	"time"

	"github.com/google/uuid"

	"graphcore/domain/core/entities"
)

// DomainEvent is the base interface for all domain events.
// Events represent something that has happened in the past.
type DomainEvent interface {
	GetEventID() string
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetEventID() string      { return e.EventID }
func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// newBase stamps a fresh event identity
func newBase(aggregateID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		EventID:     uuid.NewString(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp,
	}
}

// Event type names published and consumed by the core
const (
	TypeLinkCreated              = "link.created"
	TypeBidirectionalLinkCreated = "link.bidirectional_created"
	TypeLinkUpdated              = "link.updated"
	TypeLinkDeleted              = "link.deleted"
	TypeNodeAdded                = "graph.node_added"
	TypeNodeRemoved              = "graph.node_removed"
)

// Link events

// LinkCreated is raised when a single link is created
type LinkCreated struct {
	BaseEvent
	Link *entities.Link `json:"link"`
}

// NewLinkCreated creates a LinkCreated event
func NewLinkCreated(link *entities.Link, timestamp time.Time) LinkCreated {
	return LinkCreated{
		BaseEvent: newBase(link.ID, TypeLinkCreated, timestamp),
		Link: link,
	}
}

// BidirectionalLinkCreated is raised when a forward/reverse link pair is
// created in one operation. The two links remain independent entities.
type BidirectionalLinkCreated struct {
	BaseEvent
	Forward *entities.Link `json:"forward"`
	Reverse *entities.Link `json:"reverse"`
}

// NewBidirectionalLinkCreated creates a BidirectionalLinkCreated event
func NewBidirectionalLinkCreated(forward, reverse *entities.Link, timestamp time.Time) BidirectionalLinkCreated {
	return BidirectionalLinkCreated{
		BaseEvent: newBase(forward.ID, TypeBidirectionalLinkCreated, timestamp),
		Forward: forward,
		Reverse: reverse,
	}
}

// LinkUpdated is raised when a link's type, strength or label changes
type LinkUpdated struct {
	BaseEvent
	Link *entities.Link `json:"link"`
}

// NewLinkUpdated creates a LinkUpdated event
func NewLinkUpdated(link *entities.Link, timestamp time.Time) LinkUpdated {
	return LinkUpdated{
		BaseEvent: newBase(link.ID, TypeLinkUpdated, timestamp),
		Link: link,
	}
}

// LinkDeleted is raised when a link is removed from the store
type LinkDeleted struct {
	BaseEvent
	LinkID   string `json:"link_id"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// NewLinkDeleted creates a LinkDeleted event
func NewLinkDeleted(link *entities.Link, timestamp time.Time) LinkDeleted {
	return LinkDeleted{
		BaseEvent: newBase(link.ID, TypeLinkDeleted, timestamp),
		LinkID:   link.ID,
		SourceID: link.SourceID,
		TargetID: link.TargetID,
	}
}

// Node events sourced externally (the presentation layer owns node CRUD)

// NodeAdded notifies the core that a node now exists
type NodeAdded struct {
	BaseEvent
	NodeID string `json:"node_id"`
}

// NewNodeAdded creates a NodeAdded event
func NewNodeAdded(nodeID string, timestamp time.Time) NodeAdded {
	return NodeAdded{
		BaseEvent: newBase(nodeID, TypeNodeAdded, timestamp),
		NodeID: nodeID,
	}
}

// NodeRemoved notifies the core that a node was removed; all links touching
// it must be cascade-deleted
type NodeRemoved struct {
	BaseEvent
	NodeID string `json:"node_id"`
}

// NewNodeRemoved creates a NodeRemoved event
func NewNodeRemoved(nodeID string, timestamp time.Time) NodeRemoved {
	return NodeRemoved{
		BaseEvent: newBase(nodeID, TypeNodeRemoved, timestamp),
		NodeID: nodeID,
	}
}
