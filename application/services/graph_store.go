package services

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"graphcore/application/ports"
	domaincfg "graphcore/domain/config"
	"graphcore/domain/core/aggregates"
	"graphcore/domain/core/entities"
	"graphcore/domain/events"
	pkgerrors "graphcore/pkg/errors"
)

// GraphStore holds the working graph model for the running process. Node
// additions and removals go through it so domain limits apply and node
// lifecycle events reach subscribers such as the link manager.
type GraphStore struct {
	mu     sync.RWMutex
	model  *aggregates.GraphModel
	limits *domaincfg.DomainConfig

	bus    ports.EventBus
	logger *zap.Logger
}

// NewGraphStore creates an empty graph store
func NewGraphStore(limits *domaincfg.DomainConfig, bus ports.EventBus, logger *zap.Logger) *GraphStore {
	return &GraphStore{
		model:  &aggregates.GraphModel{Nodes: []*entities.Node{}, Links: []*entities.Link{}},
		limits: limits,
		bus:    bus,
		logger: logger,
	}
}

// Set replaces the working model wholesale
func (s *GraphStore) Set(model *aggregates.GraphModel) {
	s.mu.Lock()
	s.model = model
	s.mu.Unlock()

	s.logger.Info("Replaced graph model",
		zap.Int("nodes", len(model.Nodes)),
		zap.Int("links", len(model.Links)),
	)
}

// Get returns a deep copy of the working model
func (s *GraphStore) Get() *aggregates.GraphModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.Clone()
}

// NodeCount returns the number of nodes in the working model
func (s *GraphStore) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.model.Nodes)
}

// AddNode appends a node to the working model and announces it
func (s *GraphStore) AddNode(node *entities.Node) error {
	s.mu.Lock()
	if len(s.model.Nodes) >= s.limits.MaxNodes {
		s.mu.Unlock()
		return pkgerrors.NewValidationError("graph is at its node capacity").
			WithCode("NODE_LIMIT_REACHED")
	}
	if s.model.HasNode(node.ID) {
		s.mu.Unlock()
		return pkgerrors.NewConflictError("node already exists").
			WithCode("DUPLICATE_NODE").
			WithDetails(map[string]interface{}{"id": node.ID})
	}
	if !node.Type.IsValid() {
		s.mu.Unlock()
		return pkgerrors.NewValidationError("unknown node type").
			WithDetails(map[string]interface{}{"type": string(node.Type)})
	}
	s.model.Nodes = append(s.model.Nodes, node)
	s.mu.Unlock()

	s.bus.Publish(events.NewNodeAdded(node.ID, time.Now()))
	return nil
}

// RemoveNode drops a node and its model links, then announces the removal
// so link indices elsewhere cascade
func (s *GraphStore) RemoveNode(id string) bool {
	s.mu.Lock()
	found := false
	nodes := s.model.Nodes[:0]
	for _, n := range s.model.Nodes {
		if n.ID == id {
			found = true
			continue
		}
		nodes = append(nodes, n)
	}
	s.model.Nodes = nodes

	if found {
		links := s.model.Links[:0]
		for _, l := range s.model.Links {
			if l.Touches(id) {
				continue
			}
			links = append(links, l)
		}
		s.model.Links = links
	}
	s.mu.Unlock()

	if found {
		s.bus.Publish(events.NewNodeRemoved(id, time.Now()))
	}
	return found
}

// SetPositions copies positions from the given nodes onto matching model
// nodes. Unknown ids are ignored.
func (s *GraphStore) SetPositions(nodes []*entities.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]*entities.Node, len(s.model.Nodes))
	for _, n := range s.model.Nodes {
		byID[n.ID] = n
	}
	for _, n := range nodes {
		if n.Position == nil {
			continue
		}
		if target, ok := byID[n.ID]; ok {
			pos := *n.Position
			target.Position = &pos
		}
	}
}
