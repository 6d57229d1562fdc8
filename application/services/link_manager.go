package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"graphcore/application/ports"
	"graphcore/domain/core/aggregates"
	"graphcore/domain/core/entities"
	"graphcore/domain/events"
	pkgerrors "graphcore/pkg/errors"
)

// CreateLinkRequest describes a link to create. Strength is optional; when
// nil the type's default strength applies.
type CreateLinkRequest struct {
	SourceID      string            `json:"source" validate:"required"`
	TargetID      string            `json:"target" validate:"required"`
	Type          entities.LinkType `json:"type" validate:"required"`
	Strength      *float64          `json:"strength,omitempty"`
	Label         string            `json:"label,omitempty"`
	Bidirectional bool              `json:"bidirectional,omitempty"`
}

// UpdateLinkRequest describes an in-place mutation of an existing link.
// Nil fields are left untouched.
type UpdateLinkRequest struct {
	ID       string             `json:"id" validate:"required"`
	Type     *entities.LinkType `json:"type,omitempty"`
	Strength *float64           `json:"strength,omitempty"`
	Label    *string            `json:"label,omitempty"`
}

// LinkManager owns the authoritative link store and its two indices:
// node id -> neighbor ids and node id -> link ids. All three structures
// move together under one mutation path; no other component may bypass the
// manager to mutate links. Mutations apply in invocation order.
type LinkManager struct {
	mu sync.RWMutex

	links     map[string]*entities.Link
	neighbors map[string]map[string]int // node -> neighbor -> touching link count
	nodeLinks map[string]map[string]bool

	bus    ports.EventBus
	logger *zap.Logger

	unsubscribes []func()
}

// NewLinkManager creates a link manager wired to the given event bus. It
// subscribes to externally-sourced node notifications so removed nodes
// cascade-delete their links.
func NewLinkManager(bus ports.EventBus, logger *zap.Logger) *LinkManager {
	m := &LinkManager{
		links:     make(map[string]*entities.Link),
		neighbors: make(map[string]map[string]int),
		nodeLinks: make(map[string]map[string]bool),
		bus:       bus,
		logger:    logger,
	}

	m.unsubscribes = append(m.unsubscribes,
		bus.Subscribe(events.TypeNodeRemoved, func(e events.DomainEvent) {
			if removed, ok := e.(events.NodeRemoved); ok {
				m.RemoveNodeLinks(removed.NodeID)
			}
		}),
		bus.Subscribe(events.TypeNodeAdded, func(e events.DomainEvent) {
			logger.Debug("Node added to graph", zap.String("nodeID", e.GetAggregateID()))
		}),
	)

	return m
}

// Close releases the manager's event subscriptions
func (m *LinkManager) Close() {
	for _, unsub := range m.unsubscribes {
		unsub()
	}
	m.unsubscribes = nil
}

// Ingest replaces the store contents with the links of a processed model.
// Invalid or duplicate links are skipped rather than failing ingestion.
func (m *LinkManager) Ingest(model *aggregates.GraphModel) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.links = make(map[string]*entities.Link, len(model.Links))
	m.neighbors = make(map[string]map[string]int)
	m.nodeLinks = make(map[string]map[string]bool)

	ingested := 0
	for _, l := range model.Links {
		if l.SourceID == "" || l.TargetID == "" || l.SourceID == l.TargetID {
			continue
		}
		if _, exists := m.links[l.ID]; exists {
			continue
		}
		if m.findTripleLocked(l.SourceID, l.TargetID, l.Type) != nil {
			continue
		}
		m.insertLocked(l.Clone())
		ingested++
	}

	m.logger.Info("Ingested link store",
		zap.Int("links", ingested),
		zap.Int("skipped", len(model.Links)-ingested),
	)

	return ingested
}

// CreateLink validates and creates a link, assigning the type's default
// strength and color when unspecified. With Bidirectional set, an
// independent reverse link of the same type is created in the same
// operation; both directions are validated before either is inserted so
// there is no partial-failure path.
func (m *LinkManager) CreateLink(req CreateLinkRequest) (*entities.Link, error) {
	if req.SourceID == "" || req.TargetID == "" || req.SourceID == req.TargetID {
		return nil, pkgerrors.NewInvalidEndpoints(req.SourceID, req.TargetID)
	}
	if !req.Type.IsValid() {
		return nil, pkgerrors.NewUnsupportedAlgorithm("link type", string(req.Type))
	}
	if req.Strength != nil && (*req.Strength < 0 || *req.Strength > 1) {
		return nil, pkgerrors.NewInvalidWeight(*req.Strength)
	}

	strength := req.Type.DefaultStrength()
	if req.Strength != nil {
		strength = *req.Strength
	}

	m.mu.Lock()

	if m.findTripleLocked(req.SourceID, req.TargetID, req.Type) != nil {
		m.mu.Unlock()
		return nil, pkgerrors.NewDuplicateLink(req.SourceID, req.TargetID, string(req.Type))
	}

	var reverse *entities.Link
	if req.Bidirectional {
		if m.findTripleLocked(req.TargetID, req.SourceID, req.Type) != nil {
			m.mu.Unlock()
			return nil, pkgerrors.NewDuplicateLink(req.TargetID, req.SourceID, string(req.Type))
		}
		reverse = &entities.Link{
			ID:       m.mintIDLocked(req.TargetID, req.SourceID, req.Type),
			SourceID: req.TargetID,
			TargetID: req.SourceID,
			Type:     req.Type,
			Strength: strength,
			Label:    req.Label,
			Color:    req.Type.Color(),
		}
	}

	forward := &entities.Link{
		ID:       m.mintIDLocked(req.SourceID, req.TargetID, req.Type),
		SourceID: req.SourceID,
		TargetID: req.TargetID,
		Type:     req.Type,
		Strength: strength,
		Label:    req.Label,
		Color:    req.Type.Color(),
	}

	m.insertLocked(forward)
	if reverse != nil {
		m.insertLocked(reverse)
	}
	m.mu.Unlock()

	now := time.Now()
	if reverse != nil {
		m.bus.Publish(events.NewBidirectionalLinkCreated(forward, reverse, now))
	} else {
		m.bus.Publish(events.NewLinkCreated(forward, now))
	}

	m.logger.Debug("Created link",
		zap.String("linkID", forward.ID),
		zap.String("type", string(forward.Type)),
		zap.Float64("strength", forward.Strength),
		zap.Bool("bidirectional", reverse != nil),
	)

	return forward.Clone(), nil
}

// UpdateLink mutates type, strength and label of an existing link in place.
// Color stays consistent with the (possibly new) type.
func (m *LinkManager) UpdateLink(req UpdateLinkRequest) (*entities.Link, error) {
	if req.Strength != nil && (*req.Strength < 0 || *req.Strength > 1) {
		return nil, pkgerrors.NewInvalidWeight(*req.Strength)
	}

	m.mu.Lock()

	link, exists := m.links[req.ID]
	if !exists {
		m.mu.Unlock()
		return nil, pkgerrors.NewLinkNotFound(req.ID)
	}

	if req.Type != nil && *req.Type != link.Type {
		if !req.Type.IsValid() {
			m.mu.Unlock()
			return nil, pkgerrors.NewUnsupportedAlgorithm("link type", string(*req.Type))
		}
		// Another link of the target type between the same endpoints would
		// violate the one-per-(source, target, type) invariant.
		if m.findTripleLocked(link.SourceID, link.TargetID, *req.Type) != nil {
			m.mu.Unlock()
			return nil, pkgerrors.NewDuplicateLink(link.SourceID, link.TargetID, string(*req.Type))
		}
		// Re-key derived ids so the id keeps encoding the triple. Caller-
		// supplied ids are left alone.
		if link.ID == entities.LinkID(link.SourceID, link.TargetID, link.Type) {
			m.removeLocked(link)
			link.ID = m.mintIDLocked(link.SourceID, link.TargetID, *req.Type)
			link.Type = *req.Type
			link.Color = req.Type.Color()
			m.insertLocked(link)
		} else {
			link.Type = *req.Type
			link.Color = req.Type.Color()
		}
	}
	if req.Strength != nil {
		link.Strength = *req.Strength
	}
	if req.Label != nil {
		link.Label = *req.Label
	}

	updated := link.Clone()
	m.mu.Unlock()

	m.bus.Publish(events.NewLinkUpdated(updated, time.Now()))

	return updated, nil
}

// DeleteLink removes the link from store and indices. Returns false for an
// unknown id; that is not an error.
func (m *LinkManager) DeleteLink(id string) bool {
	m.mu.Lock()
	link, exists := m.links[id]
	if !exists {
		m.mu.Unlock()
		return false
	}
	m.removeLocked(link)
	m.mu.Unlock()

	m.bus.Publish(events.NewLinkDeleted(link, time.Now()))

	m.logger.Debug("Deleted link", zap.String("linkID", id))
	return true
}

// RemoveNodeLinks cascade-deletes every link touching the node
func (m *LinkManager) RemoveNodeLinks(nodeID string) int {
	m.mu.Lock()
	var removed []*entities.Link
	for id := range m.nodeLinks[nodeID] {
		if link, exists := m.links[id]; exists {
			removed = append(removed, link)
		}
	}
	for _, link := range removed {
		m.removeLocked(link)
	}
	m.mu.Unlock()

	now := time.Now()
	for _, link := range removed {
		m.bus.Publish(events.NewLinkDeleted(link, now))
	}

	if len(removed) > 0 {
		m.logger.Debug("Cascade-deleted node links",
			zap.String("nodeID", nodeID),
			zap.Int("links", len(removed)),
		)
	}

	return len(removed)
}

// GetLink returns a copy of the link with the given id, or nil
func (m *LinkManager) GetLink(id string) *entities.Link {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if link, exists := m.links[id]; exists {
		return link.Clone()
	}
	return nil
}

// GetNodeLinks returns copies of every link touching the node
func (m *LinkManager) GetNodeLinks(nodeID string) []*entities.Link {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*entities.Link, 0, len(m.nodeLinks[nodeID]))
	for id := range m.nodeLinks[nodeID] {
		out = append(out, m.links[id].Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetLinksBetweenNodes returns the links connecting a and b in either
// direction
func (m *LinkManager) GetLinksBetweenNodes(a, b string) []*entities.Link {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*entities.Link
	for id := range m.nodeLinks[a] {
		link := m.links[id]
		if link.OtherEnd(a) == b {
			out = append(out, link.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetConnectedNodes returns the distinct neighbor ids of the node, sorted
func (m *LinkManager) GetConnectedNodes(nodeID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.neighbors[nodeID]))
	for neighbor := range m.neighbors[nodeID] {
		out = append(out, neighbor)
	}
	sort.Strings(out)
	return out
}

// ConnectionCount returns the number of distinct links touching the node
func (m *LinkManager) ConnectionCount(nodeID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodeLinks[nodeID])
}

// Links returns a snapshot copy of every stored link
func (m *LinkManager) Links() []*entities.Link {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*entities.Link, 0, len(m.links))
	for _, l := range m.links {
		out = append(out, l.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ApplyConnectionCounts writes the manager's authoritative per-node link
// counts onto the model's nodes, restoring the connection-count invariant
// after a mutation sequence
func (m *LinkManager) ApplyConnectionCounts(model *aggregates.GraphModel) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, n := range model.Nodes {
		n.Connections = len(m.nodeLinks[n.ID])
	}
}

// findTripleLocked returns the stored link with the exact (source, target,
// type) triple, or nil. Duplicate detection keys on the triple rather than
// the derived id: type updates and ingested caller-supplied ids can leave a
// link's id out of step with its triple. Callers hold a lock.
func (m *LinkManager) findTripleLocked(sourceID, targetID string, t entities.LinkType) *entities.Link {
	for id := range m.nodeLinks[sourceID] {
		l := m.links[id]
		if l.SourceID == sourceID && l.TargetID == targetID && l.Type == t {
			return l
		}
	}
	return nil
}

// mintIDLocked derives the deterministic id for the triple, suffixing a
// counter when a caller-supplied id already occupies it. Callers hold the
// write lock.
func (m *LinkManager) mintIDLocked(sourceID, targetID string, t entities.LinkType) string {
	base := entities.LinkID(sourceID, targetID, t)
	id := base
	for i := 2; ; i++ {
		if _, taken := m.links[id]; !taken {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, i)
	}
}

// insertLocked updates store and both indices together. Callers hold the
// write lock.
func (m *LinkManager) insertLocked(link *entities.Link) {
	m.links[link.ID] = link

	for _, nodeID := range []string{link.SourceID, link.TargetID} {
		if m.nodeLinks[nodeID] == nil {
			m.nodeLinks[nodeID] = make(map[string]bool)
		}
		m.nodeLinks[nodeID][link.ID] = true
	}

	m.bumpNeighbor(link.SourceID, link.TargetID, 1)
	m.bumpNeighbor(link.TargetID, link.SourceID, 1)
}

// removeLocked is the inverse of insertLocked. Callers hold the write lock.
func (m *LinkManager) removeLocked(link *entities.Link) {
	delete(m.links, link.ID)

	for _, nodeID := range []string{link.SourceID, link.TargetID} {
		delete(m.nodeLinks[nodeID], link.ID)
		if len(m.nodeLinks[nodeID]) == 0 {
			delete(m.nodeLinks, nodeID)
		}
	}

	m.bumpNeighbor(link.SourceID, link.TargetID, -1)
	m.bumpNeighbor(link.TargetID, link.SourceID, -1)
}

// bumpNeighbor adjusts the touching-link count behind the neighbor index;
// the neighbor entry survives while any link still connects the pair
func (m *LinkManager) bumpNeighbor(nodeID, neighborID string, delta int) {
	if m.neighbors[nodeID] == nil {
		if delta <= 0 {
			return
		}
		m.neighbors[nodeID] = make(map[string]int)
	}
	m.neighbors[nodeID][neighborID] += delta
	if m.neighbors[nodeID][neighborID] <= 0 {
		delete(m.neighbors[nodeID], neighborID)
		if len(m.neighbors[nodeID]) == 0 {
			delete(m.neighbors, nodeID)
		}
	}
}
