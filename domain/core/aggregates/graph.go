package aggregates

import (
	"errors"

	"graphcore/domain/core/entities"
)

// GraphModel is the aggregate holding the uniform node/link graph produced
// by the data processor. It is a plain, JSON-serializable pair so it can
// cross process or language boundaries; engines treat instances as
// read-only snapshots and return repositioned copies.
type GraphModel struct {
	Nodes []*entities.Node `json:"nodes"`
	Links []*entities.Link `json:"links"`
}

// NewGraphModel creates an empty model
func NewGraphModel() *GraphModel {
	return &GraphModel{
		Nodes: []*entities.Node{},
		Links: []*entities.Link{},
	}
}

// NodeByID returns the node with the given id, or nil
func (m *GraphModel) NodeByID(id string) *entities.Node {
	for _, n := range m.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// HasNode checks node existence without returning the entity
func (m *GraphModel) HasNode(id string) bool {
	return m.NodeByID(id) != nil
}

// NodeSet returns an id-keyed lookup map over the node slice
func (m *GraphModel) NodeSet() map[string]*entities.Node {
	set := make(map[string]*entities.Node, len(m.Nodes))
	for _, n := range m.Nodes {
		set[n.ID] = n
	}
	return set
}

// LinkByID returns the link with the given id, or nil
func (m *GraphModel) LinkByID(id string) *entities.Link {
	for _, l := range m.Links {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// ComputeConnectionCounts recomputes every node's derived connection count
// in a single pass over all links
func (m *GraphModel) ComputeConnectionCounts() {
	counts := make(map[string]int, len(m.Nodes))
	for _, l := range m.Links {
		counts[l.SourceID]++
		counts[l.TargetID]++
	}
	for _, n := range m.Nodes {
		n.Connections = counts[n.ID]
	}
}

// Validate ensures graph invariants hold: every link endpoint exists, no
// self-loops, and node/link ids are unique
func (m *GraphModel) Validate() error {
	nodeIDs := make(map[string]bool, len(m.Nodes))
	for _, n := range m.Nodes {
		if n.ID == "" {
			return errors.New("node with empty id")
		}
		if nodeIDs[n.ID] {
			return errors.New("duplicate node id: " + n.ID)
		}
		nodeIDs[n.ID] = true
	}

	linkIDs := make(map[string]bool, len(m.Links))
	for _, l := range m.Links {
		if linkIDs[l.ID] {
			return errors.New("duplicate link id: " + l.ID)
		}
		linkIDs[l.ID] = true

		if l.SourceID == l.TargetID {
			return errors.New("self-loop link: " + l.ID)
		}
		if !nodeIDs[l.SourceID] {
			return errors.New("link references non-existent source node: " + l.SourceID)
		}
		if !nodeIDs[l.TargetID] {
			return errors.New("link references non-existent target node: " + l.TargetID)
		}
	}

	return nil
}

// Clone returns a deep copy of the model
func (m *GraphModel) Clone() *GraphModel {
	out := &GraphModel{
		Nodes: make([]*entities.Node, len(m.Nodes)),
		Links: make([]*entities.Link, len(m.Links)),
	}
	for i, n := range m.Nodes {
		out.Nodes[i] = n.Clone()
	}
	for i, l := range m.Links {
		out.Links[i] = l.Clone()
	}
	return out
}

// Density returns the edge density of the graph: links / possible links
// for a directed graph without self-loops
func (m *GraphModel) Density() float64 {
	n := len(m.Nodes)
	if n < 2 {
		return 0
	}
	return float64(len(m.Links)) / float64(n*(n-1))
}
