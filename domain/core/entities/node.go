package entities

import (
	"time"

	"graphcore/domain/core/valueobjects"
)

// NodeType classifies what a graph node represents
type NodeType string

const (
	NodeTypeNote      NodeType = "note"
	NodeTypeTag       NodeType = "tag"
	NodeTypeFolder    NodeType = "folder"
	NodeTypeReference NodeType = "reference-link"
)

// IsValid reports whether the type is one of the closed set
func (t NodeType) IsValid() bool {
	switch t {
	case NodeTypeNote, NodeTypeTag, NodeTypeFolder, NodeTypeReference:
		return true
	}
	return false
}

// Metadata contains additional node information carried from ingestion
type Metadata struct {
	Tags      []string               `json:"tags,omitempty"`
	Excerpt   string                 `json:"excerpt,omitempty"`
	CreatedAt time.Time              `json:"created_at,omitempty"`
	UpdatedAt time.Time              `json:"updated_at,omitempty"`
	Custom    map[string]interface{} `json:"custom,omitempty"`
}

// Node is the main entity representing a knowledge unit in the graph.
// The ID is immutable for the node's lifetime; Connections and Size are
// derived values recomputed by the processor or link manager, never
// hand-edited by callers.
type Node struct {
	ID          string                 `json:"id"`
	Label       string                 `json:"label"`
	Type        NodeType               `json:"type"`
	Size        float64                `json:"size"`
	Position    *valueobjects.Position `json:"position,omitempty"`
	Metadata    Metadata               `json:"metadata"`
	Connections int                    `json:"connections"`
}

// Clone returns a deep copy so engines can reposition nodes without
// mutating the caller's snapshot
func (n *Node) Clone() *Node {
	out := *n
	if n.Position != nil {
		pos := *n.Position
		out.Position = &pos
	}
	if n.Metadata.Tags != nil {
		out.Metadata.Tags = append([]string(nil), n.Metadata.Tags...)
	}
	if n.Metadata.Custom != nil {
		custom := make(map[string]interface{}, len(n.Metadata.Custom))
		for k, v := range n.Metadata.Custom {
			custom[k] = v
		}
		out.Metadata.Custom = custom
	}
	return &out
}

// PositionOr returns the node's position, or the given fallback when no
// layout has run yet
func (n *Node) PositionOr(fallback valueobjects.Position) valueobjects.Position {
	if n.Position == nil {
		return fallback
	}
	return *n.Position
}

// HasTag checks for a tag, case-insensitively matched by the caller's casing
func (n *Node) HasTag(tag string) bool {
	for _, t := range n.Metadata.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
