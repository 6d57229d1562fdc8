package services

import (
	"strings"

	"graphcore/domain/core/aggregates"
	"graphcore/domain/core/entities"
)

// GraphFilter narrows a model to matching nodes and the links between them.
// Zero values mean "no constraint".
type GraphFilter struct {
	NodeTypes      []entities.NodeType `json:"node_types,omitempty"`
	LinkTypes      []entities.LinkType `json:"link_types,omitempty"`
	MinConnections int                 `json:"min_connections,omitempty"`
	MaxConnections int                 `json:"max_connections,omitempty"`
	Search         string              `json:"search,omitempty"`
}

// FilterData applies the filter to a model without mutating it. Links whose
// endpoints were filtered out are pruned.
func (p *DataProcessor) FilterData(model *aggregates.GraphModel, filter GraphFilter) *aggregates.GraphModel {
	nodeTypes := make(map[entities.NodeType]bool, len(filter.NodeTypes))
	for _, t := range filter.NodeTypes {
		nodeTypes[t] = true
	}
	linkTypes := make(map[entities.LinkType]bool, len(filter.LinkTypes))
	for _, t := range filter.LinkTypes {
		linkTypes[t] = true
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	out := aggregates.NewGraphModel()
	kept := make(map[string]bool, len(model.Nodes))

	for _, n := range model.Nodes {
		if len(nodeTypes) > 0 && !nodeTypes[n.Type] {
			continue
		}
		if n.Connections < filter.MinConnections {
			continue
		}
		if filter.MaxConnections > 0 && n.Connections > filter.MaxConnections {
			continue
		}
		if search != "" && !nodeMatchesSearch(n, search) {
			continue
		}
		out.Nodes = append(out.Nodes, n.Clone())
		kept[n.ID] = true
	}

	for _, l := range model.Links {
		if len(linkTypes) > 0 && !linkTypes[l.Type] {
			continue
		}
		if !kept[l.SourceID] || !kept[l.TargetID] {
			continue
		}
		out.Links = append(out.Links, l.Clone())
	}

	return out
}

// nodeMatchesSearch checks label, excerpt and tags for a case-insensitive
// substring match
func nodeMatchesSearch(n *entities.Node, search string) bool {
	if strings.Contains(strings.ToLower(n.Label), search) {
		return true
	}
	if strings.Contains(strings.ToLower(n.Metadata.Excerpt), search) {
		return true
	}
	for _, tag := range n.Metadata.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}
