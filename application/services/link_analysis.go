package services

import (
	"sort"

	"graphcore/domain/core/aggregates"
	"graphcore/domain/core/entities"
	pkgerrors "graphcore/pkg/errors"
)

const analysisTopN = 5

// BidirectionalPair is two independently stored links of the same type
// connecting the same two nodes in opposite directions
type BidirectionalPair struct {
	NodeA string            `json:"node_a"`
	NodeB string            `json:"node_b"`
	Type  entities.LinkType `json:"type"`
}

// NodeDegree pairs a node id with its link count
type NodeDegree struct {
	NodeID string `json:"node_id"`
	Degree int    `json:"degree"`
}

// NetworkAnalysis is the result of AnalyzeNetwork
type NetworkAnalysis struct {
	TotalLinks         int                 `json:"total_links"`
	BidirectionalPairs []BidirectionalPair `json:"bidirectional_pairs"`
	StrongestLinks     []*entities.Link    `json:"strongest_links"`
	WeakestLinks       []*entities.Link    `json:"weakest_links"`
	CentralNodes       []NodeDegree        `json:"central_nodes"`
	IsolatedNodes      []string            `json:"isolated_nodes"`
}

// AnalyzeNetwork computes summary statistics over the current link store
// and the model's node set. Reciprocity requires matching type: a forward
// link answered by a reverse link of a different type does not count as a
// bidirectional pair.
func (m *LinkManager) AnalyzeNetwork(model *aggregates.GraphModel) *NetworkAnalysis {
	links := m.Links()

	analysis := &NetworkAnalysis{
		TotalLinks:         len(links),
		BidirectionalPairs: []BidirectionalPair{},
		CentralNodes:       []NodeDegree{},
		IsolatedNodes:      []string{},
	}

	// Reciprocated pairs, deduplicated by unordered endpoint pair + type
	byID := make(map[string]bool, len(links))
	for _, l := range links {
		byID[l.ID] = true
	}
	seenPair := make(map[string]bool)
	for _, l := range links {
		reverseID := entities.LinkID(l.TargetID, l.SourceID, l.Type)
		if !byID[reverseID] {
			continue
		}
		a, b := l.SourceID, l.TargetID
		if a > b {
			a, b = b, a
		}
		key := a + "|" + b + "|" + string(l.Type)
		if seenPair[key] {
			continue
		}
		seenPair[key] = true
		analysis.BidirectionalPairs = append(analysis.BidirectionalPairs, BidirectionalPair{
			NodeA: a,
			NodeB: b,
			Type:  l.Type,
		})
	}

	// Strongest and weakest links by weight
	byStrength := append([]*entities.Link(nil), links...)
	sort.SliceStable(byStrength, func(i, j int) bool {
		return byStrength[i].Strength > byStrength[j].Strength
	})
	analysis.StrongestLinks = topLinks(byStrength, analysisTopN)
	reversed := make([]*entities.Link, len(byStrength))
	for i, l := range byStrength {
		reversed[len(byStrength)-1-i] = l
	}
	analysis.WeakestLinks = topLinks(reversed, analysisTopN)

	// Central and isolated nodes from the model's node set against the
	// manager's authoritative degree index
	degrees := make([]NodeDegree, 0, len(model.Nodes))
	for _, n := range model.Nodes {
		degree := m.ConnectionCount(n.ID)
		if degree == 0 {
			analysis.IsolatedNodes = append(analysis.IsolatedNodes, n.ID)
			continue
		}
		degrees = append(degrees, NodeDegree{NodeID: n.ID, Degree: degree})
	}
	sort.SliceStable(degrees, func(i, j int) bool {
		if degrees[i].Degree != degrees[j].Degree {
			return degrees[i].Degree > degrees[j].Degree
		}
		return degrees[i].NodeID < degrees[j].NodeID
	})
	if len(degrees) > analysisTopN {
		degrees = degrees[:analysisTopN]
	}
	analysis.CentralNodes = degrees
	sort.Strings(analysis.IsolatedNodes)

	return analysis
}

// FindPath finds a shortest path between two nodes over the neighbor index
// using BFS. Links are traversed in both directions.
func (m *LinkManager) FindPath(model *aggregates.GraphModel, startID, endID string) ([]string, error) {
	if !model.HasNode(startID) {
		return nil, pkgerrors.NewNotFoundError("start node")
	}
	if !model.HasNode(endID) {
		return nil, pkgerrors.NewNotFoundError("end node")
	}
	if startID == endID {
		return []string{startID}, nil
	}

	visited := map[string]bool{startID: true}
	parent := make(map[string]string)
	queue := []string{startID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range m.GetConnectedNodes(current) {
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = current
			queue = append(queue, next)

			if next == endID {
				path := []string{endID}
				for n := endID; n != startID; n = parent[n] {
					path = append([]string{parent[n]}, path...)
				}
				return path, nil
			}
		}
	}

	return nil, pkgerrors.NewNotFoundError("path between nodes")
}

// ConnectedWithin returns all nodes reachable from the node within maxDepth
// hops, excluding the node itself
func (m *LinkManager) ConnectedWithin(nodeID string, maxDepth int) []string {
	if maxDepth <= 0 {
		return []string{}
	}

	depth := map[string]int{nodeID: 0}
	queue := []string{nodeID}
	var result []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if depth[current] >= maxDepth {
			continue
		}

		for _, next := range m.GetConnectedNodes(current) {
			if _, seen := depth[next]; seen {
				continue
			}
			depth[next] = depth[current] + 1
			queue = append(queue, next)
			result = append(result, next)
		}
	}

	sort.Strings(result)
	return result
}

func topLinks(links []*entities.Link, n int) []*entities.Link {
	if len(links) > n {
		links = links[:n]
	}
	return append([]*entities.Link{}, links...)
}
