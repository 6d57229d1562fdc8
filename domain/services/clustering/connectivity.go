package clustering

import (
	"sort"

	"graphcore/domain/core/entities"
)

// connectivityGroups partitions nodes into connected components, treating
// every link as undirected. Isolated nodes form singleton groups, which the
// shared MinClusterSize rule then typically discards.
func connectivityGroups(nodes []*entities.Node, links []*entities.Link) [][]string {
	adjacency := make(map[string][]string, len(nodes))
	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
		adjacency[n.ID] = nil
	}
	for _, l := range links {
		if !present[l.SourceID] || !present[l.TargetID] || l.SourceID == l.TargetID {
			continue
		}
		adjacency[l.SourceID] = append(adjacency[l.SourceID], l.TargetID)
		adjacency[l.TargetID] = append(adjacency[l.TargetID], l.SourceID)
	}

	// Deterministic traversal order
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)

	visited := make(map[string]bool, len(ids))
	var groups [][]string

	for _, start := range ids {
		if visited[start] {
			continue
		}
		var component []string
		stack := []string{start}
		visited[start] = true
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, id)
			for _, next := range adjacency[id] {
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}
		groups = append(groups, component)
	}

	return groups
}
