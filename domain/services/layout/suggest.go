package layout

import (
	"graphcore/domain/core/entities"
)

// Thresholds for the layout selection heuristic
const (
	smallGraphNodes   = 10
	largeGraphNodes   = 50
	denseGraphDensity = 0.3
	hubDegreeFactor   = 2.0
)

// SuggestAlgorithm picks a layout for the graph's shape. The result is
// advisory only; callers may override it.
func (e *Engine) SuggestAlgorithm(nodes []*entities.Node, links []*entities.Link) Algorithm {
	if len(nodes) <= smallGraphNodes {
		return AlgorithmCircular
	}

	if hasHierarchy(nodes, links) {
		return AlgorithmHierarchical
	}

	if hasHub(nodes, links) {
		return AlgorithmRadial
	}

	if density(nodes, links) > denseGraphDensity {
		return AlgorithmForce
	}

	if len(nodes) > largeGraphNodes {
		return AlgorithmGrid
	}

	return AlgorithmForce
}

// hasHierarchy detects a usable hierarchy: some node only emits hierarchy
// links (a root) and some node only receives them (a leaf)
func hasHierarchy(nodes []*entities.Node, links []*entities.Link) bool {
	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}

	in := make(map[string]int)
	out := make(map[string]int)
	any := false
	for _, l := range links {
		if l.Type != entities.LinkTypeHierarchy || !present[l.SourceID] || !present[l.TargetID] {
			continue
		}
		out[l.SourceID]++
		in[l.TargetID]++
		any = true
	}
	if !any {
		return false
	}

	hasRoot, hasLeaf := false, false
	for id := range out {
		if in[id] == 0 {
			hasRoot = true
		}
	}
	for id := range in {
		if out[id] == 0 {
			hasLeaf = true
		}
	}
	return hasRoot && hasLeaf
}

// hasHub reports whether any node's degree exceeds twice the network
// average
func hasHub(nodes []*entities.Node, links []*entities.Link) bool {
	deg := degrees(nodes, links)
	if len(nodes) == 0 {
		return false
	}

	total := 0
	for _, d := range deg {
		total += d
	}
	average := float64(total) / float64(len(nodes))
	if average == 0 {
		return false
	}

	for _, d := range deg {
		if float64(d) > hubDegreeFactor*average {
			return true
		}
	}
	return false
}

// density is links over possible directed pairs
func density(nodes []*entities.Node, links []*entities.Link) float64 {
	n := len(nodes)
	if n < 2 {
		return 0
	}
	return float64(len(links)) / float64(n*(n-1))
}
