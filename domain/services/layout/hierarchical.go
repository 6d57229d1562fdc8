package layout

import (
	"sort"

	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
)

// applyHierarchical builds a forest from hierarchy-type links (link source
// is the parent), assigns each node a discrete layer, and spaces nodes
// evenly within each layer perpendicular to the hierarchy direction. With
// no explicit hierarchy it falls back to degree-based leveling.
func (e *Engine) applyHierarchical(nodes []*entities.Node, links []*entities.Link, cfg Config) {
	levels := hierarchyLevels(nodes, links)
	if levels == nil {
		e.logger.Debug("No hierarchy links, falling back to degree-based leveling")
		levels = degreeLevels(nodes, links)
	}

	// Group nodes by layer, preserving input order for determinism
	maxLevel := 0
	layers := make(map[int][]*entities.Node)
	for _, n := range nodes {
		level := levels[n.ID]
		layers[level] = append(layers[level], n)
		if level > maxLevel {
			maxLevel = level
		}
	}

	layerCount := float64(maxLevel + 1)
	for level := 0; level <= maxLevel; level++ {
		members := layers[level]
		along := (float64(level) + 0.5) / layerCount
		for i, n := range members {
			across := (float64(i) + 0.5) / float64(len(members))

			var pos valueobjects.Position
			switch cfg.Direction {
			case DirectionTopDown:
				pos = valueobjects.NewPosition(across*cfg.Width, along*cfg.Height)
			case DirectionBottomUp:
				pos = valueobjects.NewPosition(across*cfg.Width, (1-along)*cfg.Height)
			case DirectionLeftRight:
				pos = valueobjects.NewPosition(along*cfg.Width, across*cfg.Height)
			case DirectionRightLeft:
				pos = valueobjects.NewPosition((1-along)*cfg.Width, across*cfg.Height)
			}
			n.Position = &pos
		}
	}
}

// hierarchyLevels assigns BFS depths over hierarchy-type links, or returns
// nil when the graph has no explicit hierarchy
func hierarchyLevels(nodes []*entities.Node, links []*entities.Link) map[string]int {
	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}

	children := make(map[string][]string)
	hasParent := make(map[string]bool)
	inHierarchy := make(map[string]bool)
	for _, l := range links {
		if l.Type != entities.LinkTypeHierarchy || !present[l.SourceID] || !present[l.TargetID] {
			continue
		}
		children[l.SourceID] = append(children[l.SourceID], l.TargetID)
		hasParent[l.TargetID] = true
		inHierarchy[l.SourceID] = true
		inHierarchy[l.TargetID] = true
	}
	if len(inHierarchy) == 0 {
		return nil
	}

	levels := make(map[string]int, len(nodes))
	var queue []string
	for _, n := range nodes {
		if inHierarchy[n.ID] && !hasParent[n.ID] {
			levels[n.ID] = 0
			queue = append(queue, n.ID)
		}
	}
	// A cycle leaves no parentless root; break it at the first member
	if len(queue) == 0 {
		for _, n := range nodes {
			if inHierarchy[n.ID] {
				levels[n.ID] = 0
				queue = append(queue, n.ID)
				break
			}
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			if _, seen := levels[child]; seen {
				continue
			}
			levels[child] = levels[current] + 1
			queue = append(queue, child)
		}
	}

	// Nodes outside the forest sit on the root layer
	for _, n := range nodes {
		if _, ok := levels[n.ID]; !ok {
			levels[n.ID] = 0
		}
	}

	return levels
}

// degreeLevels buckets nodes into layers by descending degree so the most
// connected nodes lead the hierarchy
func degreeLevels(nodes []*entities.Node, links []*entities.Link) map[string]int {
	deg := degrees(nodes, links)

	distinct := make(map[int]bool)
	for _, n := range nodes {
		distinct[deg[n.ID]] = true
	}
	sorted := make([]int, 0, len(distinct))
	for d := range distinct {
		sorted = append(sorted, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	rank := make(map[int]int, len(sorted))
	for i, d := range sorted {
		rank[d] = i
	}

	levels := make(map[string]int, len(nodes))
	for _, n := range nodes {
		levels[n.ID] = rank[deg[n.ID]]
	}
	return levels
}
