package layout

import (
	"math"
	"sort"

	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
)

// applyGrid places nodes row-major into a ⌈√n⌉-column grid inside the
// padded viewport. With SortByAdjacency set, nodes are pre-ordered by a BFS
// walk from the highest-degree node so related nodes land in nearby cells.
func (e *Engine) applyGrid(nodes []*entities.Node, links []*entities.Link, cfg Config) {
	ordered := nodes
	if cfg.SortByAdjacency {
		ordered = adjacencyOrder(nodes, links)
	}

	cols := int(math.Ceil(math.Sqrt(float64(len(ordered)))))
	rows := int(math.Ceil(float64(len(ordered)) / float64(cols)))

	innerW := cfg.Width - 2*cfg.Padding
	innerH := cfg.Height - 2*cfg.Padding
	if innerW <= 0 {
		innerW = cfg.Width
	}
	if innerH <= 0 {
		innerH = cfg.Height
	}

	cellW := innerW / float64(cols)
	cellH := innerH / float64(rows)

	for i, n := range ordered {
		col := i % cols
		row := i / cols
		pos := valueobjects.NewPosition(
			cfg.Padding+(float64(col)+0.5)*cellW,
			cfg.Padding+(float64(row)+0.5)*cellH,
		).Clamp(cfg.Width, cfg.Height)
		n.Position = &pos
	}
}

// adjacencyOrder walks the graph breadth-first from the highest-degree node
// so connected nodes stay adjacent in placement order. Disconnected
// components follow in input order.
func adjacencyOrder(nodes []*entities.Node, links []*entities.Link) []*entities.Node {
	adj := adjacency(nodes, links)
	byID := make(map[string]*entities.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	// Seeds: nodes by descending degree, ties by input order
	seeds := append([]*entities.Node(nil), nodes...)
	sort.SliceStable(seeds, func(i, j int) bool {
		return len(adj[seeds[i].ID]) > len(adj[seeds[j].ID])
	})

	visited := make(map[string]bool, len(nodes))
	ordered := make([]*entities.Node, 0, len(nodes))
	for _, seed := range seeds {
		if visited[seed.ID] {
			continue
		}
		visited[seed.ID] = true
		queue := []string{seed.ID}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			ordered = append(ordered, byID[current])
			for _, next := range adj[current] {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
	}
	return ordered
}
