package layout

import (
	"math"

	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
)

// applyRadial places the center node in the middle and every other node on
// a concentric ring at its BFS distance from the center, spread across the
// ring's arc. When no center node can be determined the layout degrades to
// circular placement; that fallback is sanctioned behavior, not an error.
func (e *Engine) applyRadial(nodes []*entities.Node, links []*entities.Link, cfg Config) {
	center := e.pickCenter(nodes, links, cfg)
	if center == "" {
		e.logger.Debug("No radial center determinable, falling back to circular layout")
		e.applyCircular(nodes, cfg)
		return
	}

	adj := adjacency(nodes, links)

	// BFS ring assignment from the center
	ring := map[string]int{center: 0}
	queue := []string{center}
	maxRing := 0
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adj[current] {
			if _, seen := ring[next]; seen {
				continue
			}
			ring[next] = ring[current] + 1
			if ring[next] > maxRing {
				maxRing = ring[next]
			}
			queue = append(queue, next)
		}
	}

	// Unreachable nodes sit on an outermost ring of their own
	outer := maxRing + 1
	for _, n := range nodes {
		if _, ok := ring[n.ID]; !ok {
			ring[n.ID] = outer
		}
	}

	// Group per ring in input order, then spread each ring across its arc
	ringMembers := make(map[int][]*entities.Node)
	for _, n := range nodes {
		ringMembers[ring[n.ID]] = append(ringMembers[ring[n.ID]], n)
	}

	centerX, centerY := cfg.Width/2, cfg.Height/2
	for r, members := range ringMembers {
		if r == 0 {
			pos := valueobjects.NewPosition(centerX, centerY)
			members[0].Position = &pos
			continue
		}
		radius := float64(r) * cfg.RingSpacing
		step := 2 * math.Pi / float64(len(members))
		for i, n := range members {
			angle := -math.Pi/2 + float64(i)*step
			pos := valueobjects.NewPosition(
				centerX+radius*math.Cos(angle),
				centerY+radius*math.Sin(angle),
			).Clamp(cfg.Width, cfg.Height)
			n.Position = &pos
		}
	}
}

// pickCenter prefers the configured center node, then the most connected
// node; a graph with no links has no meaningful center
func (e *Engine) pickCenter(nodes []*entities.Node, links []*entities.Link, cfg Config) string {
	if cfg.CenterNodeID != "" {
		for _, n := range nodes {
			if n.ID == cfg.CenterNodeID {
				return n.ID
			}
		}
	}

	deg := degrees(nodes, links)
	best, bestDegree := "", 0
	for _, n := range nodes {
		if deg[n.ID] > bestDegree {
			best, bestDegree = n.ID, deg[n.ID]
		}
	}
	return best
}
