package layout

import (
	"gonum.org/v1/gonum/stat"

	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
)

// assumed node radius for overlap detection
const metricNodeRadius = 20.0

// Metrics quantifies the visual quality of a positioned layout
type Metrics struct {
	// Overlaps counts node pairs closer than twice the assumed node radius
	Overlaps int `json:"overlaps"`
	// MeanEdgeLength is the average distance spanned by a link
	MeanEdgeLength float64 `json:"mean_edge_length"`
	// Compactness is node count over bounding-box area
	Compactness float64 `json:"compactness"`
	// Balance is 1 minus the normalized spread of node counts across the
	// four quadrants around the centroid; 1 means perfectly even
	Balance float64 `json:"balance"`
}

// CalculateMetrics measures a positioned node set. Nodes without positions
// are treated as sitting at the origin.
func (e *Engine) CalculateMetrics(nodes []*entities.Node, links []*entities.Link) Metrics {
	var m Metrics
	if len(nodes) == 0 {
		return m
	}

	origin := valueobjects.NewPosition(0, 0)
	positions := make(map[string]valueobjects.Position, len(nodes))
	for _, n := range nodes {
		positions[n.ID] = n.PositionOr(origin)
	}

	// Overlaps
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if positions[nodes[i].ID].DistanceTo(positions[nodes[j].ID]) < 2*metricNodeRadius {
				m.Overlaps++
			}
		}
	}

	// Mean edge length
	if len(links) > 0 {
		total := 0.0
		counted := 0
		for _, l := range links {
			src, okSrc := positions[l.SourceID]
			dst, okDst := positions[l.TargetID]
			if okSrc && okDst {
				total += src.DistanceTo(dst)
				counted++
			}
		}
		if counted > 0 {
			m.MeanEdgeLength = total / float64(counted)
		}
	}

	// Compactness from the bounding box
	minX, minY := positions[nodes[0].ID].X, positions[nodes[0].ID].Y
	maxX, maxY := minX, minY
	sumX, sumY := 0.0, 0.0
	for _, n := range nodes {
		p := positions[n.ID]
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
		sumX += p.X
		sumY += p.Y
	}
	area := (maxX - minX) * (maxY - minY)
	if area > 0 {
		m.Compactness = float64(len(nodes)) / area
	}

	// Quadrant balance around the centroid
	centroidX := sumX / float64(len(nodes))
	centroidY := sumY / float64(len(nodes))
	quadrants := make([]float64, 4)
	for _, n := range nodes {
		p := positions[n.ID]
		idx := 0
		if p.X >= centroidX {
			idx |= 1
		}
		if p.Y >= centroidY {
			idx |= 2
		}
		quadrants[idx]++
	}
	mean := stat.Mean(quadrants, nil)
	if mean > 0 {
		balance := 1 - stat.PopStdDev(quadrants, nil)/mean
		if balance < 0 {
			balance = 0
		}
		m.Balance = balance
	}

	return m
}
