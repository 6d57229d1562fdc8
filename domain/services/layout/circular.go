package layout

import (
	"math"
	"sort"

	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
)

// applyCircular places nodes evenly around a circle centered in the
// viewport. With SortByDegree set, high-degree nodes are placed first so
// they distribute around the ring instead of clumping.
func (e *Engine) applyCircular(nodes []*entities.Node, cfg Config) {
	ordered := nodes
	if cfg.SortByDegree {
		ordered = append([]*entities.Node(nil), nodes...)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Connections > ordered[j].Connections
		})
	}

	radius := cfg.Radius
	if radius <= 0 {
		radius = math.Min(cfg.Width, cfg.Height)/2 - cfg.CollisionRadius*2
		if radius < 1 {
			radius = math.Min(cfg.Width, cfg.Height) / 2
		}
	}

	centerX, centerY := cfg.Width/2, cfg.Height/2
	step := 2 * math.Pi / float64(len(ordered))
	for i, n := range ordered {
		angle := -math.Pi/2 + float64(i)*step
		pos := valueobjects.NewPosition(
			centerX+radius*math.Cos(angle),
			centerY+radius*math.Sin(angle),
		).Clamp(cfg.Width, cfg.Height)
		n.Position = &pos
	}
}
