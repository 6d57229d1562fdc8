package layout

import (
	"math"
	"math/rand"

	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
)

// applyForce runs the classic iterative simulation: inverse-square pairwise
// repulsion, per-link spring attraction toward the rest length, a weak
// centering pull, and collision resolution. The loop runs until the
// simulation alpha decays below the threshold or the iteration cap is hit;
// positions are clamped to the viewport every iteration so no node escapes.
func (e *Engine) applyForce(nodes []*entities.Node, links []*entities.Link, cfg Config) {
	rng := rand.New(rand.NewSource(cfg.Seed))

	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
		if n.Position == nil {
			pos := valueobjects.NewPosition(rng.Float64()*cfg.Width, rng.Float64()*cfg.Height)
			n.Position = &pos
		}
	}

	type spring struct {
		a, b     int
		strength float64
	}
	springs := make([]spring, 0, len(links))
	for _, l := range links {
		a, okA := index[l.SourceID]
		b, okB := index[l.TargetID]
		if okA && okB {
			springs = append(springs, spring{a: a, b: b, strength: l.Strength})
		}
	}

	centerX, centerY := cfg.Width/2, cfg.Height/2
	fx := make([]float64, len(nodes))
	fy := make([]float64, len(nodes))

	alpha := 1.0
	for iter := 0; iter < cfg.Iterations && alpha >= cfg.AlphaMin; iter++ {
		for i := range fx {
			fx[i], fy[i] = 0, 0
		}

		// Pairwise repulsion, inverse-square of distance
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				dx := nodes[i].Position.X - nodes[j].Position.X
				dy := nodes[i].Position.Y - nodes[j].Position.Y
				distSq := dx*dx + dy*dy
				if distSq < 1 {
					// Coincident nodes get a deterministic nudge apart
					distSq = 1
					dx, dy = 1, 0
				}
				dist := math.Sqrt(distSq)
				force := cfg.ChargeStrength / distSq
				fx[i] += force * dx / dist
				fy[i] += force * dy / dist
				fx[j] -= force * dx / dist
				fy[j] -= force * dy / dist
			}
		}

		// Spring attraction toward the rest length, scaled by link strength
		for _, s := range springs {
			dx := nodes[s.b].Position.X - nodes[s.a].Position.X
			dy := nodes[s.b].Position.Y - nodes[s.a].Position.Y
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist < 1 {
				continue
			}
			displacement := (dist - cfg.LinkDistance) / dist * 0.5 * s.strength
			fx[s.a] += dx * displacement
			fy[s.a] += dy * displacement
			fx[s.b] -= dx * displacement
			fy[s.b] -= dy * displacement
		}

		// Weak centering pull on the whole system
		for i, n := range nodes {
			fx[i] += (centerX - n.Position.X) * cfg.CenterStrength
			fy[i] += (centerY - n.Position.Y) * cfg.CenterStrength
		}

		// Integrate and clamp to viewport
		for i, n := range nodes {
			pos := n.Position.Translate(fx[i]*alpha, fy[i]*alpha).Clamp(cfg.Width, cfg.Height)
			n.Position = &pos
		}

		resolveCollisions(nodes, cfg)

		alpha *= 1 - cfg.AlphaDecay
	}

	// A final clamp covers the collision pass of the last iteration
	for _, n := range nodes {
		pos := n.Position.Clamp(cfg.Width, cfg.Height)
		n.Position = &pos
	}
}

// resolveCollisions enforces a minimum inter-node distance by symmetrically
// pushing overlapping pairs apart
func resolveCollisions(nodes []*entities.Node, cfg Config) {
	minDist := cfg.CollisionRadius * 2
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			dx := nodes[j].Position.X - nodes[i].Position.X
			dy := nodes[j].Position.Y - nodes[i].Position.Y
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist >= minDist {
				continue
			}
			if dist < 1 {
				dx, dy, dist = 1, 0, 1
			}
			push := (minDist - dist) / 2 / dist
			posI := nodes[i].Position.Translate(-dx*push, -dy*push).Clamp(cfg.Width, cfg.Height)
			posJ := nodes[j].Position.Translate(dx*push, dy*push).Clamp(cfg.Width, cfg.Height)
			nodes[i].Position = &posI
			nodes[j].Position = &posJ
		}
	}
}
