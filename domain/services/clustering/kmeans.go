package clustering

import (
	"math"
	"math/rand"
	"sort"

	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
)

// kmeansGroups clusters nodes by spatial position. Nodes without a position
// sit at the origin and cluster together there. The seed fixes the initial
// centroid choice, so equal inputs and seeds give equal partitions.
func kmeansGroups(nodes []*entities.Node, cfg Config) [][]string {
	if len(nodes) == 0 {
		return nil
	}

	k := cfg.K
	if k <= 0 {
		k = int(math.Ceil(math.Sqrt(float64(len(nodes)) / 2)))
	}
	if k > cfg.MaxClusters {
		k = cfg.MaxClusters
	}
	if k < 1 {
		k = 1
	}
	if k > len(nodes) {
		k = len(nodes)
	}

	sorted := append([]*entities.Node(nil), nodes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	// Initial centroids: k distinct nodes drawn by the seeded generator
	rng := rand.New(rand.NewSource(cfg.Seed))
	perm := rng.Perm(len(sorted))
	centroids := make([]valueobjects.Position, k)
	for i := 0; i < k; i++ {
		centroids[i] = positionOrOrigin(sorted[perm[i]])
	}

	assignment := make([]int, len(sorted))
	for iter := 0; iter < cfg.Iterations; iter++ {
		changed := false
		for i, n := range sorted {
			p := positionOrOrigin(n)
			best, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				if d := p.DistanceTo(centroid); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assignment[i] != best {
				assignment[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		sumX := make([]float64, k)
		sumY := make([]float64, k)
		count := make([]int, k)
		for i, n := range sorted {
			p := positionOrOrigin(n)
			c := assignment[i]
			sumX[c] += p.X
			sumY[c] += p.Y
			count[c]++
		}
		for c := 0; c < k; c++ {
			if count[c] > 0 {
				centroids[c] = valueobjects.NewPosition(sumX[c]/float64(count[c]), sumY[c]/float64(count[c]))
			}
		}
	}

	groups := make([][]string, k)
	for i, n := range sorted {
		groups[assignment[i]] = append(groups[assignment[i]], n.ID)
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g) > 0 {
			out = append(out, g)
		}
	}
	return out
}
