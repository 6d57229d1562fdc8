package clustering

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"graphcore/domain/core/entities"
)

// modularity scores a partition with the standard weighted Newman measure,
// Q = sum over clusters of (in/m - (deg/2m)^2). Nodes outside every group
// contribute nothing. Ranges roughly -0.5..1; higher is better.
func modularity(groups [][]string, nodes []*entities.Node, links []*entities.Link) float64 {
	weights, total := undirectedWeights(nodes, links)
	if total == 0 {
		return 0
	}
	strengths := nodeStrengths(weights)

	community := make(map[string]int)
	for i, group := range groups {
		for _, id := range group {
			community[id] = i
		}
	}

	internal := make([]float64, len(groups))
	degree := make([]float64, len(groups))
	for pair, w := range weights {
		a, inA := community[pair[0]]
		b, inB := community[pair[1]]
		if inA && inB && a == b {
			internal[a] += w
		}
	}
	for id, s := range strengths {
		if c, ok := community[id]; ok {
			degree[c] += s
		}
	}

	q := 0.0
	twoM := 2 * total
	for i := range groups {
		q += internal[i]/total - math.Pow(degree[i]/twoM, 2)
	}
	return q
}

// internalDensity is the fraction of realized intra-cluster node pairs,
// averaged over clusters. Singleton clusters score 0.
func internalDensity(groups [][]string, links []*entities.Link) float64 {
	if len(groups) == 0 {
		return 0
	}

	community := make(map[string]int)
	for i, group := range groups {
		for _, id := range group {
			community[id] = i
		}
	}

	pairs := make([]map[[2]string]bool, len(groups))
	for i := range pairs {
		pairs[i] = map[[2]string]bool{}
	}
	for _, l := range links {
		a, inA := community[l.SourceID]
		b, inB := community[l.TargetID]
		if !inA || !inB || a != b || l.SourceID == l.TargetID {
			continue
		}
		x, y := l.SourceID, l.TargetID
		if x > y {
			x, y = y, x
		}
		pairs[a][[2]string{x, y}] = true
	}

	densities := make([]float64, len(groups))
	for i, group := range groups {
		n := len(group)
		if n < 2 {
			continue
		}
		possible := float64(n*(n-1)) / 2
		densities[i] = float64(len(pairs[i])) / possible
	}
	return stat.Mean(densities, nil)
}

// separation is a silhouette-style score over cluster centroids: for each
// member, compare the distance to its own centroid against the nearest
// foreign centroid. Needs at least two clusters and real positions to say
// anything; degenerate geometry scores 0.
func separation(clusters []*entities.Cluster, byID map[string]*entities.Node) float64 {
	if len(clusters) < 2 {
		return 0
	}

	var scores []float64
	for i, cluster := range clusters {
		for _, id := range cluster.NodeIDs {
			node, ok := byID[id]
			if !ok {
				continue
			}
			p := positionOrOrigin(node)

			own := p.DistanceTo(cluster.Centroid)
			nearest := math.Inf(1)
			for j, other := range clusters {
				if j == i {
					continue
				}
				if d := p.DistanceTo(other.Centroid); d < nearest {
					nearest = d
				}
			}

			denom := math.Max(own, nearest)
			if denom == 0 {
				continue
			}
			scores = append(scores, (nearest-own)/denom)
		}
	}

	if len(scores) == 0 {
		return 0
	}
	return stat.Mean(scores, nil)
}
