// Package clustering partitions a graph into communities. Strategies are
// pure over their inputs: the caller's nodes and links are never mutated,
// and randomized strategies take an explicit seed. Clusters are recomputed
// wholesale on every run.
package clustering

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
	pkgerrors "graphcore/pkg/errors"
)

// Algorithm selects the community-detection strategy. The set is closed.
type Algorithm string

const (
	AlgorithmLouvain      Algorithm = "louvain"
	AlgorithmGreedy       Algorithm = "greedy"
	AlgorithmConnectivity Algorithm = "connectivity"
	AlgorithmTag          Algorithm = "tag"
	AlgorithmType         Algorithm = "type"
	AlgorithmKMeans       Algorithm = "kmeans"
)

// IsValid reports whether the algorithm is one of the closed set
func (a Algorithm) IsValid() bool {
	switch a {
	case AlgorithmLouvain, AlgorithmGreedy, AlgorithmConnectivity,
		AlgorithmTag, AlgorithmType, AlgorithmKMeans:
		return true
	}
	return false
}

// Config holds the clustering tunables. Engines only read it.
type Config struct {
	Algorithm Algorithm `json:"algorithm"`

	// Groups smaller than MinClusterSize are discarded; their members
	// become unclustered rather than forming singleton clusters
	MinClusterSize int `json:"min_cluster_size"`
	// MaxClusters caps the partition; overflow groups beyond the largest
	// MaxClusters become unclustered
	MaxClusters int `json:"max_clusters"`

	// K-means
	K          int   `json:"k"`
	Iterations int   `json:"iterations"`
	Seed       int64 `json:"seed"`
}

// normalized fills zero-valued fields with workable defaults
func (c Config) normalized() Config {
	if c.MinClusterSize <= 0 {
		c.MinClusterSize = 2
	}
	if c.MaxClusters <= 0 {
		c.MaxClusters = 20
	}
	if c.Iterations <= 0 {
		c.Iterations = 50
	}
	return c
}

// Quality summarizes how well a partition separates the graph
type Quality struct {
	Modularity      float64 `json:"modularity"`
	InternalDensity float64 `json:"internal_density"`
	Separation      float64 `json:"separation"`
}

// Result is the outcome of one clustering run
type Result struct {
	Clusters      []*entities.Cluster `json:"clusters"`
	Unclustered   []string            `json:"unclustered"`
	Modularity    float64             `json:"modularity"`
	Quality       Quality             `json:"quality"`
	ExecutionTime time.Duration       `json:"execution_time"`
}

// Engine computes cluster partitions
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a clustering engine
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Perform partitions the nodes with the configured strategy. An unknown
// algorithm fails with a typed error; there is no silent default.
func (e *Engine) Perform(nodes []*entities.Node, links []*entities.Link, cfg Config) (*Result, error) {
	if !cfg.Algorithm.IsValid() {
		return nil, pkgerrors.NewUnsupportedAlgorithm("clustering", string(cfg.Algorithm))
	}

	cfg = cfg.normalized()
	start := time.Now()

	var groups [][]string
	switch cfg.Algorithm {
	case AlgorithmLouvain:
		groups = louvainGroups(nodes, links)
	case AlgorithmGreedy:
		groups = greedyGroups(nodes, links, cfg.MaxClusters)
	case AlgorithmConnectivity:
		groups = connectivityGroups(nodes, links)
	case AlgorithmTag:
		groups = tagGroups(nodes)
	case AlgorithmType:
		groups = typeGroups(nodes)
	case AlgorithmKMeans:
		groups = kmeansGroups(nodes, cfg)
	}

	result := e.assemble(nodes, links, groups, cfg)
	result.ExecutionTime = time.Since(start)

	e.logger.Debug("Performed clustering",
		zap.String("algorithm", string(cfg.Algorithm)),
		zap.Int("clusters", len(result.Clusters)),
		zap.Int("unclustered", len(result.Unclustered)),
		zap.Float64("modularity", result.Modularity),
		zap.Duration("elapsed", result.ExecutionTime),
	)

	return result, nil
}

// assemble applies the shared size/count constraints, colors clusters from
// the deterministic palette, and computes geometry and quality
func (e *Engine) assemble(
	nodes []*entities.Node,
	links []*entities.Link,
	groups [][]string,
	cfg Config,
) *Result {
	// Largest groups first so the MaxClusters cap keeps the substance
	sort.SliceStable(groups, func(i, j int) bool {
		if len(groups[i]) != len(groups[j]) {
			return len(groups[i]) > len(groups[j])
		}
		return firstID(groups[i]) < firstID(groups[j])
	})

	result := &Result{Clusters: []*entities.Cluster{}, Unclustered: []string{}}

	kept := [][]string{}
	grouped := make(map[string]bool)
	for _, group := range groups {
		for _, id := range group {
			grouped[id] = true
		}
		if len(group) < cfg.MinClusterSize || len(kept) >= cfg.MaxClusters {
			result.Unclustered = append(result.Unclustered, group...)
			continue
		}
		kept = append(kept, group)
	}

	byID := make(map[string]*entities.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
		// Nodes no strategy grouped, such as untagged nodes under tag
		// clustering, are reported as unclustered too
		if !grouped[n.ID] {
			result.Unclustered = append(result.Unclustered, n.ID)
		}
	}

	for i, group := range kept {
		sorted := append([]string(nil), group...)
		sort.Strings(sorted)

		cluster := &entities.Cluster{
			ID:      fmt.Sprintf("cluster-%d", i),
			NodeIDs: sorted,
			Label:   fmt.Sprintf("Cluster %d", i+1),
			Color:   entities.ClusterColor(i),
		}
		cluster.Centroid, cluster.Radius = geometry(sorted, byID)
		result.Clusters = append(result.Clusters, cluster)
	}
	sort.Strings(result.Unclustered)

	result.Modularity = modularity(kept, nodes, links)
	result.Quality = Quality{
		Modularity:      result.Modularity,
		InternalDensity: internalDensity(kept, links),
		Separation:      separation(result.Clusters, byID),
	}

	return result
}

// geometry computes centroid and bounding radius from member positions.
// Without a prior layout all positions fall back to the origin and the
// radius is 0; callers wanting meaningful geometry run layout first.
func geometry(memberIDs []string, byID map[string]*entities.Node) (valueobjects.Position, float64) {
	origin := valueobjects.NewPosition(0, 0)
	if len(memberIDs) == 0 {
		return origin, 0
	}

	sumX, sumY := 0.0, 0.0
	for _, id := range memberIDs {
		p := byID[id].PositionOr(origin)
		sumX += p.X
		sumY += p.Y
	}
	centroid := valueobjects.NewPosition(sumX/float64(len(memberIDs)), sumY/float64(len(memberIDs)))

	radius := 0.0
	for _, id := range memberIDs {
		if d := centroid.DistanceTo(byID[id].PositionOr(origin)); d > radius {
			radius = d
		}
	}
	return centroid, radius
}

func firstID(group []string) string {
	if len(group) == 0 {
		return ""
	}
	min := group[0]
	for _, id := range group[1:] {
		if id < min {
			min = id
		}
	}
	return min
}

// undirectedWeights collapses the link list into unordered weighted pairs,
// restricted to the node set
func undirectedWeights(nodes []*entities.Node, links []*entities.Link) (map[[2]string]float64, float64) {
	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}

	weights := make(map[[2]string]float64)
	total := 0.0
	for _, l := range links {
		if !present[l.SourceID] || !present[l.TargetID] {
			continue
		}
		a, b := l.SourceID, l.TargetID
		if a > b {
			a, b = b, a
		}
		weights[[2]string{a, b}] += l.Strength
		total += l.Strength
	}
	return weights, total
}

// nodeStrengths sums the weighted degree per node
func nodeStrengths(weights map[[2]string]float64) map[string]float64 {
	out := make(map[string]float64)
	for pair, w := range weights {
		out[pair[0]] += w
		out[pair[1]] += w
	}
	return out
}

func positionOrOrigin(n *entities.Node) valueobjects.Position {
	return n.PositionOr(valueobjects.NewPosition(0, 0))
}
