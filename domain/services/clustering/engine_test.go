package clustering

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
	pkgerrors "graphcore/pkg/errors"
)

func newTestEngine() *Engine {
	return NewEngine(zap.NewNop())
}

func node(id string, tags ...string) *entities.Node {
	n := &entities.Node{ID: id, Label: id, Type: entities.NodeTypeNote}
	n.Metadata.Tags = tags
	return n
}

func link(source, target string) *entities.Link {
	return &entities.Link{
		ID:       entities.LinkID(source, target, entities.LinkTypeReference),
		SourceID: source,
		TargetID: target,
		Type:     entities.LinkTypeReference,
		Strength: 0.8,
	}
}

// memberSets flattens a result into cluster membership sets for assertions
func memberSets(result *Result) []map[string]bool {
	out := make([]map[string]bool, len(result.Clusters))
	for i, c := range result.Clusters {
		out[i] = make(map[string]bool, len(c.NodeIDs))
		for _, id := range c.NodeIDs {
			out[i][id] = true
		}
	}
	return out
}

// assertPartition checks that clusters plus unclustered cover every node
// exactly once
func assertPartition(t *testing.T, result *Result, nodes []*entities.Node) {
	t.Helper()
	seen := make(map[string]int)
	for _, c := range result.Clusters {
		for _, id := range c.NodeIDs {
			seen[id]++
		}
	}
	for _, id := range result.Unclustered {
		seen[id]++
	}
	require.Len(t, seen, len(nodes))
	for _, n := range nodes {
		assert.Equal(t, 1, seen[n.ID], "node %s not covered exactly once", n.ID)
	}
}

func TestEngine_Perform_UnknownAlgorithm(t *testing.T) {
	e := newTestEngine()

	_, err := e.Perform(nil, nil, Config{Algorithm: "magnetic"})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnsupportedAlgorithm))
}

func TestEngine_Perform_Connectivity(t *testing.T) {
	e := newTestEngine()

	nodes := []*entities.Node{
		node("a"), node("b"), node("c"),
		node("x"), node("y"),
		node("loner"),
	}
	links := []*entities.Link{
		link("a", "b"), link("b", "c"),
		link("x", "y"),
	}

	result, err := e.Perform(nodes, links, Config{Algorithm: AlgorithmConnectivity})
	require.NoError(t, err)

	assertPartition(t, result, nodes)
	require.Len(t, result.Clusters, 2)
	sets := memberSets(result)
	assert.True(t, sets[0]["a"] && sets[0]["b"] && sets[0]["c"])
	assert.True(t, sets[1]["x"] && sets[1]["y"])

	// The singleton falls under the default minimum cluster size
	assert.Equal(t, []string{"loner"}, result.Unclustered)
}

func TestEngine_Perform_MinClusterSizeDiscards(t *testing.T) {
	e := newTestEngine()

	nodes := []*entities.Node{node("a"), node("b"), node("x"), node("y"), node("z")}
	links := []*entities.Link{link("a", "b"), link("x", "y"), link("y", "z")}

	result, err := e.Perform(nodes, links, Config{
		Algorithm:      AlgorithmConnectivity,
		MinClusterSize: 3,
	})
	require.NoError(t, err)

	require.Len(t, result.Clusters, 1)
	assert.Equal(t, []string{"x", "y", "z"}, result.Clusters[0].NodeIDs)
	assert.Equal(t, []string{"a", "b"}, result.Unclustered)
}

func TestEngine_Perform_MaxClustersKeepsLargest(t *testing.T) {
	e := newTestEngine()

	var nodes []*entities.Node
	var links []*entities.Link
	// Three components of sizes 4, 3, 2
	for c, size := range []int{4, 3, 2} {
		var prev string
		for i := 0; i < size; i++ {
			id := fmt.Sprintf("c%d-%d", c, i)
			nodes = append(nodes, node(id))
			if prev != "" {
				links = append(links, link(prev, id))
			}
			prev = id
		}
	}

	result, err := e.Perform(nodes, links, Config{
		Algorithm:   AlgorithmConnectivity,
		MaxClusters: 2,
	})
	require.NoError(t, err)

	require.Len(t, result.Clusters, 2)
	assert.Len(t, result.Clusters[0].NodeIDs, 4)
	assert.Len(t, result.Clusters[1].NodeIDs, 3)
	assert.Len(t, result.Unclustered, 2)
}

func TestEngine_Perform_TagClustering(t *testing.T) {
	e := newTestEngine()

	nodes := []*entities.Node{
		node("a", "golang"), node("b", "golang"),
		node("c", "rust"), node("d", "rust"),
		node("untagged"),
	}

	result, err := e.Perform(nodes, nil, Config{Algorithm: AlgorithmTag})
	require.NoError(t, err)

	assertPartition(t, result, nodes)
	require.Len(t, result.Clusters, 2)
	assert.Equal(t, []string{"untagged"}, result.Unclustered)
}

func TestEngine_Perform_TagClustering_DominantTagWins(t *testing.T) {
	e := newTestEngine()

	// "popular" appears three times, "niche" once: the ambiguous node
	// follows the more frequent tag
	nodes := []*entities.Node{
		node("a", "popular"), node("b", "popular"),
		node("both", "niche", "popular"),
		node("c", "popular"),
	}

	result, err := e.Perform(nodes, nil, Config{Algorithm: AlgorithmTag})
	require.NoError(t, err)

	require.Len(t, result.Clusters, 1)
	assert.Contains(t, result.Clusters[0].NodeIDs, "both")
	assert.Len(t, result.Clusters[0].NodeIDs, 4)
}

func TestEngine_Perform_TypeClustering(t *testing.T) {
	e := newTestEngine()

	nodes := []*entities.Node{
		node("n1"), node("n2"),
		{ID: "t1", Type: entities.NodeTypeTag},
		{ID: "t2", Type: entities.NodeTypeTag},
	}

	result, err := e.Perform(nodes, nil, Config{Algorithm: AlgorithmType})
	require.NoError(t, err)

	assertPartition(t, result, nodes)
	require.Len(t, result.Clusters, 2)
}

func TestEngine_Perform_Louvain_TwoCommunities(t *testing.T) {
	e := newTestEngine()

	// Two dense triangles joined by a single bridge
	nodes := []*entities.Node{
		node("a1"), node("a2"), node("a3"),
		node("b1"), node("b2"), node("b3"),
	}
	links := []*entities.Link{
		link("a1", "a2"), link("a2", "a3"), link("a1", "a3"),
		link("b1", "b2"), link("b2", "b3"), link("b1", "b3"),
		link("a3", "b1"),
	}

	result, err := e.Perform(nodes, links, Config{Algorithm: AlgorithmLouvain})
	require.NoError(t, err)

	assertPartition(t, result, nodes)
	require.Len(t, result.Clusters, 2)
	sets := memberSets(result)
	for _, set := range sets {
		// No cluster mixes the two triangles
		mixesA := set["a1"] || set["a2"]
		mixesB := set["b2"] || set["b3"]
		assert.False(t, mixesA && mixesB)
	}
	assert.Greater(t, result.Modularity, 0.0)
}

func TestEngine_Perform_Greedy_TwoCommunities(t *testing.T) {
	e := newTestEngine()

	nodes := []*entities.Node{
		node("a1"), node("a2"), node("a3"),
		node("b1"), node("b2"), node("b3"),
	}
	links := []*entities.Link{
		link("a1", "a2"), link("a2", "a3"), link("a1", "a3"),
		link("b1", "b2"), link("b2", "b3"), link("b1", "b3"),
		link("a3", "b1"),
	}

	result, err := e.Perform(nodes, links, Config{Algorithm: AlgorithmGreedy})
	require.NoError(t, err)

	assertPartition(t, result, nodes)
	assert.Greater(t, result.Modularity, 0.0)
	assert.Greater(t, result.Quality.InternalDensity, 0.0)
}

func TestEngine_Perform_KMeans(t *testing.T) {
	e := newTestEngine()

	// Two well-separated spatial clumps
	var nodes []*entities.Node
	for i := 0; i < 4; i++ {
		n := node(fmt.Sprintf("left%d", i))
		pos := valueobjects.NewPosition(float64(10+i), 10)
		n.Position = &pos
		nodes = append(nodes, n)
	}
	for i := 0; i < 4; i++ {
		n := node(fmt.Sprintf("right%d", i))
		pos := valueobjects.NewPosition(float64(900+i), 900)
		n.Position = &pos
		nodes = append(nodes, n)
	}

	cfg := Config{Algorithm: AlgorithmKMeans, K: 2, Seed: 11}
	result, err := e.Perform(nodes, nil, cfg)
	require.NoError(t, err)

	assertPartition(t, result, nodes)
	require.Len(t, result.Clusters, 2)
	for _, set := range memberSets(result) {
		assert.False(t, set["left0"] && set["right0"], "clumps must not mix")
	}

	t.Run("deterministic under a fixed seed", func(t *testing.T) {
		again, err := e.Perform(nodes, nil, cfg)
		require.NoError(t, err)
		assert.Equal(t, memberSets(result), memberSets(again))
	})

	t.Run("separation rewards distinct clumps", func(t *testing.T) {
		assert.Greater(t, result.Quality.Separation, 0.5)
	})
}

func TestEngine_Perform_GeometryDefaults(t *testing.T) {
	e := newTestEngine()

	// No positions anywhere: centroids collapse to the origin with radius 0
	nodes := []*entities.Node{node("a"), node("b")}
	links := []*entities.Link{link("a", "b")}

	result, err := e.Perform(nodes, links, Config{Algorithm: AlgorithmConnectivity})
	require.NoError(t, err)

	require.Len(t, result.Clusters, 1)
	cluster := result.Clusters[0]
	assert.Equal(t, 0.0, cluster.Centroid.X)
	assert.Equal(t, 0.0, cluster.Centroid.Y)
	assert.Equal(t, 0.0, cluster.Radius)
	assert.NotEmpty(t, cluster.Color)
	assert.Equal(t, entities.ClusterColor(0), cluster.Color)
}

func TestEngine_Perform_EmptyGraph(t *testing.T) {
	e := newTestEngine()

	result, err := e.Perform(nil, nil, Config{Algorithm: AlgorithmLouvain})
	require.NoError(t, err)
	assert.Empty(t, result.Clusters)
	assert.Empty(t, result.Unclustered)
	assert.Equal(t, 0.0, result.Modularity)
}
