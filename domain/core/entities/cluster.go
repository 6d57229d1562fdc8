package entities

import "graphcore/domain/core/valueobjects"

// clusterPalette is the fixed color cycle applied to clusters in index
// order so repeated runs over the same partition color identically
var clusterPalette = []string{
	"#4dabf7", "#51cf66", "#ffd43b", "#ff922b",
	"#e599f7", "#63e6be", "#ff8787", "#74c0fc",
	"#a9e34b", "#ffa8a8", "#b197fc", "#66d9e8",
}

// ClusterColor returns the deterministic palette color for a cluster index
func ClusterColor(index int) string {
	if index < 0 {
		index = -index
	}
	return clusterPalette[index%len(clusterPalette)]
}

// Cluster is a computed grouping of nodes sharing structural or semantic
// similarity. Clusters are recomputed wholesale on each clustering run and
// never incrementally maintained.
type Cluster struct {
	ID       string                `json:"id"`
	NodeIDs  []string              `json:"node_ids"`
	Centroid valueobjects.Position `json:"centroid"`
	Radius   float64               `json:"radius"`
	Label    string                `json:"label,omitempty"`
	Color    string                `json:"color"`
}

// Size returns the number of member nodes
func (c *Cluster) Size() int {
	return len(c.NodeIDs)
}

// Contains checks membership
func (c *Cluster) Contains(nodeID string) bool {
	for _, id := range c.NodeIDs {
		if id == nodeID {
			return true
		}
	}
	return false
}
