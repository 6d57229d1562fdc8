package clustering

import (
	"sort"

	"graphcore/domain/core/entities"
)

// tagGroups assigns each node to the group of its dominant tag, where
// dominance is the tag's frequency across the whole graph (ties break
// lexicographically). Untagged nodes stay out of every group.
func tagGroups(nodes []*entities.Node) [][]string {
	frequency := make(map[string]int)
	for _, n := range nodes {
		for _, tag := range n.Metadata.Tags {
			frequency[tag]++
		}
	}

	byTag := make(map[string][]string)
	for _, n := range nodes {
		best := ""
		for _, tag := range n.Metadata.Tags {
			if best == "" ||
				frequency[tag] > frequency[best] ||
				(frequency[tag] == frequency[best] && tag < best) {
				best = tag
			}
		}
		if best != "" {
			byTag[best] = append(byTag[best], n.ID)
		}
	}

	return groupsFromMap(byTag)
}

// typeGroups partitions nodes by their node type
func typeGroups(nodes []*entities.Node) [][]string {
	byType := make(map[string][]string)
	for _, n := range nodes {
		byType[string(n.Type)] = append(byType[string(n.Type)], n.ID)
	}
	return groupsFromMap(byType)
}

func groupsFromMap(m map[string][]string) [][]string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([][]string, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, m[k])
	}
	return groups
}
