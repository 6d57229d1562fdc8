package clustering

import (
	"sort"

	"graphcore/domain/core/entities"
)

const louvainMaxPasses = 20

// louvainGroups runs local modularity optimization in the Louvain manner:
// every node starts in its own community, then nodes move to the neighboring
// community with the largest modularity gain until a full pass produces no
// move. Link strengths act as edge weights; direction is ignored.
func louvainGroups(nodes []*entities.Node, links []*entities.Link) [][]string {
	weights, total := undirectedWeights(nodes, links)
	if total == 0 {
		return connectivityGroups(nodes, links)
	}
	strengths := nodeStrengths(weights)

	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)

	community := make(map[string]int, len(ids))
	for i, id := range ids {
		community[id] = i
	}

	neighbors := make(map[string]map[string]float64, len(ids))
	for pair, w := range weights {
		a, b := pair[0], pair[1]
		if neighbors[a] == nil {
			neighbors[a] = map[string]float64{}
		}
		if neighbors[b] == nil {
			neighbors[b] = map[string]float64{}
		}
		if a != b {
			neighbors[a][b] += w
			neighbors[b][a] += w
		}
	}

	// Sum of weighted degrees per community, maintained incrementally
	communityStrength := make(map[int]float64, len(ids))
	for id, c := range community {
		communityStrength[c] += strengths[id]
	}

	twoM := 2 * total
	for pass := 0; pass < louvainMaxPasses; pass++ {
		moved := false
		for _, id := range ids {
			current := community[id]

			// Weight from this node into each adjacent community
			into := map[int]float64{}
			for other, w := range neighbors[id] {
				into[community[other]] += w
			}

			communityStrength[current] -= strengths[id]

			bestCommunity := current
			bestGain := into[current] - communityStrength[current]*strengths[id]/twoM

			candidates := make([]int, 0, len(into))
			for c := range into {
				candidates = append(candidates, c)
			}
			sort.Ints(candidates)
			for _, c := range candidates {
				gain := into[c] - communityStrength[c]*strengths[id]/twoM
				if gain > bestGain {
					bestGain = gain
					bestCommunity = c
				}
			}

			communityStrength[bestCommunity] += strengths[id]
			if bestCommunity != current {
				community[id] = bestCommunity
				moved = true
			}
		}
		if !moved {
			break
		}
	}

	byCommunity := make(map[int][]string)
	for _, id := range ids {
		byCommunity[community[id]] = append(byCommunity[community[id]], id)
	}

	keys := make([]int, 0, len(byCommunity))
	for c := range byCommunity {
		keys = append(keys, c)
	}
	sort.Ints(keys)

	groups := make([][]string, 0, len(keys))
	for _, c := range keys {
		groups = append(groups, byCommunity[c])
	}
	return groups
}
