package clustering

import (
	"sort"

	"graphcore/domain/core/entities"
)

// greedyGroups builds communities by agglomerative modularity merging:
// every node starts alone, then the connected pair of communities whose
// merge yields the largest modularity gain is merged, until no merge
// improves modularity or the partition fits under maxClusters.
func greedyGroups(nodes []*entities.Node, links []*entities.Link, maxClusters int) [][]string {
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

	members := make(map[int][]string, len(ids))
	communityStrength := make(map[int]float64, len(ids))
	community := make(map[string]int, len(ids))
	for i, id := range ids {
		members[i] = []string{id}
		communityStrength[i] = strengths[id]
		community[id] = i
	}

	// between[a][b] = total weight crossing communities a and b (a < b)
	between := map[int]map[int]float64{}
	addBetween := func(a, b int, w float64) {
		if a == b {
			return
		}
		if a > b {
			a, b = b, a
		}
		if between[a] == nil {
			between[a] = map[int]float64{}
		}
		between[a][b] += w
	}
	for pair, w := range weights {
		addBetween(community[pair[0]], community[pair[1]], w)
	}

	twoM := 2 * total
	for len(members) > 1 {
		bestA, bestB := -1, -1
		bestGain := 0.0
		for a, row := range between {
			cols := make([]int, 0, len(row))
			for b := range row {
				cols = append(cols, b)
			}
			sort.Ints(cols)
			for _, b := range cols {
				w := row[b]
				if w == 0 {
					continue
				}
				gain := w/total - communityStrength[a]*communityStrength[b]/(twoM*twoM)*2
				if gain > bestGain || (gain == bestGain && bestGain > 0 && (bestA == -1 || a < bestA || (a == bestA && b < bestB))) {
					bestGain = gain
					bestA, bestB = a, b
				}
			}
		}

		mustShrink := maxClusters > 0 && len(members) > maxClusters
		if bestA == -1 && !mustShrink {
			break
		}
		if bestA == -1 {
			// No positive-gain merge left but still over the cap:
			// merge the heaviest remaining crossing pair
			heaviest := 0.0
			for a, row := range between {
				for b, w := range row {
					if w > heaviest || (w == heaviest && heaviest > 0 && (bestA == -1 || a < bestA)) {
						heaviest = w
						bestA, bestB = a, b
					}
				}
			}
			if bestA == -1 {
				break
			}
		}

		// Fold bestB into bestA
		members[bestA] = append(members[bestA], members[bestB]...)
		communityStrength[bestA] += communityStrength[bestB]
		for _, id := range members[bestB] {
			community[id] = bestA
		}
		delete(members, bestB)
		delete(communityStrength, bestB)

		merged := map[int]float64{}
		collect := func(c int) {
			for b, w := range between[c] {
				if b != bestA && b != bestB {
					merged[b] += w
				}
			}
			delete(between, c)
			for a, row := range between {
				if w, ok := row[c]; ok {
					if a != bestA && a != bestB {
						merged[a] += w
					}
					delete(row, c)
				}
			}
		}
		collect(bestA)
		collect(bestB)
		for other, w := range merged {
			addBetween(bestA, other, w)
		}
	}

	keys := make([]int, 0, len(members))
	for c := range members {
		keys = append(keys, c)
	}
	sort.Ints(keys)

	groups := make([][]string, 0, len(keys))
	for _, c := range keys {
		groups = append(groups, members[c])
	}
	return groups
}
