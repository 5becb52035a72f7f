package routing

import "sort"

// BuildConnectivity returns, for every edge index, the indices of the other
// edges sharing one of its endpoints. The relation is symmetric and each
// list is sorted for deterministic output.
func BuildConnectivity(edges []Edge) map[int][]int {
	byNode := make(map[int64][]int)
	for i, e := range edges {
		byNode[e.From] = append(byNode[e.From], i)
		byNode[e.To] = append(byNode[e.To], i)
	}

	conn := make(map[int]map[int]bool)
	for _, idxs := range byNode {
		for _, a := range idxs {
			for _, b := range idxs {
				if a == b {
					continue
				}
				if conn[a] == nil {
					conn[a] = make(map[int]bool)
				}
				conn[a][b] = true
			}
		}
	}

	result := make(map[int][]int, len(conn))
	for i, neighbors := range conn {
		ids := make([]int, 0, len(neighbors))
		for n := range neighbors {
			ids = append(ids, n)
		}
		sort.Ints(ids)
		result[i] = ids
	}
	return result
}
