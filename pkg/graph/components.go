package graph

// ComponentStats describes the weakly connected components of a graph.
type ComponentStats struct {
	Count   int `json:"count" yaml:"count"`
	Largest int `json:"largest" yaml:"largest"`
}

// Components labels every entity with the smallest entity ID of its weakly connected
// component, ignoring edge direction.
func (g *Graph) Components() []int32 {
	n := g.NumNodes()
	parent := make([]int32, n)
	for i := range parent {
		parent[i] = int32(i)
	}
	// int32 IDs index a flat parent slice, avoiding utils.UnionFind string keys
	var find func(x int32) int32
	find = func(x int32) int32 {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for u := 0; u < n; u++ {
		for _, v := range g.Neighbors(int32(u)) {
			ru, rv := find(int32(u)), find(v)
			if ru == rv {
				continue
			}
			// smaller root wins so labels are stable
			if ru < rv {
				parent[rv] = ru
			} else {
				parent[ru] = rv
			}
		}
	}
	labels := make([]int32, n)
	for i := range labels {
		labels[i] = find(int32(i))
	}
	return labels
}

// ComponentStats summarizes Components.
func (g *Graph) ComponentStats() ComponentStats {
	labels := g.Components()
	sizes := make(map[int32]int)
	for _, l := range labels {
		sizes[l]++
	}
	var st ComponentStats
	st.Count = len(sizes)
	for _, size := range sizes {
		st.Largest = max(st.Largest, size)
	}
	return st
}
