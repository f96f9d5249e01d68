package utils

import "sort"

// UnionFind implements the Union-Find data structure over string keys.
type UnionFind struct {
	parent map[string]string
}

// NewUnionFind creates a new UnionFind data structure
func NewUnionFind(elements []string) *UnionFind {
	parent := make(map[string]string, len(elements))
	for _, element := range elements {
		parent[element] = element
	}
	return &UnionFind{parent: parent}
}

// Find returns the root of the set containing x (with path compression).
// Unknown elements are their own root.
func (uf *UnionFind) Find(x string) string {
	p, ok := uf.parent[x]
	if !ok {
		return x
	}
	if p != x {
		uf.parent[x] = uf.Find(p)
	}
	return uf.parent[x]
}

// Union merges the sets containing a and b
func (uf *UnionFind) Union(a, b string) {
	rootA, rootB := uf.Find(a), uf.Find(b)
	if rootA == rootB {
		return
	}
	// Attach the lexicographically larger root under the smaller
	if rootA < rootB {
		uf.parent[rootB] = rootA
	} else {
		uf.parent[rootA] = rootB
	}
}

// Groups returns the members of every set keyed by root, members sorted.
func (uf *UnionFind) Groups() map[string][]string {
	groups := make(map[string][]string)
	for x := range uf.parent {
		root := uf.Find(x)
		groups[root] = append(groups[root], x)
	}
	for _, members := range groups {
		sort.Strings(members)
	}
	return groups
}
