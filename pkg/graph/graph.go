package graph

import (
	"slices"

	"github.com/soundprediction/kgcurate/pkg/triplets"
)

// Graph is an unweighted directed adjacency over entity IDs in compressed sparse row form.
// Only edge presence is kept: repeated (head, tail) edges, whatever their relation, collapse
// into one. A Graph is immutable once built and safe for concurrent use.
type Graph struct {
	index   *triplets.EntityIndex
	offsets []int64
	targets []int32
}

// New builds the adjacency of the store's triplets over the store's entity index.
func New(store *triplets.Store) *Graph {
	adj := store.Outgoing()
	n := len(adj)

	offsets := make([]int64, n+1)
	targets := make([]int32, 0, store.Len())
	row := make([]int32, 0, 16)
	for u, edges := range adj {
		row = row[:0]
		for _, e := range edges {
			row = append(row, e.Target)
		}
		slices.Sort(row)
		row = slices.Compact(row)
		offsets[u] = int64(len(targets))
		targets = append(targets, row...)
	}
	offsets[n] = int64(len(targets))

	return &Graph{
		index:   store.Index(),
		offsets: offsets,
		targets: slices.Clip(targets),
	}
}

// Index returns the entity index the graph is built over.
func (g *Graph) Index() *triplets.EntityIndex {
	return g.index
}

// NumNodes returns the number of entities.
func (g *Graph) NumNodes() int {
	return len(g.offsets) - 1
}

// NumEdges returns the number of distinct directed edges.
func (g *Graph) NumEdges() int {
	return len(g.targets)
}

// Neighbors returns the sorted distinct successors of u. The slice must not be modified.
func (g *Graph) Neighbors(u int32) []int32 {
	return g.targets[g.offsets[u]:g.offsets[u+1]]
}
