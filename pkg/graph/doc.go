// Package graph computes bounded shortest-path distances over a training graph.
//
// New turns a triplets.Store into a compressed sparse row adjacency over dense entity IDs,
// collapsing parallel edges. Distances answers batches of (head, tail) queries with one
// bounded breadth-first search per distinct head, fanned out over a utils.WorkerPool; the
// graph is shared read-only by all workers.
//
// Distances are hop counts. Anything farther than the limit, unreachable, or involving an
// entity the graph has never seen reports the sentinel limit+1:
//
//	g := graph.New(triplets.NewStore(train))
//	d, err := graph.Distances(ctx, g, queries, 4, 0)
package graph
