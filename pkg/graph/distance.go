package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/soundprediction/kgcurate/pkg/types"
	"github.com/soundprediction/kgcurate/pkg/utils"
)

// bfsScratch is per-goroutine BFS state. Only touched entries are reset between runs,
// so a search near a small source costs far less than the size of the graph.
type bfsScratch struct {
	dist    []int32
	touched []int32
	queue   []int32
}

func newScratch(n int) *bfsScratch {
	dist := make([]int32, n)
	for i := range dist {
		dist[i] = -1
	}
	return &bfsScratch{dist: dist}
}

func (s *bfsScratch) reset() {
	for _, u := range s.touched {
		s.dist[u] = -1
	}
	s.touched = s.touched[:0]
	s.queue = s.queue[:0]
}

// bfs fills s.dist with hop counts from src for every node within limit hops.
func (g *Graph) bfs(src int32, limit int, s *bfsScratch) {
	s.reset()
	s.dist[src] = 0
	s.touched = append(s.touched, src)
	s.queue = append(s.queue, src)
	for qi := 0; qi < len(s.queue); qi++ {
		u := s.queue[qi]
		du := s.dist[u]
		if int(du) >= limit {
			continue
		}
		for _, v := range g.Neighbors(u) {
			if s.dist[v] < 0 {
				s.dist[v] = du + 1
				s.touched = append(s.touched, v)
				s.queue = append(s.queue, v)
			}
		}
	}
}

// ShortestFrom returns the hop distance from src to every entity ID, with limit+1 for
// entities farther than limit or unreachable.
func (g *Graph) ShortestFrom(src int32, limit int) []int {
	s := newScratch(g.NumNodes())
	g.bfs(src, limit, s)
	out := make([]int, g.NumNodes())
	for i, d := range s.dist {
		if d < 0 {
			out[i] = limit + 1
		} else {
			out[i] = int(d)
		}
	}
	return out
}

type headGroup struct {
	src     int32
	queries []int
}

// Distances answers a batch of (head, tail) queries against g. Each result is the minimum
// edge count from head to tail following edges in their stored direction, or limit+1 when
// the tail is farther than limit, unreachable, or either endpoint is absent from g.
//
// Queries are grouped by head in sorted order and one bounded search runs per distinct head
// on a pool of workers; results come back at the position of their query.
func Distances(ctx context.Context, g *Graph, queries []types.Pair, limit, workers int) ([]int, error) {
	if limit < 0 {
		return nil, fmt.Errorf("distance limit must be non-negative, got %d", limit)
	}

	out := make([]int, len(queries))
	for i := range out {
		out[i] = limit + 1
	}

	order := make([]int, len(queries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return queries[order[a]].Head < queries[order[b]].Head
	})

	var groups []headGroup
	for i := 0; i < len(order); {
		head := queries[order[i]].Head
		j := i
		for j < len(order) && queries[order[j]].Head == head {
			j++
		}
		if src, ok := g.index.ID(head); ok {
			groups = append(groups, headGroup{src: src, queries: order[i:j]})
		}
		i = j
	}

	scratch := sync.Pool{New: func() any { return newScratch(g.NumNodes()) }}
	pool := utils.NewWorkerPool(workers, func(ctx context.Context, grp headGroup) (struct{}, error) {
		s := scratch.Get().(*bfsScratch)
		defer scratch.Put(s)

		g.bfs(grp.src, limit, s)
		for _, q := range grp.queries {
			t, ok := g.index.ID(queries[q].Tail)
			if !ok {
				continue
			}
			if d := s.dist[t]; d >= 0 {
				out[q] = int(d)
			}
		}
		return struct{}{}, nil
	})
	if _, err := pool.ProcessItems(ctx, groups); err != nil {
		return nil, fmt.Errorf("failed to compute distances: %w", err)
	}
	return out, nil
}
