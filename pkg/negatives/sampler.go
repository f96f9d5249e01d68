package negatives

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/soundprediction/kgcurate/pkg/triplets"
)

// ErrEmptyGraph is returned when a sampler is built from a training set with no entities.
var ErrEmptyGraph = errors.New("training graph has no entities")

// DefaultWalkBudget is the walk attempt budget spread over all depths of one query.
const DefaultWalkBudget = 1000

// Options configures a Sampler.
type Options struct {
	// MaxDepth is the longest random walk, in hops. Must be at least 2.
	MaxDepth int
	// N is the number of negatives returned per positive.
	N int
	// WalkBudget is passed to DepthAmount. Zero means DefaultWalkBudget.
	WalkBudget int
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.MaxDepth < 2 {
		return fmt.Errorf("max depth must be at least 2, got %d", o.MaxDepth)
	}
	if o.N < 1 {
		return fmt.Errorf("negatives per positive must be at least 1, got %d", o.N)
	}
	if o.WalkBudget < 0 {
		return fmt.Errorf("walk budget must be non-negative, got %d", o.WalkBudget)
	}
	return nil
}

// Sampler draws plausible false tails for (head, relation) queries by random walks over
// the training graph. It is immutable after construction and safe for concurrent use;
// callers supply the random source.
type Sampler struct {
	index    *triplets.EntityIndex
	adj      [][]triplets.Edge
	tails    map[string]*triplets.TailSet
	entities []int32
	schedule []DepthCount
	n        int
	logger   *slog.Logger
}

// NewSampler builds the walk adjacency and the relation tail sets from the training store.
func NewSampler(train *triplets.Store, opts Options, logger *slog.Logger) (*Sampler, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if train.Index().Len() == 0 {
		return nil, ErrEmptyGraph
	}
	if logger == nil {
		logger = slog.Default()
	}
	budget := opts.WalkBudget
	if budget == 0 {
		budget = DefaultWalkBudget
	}

	entities := make([]int32, train.Index().Len())
	for i := range entities {
		entities[i] = int32(i)
	}

	s := &Sampler{
		index:    train.Index(),
		adj:      train.Bidirectional(),
		tails:    train.RelationTails(),
		entities: entities,
		schedule: DepthAmount(opts.MaxDepth, budget),
		n:        opts.N,
		logger:   logger,
	}
	logger.Debug("Negative sampler ready",
		"entities", len(entities),
		"relations", len(s.tails),
		"max_depth", opts.MaxDepth,
		"attempts_per_query", TotalAttempts(s.schedule))
	return s, nil
}

// N returns the number of negatives per query.
func (s *Sampler) N() int {
	return s.n
}

// Schedule returns the walk schedule of every query.
func (s *Sampler) Schedule() []DepthCount {
	return slices.Clone(s.schedule)
}

// BadTargets returns exactly N entities that are plausible but unobserved tails of
// (head, relation):
//
//   - a relation with no observed tails gets entities sampled from the whole graph;
//   - a head absent from the graph gets tails of the relation;
//   - otherwise random walks from head look for tails of the relation that are not
//     neighbours of head, deeper walks getting more attempts, and the result is topped
//     up from the candidates the walks did not reach.
func (s *Sampler) BadTargets(rng *rand.Rand, head, relation string) ([]string, error) {
	tails := s.tails[relation]
	if tails.Len() == 0 {
		return s.names(SampleSafe(rng, s.entities, s.n))
	}
	h, ok := s.index.ID(head)
	if !ok || len(s.adj[h]) == 0 {
		return s.names(SampleSafe(rng, tails.IDs, s.n))
	}

	excluded := make(map[int32]struct{})
	for _, e := range s.adj[h] {
		if tails.Contains(e.Target) {
			excluded[e.Target] = struct{}{}
		}
	}
	if len(excluded) == tails.Len() {
		return s.names(SampleSafe(rng, tails.IDs, s.n))
	}
	candidate := func(id int32) bool {
		if !tails.Contains(id) {
			return false
		}
		_, known := excluded[id]
		return !known
	}

	found := s.walk(rng, h, candidate)
	if len(found) >= s.n {
		return s.names(found, nil)
	}

	remaining := make([]int32, 0, tails.Len()-len(excluded)-len(found))
	for _, id := range tails.IDs {
		if candidate(id) && !slices.Contains(found, id) {
			remaining = append(remaining, id)
		}
	}
	pool := remaining
	if len(pool) == 0 {
		pool = found
	}
	extra, err := SampleSafe(rng, pool, s.n-len(found))
	if err != nil {
		return nil, err
	}
	return s.names(append(found, extra...), nil)
}

// walk runs the depth schedule from h and returns the distinct candidates it reached, in
// discovery order, stopping once N are found. A walk ends on its first candidate or when
// it steps back onto an entity it already visited.
func (s *Sampler) walk(rng *rand.Rand, h int32, candidate func(int32) bool) []int32 {
	found := make([]int32, 0, s.n)
	visited := make([]int32, 0, len(s.schedule)+2)
	for _, dc := range s.schedule {
		for range dc.Attempts {
			visited = append(visited[:0], h)
			node := h
			for range dc.Depth {
				edges := s.adj[node]
				if len(edges) == 0 {
					break
				}
				next := edges[rng.IntN(len(edges))].Target
				if slices.Contains(visited, next) {
					break
				}
				if candidate(next) {
					if !slices.Contains(found, next) {
						found = append(found, next)
						if len(found) >= s.n {
							return found
						}
					}
					break
				}
				visited = append(visited, next)
				node = next
			}
		}
	}
	return found
}

func (s *Sampler) names(ids []int32, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = s.index.Entity(id)
	}
	return out, nil
}
