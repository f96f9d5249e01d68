package triplets

import (
	"sort"

	"github.com/soundprediction/kgcurate/pkg/types"
)

// ReversePrefix marks the synthetic reverse edge of a relation in a bidirectional adjacency.
const ReversePrefix = "-"

// Edge is an outgoing (relation, neighbor) edge of an entity.
type Edge struct {
	Relation string
	Target   int32
}

// Reverse reports whether the edge is a synthetic reverse edge.
func (e Edge) Reverse() bool {
	return len(e.Relation) > 0 && e.Relation[:1] == ReversePrefix
}

// RelationCount is the number of occurrences of a relation label.
type RelationCount struct {
	Relation string `json:"relation" yaml:"relation"`
	Count    int    `json:"count" yaml:"count"`
}

// Store is the in-memory triplet collection with its entity index and relation counts.
// It is built once and is safe for concurrent readers; derived indices are returned as
// fresh values and are never cached on the store.
type Store struct {
	triplets  []types.Triplet
	index     *EntityIndex
	relCounts map[string]int
}

// NewStore indexes triplets. Entity IDs follow first occurrence, head before tail.
func NewStore(ts []types.Triplet) *Store {
	index := NewEntityIndex(len(ts) / 2)
	for _, t := range ts {
		index.Add(t.Head)
		index.Add(t.Tail)
	}
	return &Store{
		triplets:  ts,
		index:     index,
		relCounts: CountRelations(ts),
	}
}

// CountRelations counts the occurrences of every relation label.
func CountRelations(ts []types.Triplet) map[string]int {
	counts := make(map[string]int)
	for _, t := range ts {
		counts[t.Relation]++
	}
	return counts
}

// Len returns the number of triplets.
func (s *Store) Len() int {
	return len(s.triplets)
}

// Triplets returns the stored triplets. The slice must not be modified.
func (s *Store) Triplets() []types.Triplet {
	return s.triplets
}

// Index returns the entity index.
func (s *Store) Index() *EntityIndex {
	return s.index
}

// RelationCounts returns the occurrence count of every relation. The map must not be modified.
func (s *Store) RelationCounts() map[string]int {
	return s.relCounts
}

// TopRelations returns the k most frequent relations, ties broken by label.
// A non-positive k returns every relation.
func (s *Store) TopRelations(k int) []RelationCount {
	rows := make([]RelationCount, 0, len(s.relCounts))
	for rel, count := range s.relCounts {
		rows = append(rows, RelationCount{Relation: rel, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Relation < rows[j].Relation
	})
	if k > 0 && k < len(rows) {
		rows = rows[:k]
	}
	return rows
}

// Outgoing builds the forward adjacency: for every entity ID, its (relation, tail) edges in
// triplet order. Repeated triplets yield repeated edges.
func (s *Store) Outgoing() [][]Edge {
	adj := make([][]Edge, s.index.Len())
	for _, t := range s.triplets {
		h, _ := s.index.ID(t.Head)
		tail, _ := s.index.ID(t.Tail)
		adj[h] = append(adj[h], Edge{Relation: t.Relation, Target: tail})
	}
	return adj
}

// Bidirectional builds the adjacency used by random walks: every triplet h r t adds the
// forward edge h -> (r, t) and the reverse edge t -> ("-r", h).
func (s *Store) Bidirectional() [][]Edge {
	adj := make([][]Edge, s.index.Len())
	for _, t := range s.triplets {
		h, _ := s.index.ID(t.Head)
		tail, _ := s.index.ID(t.Tail)
		adj[h] = append(adj[h], Edge{Relation: t.Relation, Target: tail})
		adj[tail] = append(adj[tail], Edge{Relation: ReversePrefix + t.Relation, Target: h})
	}
	return adj
}

// TailSet is the ordered set of entities observed as tails of one relation.
type TailSet struct {
	IDs     []int32
	members map[int32]struct{}
}

// Contains reports whether id is in the set.
func (ts *TailSet) Contains(id int32) bool {
	if ts == nil {
		return false
	}
	_, ok := ts.members[id]
	return ok
}

// Len returns the set size.
func (ts *TailSet) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.IDs)
}

// RelationTails builds the relation -> tail set index. Tails keep first-occurrence order.
func (s *Store) RelationTails() map[string]*TailSet {
	index := make(map[string]*TailSet, len(s.relCounts))
	for _, t := range s.triplets {
		set, ok := index[t.Relation]
		if !ok {
			set = &TailSet{members: make(map[int32]struct{})}
			index[t.Relation] = set
		}
		tail, _ := s.index.ID(t.Tail)
		if _, seen := set.members[tail]; !seen {
			set.members[tail] = struct{}{}
			set.IDs = append(set.IDs, tail)
		}
	}
	return index
}
