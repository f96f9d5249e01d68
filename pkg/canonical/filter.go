package canonical

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/soundprediction/kgcurate/pkg/types"
)

// RelationFilter selects relations by allow-list and deny-list. Entries are doublestar
// glob patterns, so hierarchical labels such as "/people/person/**" can be selected by
// prefix; a plain label matches itself.
//
// A relation is kept when the allow-list is empty or one of its patterns matches, and no
// deny pattern matches.
type RelationFilter struct {
	allow []string
	deny  []string

	decisions map[string]bool
}

// NewRelationFilter validates the patterns and builds a filter.
func NewRelationFilter(allow, deny []string) (*RelationFilter, error) {
	for _, p := range append(append([]string{}, allow...), deny...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid relation pattern %q", p)
		}
	}
	return &RelationFilter{
		allow:     allow,
		deny:      deny,
		decisions: make(map[string]bool),
	}, nil
}

// Empty reports whether the filter keeps every relation.
func (f *RelationFilter) Empty() bool {
	return f == nil || (len(f.allow) == 0 && len(f.deny) == 0)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if p == rel {
			return true
		}
		// patterns were validated in NewRelationFilter
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Keep reports whether rel passes the filter. Decisions are memoized per label, so a
// filter must not be shared between goroutines.
func (f *RelationFilter) Keep(rel string) bool {
	if f.Empty() {
		return true
	}
	if keep, ok := f.decisions[rel]; ok {
		return keep
	}
	keep := (len(f.allow) == 0 || matchAny(f.allow, rel)) && !matchAny(f.deny, rel)
	f.decisions[rel] = keep
	return keep
}

// Filter returns the triplets whose relation passes f, in input order.
func Filter(ts []types.Triplet, f *RelationFilter) []types.Triplet {
	if f.Empty() {
		return ts
	}
	out := make([]types.Triplet, 0, len(ts))
	for _, t := range ts {
		if f.Keep(t.Relation) {
			out = append(out, t)
		}
	}
	return out
}
