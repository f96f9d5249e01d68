// Package subgraph shrinks a large triplet collection to the neighbourhood of a seed set.
package subgraph

import (
	"github.com/soundprediction/kgcurate/pkg/types"
)

// HopStats describes one expansion round.
type HopStats struct {
	Hop      int `json:"hop" yaml:"hop"`
	Frontier int `json:"frontier" yaml:"frontier"`
	Emitted  int `json:"emitted" yaml:"emitted"`
}

// Extract returns the triplets reachable within dist hops of seeds, each at most once and
// in the order it was first reached (hop by hop, input order within a hop).
//
// Each hop is one linear scan over the not-yet-emitted triplets. A triplet touching the
// frontier on either endpoint is emitted and its other endpoint joins the next frontier;
// when both endpoints are in the frontier only the tail is added. The frontier is replaced,
// not accumulated, every round: only entities discovered in the current round propagate.
func Extract(ts []types.Triplet, seeds []string, dist int) ([]types.Triplet, []HopStats) {
	frontier := make(map[string]struct{}, len(seeds))
	for _, s := range seeds {
		frontier[s] = struct{}{}
	}

	emitted := make([]bool, len(ts))
	var out []types.Triplet
	stats := make([]HopStats, 0, dist)

	for hop := 1; hop <= dist; hop++ {
		next := make(map[string]struct{})
		before := len(out)
		for i, t := range ts {
			if emitted[i] {
				continue
			}
			_, headIn := frontier[t.Head]
			_, tailIn := frontier[t.Tail]
			if !headIn && !tailIn {
				continue
			}
			out = append(out, t)
			emitted[i] = true
			if headIn {
				next[t.Tail] = struct{}{}
			} else {
				next[t.Head] = struct{}{}
			}
		}
		stats = append(stats, HopStats{Hop: hop, Frontier: len(frontier), Emitted: len(out) - before})
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}
	return out, stats
}
