package split

import (
	"context"
	"fmt"
	"math"

	"github.com/soundprediction/kgcurate/pkg/graph"
	"github.com/soundprediction/kgcurate/pkg/types"
)

// PruneOptions configures Prune.
type PruneOptions struct {
	// MaxDist is the largest head-tail distance, in training-graph hops, considered in distribution.
	MaxDist int
	// RatioOff is the fraction of off-distribution triplets to retain, in [0, 1).
	RatioOff float64
	// Workers sizes the distance worker pool; non-positive means one per CPU.
	Workers int
}

// Validate checks the options.
func (o PruneOptions) Validate() error {
	if o.MaxDist < 0 {
		return fmt.Errorf("max distance must be non-negative, got %d", o.MaxDist)
	}
	if math.IsNaN(o.RatioOff) || o.RatioOff < 0 || o.RatioOff >= 1 {
		return fmt.Errorf("off-distribution ratio must be in [0, 1), got %v", o.RatioOff)
	}
	return nil
}

// PruneStats summarizes one Prune call.
type PruneStats struct {
	Total     int     `json:"total" yaml:"total"`
	TotalOff  int     `json:"total_off" yaml:"total_off"`
	TargetOff float64 `json:"target_off" yaml:"target_off"`
	Kept      int     `json:"kept" yaml:"kept"`
	KeptOff   int     `json:"kept_off" yaml:"kept_off"`
}

// Prune drops validation or test triplets whose head is farther than MaxDist from their
// tail in the training graph g, keeping a bounded minority of them.
//
// With N triplets of which totalOff are off-distribution,
// targetOff = (N - totalOff) * RatioOff / (1 - RatioOff) off-distribution triplets are kept,
// the first ones in input order, so they make up RatioOff of the result. Every in-distribution
// triplet is kept. Order is preserved.
func Prune(ctx context.Context, g *graph.Graph, set []types.Triplet, opts PruneOptions) ([]types.Triplet, PruneStats, error) {
	if err := opts.Validate(); err != nil {
		return nil, PruneStats{}, err
	}

	queries := make([]types.Pair, len(set))
	for i, t := range set {
		queries[i] = t.Pair()
	}
	distances, err := graph.Distances(ctx, g, queries, opts.MaxDist, opts.Workers)
	if err != nil {
		return nil, PruneStats{}, err
	}

	stats := PruneStats{Total: len(set)}
	for _, d := range distances {
		if d > opts.MaxDist {
			stats.TotalOff++
		}
	}
	stats.TargetOff = float64(stats.Total-stats.TotalOff) * opts.RatioOff / (1 - opts.RatioOff)

	out := make([]types.Triplet, 0, len(set)-stats.TotalOff)
	for i, t := range set {
		if distances[i] <= opts.MaxDist {
			out = append(out, t)
			continue
		}
		if float64(stats.KeptOff) < stats.TargetOff {
			out = append(out, t)
			stats.KeptOff++
		}
	}
	stats.Kept = len(out)
	return out, stats, nil
}
