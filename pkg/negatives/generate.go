package negatives

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/soundprediction/kgcurate/pkg/types"
	"github.com/soundprediction/kgcurate/pkg/utils"
)

// DefaultBatchSize is the number of positives handed to a worker at a time.
const DefaultBatchSize = 256

// GenerateOptions configures Generate.
type GenerateOptions struct {
	// Seed selects the random streams. The same seed yields the same negatives.
	Seed uint64
	// Workers sizes the worker pool; non-positive means one per CPU.
	Workers int
	// BatchSize is the number of positives per work item. Zero means DefaultBatchSize.
	BatchSize int
	// Progress, when set, is called with the number of finished batches.
	Progress func(done, total int)
}

type batch struct {
	offset    int
	positives []types.Triplet
}

// Generate returns N negatives for every positive, in positive order. Positive i draws
// from its own PCG stream seeded with (Seed, i), so the output does not depend on
// scheduling or on the number of workers.
func (s *Sampler) Generate(ctx context.Context, positives []types.Triplet, opts GenerateOptions) ([][]string, error) {
	size := opts.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	var batches []batch
	for offset, chunk := range utils.Batch(positives, size) {
		batches = append(batches, batch{offset: offset * size, positives: chunk})
	}

	pool := utils.NewWorkerPool(opts.Workers, func(ctx context.Context, b batch) ([][]string, error) {
		out := make([][]string, len(b.positives))
		for i, p := range b.positives {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			index := b.offset + i
			rng := rand.New(rand.NewPCG(opts.Seed, uint64(index)))
			negs, err := s.BadTargets(rng, p.Head, p.Relation)
			if err != nil {
				return nil, fmt.Errorf("positive %d (%s): %w", index+1, p, err)
			}
			out[i] = negs
		}
		return out, nil
	})
	if opts.Progress != nil {
		pool.WithProgress(opts.Progress)
	}

	results, err := pool.ProcessItems(ctx, batches)
	if err != nil {
		return nil, fmt.Errorf("failed to generate negatives: %w", err)
	}
	out := make([][]string, 0, len(positives))
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
