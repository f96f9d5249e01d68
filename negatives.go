package kgcurate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"

	"github.com/soundprediction/kgcurate/pkg/export"
	"github.com/soundprediction/kgcurate/pkg/manifest"
	"github.com/soundprediction/kgcurate/pkg/negatives"
	"github.com/soundprediction/kgcurate/pkg/triplets"
	"github.com/soundprediction/kgcurate/pkg/types"
)

// NegativesResult describes the negative sample files of a dataset.
type NegativesResult struct {
	// Seed reproduces the run when set as negatives.seed.
	Seed   uint64
	Paths  map[types.Split]string
	Counts map[types.Split]int
}

// splitSeed derives a distinct stream seed per split.
func splitSeed(seed uint64, i int) uint64 {
	return seed ^ (uint64(i+1) * 0x9e3779b97f4a7c15)
}

// GenerateNegatives reads {prefix}_train.ttl, builds a sampler from it and writes
// {prefix}_neg_train.ttl, {prefix}_neg_valid.ttl and {prefix}_neg_test.ttl. Line i of a
// negatives file holds the negatives of line i of the matching split file.
func (c *Curator) GenerateNegatives(ctx context.Context, prefix string) (*NegativesResult, error) {
	compression, err := triplets.ParseCompression(c.config.Output.Compression)
	if err != nil {
		return nil, err
	}

	trainPath, err := findOutput(prefix, string(types.SplitTrain), compression)
	if err != nil {
		return nil, err
	}
	train, err := triplets.ReadFile(trainPath)
	if err != nil {
		return nil, err
	}

	cfg := c.config.Negatives
	sampler, err := negatives.NewSampler(triplets.NewStore(train), negatives.Options{
		MaxDepth:   cfg.MaxDepth,
		N:          cfg.N,
		WalkBudget: cfg.WalkBudget,
	}, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build sampler from %s: %w", trainPath, err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	c.logger.Info("Generating negatives", "train", trainPath, "n", cfg.N, "max_depth", cfg.MaxDepth, "seed", seed)

	manager, err := manifest.NewManager(filepath.Dir(prefix))
	if err != nil {
		return nil, err
	}
	name := filepath.Base(prefix)
	m, err := manager.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = manifest.New(name, trainPath)
	}
	m.Step = manifest.StepNegatives
	m.Params["negatives.n"] = cfg.N
	m.Params["negatives.max_depth"] = cfg.MaxDepth
	m.Params["negatives.walk_budget"] = cfg.WalkBudget
	m.Params["negatives.seed"] = seed

	var writer *export.Writer
	if dir := c.config.Export.ParquetDir; dir != "" {
		if writer, err = export.NewWriter(dir); err != nil {
			return nil, err
		}
	}

	res := &NegativesResult{
		Seed:   seed,
		Paths:  make(map[types.Split]string),
		Counts: make(map[types.Split]int),
	}
	for i, s := range types.AllSplits {
		positives := train
		if s != types.SplitTrain {
			path, err := findOutput(prefix, string(s), compression)
			if err != nil {
				return nil, err
			}
			if positives, err = triplets.ReadFile(path); err != nil {
				return nil, err
			}
		}

		rows, err := sampler.Generate(ctx, positives, negatives.GenerateOptions{
			Seed:     splitSeed(seed, i),
			Workers:  c.config.Workers,
			Progress: c.progress("Sampling negatives", s),
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s, err)
		}

		out := outputPath(prefix, negativesName(s), compression)
		n, err := triplets.WriteNegatives(out, rows)
		if err != nil {
			return nil, err
		}
		if err := m.RecordFile(negativesName(s), out, n); err != nil {
			return nil, err
		}
		res.Paths[s], res.Counts[s] = out, n
		c.logger.Info("Wrote negatives", "split", s, "path", out, "count", n)

		if writer != nil {
			path, err := writer.WriteNegatives(ctx, s, positives, rows)
			if err != nil {
				return nil, err
			}
			if err := m.RecordFile("parquet_"+negativesName(s), path, n); err != nil {
				return nil, err
			}
		}
	}

	m.Step = manifest.StepCompleted
	if err := manager.Save(ctx, m); err != nil {
		return nil, err
	}
	return res, nil
}

// progress returns a callback that logs roughly every tenth of the work.
func (c *Curator) progress(msg string, s types.Split) func(done, total int) {
	return func(done, total int) {
		step := max(total/10, 1)
		if done%step == 0 || done == total {
			c.logger.Debug(msg, "split", s, "batches", done, "of", total)
		}
	}
}
