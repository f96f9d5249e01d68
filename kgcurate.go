package kgcurate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/soundprediction/kgcurate/pkg/canonical"
	"github.com/soundprediction/kgcurate/pkg/config"
	"github.com/soundprediction/kgcurate/pkg/graph"
	"github.com/soundprediction/kgcurate/pkg/labels"
	"github.com/soundprediction/kgcurate/pkg/split"
	"github.com/soundprediction/kgcurate/pkg/subgraph"
	"github.com/soundprediction/kgcurate/pkg/triplets"
	"github.com/soundprediction/kgcurate/pkg/types"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrEmptyDataset is returned when no triplets are left to split.
	ErrEmptyDataset = errors.New("dataset is empty")
	// ErrMissingSplit is returned when a split file of a dataset prefix cannot be found.
	ErrMissingSplit = errors.New("split file not found")
)

// Curator turns raw triplet files into link prediction datasets.
// It is safe for concurrent use; every call works on its own data.
type Curator struct {
	config *config.Config
	logger *slog.Logger
	labels *labels.Shortener
}

// NewCurator creates a Curator. A nil config means the defaults with KGCURATE_*
// environment overrides, and a nil logger means slog.Default.
func NewCurator(cfg *config.Config, logger *slog.Logger) (*Curator, error) {
	if cfg == nil {
		loaded, err := config.LoadFrom(viper.New())
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := triplets.ParseCompression(cfg.Output.Compression); err != nil {
		return nil, err
	}
	if _, err := canonical.NewRelationFilter(cfg.Dataset.AllowRelations, cfg.Dataset.DenyRelations); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Curator{
		config: cfg,
		logger: logger,
		labels: labels.NewShortener(),
	}, nil
}

// Config returns the configuration of the curator.
func (c *Curator) Config() *config.Config {
	return c.config
}

// Dataset is the result of the curation pipeline.
type Dataset struct {
	// Name is the file stem outputs are named after.
	Name string
	// Clean holds the triplets after canonicalization, filtering and relabeling.
	Clean []types.Triplet
	// Sub holds the seed neighbourhood; nil when no seeds are configured.
	Sub   []types.Triplet
	Train []types.Triplet
	Valid []types.Triplet
	Test  []types.Triplet
	Stats DatasetStats
}

// Split returns the triplets of one split.
func (d *Dataset) Split(s types.Split) []types.Triplet {
	switch s {
	case types.SplitTrain:
		return d.Train
	case types.SplitValid:
		return d.Valid
	case types.SplitTest:
		return d.Test
	}
	return nil
}

// DatasetStats summarizes every stage of a Curate call.
type DatasetStats struct {
	Input      int                  `json:"input" yaml:"input"`
	Remapped   int                  `json:"remapped_relations" yaml:"remapped_relations"`
	Clean      int                  `json:"clean" yaml:"clean"`
	Relations  int                  `json:"relations" yaml:"relations"`
	Seeds      int                  `json:"seeds,omitempty" yaml:"seeds,omitempty"`
	Sub        int                  `json:"sub,omitempty" yaml:"sub,omitempty"`
	Hops       []subgraph.HopStats  `json:"hops,omitempty" yaml:"hops,omitempty"`
	Quota      int                  `json:"quota" yaml:"quota"`
	Train      int                  `json:"train" yaml:"train"`
	// SeedReach counts training entities within dist forward hops of a seed.
	SeedReach  int                  `json:"seed_reach,omitempty" yaml:"seed_reach,omitempty"`
	// Components describes the connectivity of the training graph.
	Components graph.ComponentStats `json:"components" yaml:"components"`
	Valid      split.PruneStats     `json:"valid" yaml:"valid"`
	Test       split.PruneStats     `json:"test" yaml:"test"`
}

// Curate runs the in-memory pipeline: canonicalize relations, filter and relabel them,
// extract the seed neighbourhood, split without leakage and prune the evaluation splits.
func (c *Curator) Curate(ctx context.Context, ts []types.Triplet) (*Dataset, error) {
	seeds, err := c.seeds()
	if err != nil {
		return nil, err
	}
	return c.curate(ctx, ts, seeds)
}

func (c *Curator) curate(ctx context.Context, ts []types.Triplet, seeds []string) (*Dataset, error) {
	cfg := c.config.Dataset
	ds := &Dataset{Stats: DatasetStats{Input: len(ts), Seeds: len(seeds)}}

	remap := canonical.RelationMap(triplets.CountRelations(ts))
	clean := canonical.Apply(ts, remap)
	ds.Stats.Remapped = len(remap)
	c.logger.Info("Canonicalized relations", "triplets", len(ts), "remapped", len(remap))

	filter, err := canonical.NewRelationFilter(cfg.AllowRelations, cfg.DenyRelations)
	if err != nil {
		return nil, err
	}
	if !filter.Empty() {
		clean = canonical.Filter(clean, filter)
		c.logger.Info("Filtered relations", "kept", len(clean), "dropped", len(ts)-len(clean))
	}
	if cfg.Relabel {
		clean = canonical.Relabel(clean, cfg.Lowercase)
	}
	ds.Clean = clean
	ds.Stats.Clean = len(clean)
	ds.Stats.Relations = len(triplets.CountRelations(clean))

	working := clean
	if len(seeds) > 0 {
		sub, hops := subgraph.Extract(clean, seeds, cfg.Dist)
		ds.Sub, ds.Stats.Sub, ds.Stats.Hops = sub, len(sub), hops
		working = sub
		c.logger.Info("Extracted subgraph", "seeds", len(seeds), "hops", cfg.Dist, "triplets", len(sub))
	}
	if len(working) == 0 {
		return nil, ErrEmptyDataset
	}

	res, err := split.Split(working, cfg.Split)
	if err != nil {
		return nil, err
	}
	ds.Train = res.Train
	ds.Stats.Quota = res.Quota
	ds.Stats.Train = len(res.Train)
	if len(res.Test) < res.Quota || len(res.Valid) < res.Quota {
		c.logger.Warn("Split quota under-filled",
			"quota", res.Quota, "valid", len(res.Valid), "test", len(res.Test))
	}

	g := graph.New(triplets.NewStore(res.Train))
	ds.Stats.Components = g.ComponentStats()
	ds.Stats.SeedReach = seedReach(g, seeds, cfg.Dist)
	c.logger.Debug("Built training graph", "entities", g.NumNodes(), "edges", g.NumEdges(),
		"components", ds.Stats.Components.Count, "largest", ds.Stats.Components.Largest)

	opts := split.PruneOptions{MaxDist: cfg.MaxPruneDist(), RatioOff: cfg.RatioOff, Workers: c.config.Workers}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(2)
	prune := func(name types.Split, set []types.Triplet, out *[]types.Triplet, stats *split.PruneStats) {
		eg.Go(func() error {
			pruned, st, err := split.Prune(egCtx, g, set, opts)
			if err != nil {
				return fmt.Errorf("failed to prune %s: %w", name, err)
			}
			*out, *stats = pruned, st
			c.logger.Info("Pruned split", "split", name,
				"total", st.Total, "off", st.TotalOff, "kept", st.Kept, "kept_off", st.KeptOff)
			return nil
		})
	}
	prune(types.SplitValid, res.Valid, &ds.Valid, &ds.Stats.Valid)
	prune(types.SplitTest, res.Test, &ds.Test, &ds.Stats.Test)
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}

// seedReach counts the entities of g within dist hops of any seed.
func seedReach(g *graph.Graph, seeds []string, dist int) int {
	if len(seeds) == 0 {
		return 0
	}
	reached := make([]bool, g.NumNodes())
	for _, seed := range seeds {
		id, ok := g.Index().ID(seed)
		if !ok {
			continue
		}
		for u, d := range g.ShortestFrom(id, dist) {
			if d <= dist {
				reached[u] = true
			}
		}
	}
	n := 0
	for _, r := range reached {
		if r {
			n++
		}
	}
	return n
}

// seeds merges the configured seed entities with those of the seed file.
func (c *Curator) seeds() ([]string, error) {
	seeds := slices.Clone(c.config.Dataset.Seeds)
	if path := c.config.Dataset.SeedsFile; path != "" {
		fromFile, err := triplets.ReadEntities(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read seeds: %w", err)
		}
		seeds = append(seeds, fromFile...)
	}
	slices.Sort(seeds)
	return slices.Compact(seeds), nil
}
