package kgcurate

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/soundprediction/kgcurate/pkg/export"
	"github.com/soundprediction/kgcurate/pkg/manifest"
	"github.com/soundprediction/kgcurate/pkg/triplets"
	"github.com/soundprediction/kgcurate/pkg/types"
)

// MakeDataset reads the triplet file at path, curates it and writes the outputs next to it:
// {stem}_clean.ttl when relations are filtered, {stem}_sub.ttl when seeds are set, and
// {stem}_train.ttl, {stem}_valid.ttl and {stem}_test.ttl, plus {stem}_manifest.yaml.
// Outputs get a .gz or .zst suffix when compression is configured.
func (c *Curator) MakeDataset(ctx context.Context, path string) (*Dataset, error) {
	compression, err := triplets.ParseCompression(c.config.Output.Compression)
	if err != nil {
		return nil, err
	}
	seeds, err := c.seeds()
	if err != nil {
		return nil, err
	}

	ts, err := triplets.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Read triplets", "path", path, "count", len(ts))

	name, prefix := Stem(path), Prefix(path)
	manager, err := manifest.NewManager(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	m := manifest.New(name, path)
	c.recordParams(m)

	ds, err := c.curate(ctx, ts, seeds)
	if err != nil {
		if serr := manager.RecordError(ctx, m, err); serr != nil {
			c.logger.Warn("Failed to save manifest", "error", serr)
		}
		return nil, err
	}
	ds.Name = name
	m.SetStat("dataset", ds.Stats)

	write := func(output string, set []types.Triplet, step manifest.Step) error {
		out := outputPath(prefix, output, compression)
		n, err := triplets.WriteFile(out, set)
		if err != nil {
			return err
		}
		if err := m.RecordFile(output, out, n); err != nil {
			return err
		}
		m.Step = step
		c.logger.Info("Wrote triplets", "path", out, "count", n)
		return nil
	}

	if !c.filterEmpty() {
		if err := write(outputClean, ds.Clean, manifest.StepCleaned); err != nil {
			return nil, err
		}
	}
	if ds.Sub != nil {
		if err := write(outputSub, ds.Sub, manifest.StepSubgraphed); err != nil {
			return nil, err
		}
	}
	if err := write(string(types.SplitTrain), ds.Train, manifest.StepSplit); err != nil {
		return nil, err
	}
	for _, s := range []types.Split{types.SplitValid, types.SplitTest} {
		if err := write(string(s), ds.Split(s), manifest.StepPruned); err != nil {
			return nil, err
		}
	}

	if dir := c.config.Export.ParquetDir; dir != "" {
		if err := c.exportSplits(ctx, dir, ds, m); err != nil {
			return nil, err
		}
	}

	if err := manager.Save(ctx, m); err != nil {
		return nil, err
	}
	c.logger.Info("Dataset ready", "name", name, "run_id", m.RunID,
		"train", len(ds.Train), "valid", len(ds.Valid), "test", len(ds.Test))
	return ds, nil
}

func (c *Curator) exportSplits(ctx context.Context, dir string, ds *Dataset, m *manifest.Manifest) error {
	w, err := export.NewWriter(dir)
	if err != nil {
		return err
	}
	for _, s := range types.AllSplits {
		path, err := w.WriteSplit(ctx, s, ds.Split(s))
		if err != nil {
			return err
		}
		if err := m.RecordFile("parquet_"+string(s), path, len(ds.Split(s))); err != nil {
			return err
		}
		c.logger.Debug("Exported split", "path", path)
	}
	return nil
}

func (c *Curator) filterEmpty() bool {
	return len(c.config.Dataset.AllowRelations) == 0 && len(c.config.Dataset.DenyRelations) == 0
}

func (c *Curator) recordParams(m *manifest.Manifest) {
	d := c.config.Dataset
	m.Params["split"] = d.Split
	m.Params["dist"] = d.Dist
	m.Params["prune_dist"] = d.MaxPruneDist()
	m.Params["ratio_off"] = d.RatioOff
	m.Params["relabel"] = d.Relabel
	m.Params["lowercase"] = d.Lowercase
	if len(d.AllowRelations) > 0 {
		m.Params["allow_relations"] = d.AllowRelations
	}
	if len(d.DenyRelations) > 0 {
		m.Params["deny_relations"] = d.DenyRelations
	}
	if len(d.Seeds) > 0 {
		m.Params["seeds"] = d.Seeds
	}
	if d.SeedsFile != "" {
		m.Params["seeds_file"] = d.SeedsFile
	}
	m.Params["compression"] = c.config.Output.Compression
}

// String helps log a dataset.
func (d *Dataset) String() string {
	return fmt.Sprintf("%s: train=%d valid=%d test=%d", d.Name, len(d.Train), len(d.Valid), len(d.Test))
}
