package kgcurate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soundprediction/kgcurate/pkg/config"
	"github.com/soundprediction/kgcurate/pkg/manifest"
	"github.com/soundprediction/kgcurate/pkg/triplets"
	"github.com/soundprediction/kgcurate/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ring builds 30 entities where e_i livesIn and knows e_{i+1} (a pair with two relations)
// and worksWith e_{i+2}. Two livesIn edges are spelled LivesIn.
func ring() []types.Triplet {
	const n = 30
	var ts []types.Triplet
	for i := 0; i < n; i++ {
		lives := "livesIn"
		if i == 10 || i == 11 {
			lives = "LivesIn"
		}
		next, skip := fmt.Sprintf("e%d", (i+1)%n), fmt.Sprintf("e%d", (i+2)%n)
		head := fmt.Sprintf("e%d", i)
		ts = append(ts,
			types.Triplet{Head: head, Relation: lives, Tail: next},
			types.Triplet{Head: head, Relation: "knows", Tail: next},
			types.Triplet{Head: head, Relation: "worksWith", Tail: skip},
		)
	}
	return ts
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Dataset.Split = 0.05
	cfg.Workers = 2
	cfg.Negatives.Seed = 7
	cfg.Negatives.N = 3
	return cfg
}

func writeInput(t *testing.T, dir string, ts []types.Triplet) string {
	t.Helper()
	path := filepath.Join(dir, "kg.ttl")
	_, err := triplets.WriteFile(path, ts)
	require.NoError(t, err)
	return path
}

func TestNewCurator(t *testing.T) {
	c, err := NewCurator(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.01, c.Config().Dataset.Split)

	cfg := config.Default()
	cfg.Dataset.Split = 1
	_, err = NewCurator(cfg, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	cfg = config.Default()
	cfg.Dataset.DenyRelations = []string{"[unclosed"}
	_, err = NewCurator(cfg, nil)
	assert.Error(t, err)
}

func TestNewCuratorInvalidEnv(t *testing.T) {
	t.Setenv("KGCURATE_DATASET_SPLIT", "2")

	var c *Curator
	var err error
	require.NotPanics(t, func() { c, err = NewCurator(nil, nil) })
	assert.Nil(t, c)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestCuratePruneDistFollowsDist(t *testing.T) {
	tests := []struct {
		name    string
		dist    int
		wantOff int
	}{
		// valid pairs are two hops apart in train
		{name: "default dist", dist: 3, wantOff: 0},
		{name: "edited dist", dist: 1, wantOff: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Dataset.PruneDist = 0
			cfg.Dataset.Dist = tt.dist
			c, err := NewCurator(cfg, quietLogger())
			require.NoError(t, err)

			ds, err := c.Curate(context.Background(), ring())
			require.NoError(t, err)
			assert.Equal(t, 4, ds.Stats.Valid.Total)
			assert.Equal(t, tt.wantOff, ds.Stats.Valid.TotalOff)
			assert.Len(t, ds.Valid, 4-tt.wantOff)
		})
	}
}

func TestCurate(t *testing.T) {
	c, err := NewCurator(testConfig(), quietLogger())
	require.NoError(t, err)

	input := ring()
	ds, err := c.Curate(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 90, ds.Stats.Input)
	assert.Equal(t, 1, ds.Stats.Remapped, "LivesIn merges into livesIn")
	assert.Equal(t, 3, ds.Stats.Relations)
	for _, tr := range ds.Clean {
		assert.Contains(t, []string{"lives_in", "knows", "works_with"}, tr.Relation)
	}
	assert.Nil(t, ds.Sub)

	assert.Equal(t, 4, ds.Stats.Quota)
	assert.Len(t, ds.Test, 4)
	assert.Len(t, ds.Valid, 4)
	assert.Len(t, ds.Train, 82)
	assert.Equal(t, 1, ds.Stats.Components.Count)
	assert.Equal(t, 30, ds.Stats.Components.Largest)
	assert.Equal(t, types.Triplet{Head: "e0", Relation: "works_with", Tail: "e2"}, ds.Test[0])
	assert.Equal(t, types.Triplet{Head: "e4", Relation: "works_with", Tail: "e6"}, ds.Valid[0])
	assert.Equal(t, 0, ds.Stats.Test.TotalOff, "every test pair is two hops apart in train")

	trainPairs := make(map[types.Pair]bool)
	for _, tr := range ds.Train {
		trainPairs[tr.Pair()] = true
	}
	for _, tr := range append(ds.Valid, ds.Test...) {
		assert.False(t, trainPairs[tr.Pair()], "pair %v leaked into train", tr.Pair())
	}
}

func TestCurateSeeds(t *testing.T) {
	cfg := testConfig()
	cfg.Dataset.Seeds = []string{"e0"}
	cfg.Dataset.Dist = 1
	cfg.Dataset.PruneDist = 2
	c, err := NewCurator(cfg, quietLogger())
	require.NoError(t, err)

	ds, err := c.Curate(context.Background(), ring())
	require.NoError(t, err)
	require.NotNil(t, ds.Sub)
	// e29 livesIn/knows e0, e28 worksWith e0, e0's three own triplets
	assert.Equal(t, 6, ds.Stats.Sub)
	require.Len(t, ds.Stats.Hops, 1)
	assert.Equal(t, 6, ds.Stats.Hops[0].Emitted)
	assert.Len(t, ds.Train, 6, "quota rounds down to zero")
	assert.Equal(t, 3, ds.Stats.SeedReach, "e0 reaches e1 and e2 in one hop")
}

func TestCurateEmpty(t *testing.T) {
	cfg := testConfig()
	cfg.Dataset.AllowRelations = []string{"nothing*"}
	c, err := NewCurator(cfg, quietLogger())
	require.NoError(t, err)

	_, err = c.Curate(context.Background(), ring())
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestMakeDataset(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	input := writeInput(t, dir, ring())

	cfg := testConfig()
	cfg.Dataset.AllowRelations = []string{"*In", "knows", "worksWith"}
	cfg.Output.Compression = "gzip"
	cfg.Export.ParquetDir = filepath.Join(dir, "parquet")
	c, err := NewCurator(cfg, quietLogger())
	require.NoError(t, err)

	ds, err := c.MakeDataset(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "kg", ds.Name)

	for name, want := range map[string][]types.Triplet{
		"clean": ds.Clean,
		"train": ds.Train,
		"valid": ds.Valid,
		"test":  ds.Test,
	} {
		got, err := triplets.ReadFile(filepath.Join(dir, "kg_"+name+".ttl.gz"))
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err = os.Stat(filepath.Join(dir, "kg_sub.ttl.gz"))
	assert.True(t, os.IsNotExist(err), "no subgraph without seeds")
	_, err = os.Stat(filepath.Join(dir, "parquet", "train.parquet"))
	assert.NoError(t, err)

	manager, err := manifest.NewManager(dir)
	require.NoError(t, err)
	m, err := manager.Load(ctx, "kg")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, manifest.StepPruned, m.Step)
	assert.Equal(t, input, m.Source)
	out, ok := m.Output("train")
	require.True(t, ok)
	assert.Equal(t, len(ds.Train), out.Count)
	assert.NotEmpty(t, out.Digest)
	_, ok = m.Output("parquet_test")
	assert.True(t, ok)

	t.Run("negatives", func(t *testing.T) {
		prefix := Prefix(input)
		res, err := c.GenerateNegatives(ctx, prefix)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), res.Seed)

		for _, s := range types.AllSplits {
			rows, err := triplets.ReadNegatives(res.Paths[s])
			require.NoError(t, err)
			assert.Len(t, rows, len(ds.Split(s)), "negatives align with %s", s)
			assert.Equal(t, len(rows), res.Counts[s])
			for i, row := range rows {
				assert.Len(t, row, 3)
				assert.NotContains(t, row, ds.Split(s)[i].Tail)
			}
		}
		assert.True(t, strings.HasSuffix(res.Paths[types.SplitTest], "kg_neg_test.ttl.gz"))

		first, err := os.ReadFile(res.Paths[types.SplitValid])
		require.NoError(t, err)
		_, err = c.GenerateNegatives(ctx, prefix)
		require.NoError(t, err)
		again, err := os.ReadFile(res.Paths[types.SplitValid])
		require.NoError(t, err)
		assert.Equal(t, first, again, "a fixed seed reproduces the negatives")

		m, err := manager.Load(ctx, "kg")
		require.NoError(t, err)
		assert.Equal(t, manifest.StepCompleted, m.Step)
		_, ok := m.Output("neg_train")
		assert.True(t, ok)
	})
}

func TestGenerateNegativesMissingTrain(t *testing.T) {
	c, err := NewCurator(testConfig(), quietLogger())
	require.NoError(t, err)
	_, err = c.GenerateNegatives(context.Background(), filepath.Join(t.TempDir(), "nothing"))
	assert.ErrorIs(t, err, ErrMissingSplit)
}

func TestMakeDatasetMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ttl")
	require.NoError(t, os.WriteFile(path, []byte("A likes B\nA likes\n"), 0644))

	c, err := NewCurator(testConfig(), quietLogger())
	require.NoError(t, err)
	_, err = c.MakeDataset(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMalformedLine)

	var pe *types.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
}

func TestRelationReport(t *testing.T) {
	path := writeInput(t, t.TempDir(), []types.Triplet{
		{Head: "a", Relation: "/people/person/nationality", Tail: "x"},
		{Head: "b", Relation: "/people/person/nationality", Tail: "x"},
		{Head: "c", Relation: "/film/film/genre", Tail: "y"},
		{Head: "d", Relation: "worksAt", Tail: "z"},
		{Head: "e", Relation: "WorksAt", Tail: "z"},
		{Head: "f", Relation: "worksAts", Tail: "z"},
	})
	c, err := NewCurator(testConfig(), quietLogger())
	require.NoError(t, err)

	rows, err := c.RelationReport(context.Background(), path, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "WorksAt", rows[0].Relation, "tie between the three spellings goes to the smallest label")
	assert.Equal(t, 3, rows[0].Count)
	assert.InDelta(t, 0.5, rows[0].Share, 1e-9)
	assert.Equal(t, "people/nationality", rows[1].Short)
}

func TestStem(t *testing.T) {
	assert.Equal(t, "infobox_en", Stem("data/infobox_en.ttl"))
	assert.Equal(t, "infobox_en", Stem("data/infobox_en.ttl.gz"))
	assert.Equal(t, "plain", Stem("plain"))
	assert.Equal(t, filepath.Join("data", "fb"), Prefix("data/fb.v2.ttl"))
}
