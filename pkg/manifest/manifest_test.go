package manifest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	manager, err := NewManager(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, manager.Dir())

	t.Run("Save and load manifest", func(t *testing.T) {
		data := filepath.Join(dir, "fb_train.ttl")
		require.NoError(t, os.WriteFile(data, []byte("A likes B\n"), 0644))

		m := New("fb", "data/fb.ttl")
		m.Step = StepSplit
		m.Params["split"] = 0.01
		m.SetStat("train", 1)
		require.NoError(t, m.RecordFile("train", data, 1))
		require.NoError(t, manager.Save(ctx, m))

		loaded, err := manager.Load(ctx, "fb")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, m.RunID, loaded.RunID)
		assert.Equal(t, StepSplit, loaded.Step)
		assert.Equal(t, "data/fb.ttl", loaded.Source)
		assert.Equal(t, 0.01, loaded.Params["split"])
		assert.Equal(t, 1, loaded.Stats["train"])

		out, ok := loaded.Output("train")
		require.True(t, ok)
		assert.Equal(t, 1, out.Count)
		assert.Equal(t, int64(10), out.Bytes)
		assert.Len(t, out.Digest, 64)

		_, err = os.Stat(filepath.Join(dir, "fb_manifest.yaml.tmp"))
		assert.True(t, errors.Is(err, os.ErrNotExist), "temporary file is renamed away")
	})

	t.Run("Load missing manifest", func(t *testing.T) {
		loaded, err := manager.Load(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("Update step", func(t *testing.T) {
		require.NoError(t, manager.UpdateStep(ctx, "fb", StepNegatives))
		loaded, err := manager.Load(ctx, "fb")
		require.NoError(t, err)
		assert.Equal(t, StepNegatives, loaded.Step)
		assert.Equal(t, "83% (negatives)", loaded.Progress())

		assert.Error(t, manager.UpdateStep(ctx, "missing", StepCompleted))
	})

	t.Run("Reject unsafe names", func(t *testing.T) {
		for _, name := range []string{"", ".", "../escape", "a/b", `a\b`, "nul\x00"} {
			_, err := manager.Path(name)
			assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
		}
	})
}

func TestRecordReplaces(t *testing.T) {
	m := New("ds", "ds.ttl")
	m.Record(Output{Name: "train", Count: 1})
	m.Record(Output{Name: "valid", Count: 2})
	m.Record(Output{Name: "train", Count: 3})

	require.Len(t, m.Outputs, 2)
	out, _ := m.Output("train")
	assert.Equal(t, 3, out.Count)
}

func TestDigest(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("A likes B\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("A likes C\n"), 0644))

	da, _, err := Digest(a)
	require.NoError(t, err)
	db, _, err := Digest(b)
	require.NoError(t, err)
	again, _, err := Digest(a)
	require.NoError(t, err)

	assert.NotEqual(t, da, db)
	assert.Equal(t, da, again)

	_, _, err = Digest(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
