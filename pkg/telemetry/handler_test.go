package telemetry

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParquetHandler(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	next := slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelDebug})

	h, err := NewParquetHandler(next, dir, "run-1")
	require.NoError(t, err)
	log := slog.New(h)

	log.Info("Wrote split", "split", "train")
	log.Warn("Quota under-filled", "split", "test", "quota", 10)
	log.With("stage", "negatives").WithGroup("sampler").Error("Sampling failed", "relation", "likes")

	assert.Contains(t, console.String(), "Wrote split", "every record reaches the next handler")

	records, err := ReadRecords(dir)
	require.NoError(t, err)
	assert.Empty(t, records, "records stay buffered until the batch fills or Close")

	require.NoError(t, h.Close())
	records, err = ReadRecords(dir)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "WARN", records[0].Level)
	assert.Equal(t, "Quota under-filled", records[0].Message)
	assert.JSONEq(t, `{"split":"test","quota":10}`, records[0].Attributes)
	assert.Equal(t, "run-1", records[0].RunID)
	assert.NotEmpty(t, records[0].ID)

	assert.Equal(t, "ERROR", records[1].Level)
	assert.JSONEq(t, `{"stage":"negatives","sampler.relation":"likes"}`, records[1].Attributes)
}

func TestParquetHandlerBatches(t *testing.T) {
	dir := t.TempDir()
	h, err := NewParquetHandler(slog.NewTextHandler(&bytes.Buffer{}, nil), dir, "run-2")
	require.NoError(t, err)
	h.SetMinLevel(slog.LevelInfo)
	log := slog.New(h)

	for i := 0; i < DefaultBatchSize+5; i++ {
		log.Info("tick", "i", i)
	}
	records, err := ReadRecords(dir)
	require.NoError(t, err)
	assert.Len(t, records, DefaultBatchSize)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	records, err = ReadRecords(dir)
	require.NoError(t, err)
	assert.Len(t, records, DefaultBatchSize+5)
}
