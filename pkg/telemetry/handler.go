// Package telemetry persists warning and error log records of a run to Parquet files, so
// problems in long dataset builds can be inspected after the fact.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

// LogRecord represents a single log entry for Parquet storage
type LogRecord struct {
	ID         string    `parquet:"id"`
	RunID      string    `parquet:"run_id"`
	Timestamp  time.Time `parquet:"timestamp"`
	Level      string    `parquet:"level"`
	Message    string    `parquet:"message"`
	SourceFile string    `parquet:"source_file"`
	LineNumber int       `parquet:"line_number"`
	Attributes string    `parquet:"attributes"` // JSON string
}

// DefaultBatchSize is the number of records buffered before a file is written.
const DefaultBatchSize = 100

// sink is the buffer shared by a handler and the handlers derived from it.
type sink struct {
	mu        sync.Mutex
	outputDir string
	runID     string
	batchSize int
	minLevel  slog.Level
	buffer    []LogRecord
	files     int
}

// ParquetHandler is a slog.Handler that forwards every record to next and buffers records
// at or above its minimum level for Parquet storage.
type ParquetHandler struct {
	next  slog.Handler
	sink  *sink
	attrs []slog.Attr
	group string
}

// NewParquetHandler creates a new ParquetHandler storing records of level warn and above
// under outputDir. runID tags every record.
func NewParquetHandler(next slog.Handler, outputDir, runID string) (*ParquetHandler, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	return &ParquetHandler{
		next: next,
		sink: &sink{
			outputDir: outputDir,
			runID:     runID,
			batchSize: DefaultBatchSize,
			minLevel:  slog.LevelWarn,
			buffer:    make([]LogRecord, 0, DefaultBatchSize),
		},
	}, nil
}

// SetMinLevel changes the lowest level that is stored.
func (h *ParquetHandler) SetMinLevel(level slog.Level) {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	h.sink.minLevel = level
}

// Enabled implements slog.Handler
func (h *ParquetHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *ParquetHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always pass to next handler first
	if err := h.next.Handle(ctx, r); err != nil {
		return err
	}

	h.sink.mu.Lock()
	minLevel := h.sink.minLevel
	h.sink.mu.Unlock()
	if r.Level < minLevel {
		return nil
	}

	attrs := make(map[string]any)
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.qualify(a.Key)] = a.Value.Resolve().Any()
		return true
	})

	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		attrsJSON = []byte(fmt.Sprintf("{%q:%q}", "marshal_error", err.Error()))
	}

	var sourceFile string
	var line int
	if r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		sourceFile, line = f.File, f.Line
	}

	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()

	h.sink.buffer = append(h.sink.buffer, LogRecord{
		ID:         uuid.New().String(),
		RunID:      h.sink.runID,
		Timestamp:  r.Time.UTC(),
		Level:      r.Level.String(),
		Message:    r.Message,
		SourceFile: sourceFile,
		LineNumber: line,
		Attributes: string(attrsJSON),
	})

	if len(h.sink.buffer) >= h.sink.batchSize {
		return h.sink.flush()
	}
	return nil
}

// Close writes any buffered records. Handlers derived with WithAttrs or WithGroup share
// the buffer, so closing any of them flushes all.
func (h *ParquetHandler) Close() error {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return h.sink.flush()
}

// flush writes the current buffer to a new Parquet file
// Caller must hold the lock
func (s *sink) flush() error {
	if len(s.buffer) == 0 {
		return nil
	}

	s.files++
	filename := fmt.Sprintf("run_%s_%s_%03d.parquet", s.runID, time.Now().UTC().Format("20060102_150405"), s.files)
	if err := parquet.WriteFile(filepath.Join(s.outputDir, filename), s.buffer); err != nil {
		return fmt.Errorf("failed to write telemetry parquet file: %w", err)
	}

	s.buffer = s.buffer[:0]
	return nil
}

func (h *ParquetHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

// WithAttrs implements slog.Handler
func (h *ParquetHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		merged = append(merged, slog.Attr{Key: h.qualify(a.Key), Value: a.Value})
	}
	return &ParquetHandler{
		next:  h.next.WithAttrs(attrs),
		sink:  h.sink,
		attrs: merged,
		group: h.group,
	}
}

// WithGroup implements slog.Handler
func (h *ParquetHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &ParquetHandler{
		next:  h.next.WithGroup(name),
		sink:  h.sink,
		attrs: h.attrs,
		group: group,
	}
}

// ReadRecords loads every record stored under dir, ordered by file name.
func ReadRecords(dir string) ([]LogRecord, error) {
	files, err := filepath.Glob(filepath.Join(dir, "run_*.parquet"))
	if err != nil {
		return nil, err
	}
	var out []LogRecord
	for _, f := range files {
		rows, err := parquet.ReadFile[LogRecord](f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		out = append(out, rows...)
	}
	return out, nil
}
