// Package export writes dataset splits and negative samples to Parquet for analytics tools.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/soundprediction/kgcurate/pkg/types"
)

// rowGroupSize is the number of rows written per call to the Parquet writer.
const rowGroupSize = 64 * 1024

// TripletRow is the schema of a split file.
type TripletRow struct {
	Line     int64  `parquet:"line"`
	Head     string `parquet:"head,dict"`
	Relation string `parquet:"relation,dict"`
	Tail     string `parquet:"tail,dict"`
}

// NegativeRow is the schema of a negatives file: a positive and its negative tails.
type NegativeRow struct {
	Line      int64    `parquet:"line"`
	Head      string   `parquet:"head,dict"`
	Relation  string   `parquet:"relation,dict"`
	Tail      string   `parquet:"tail,dict"`
	Negatives []string `parquet:"negatives,list"`
}

// Writer writes Parquet files into a directory.
type Writer struct {
	baseDir string
}

// NewWriter creates the directory if needed.
func NewWriter(baseDir string) (*Writer, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", baseDir, err)
	}
	return &Writer{baseDir: baseDir}, nil
}

// SplitPath returns the file a split is written to.
func (w *Writer) SplitPath(split types.Split) string {
	return filepath.Join(w.baseDir, string(split)+".parquet")
}

// NegativesPath returns the file the negatives of a split are written to.
func (w *Writer) NegativesPath(split types.Split) string {
	return filepath.Join(w.baseDir, "neg_"+string(split)+".parquet")
}

// WriteSplit writes the triplets of a split. Line is the 1-based line in the text file.
func (w *Writer) WriteSplit(ctx context.Context, split types.Split, ts []types.Triplet) (string, error) {
	path := w.SplitPath(split)
	err := writeRows(ctx, path, len(ts), func(i int) TripletRow {
		t := ts[i]
		return TripletRow{Line: int64(i + 1), Head: t.Head, Relation: t.Relation, Tail: t.Tail}
	})
	return path, err
}

// WriteNegatives writes the negatives of a split next to their positives.
func (w *Writer) WriteNegatives(ctx context.Context, split types.Split, positives []types.Triplet, negatives [][]string) (string, error) {
	if len(positives) != len(negatives) {
		return "", fmt.Errorf("%d positives but %d negative lists", len(positives), len(negatives))
	}
	path := w.NegativesPath(split)
	err := writeRows(ctx, path, len(positives), func(i int) NegativeRow {
		t := positives[i]
		return NegativeRow{Line: int64(i + 1), Head: t.Head, Relation: t.Relation, Tail: t.Tail, Negatives: negatives[i]}
	})
	return path, err
}

func writeRows[T any](ctx context.Context, path string, n int, row func(int) T) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	pw := parquet.NewGenericWriter[T](f, parquet.Compression(&parquet.Zstd))
	buf := make([]T, 0, min(n, rowGroupSize))
	for i := 0; i < n; i++ {
		buf = append(buf, row(i))
		if len(buf) == cap(buf) {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := pw.Write(buf); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			buf = buf[:0]
		}
	}
	if len(buf) > 0 {
		if _, err := pw.Write(buf); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// ReadSplit reads a split file written by WriteSplit.
func ReadSplit(path string) ([]types.Triplet, error) {
	rows, err := parquet.ReadFile[TripletRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	out := make([]types.Triplet, len(rows))
	for i, r := range rows {
		out[i] = types.Triplet{Head: r.Head, Relation: r.Relation, Tail: r.Tail}
	}
	return out, nil
}

// ReadNegatives reads a negatives file written by WriteNegatives.
func ReadNegatives(path string) ([]NegativeRow, error) {
	rows, err := parquet.ReadFile[NegativeRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}
