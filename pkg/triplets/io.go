package triplets

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/soundprediction/kgcurate/pkg/types"
)

const maxLineSize = 16 * 1024 * 1024

// Compression is the on-disk encoding of a triplet file.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// ParseCompression converts a config value into a Compression. Empty means none.
func ParseCompression(s string) (Compression, error) {
	switch Compression(strings.ToLower(s)) {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionGzip:
		return CompressionGzip, nil
	case CompressionZstd:
		return CompressionZstd, nil
	default:
		return "", fmt.Errorf("unknown compression %q", s)
	}
}

// Extension returns the file suffix appended for the compression.
func (c Compression) Extension() string {
	switch c {
	case CompressionGzip:
		return ".gz"
	case CompressionZstd:
		return ".zst"
	default:
		return ""
	}
}

// CompressionFor infers the compression of a path from its extension.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	default:
		return CompressionNone
	}
}

type readCloser struct {
	io.Reader
	closers []func() error
}

func (rc *readCloser) Close() error {
	var errs []error
	for _, c := range rc.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Open opens path for reading, decompressing according to its extension.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch CompressionFor(path) {
	case CompressionGzip:
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
		}
		return &readCloser{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to open zstd stream %s: %w", path, err)
		}
		return &readCloser{Reader: zr, closers: []func() error{
			func() error { zr.Close(); return nil },
			f.Close,
		}}, nil
	default:
		return f, nil
	}
}

type writeCloser struct {
	io.Writer
	closers []func() error
}

func (wc *writeCloser) Close() error {
	// compressor, buffer, file
	for _, c := range wc.closers {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}

// Create creates path for writing, compressing according to its extension.
// Parent directories are created as needed.
func Create(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriterSize(f, 1<<20)

	switch CompressionFor(path) {
	case CompressionGzip:
		zw := gzip.NewWriter(bw)
		return &writeCloser{Writer: zw, closers: []func() error{zw.Close, bw.Flush, f.Close}}, nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(bw)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create zstd stream %s: %w", path, err)
		}
		return &writeCloser{Writer: zw, closers: []func() error{zw.Close, bw.Flush, f.Close}}, nil
	default:
		return &writeCloser{Writer: bw, closers: []func() error{bw.Flush, f.Close}}, nil
	}
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	return sc
}

// Read parses every line of r. The first malformed line aborts the read with a
// *types.ParseError; name is only used in that error.
func Read(r io.Reader, name string) ([]types.Triplet, error) {
	var out []types.Triplet
	sc := newScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		t, err := types.ParseLine(sc.Text())
		if err != nil {
			return nil, &types.ParseError{Path: name, Line: lineNo, Text: sc.Text(), Err: err}
		}
		out = append(out, t)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return out, nil
}

// ReadFile reads and parses a triplet file.
func ReadFile(path string) ([]types.Triplet, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Read(rc, path)
}

// Write serializes triplets one per line and returns the number written.
func Write(w io.Writer, ts []types.Triplet) (int, error) {
	for i, t := range ts {
		if _, err := io.WriteString(w, t.Line()+"\n"); err != nil {
			return i, err
		}
	}
	return len(ts), nil
}

// WriteFile writes triplets to path and returns the number written.
func WriteFile(path string, ts []types.Triplet) (int, error) {
	wc, err := Create(path)
	if err != nil {
		return 0, err
	}
	n, err := Write(wc, ts)
	if cerr := wc.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return n, nil
}

// ReadNegatives reads a negative-sample file: one line of entity identifiers per positive.
func ReadNegatives(path string) ([][]string, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var rows [][]string
	sc := newScanner(rc)
	for sc.Scan() {
		rows = append(rows, strings.Fields(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}

// WriteNegatives writes one whitespace-separated line per row and returns the number written.
func WriteNegatives(path string, rows [][]string) (int, error) {
	wc, err := Create(path)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, row := range rows {
		if _, err = io.WriteString(wc, strings.Join(row, " ")+"\n"); err != nil {
			break
		}
		n++
	}
	if cerr := wc.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return n, nil
}

// ReadEntities reads one entity per non-blank line, e.g. a seed file.
func ReadEntities(path string) ([]string, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var out []string
	sc := newScanner(rc)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return out, nil
}
