package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedLine is returned when a line does not hold exactly three whitespace-separated tokens.
var ErrMalformedLine = errors.New("malformed triplet line: expected exactly 3 tokens")

// Triplet is a (head, relation, tail) fact record.
type Triplet struct {
	Head     string `json:"head" yaml:"head" parquet:"head"`
	Relation string `json:"relation" yaml:"relation" parquet:"relation"`
	Tail     string `json:"tail" yaml:"tail" parquet:"tail"`
}

// Pair returns the (head, tail) pair of the triplet.
func (t Triplet) Pair() Pair {
	return Pair{Head: t.Head, Tail: t.Tail}
}

// Line serializes the triplet to its whitespace-separated line form, without a trailing newline.
func (t Triplet) Line() string {
	return t.Head + " " + t.Relation + " " + t.Tail
}

func (t Triplet) String() string {
	return t.Line()
}

// Pair is an ordered (head, tail) entity pair.
type Pair struct {
	Head string
	Tail string
}

// ParseLine parses a "head relation tail" line.
func ParseLine(line string) (Triplet, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Triplet{}, fmt.Errorf("%w: got %d", ErrMalformedLine, len(fields))
	}
	return Triplet{Head: fields[0], Relation: fields[1], Tail: fields[2]}, nil
}

// ParseError identifies the offending line of an input file.
type ParseError struct {
	Path string
	Line int // 1-based
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
	}
	return fmt.Sprintf("%s:%d: %v: %q", e.Path, e.Line, e.Err, e.Text)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
