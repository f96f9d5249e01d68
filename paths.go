package kgcurate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/soundprediction/kgcurate/pkg/triplets"
	"github.com/soundprediction/kgcurate/pkg/types"
)

const ttlExt = ".ttl"

// Output names, also used as manifest output keys.
const (
	outputClean = "clean"
	outputSub   = "sub"
)

// Stem returns the dataset name of an input file: its base name up to the first dot.
// data/infobox_en.ttl.gz has the stem infobox_en.
func Stem(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

// Prefix returns the path prefix shared by the outputs of a dataset built from path.
func Prefix(path string) string {
	return filepath.Join(filepath.Dir(path), Stem(path))
}

func outputPath(prefix, name string, c triplets.Compression) string {
	return prefix + "_" + name + ttlExt + c.Extension()
}

func negativesName(s types.Split) string {
	return "neg_" + string(s)
}

// findOutput locates {prefix}_{name}.ttl, trying the preferred compression first.
func findOutput(prefix, name string, preferred triplets.Compression) (string, error) {
	candidates := []triplets.Compression{preferred, triplets.CompressionNone, triplets.CompressionGzip, triplets.CompressionZstd}
	for _, c := range candidates {
		path := outputPath(prefix, name, c)
		_, err := os.Stat(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s", ErrMissingSplit, outputPath(prefix, name, triplets.CompressionNone))
}
