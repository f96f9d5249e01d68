// Package manifest records what a dataset build produced: the run parameters, the files
// written with their line counts and BLAKE3 digests, per-stage statistics and the last
// completed step. Manifests are YAML files written atomically next to the dataset.
package manifest
