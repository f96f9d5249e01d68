// Package utils provides the shared execution helpers of kgcurate.
//
// This package contains:
//   - Concurrent execution helpers (concurrent.go): an index-preserving WorkerPool and Batch
//   - Panic recovery for worker goroutines (recovery.go)
//   - A string Union-Find (unionfind.go)
//
// The distance engine and the negative sampler both fan work out over a WorkerPool and
// rely on it to hand results back in input order.
package utils
