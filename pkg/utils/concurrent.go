package utils

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// DefaultWorkers returns the pool size used when none is configured.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// Worker represents a worker function that processes one item.
type Worker[T any, R any] func(ctx context.Context, item T) (R, error)

// WorkerPool runs a fixed number of workers over a slice of items.
//
// Goroutine Lifecycle:
//   - Worker goroutines are created when ProcessItems is called
//   - Workers read index-tagged items from an internal channel until it is drained
//   - All workers terminate when the channel is exhausted or the context is cancelled
//   - ProcessItems blocks until all workers complete
//   - Panics in workers are recovered and converted to PanicError
//
// Results are stored at the index of their item, so the output order always matches
// the input order regardless of scheduling.
//
// Example:
//
//	pool := NewWorkerPool(4, func(ctx context.Context, item string) (int, error) {
//	    return len(item), nil
//	})
//	results, err := pool.ProcessItems(ctx, []string{"a", "bb", "ccc"})
type WorkerPool[T any, R any] struct {
	numWorkers int
	worker     Worker[T, R]
	onProgress func(done, total int)
}

// NewWorkerPool creates a new worker pool. A non-positive size means DefaultWorkers.
func NewWorkerPool[T any, R any](numWorkers int, worker Worker[T, R]) *WorkerPool[T, R] {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers()
	}
	return &WorkerPool[T, R]{
		numWorkers: numWorkers,
		worker:     worker,
	}
}

// WithProgress registers a callback invoked after every processed item.
// The callback may be called concurrently.
func (wp *WorkerPool[T, R]) WithProgress(fn func(done, total int)) *WorkerPool[T, R] {
	wp.onProgress = fn
	return wp
}

// NumWorkers returns the pool size.
func (wp *WorkerPool[T, R]) NumWorkers() int {
	return wp.numWorkers
}

type indexed[T any] struct {
	item  T
	index int
}

// ProcessItems processes items using the worker pool and returns one result per item.
// The returned error is the error of the lowest-index failing item, or the context error
// when processing was cancelled before every item ran.
func (wp *WorkerPool[T, R]) ProcessItems(ctx context.Context, items []T) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	itemsChan := make(chan indexed[T], len(items))
	for i, item := range items {
		itemsChan <- indexed[T]{item: item, index: i}
	}
	close(itemsChan)

	results := make([]R, len(items))
	errs := make([]error, len(items))
	var done atomic.Int64
	var wg sync.WaitGroup

	workers := min(wp.numWorkers, len(items))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case it, ok := <-itemsChan:
					if !ok {
						return
					}
					func() {
						defer RecoverWithCallback(func(err error) {
							errs[it.index] = err
						})
						results[it.index], errs[it.index] = wp.worker(ctx, it.item)
					}()
					if wp.onProgress != nil {
						wp.onProgress(int(done.Add(1)), len(items))
					}
				}
			}
		}()
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	if err := ctx.Err(); err != nil && int(done.Load()) < len(items) {
		return results, err
	}
	return results, nil
}

// Batch splits items into consecutive batches of at most batchSize items.
func Batch[T any](items []T, batchSize int) [][]T {
	if batchSize <= 0 {
		batchSize = 10
	}

	var batches [][]T
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		batches = append(batches, items[i:end])
	}
	return batches
}
