// Package workerpool provides the bounded, parallel-across-clusters worker
// pool used by the Intra-cluster Solver: each item is solved by
// an independent worker, with parallelism capped at
// min(len(items), hardware_parallelism).
package workerpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Result pairs one item's index with its worker's outcome. Err is non-nil
// when that item's worker failed or the run deadline was reached before it
// completed — callers degrade a failed item rather than failing the batch.
type Result[R any] struct {
	Index int
	Value R
	Err error
}

// Run executes worker once per item, bounded to
// min(len(items), runtime.GOMAXPROCS(0)) concurrent workers. Each worker
// receives its own item — nothing is shared mutably across workers. Run waits
// for every worker and always returns len(items) results, in item order.
// Every item's worker is called even after ctx is cancelled, and each
// Result's Err is exactly the error its worker returned.
func Run[T any, R any](ctx context.Context, items []T, worker func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}

	limit := len(items)
	if cpu := runtime.GOMAXPROCS(0); cpu < limit {
		limit = cpu
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			value, err := worker(gctx, item)
			results[i] = Result[R]{Index: i, Value: value, Err: err}
			return nil // collect per-item errors in Result, don't abort siblings
		})
	}
	_ = g.Wait()

	return results
}
