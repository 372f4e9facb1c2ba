// Package pool provides the bounded parallel-for used by the per-point
// build phases. Columns of the neighbor matrix are independent work units,
// so each phase is a single fixed-size fan-out: a handful of workers claim
// point indices from a shared counter until the range is exhausted. The
// counter, rather than pre-cut index ranges, keeps uneven per-point costs
// from stalling a whole range behind one slow worker.
package pool

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// RunN runs fn(worker, i) for every i in [0, n) across at most workers
// goroutines and waits for all of them to finish. workers values <= 0
// default to GOMAXPROCS.
//
// The worker argument is a stable id in [0, workers); a given id is only
// ever live on one goroutine, so callers can use it to index per-worker
// scratch state without locking.
//
// The first error returned by fn stops workers from claiming further
// points and is returned after the in-flight points finish. A cancelled
// ctx stops the claiming the same way and RunN returns ctx.Err().
func RunN(ctx context.Context, workers, n int, fn func(worker, i int) error) error {
	workers = Workers(workers)
	if workers > n {
		workers = n
	}

	var (
		next     atomic.Int64
		firstErr atomic.Pointer[error]
		wg       sync.WaitGroup
	)

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for ctx.Err() == nil && firstErr.Load() == nil {
				i := int(next.Add(1)) - 1
				if i >= n {
					return
				}
				if err := fn(w, i); err != nil {
					firstErr.CompareAndSwap(nil, &err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if errp := firstErr.Load(); errp != nil {
		return *errp
	}
	return ctx.Err()
}

// Workers normalizes a configured worker count: values <= 0 become
// GOMAXPROCS. Callers sizing per-worker scratch by it see the same ids
// that RunN hands out.
func Workers(workers int) int {
	if workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return workers
}
