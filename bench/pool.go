package bench

import (
	"context"
	"sync"
	"sync/atomic"
)

// forEach runs fn for indices 0..n-1. With one worker it runs strictly
// sequentially in index order. Otherwise indices are dispatched in
// order to exactly workers goroutines; completion order is
// unconstrained and every dispatched call finishes before forEach
// returns (a full-barrier join). The first failure stops further
// dispatch and is returned after the barrier; in-flight calls are
// awaited, not cancelled.
func forEach(
	ctx context.Context,
	n, workers int,
	fn func(ctx context.Context, i int) error,
) error {
	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := fn(ctx, i); err != nil {
				return err
			}
		}

		return nil
	}

	var (
		wg       sync.WaitGroup
		failed   atomic.Bool
		errOnce  sync.Once
		firstErr error
	)

	jobs := make(chan int)

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()

			for i := range jobs {
				if err := fn(ctx, i); err != nil {
					errOnce.Do(func() { firstErr = err })
					failed.Store(true)
				}
			}
		}()
	}

	for i := 0; i < n && !failed.Load(); i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	return firstErr
}
