package worker

import (
	"context"
	"sync"
)

// Fanout calls fn once for every index in [0, n) with at most limit calls
// in flight. fn must only write to slot idx of caller-owned storage, so
// results come back in index order regardless of completion order.
//
// Fanout waits for every started call. If ctx is cancelled, indices that
// have not started are skipped and ctx.Err() is returned.
func Fanout(ctx context.Context, n, limit int, fn func(ctx context.Context, idx int)) error {
	if n <= 0 {
		return ctx.Err()
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, limit)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			// Re-check after acquiring: select picks randomly when both are ready.
			if ctx.Err() != nil {
				return
			}

			fn(ctx, idx)
		}(i)
	}

	wg.Wait()

	return ctx.Err()
}
