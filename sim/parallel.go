package sim

import "golang.org/x/sync/errgroup"

// parallelFor calls fn for every index in [0, n), splitting the range into one
// contiguous block per worker. fn must only write state owned by its index.
func (w *World) parallelFor(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := min(w.config.Workers, n)
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	block := (n + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += block {
		end := min(start+block, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				fn(i)
			}
			return nil
		})
	}
	// Closures always return nil; the group only bounds and joins the workers.
	_ = g.Wait()
}
