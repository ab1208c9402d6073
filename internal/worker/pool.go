// Package worker runs a batch of independent jobs with bounded
// concurrency. The doctor uses it to scan every dependency edge for
// cycles without serializing the reachability searches.
package worker

import "sync"

// Pool bounds how many jobs run at once. The zero value runs jobs
// sequentially.
type Pool struct {
	// Workers is the maximum number of concurrent jobs. Values below
	// one mean sequential execution.
	Workers int
}

// Run invokes fn for every index in [0, n). Each invocation may run on
// its own goroutine, at most Workers at a time, so fn must only touch
// shared state of its own index. Run returns after every job finished.
func (p Pool) Run(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if p.Workers <= 1 || n == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	sem := make(chan struct{}, p.Workers)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{} // Acquire worker slot.
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }() // Release worker slot.
			fn(idx)
		}(i)
	}
	wg.Wait()
}
