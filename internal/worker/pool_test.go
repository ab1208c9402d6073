package worker

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestRun_CoversEveryIndex(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int]bool)

	Pool{Workers: 4}.Run(100, func(i int) {
		mu.Lock()
		seen[i] = true
		mu.Unlock()
	})

	if len(seen) != 100 {
		t.Fatalf("expected 100 indexes, got %d", len(seen))
	}
	for i := 0; i < 100; i++ {
		if !seen[i] {
			t.Errorf("index %d never ran", i)
		}
	}
}

func TestRun_Sequential(t *testing.T) {
	// Workers <= 1 must preserve index order.
	var order []int
	Pool{}.Run(5, func(i int) {
		order = append(order, i)
	})

	if len(order) != 5 {
		t.Fatalf("expected 5 runs, got %d", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("expected sequential order, got %v", order)
		}
	}
}

func TestRun_BoundsConcurrency(t *testing.T) {
	const workers = 3
	var active, peak int32

	Pool{Workers: workers}.Run(50, func(i int) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		atomic.AddInt32(&active, -1)
	})

	if peak > workers {
		t.Errorf("observed %d concurrent jobs, limit is %d", peak, workers)
	}
}

func TestRun_ZeroJobs(t *testing.T) {
	called := false
	Pool{Workers: 2}.Run(0, func(i int) { called = true })
	if called {
		t.Error("fn ran with zero jobs")
	}
}
