package worker

import (
	"sync/atomic"
	"testing"
	"time"
)

// noopProcessFunc returns a basic process function that does nothing.
func noopProcessFunc() ProcessFunc {
	return func(item WorkItem) ProcessResult {
		return ProcessResult{Index: item.Index}
	}
}

// countingProcessFunc returns a process function that increments a counter.
func countingProcessFunc(counter *int32) ProcessFunc {
	return func(item WorkItem) ProcessResult {
		atomic.AddInt32(counter, 1)
		return ProcessResult{Index: item.Index, GameInfo: item.Index}
	}
}

// collectResults drains the result channel and returns the count.
func collectResults(pool *Pool) int {
	count := 0
	for range pool.Results() {
		count++
	}
	return count
}

// TestPoolBasic tests basic worker pool functionality.
func TestPoolBasic(t *testing.T) {
	var processed int32
	pool := NewPool(4, 10, countingProcessFunc(&processed))
	pool.Start()

	const numItems = 10
	for i := 0; i < numItems; i++ {
		pool.Submit(WorkItem{Index: i})
	}

	go pool.Close()

	resultCount := collectResults(pool)
	if resultCount != numItems {
		t.Errorf("results = %d; want %d", resultCount, numItems)
	}
	if got := atomic.LoadInt32(&processed); got != numItems {
		t.Errorf("processed = %d; want %d", got, numItems)
	}
}

// TestPoolSingleWorker tests pool with single worker.
func TestPoolSingleWorker(t *testing.T) {
	pool := NewPool(1, 5, noopProcessFunc())
	pool.Start()

	const numItems = 5
	for i := 0; i < numItems; i++ {
		pool.Submit(WorkItem{Index: i})
	}

	go pool.Close()

	if got := collectResults(pool); got != numItems {
		t.Errorf("results = %d; want %d", got, numItems)
	}
}

// TestPoolEarlyStop tests early termination with Stop().
func TestPoolEarlyStop(t *testing.T) {
	var processedCount int32

	slowProcessFunc := func(item WorkItem) ProcessResult {
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&processedCount, 1)
		return ProcessResult{Index: item.Index}
	}

	pool := NewPool(2, 100, slowProcessFunc)
	pool.Start()

	const numItems = 50
	for i := 0; i < numItems; i++ {
		pool.Submit(WorkItem{Index: i})
	}

	time.Sleep(30 * time.Millisecond)
	pool.Stop()

	go pool.Close()
	collectResults(pool)

	if got := atomic.LoadInt32(&processedCount); got >= numItems {
		t.Errorf("processed = %d; want fewer than %d after early Stop", got, numItems)
	}
}

// TestPool_PreservesInputOrderByIndex mirrors cmd/annotate's file-parsing
// fan-out: results race in over concurrent workers, but every result
// still names the index of the input it came from, so the consumer can
// place it back into the original slice position regardless of finishing
// order.
func TestPool_PreservesInputOrderByIndex(t *testing.T) {
	const numItems = 64

	// Reverse-proportional sleep so later-submitted items tend to finish
	// first, actively working against accidental in-order delivery.
	processFunc := func(item WorkItem) ProcessResult {
		time.Sleep(time.Duration(numItems-item.Index) * time.Microsecond)
		return ProcessResult{Index: item.Index, GameInfo: item.Index * 10}
	}

	pool := NewPool(8, numItems, processFunc)
	pool.Start()

	go func() {
		for i := 0; i < numItems; i++ {
			pool.Submit(WorkItem{Index: i})
		}
		pool.Close()
	}()

	slots := make([]int, numItems)
	seen := make([]bool, numItems)
	for result := range pool.Results() {
		slots[result.Index] = result.GameInfo.(int)
		seen[result.Index] = true
	}

	for i := 0; i < numItems; i++ {
		if !seen[i] {
			t.Fatalf("index %d never produced a result", i)
		}
		if slots[i] != i*10 {
			t.Errorf("slots[%d] = %d, want %d", i, slots[i], i*10)
		}
	}
}

// TestNewPoolWithOptions tests the functional-options constructor.
func TestNewPoolWithOptions(t *testing.T) {
	pool := NewPoolWithOptions(noopProcessFunc(), WithWorkers(3), WithBufferSize(20))
	if pool.NumWorkers() != 3 {
		t.Errorf("NumWorkers() = %d; want 3", pool.NumWorkers())
	}
}
