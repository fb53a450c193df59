package worker

import (
	"context"
	"sort"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunsAllJobs(t *testing.T) {
	pool := NewPool[int](context.Background(), 4)
	pool.Start()

	for i := 0; i < 50; i++ {
		n := i
		pool.Submit(func(ctx context.Context) int {
			return n * 2
		})
	}

	results := pool.Wait()

	if len(results) != 50 {
		t.Fatalf("Expected 50 results, got %d", len(results))
	}

	sort.Ints(results)
	for i, r := range results {
		if r != i*2 {
			t.Errorf("Expected %d at position %d, got %d", i*2, i, r)
		}
	}
}

func TestPool_ZeroWorkersFallsBackToOne(t *testing.T) {
	pool := NewPool[string](context.Background(), 0)
	pool.Start()

	pool.Submit(func(ctx context.Context) string { return "ok" })

	results := pool.Wait()
	if len(results) != 1 || results[0] != "ok" {
		t.Errorf("Expected single 'ok' result, got %v", results)
	}
}

// A stage can easily queue hundreds of files before collecting, so
// the pool must accept a job count far beyond its internal buffers
// without the submitter and the workers stalling each other.
func TestPool_ManyJobsExceedQueueCapacity(t *testing.T) {
	const jobs = 500

	pool := NewPool[int](context.Background(), 2)
	pool.Start()

	done := make(chan []int, 1)
	go func() {
		for i := 0; i < jobs; i++ {
			n := i
			pool.Submit(func(ctx context.Context) int {
				return n
			})
		}
		done <- pool.Wait()
	}()

	select {
	case results := <-done:
		if len(results) != jobs {
			t.Fatalf("Expected %d results, got %d", jobs, len(results))
		}
		sort.Ints(results)
		for i, r := range results {
			if r != i {
				t.Fatalf("Expected result %d at position %d, got %d", i, i, r)
			}
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Pool stalled: submit/collect did not finish")
	}
}

func TestPool_ShutdownStopsWork(t *testing.T) {
	pool := NewPool[int](context.Background(), 2)
	pool.Start()

	started := make(chan struct{}, 100)
	var executed int64
	go func() {
		for i := 0; i < 100; i++ {
			pool.Submit(func(ctx context.Context) int {
				atomic.AddInt64(&executed, 1)
				started <- struct{}{}
				time.Sleep(20 * time.Millisecond)
				return 0
			})
		}
	}()

	<-started // at least one job is running
	pool.Shutdown()

	if n := atomic.LoadInt64(&executed); n >= 100 {
		t.Errorf("Expected shutdown to stop outstanding work, but %d jobs ran", n)
	}
}

func TestPool_CancelledContextPreservesCollectedResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool[int](ctx, 1)
	pool.Start()

	pool.Submit(func(ctx context.Context) int { return 1 })
	cancel()

	// Wait must return without hanging; anything collected stays valid.
	results := pool.Wait()
	for _, r := range results {
		if r != 1 {
			t.Errorf("Expected collected result 1, got %d", r)
		}
	}
}

func TestLimiter_AllowRespectsBurst(t *testing.T) {
	limiter := NewLimiter(1, 2)

	if !limiter.Allow("api.example.com") {
		t.Error("Expected first request to be allowed")
	}
	if !limiter.Allow("api.example.com") {
		t.Error("Expected second request within burst to be allowed")
	}
	if limiter.Allow("api.example.com") {
		t.Error("Expected third immediate request to be denied")
	}

	// Other endpoints are limited independently
	if !limiter.Allow("other.example.com") {
		t.Error("Expected separate endpoint to have its own budget")
	}
}

func TestLimiter_SetEndpointRate(t *testing.T) {
	limiter := NewLimiter(1, 1)
	limiter.SetEndpointRate("slow.example.com", 0.001, 1)

	if !limiter.Allow("slow.example.com") {
		t.Error("Expected first request to be allowed")
	}
	if limiter.Allow("slow.example.com") {
		t.Error("Expected second request to be denied at 0.001 rps")
	}
}
