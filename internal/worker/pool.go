package worker

import (
	"context"
	"sync"
)

// Pool runs jobs on a bounded number of workers and collects their
// results. Jobs are plain functions so each call site keeps its own
// result type. Workers append results to an internal collector as
// they finish, so callers may submit any number of jobs before
// calling Wait without stalling the workers. Collection order is not
// defined; callers that need a canonical ordering must sort after
// Wait.
type Pool[R any] struct {
	workers   int
	jobs      chan func(context.Context) R
	mu        sync.Mutex
	collected []R
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewPool creates a pool with the given number of workers. Zero or
// negative worker counts fall back to a single worker.
func NewPool[R any](ctx context.Context, workers int) *Pool[R] {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool[R]{
		workers: workers,
		jobs:    make(chan func(context.Context) R, workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers
func (p *Pool[R]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool[R]) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			if p.ctx.Err() != nil {
				return
			}
			p.add(job(p.ctx))
		}
	}
}

func (p *Pool[R]) add(result R) {
	p.mu.Lock()
	p.collected = append(p.collected, result)
	p.mu.Unlock()
}

// Submit queues a job. The queue is bounded, so Submit applies
// backpressure when the workers fall behind; submissions after
// cancellation are dropped.
func (p *Pool[R]) Submit(job func(context.Context) R) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Wait closes the queue, waits for the workers to drain it, and
// returns everything they produced. Results collected before a
// cancellation are still returned, complete and valid.
func (p *Pool[R]) Wait() []R {
	p.closeJobs()
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.collected
}

// Shutdown cancels outstanding work immediately
func (p *Pool[R]) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

func (p *Pool[R]) closeJobs() {
	p.closeOnce.Do(func() {
		close(p.jobs)
	})
}
