package thredder

import (
	"context"
	"runtime"
	"sync"

	"github.com/turtl/core/pkg/metrics"
	"github.com/turtl/core/pkg/terror"
)

type result struct {
	payload Payload
	err     error
}

// Future resolves once its worker's result has been delivered through the
// completion sink and observed on the main loop.
type Future struct {
	ch chan result
}

// Wait blocks until the future resolves.
func (f *Future) Wait() (Payload, error) {
	r := <-f.ch
	return r.payload, r.err
}

type job struct {
	fn     func() (Payload, error)
	future *Future
}

// Pool runs submitted closures on a fixed set of worker goroutines and
// delivers each result to complete, which the caller wires to the main
// loop's Push.
type Pool struct {
	jobs     chan job
	complete func(func())

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New starts a Pool with the given number of workers (runtime.NumCPU() if
// workers <= 0). complete is called once per finished job with a thunk that
// must run on the main loop to deliver the result.
func New(workers int, complete func(func())) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:     make(chan job, workers*4),
		complete: complete,
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		metrics.CryptoPoolQueueDepth.Dec()
		timer := metrics.NewTimer()
		payload, err := j.fn()
		timer.ObserveDurationVec(metrics.CryptoOpDuration, "run")
		fut := j.future
		p.complete(func() {
			fut.ch <- result{payload: payload, err: err}
		})
	}
}

// Run submits fn to the pool and returns a Future for its result. If the
// pool has been shut down, the future resolves immediately with
// terror.Generic("oneshot canceled").
func (p *Pool) Run(ctx context.Context, fn func() (Payload, error)) *Future {
	fut := &Future{ch: make(chan result, 1)}

	select {
	case <-p.ctx.Done():
		p.complete(func() { fut.ch <- result{err: terror.Generic("oneshot canceled")} })
		return fut
	default:
	}

	select {
	case p.jobs <- job{fn: fn, future: fut}:
		metrics.CryptoPoolQueueDepth.Inc()
	case <-ctx.Done():
		fut.ch <- result{err: terror.Wrap(ctx.Err())}
	case <-p.ctx.Done():
		fut.ch <- result{err: terror.Generic("oneshot canceled")}
	}
	return fut
}

// Shutdown stops accepting new work and waits for in-flight jobs to drain.
func (p *Pool) Shutdown() {
	p.cancel()
	close(p.jobs)
	p.wg.Wait()
}
