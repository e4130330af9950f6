// Package workerpool runs independent tasks on a fixed number of slots shared
// by every caller in the process.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/samirrijal/tourguide/internal/pkg/metrics"
)

var (
	ErrPoolClosed  = errors.New("worker pool is shut down")
	ErrWaitTimeout = errors.New("timed out waiting for batch")
)

// Pool bounds the number of tasks running at once. Tasks are grouped into
// batches so a caller can wait for its own work without waiting on others.
type Pool struct {
	name string
	size int64
	sem  *semaphore.Weighted

	// ctx is cancelled when shutdown gives up on draining.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	closed  bool
	running sync.WaitGroup
}

// New creates a pool with size slots. size below 1 is treated as 1.
func New(name string, size int) *Pool {
	if size < 1 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		name:   name,
		size:   int64(size),
		sem:    semaphore.NewWeighted(int64(size)),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (p *Pool) Name() string { return p.name }
func (p *Pool) Size() int    { return int(p.size) }

// NewBatch starts an empty batch of tasks on the pool.
func (p *Pool) NewBatch() *Batch {
	return &Batch{pool: p}
}

// Shutdown stops accepting tasks and waits for running ones to drain. If ctx
// ends first, running tasks see their context cancelled and Shutdown returns
// ctx.Err() without waiting further.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		p.running.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return fmt.Errorf("pool %s: %w", p.name, ctx.Err())
	}
}

// track registers a task with the pool unless it is closed.
func (p *Pool) track() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	p.running.Add(1)
	return true
}

// Stats summarises the tasks of a batch at the time of the call.
type Stats struct {
	Submitted int64
	Succeeded int64
	Failed    int64
}

// Pending is the number of tasks that have not finished.
func (s Stats) Pending() int64 { return s.Submitted - s.Succeeded - s.Failed }

// Batch is a group of tasks submitted to one pool. A task failing, panicking
// or never getting a slot counts as failed and does not affect its siblings.
type Batch struct {
	pool *Pool
	wg   sync.WaitGroup

	submitted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
}

// Go schedules fn and returns immediately. fn runs with a context that keeps
// the values of ctx but not its cancellation: the caller giving up does not
// stop work already submitted. Only pool shutdown cancels it.
func (b *Batch) Go(ctx context.Context, fn func(ctx context.Context) error) error {
	p := b.pool
	if !p.track() {
		return ErrPoolClosed
	}
	b.submitted.Add(1)
	b.wg.Add(1)

	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(p.ctx, cancel)

	go func() {
		defer p.running.Done()
		defer b.wg.Done()
		defer func() {
			stop()
			cancel()
		}()

		if err := p.sem.Acquire(taskCtx, 1); err != nil {
			b.failed.Add(1)
			return
		}
		inflight := metrics.PoolInflight.WithLabelValues(p.name)
		inflight.Inc()
		defer func() {
			inflight.Dec()
			p.sem.Release(1)
		}()

		if err := b.run(taskCtx, fn); err != nil {
			b.failed.Add(1)
			return
		}
		b.succeeded.Add(1)
	}()
	return nil
}

func (b *Batch) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("worker task panicked", "pool", b.pool.name, "panic", r)
			err = fmt.Errorf("task panic: %v", r)
		}
	}()
	return fn(ctx)
}

// Stats returns the current counters.
func (b *Batch) Stats() Stats {
	return Stats{
		Submitted: b.submitted.Load(),
		Succeeded: b.succeeded.Load(),
		Failed:    b.failed.Load(),
	}
}

// Wait blocks until every submitted task has finished, timeout elapses, or
// ctx ends. A timeout returns ErrWaitTimeout; tasks keep running either way.
// timeout <= 0 means no ceiling.
func (b *Batch) Wait(ctx context.Context, timeout time.Duration) (Stats, error) {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-done:
		return b.Stats(), nil
	case <-expired:
		metrics.PoolWaitTimeouts.WithLabelValues(b.pool.name).Inc()
		return b.Stats(), ErrWaitTimeout
	case <-ctx.Done():
		return b.Stats(), ctx.Err()
	}
}
