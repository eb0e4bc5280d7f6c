// Package worker provides the fixed goroutine pool that executes submitted
// recognition work. Pool size is independent of the admission limit: the
// admission gate bounds how many tasks may run, the pool bounds how many
// goroutines carry them.
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("worker pool closed")

// Pool manages a fixed set of goroutines for parallel task execution.
type Pool struct {
	size     int
	workCh   chan func()
	stopCh   chan struct{}
	wg       sync.WaitGroup
	closed   atomic.Bool
	submitMu sync.RWMutex
}

// NewPool creates a pool with size goroutines. If size <= 0, GOMAXPROCS is
// used.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		size:   size,
		workCh: make(chan func(), size*2),
		stopCh: make(chan struct{}),
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}

	return p
}

// Size returns the number of pool goroutines.
func (p *Pool) Size() int {
	return p.size
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			// Drain queued work before exiting so nothing submitted
			// before Close is silently dropped.
			for {
				select {
				case fn, ok := <-p.workCh:
					if !ok {
						return
					}
					fn()
				default:
					return
				}
			}
		case fn, ok := <-p.workCh:
			if !ok {
				return
			}
			fn()
		}
	}
}

// Submit enqueues fn for execution and returns once it is queued. Returns
// ErrPoolClosed after Close, or the context error if ctx is done before the
// work can be queued.
func (p *Pool) Submit(ctx context.Context, fn func()) error {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.closed.Load() {
		return ErrPoolClosed
	}

	select {
	case p.workCh <- fn:
		return nil
	case <-p.stopCh:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts the pool down and waits for workers to finish queued work.
// Idempotent.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}

	p.submitMu.Lock()
	close(p.stopCh)
	close(p.workCh)
	p.submitMu.Unlock()

	p.wg.Wait()
}
