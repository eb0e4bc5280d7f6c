package resource

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

var (
	// ErrMemorySoftLimit is returned when process memory is already above
	// the soft threshold and new work should not be admitted.
	ErrMemorySoftLimit = errors.New("memory soft limit exceeded")

	// ErrSaturated is returned by TryAcquire when all slots are busy.
	ErrSaturated = errors.New("all execution slots busy")

	// ErrGateClosed is returned when the gate has been closed.
	ErrGateClosed = errors.New("admission gate closed")
)

// softLimitFraction is the share of MaxMemoryMB above which new admissions
// are rejected without consuming a slot.
const softLimitFraction = 0.8

// GateConfig holds admission limits.
type GateConfig struct {
	// MaxConcurrent is the number of simultaneously held permits.
	// If <= 0, defaults to 1.
	MaxConcurrent int64

	// MaxMemoryMB is the memory ceiling used for the soft-limit check.
	// If 0, the memory check is disabled.
	MaxMemoryMB int64

	// MemoryMB reports current process memory in MB. If nil, a live
	// sample is taken on demand.
	MemoryMB func() float64
}

// Gate is the single coordination point for task admission. It bounds the
// number of in-flight tasks with a weighted semaphore and refuses admission
// outright when process memory is already above the soft threshold.
type Gate struct {
	sem    *semaphore.Weighted
	max    int64
	active atomic.Int64

	softLimitMB float64
	memoryMB    func() float64

	closed    atomic.Bool
	closeCh   chan struct{}
	closeOnce sync.Once
}

// NewGate creates an admission gate.
func NewGate(cfg GateConfig) *Gate {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}

	memoryMB := cfg.MemoryMB
	if memoryMB == nil {
		memoryMB = func() float64 {
			s, err := ReadSample()
			if err != nil {
				return 0
			}
			return s.RSSMB()
		}
	}

	return &Gate{
		sem:         semaphore.NewWeighted(cfg.MaxConcurrent),
		max:         cfg.MaxConcurrent,
		softLimitMB: float64(cfg.MaxMemoryMB) * softLimitFraction,
		memoryMB:    memoryMB,
		closeCh:     make(chan struct{}),
	}
}

// Permit represents one held execution slot. Release must be called when the
// work holding the slot finishes; it is safe to call more than once.
type Permit struct {
	gate     *Gate
	released atomic.Bool
}

// Release returns the slot to the gate. Only the first call has effect.
func (p *Permit) Release() {
	if p == nil || !p.released.CompareAndSwap(false, true) {
		return
	}
	p.gate.active.Add(-1)
	p.gate.sem.Release(1)
}

// TryAcquire attempts to take a slot without blocking.
//
// Returns ErrMemorySoftLimit when memory is over the soft threshold (no slot
// is consumed), ErrSaturated when all slots are busy, ErrGateClosed after
// Close.
func (g *Gate) TryAcquire() (*Permit, error) {
	if g.closed.Load() {
		return nil, ErrGateClosed
	}
	if err := g.checkMemory(); err != nil {
		return nil, err
	}
	if !g.sem.TryAcquire(1) {
		return nil, ErrSaturated
	}
	g.active.Add(1)
	return &Permit{gate: g}, nil
}

// Acquire blocks until a slot is free, ctx is done, or the gate is closed.
// The same memory soft-limit check as TryAcquire runs before blocking.
func (g *Gate) Acquire(ctx context.Context) (*Permit, error) {
	if g.closed.Load() {
		return nil, ErrGateClosed
	}
	if err := g.checkMemory(); err != nil {
		return nil, err
	}

	acqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Unblock waiters when the gate closes underneath them.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-g.closeCh:
			cancel()
		case <-done:
		}
	}()

	if err := g.sem.Acquire(acqCtx, 1); err != nil {
		if g.closed.Load() {
			return nil, ErrGateClosed
		}
		return nil, ctx.Err()
	}
	if g.closed.Load() {
		g.sem.Release(1)
		return nil, ErrGateClosed
	}
	g.active.Add(1)
	return &Permit{gate: g}, nil
}

// Active returns the number of currently held permits.
func (g *Gate) Active() int64 {
	return g.active.Load()
}

// Max returns the configured slot count.
func (g *Gate) Max() int64 {
	return g.max
}

// Close stops all future admissions. Permits already held stay valid and
// must still be released. Close is idempotent.
func (g *Gate) Close() {
	g.closeOnce.Do(func() {
		g.closed.Store(true)
		close(g.closeCh)
	})
}

func (g *Gate) checkMemory() error {
	if g.softLimitMB <= 0 {
		return nil
	}
	if g.memoryMB() > g.softLimitMB {
		return ErrMemorySoftLimit
	}
	return nil
}
