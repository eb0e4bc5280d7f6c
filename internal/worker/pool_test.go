package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ExecutesWork(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	var count atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		err := p.Submit(context.Background(), func() {
			defer wg.Done()
			count.Add(1)
		})
		require.NoError(t, err)
	}
	wg.Wait()

	assert.Equal(t, int32(20), count.Load())
}

func TestPool_DefaultSize(t *testing.T) {
	p := NewPool(0)
	defer p.Close()
	assert.Greater(t, p.Size(), 0)
}

func TestPool_SubmitAfterClose(t *testing.T) {
	p := NewPool(1)
	p.Close()

	err := p.Submit(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPool_CloseIdempotent(t *testing.T) {
	p := NewPool(1)
	p.Close()
	p.Close()
}

func TestPool_CloseDrainsQueuedWork(t *testing.T) {
	p := NewPool(1)

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(context.Background(), func() {
			defer wg.Done()
			count.Add(1)
		}))
	}

	p.Close()
	wg.Wait()
	assert.Equal(t, int32(3), count.Load())
}
