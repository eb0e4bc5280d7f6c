package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChinaCraig/DocManage-sub000/engine"
	"github.com/ChinaCraig/DocManage-sub000/testutil"
)

// bareEngine has no health checker and must be treated as always available.
type bareEngine struct{}

func (bareEngine) Name() string { return "bare" }

func (bareEngine) Recognize(context.Context, engine.Input) (engine.Result, error) {
	return engine.Result{Text: "bare"}, nil
}

func newChain(t *testing.T, descriptors ...engine.Descriptor) *engine.FallbackChain {
	t.Helper()
	chain, err := engine.NewFallbackChain(descriptors)
	require.NoError(t, err)
	return chain
}

func TestNewFallbackChain_Validation(t *testing.T) {
	_, err := engine.NewFallbackChain(nil)
	assert.Error(t, err)

	_, err = engine.NewFallbackChain([]engine.Descriptor{{Engine: nil}})
	assert.Error(t, err)
}

func TestFallbackChain_PriorityOrder(t *testing.T) {
	a := &testutil.FakeEngine{EngineName: "a"}
	b := &testutil.FakeEngine{EngineName: "b"}
	c := &testutil.FakeEngine{EngineName: "c"}

	chain := newChain(t,
		engine.Descriptor{Engine: c, Priority: 30},
		engine.Descriptor{Engine: a, Priority: 10},
		engine.Descriptor{Engine: b, Priority: 20},
	)

	assert.Equal(t, []string{"a", "b", "c"}, chain.Engines())
}

func TestFallbackChain_PrimarySuccess(t *testing.T) {
	primary := &testutil.FakeEngine{EngineName: "primary", Text: "hello"}
	secondary := &testutil.FakeEngine{EngineName: "secondary"}

	chain := newChain(t,
		engine.Descriptor{Engine: primary, Priority: 1},
		engine.Descriptor{Engine: secondary, Priority: 2},
	)

	res, err := chain.Recognize(context.Background(), engine.Input{ID: "in-1"})
	require.NoError(t, err)

	assert.Equal(t, "hello", res.Text)
	assert.Equal(t, "primary", res.Engine)
	assert.False(t, res.Fallback)
	assert.Empty(t, res.OriginalEngine)
	assert.Equal(t, int32(0), secondary.Calls.Load(), "secondary must not be tried")
}

func TestFallbackChain_FallsBackOnFailure(t *testing.T) {
	primary := &testutil.FakeEngine{EngineName: "primary", Err: errors.New("model load failed")}
	secondary := &testutil.FakeEngine{EngineName: "secondary", Text: "recovered"}

	chain := newChain(t,
		engine.Descriptor{Engine: primary, Priority: 1},
		engine.Descriptor{Engine: secondary, Priority: 2},
	)

	res, err := chain.Recognize(context.Background(), engine.Input{ID: "in-1"})
	require.NoError(t, err)

	assert.Equal(t, "recovered", res.Text)
	assert.Equal(t, "secondary", res.Engine)
	assert.True(t, res.Fallback)
	assert.Equal(t, "primary", res.OriginalEngine)
	assert.Equal(t, int32(1), primary.Calls.Load(), "failed provider is never retried")
}

func TestFallbackChain_AllEnginesFailed(t *testing.T) {
	a := &testutil.FakeEngine{EngineName: "a", Err: errors.New("a broke")}
	b := &testutil.FakeEngine{EngineName: "b", Err: errors.New("b broke")}

	chain := newChain(t,
		engine.Descriptor{Engine: a, Priority: 1},
		engine.Descriptor{Engine: b, Priority: 2},
	)

	_, err := chain.Recognize(context.Background(), engine.Input{})
	require.Error(t, err)

	var allFailed *engine.AllEnginesFailedError
	require.ErrorAs(t, err, &allFailed)
	require.Len(t, allFailed.Attempts, 2)
	assert.Equal(t, "a", allFailed.Attempts[0].Engine)
	assert.Equal(t, "b", allFailed.Attempts[1].Engine)
	assert.Contains(t, err.Error(), "b broke", "message carries the last failure")
	assert.ErrorContains(t, errors.Unwrap(err), "b broke")
}

func TestFallbackChain_NoEngineAvailable(t *testing.T) {
	down := &testutil.FakeEngine{EngineName: "down", HealthErr: errors.New("not installed")}

	chain := newChain(t, engine.Descriptor{Engine: down, Priority: 1})

	assert.False(t, chain.HasAvailable(context.Background()))
	assert.Empty(t, chain.Available(context.Background()))

	_, err := chain.Recognize(context.Background(), engine.Input{})
	assert.ErrorIs(t, err, engine.ErrNoEngineAvailable)
	assert.Equal(t, int32(0), down.Calls.Load())
}

func TestFallbackChain_SkipsUnavailable(t *testing.T) {
	down := &testutil.FakeEngine{EngineName: "down", HealthErr: errors.New("gone")}
	up := &testutil.FakeEngine{EngineName: "up", Text: "ok"}

	chain := newChain(t,
		engine.Descriptor{Engine: down, Priority: 1},
		engine.Descriptor{Engine: up, Priority: 2},
	)

	res, err := chain.Recognize(context.Background(), engine.Input{})
	require.NoError(t, err)

	// The unavailable provider was filtered out before invocation, so the
	// usable one counts as primary, not as a fallback.
	assert.Equal(t, "up", res.Engine)
	assert.False(t, res.Fallback)
	assert.Equal(t, int32(0), down.Calls.Load())
}

func TestFallbackChain_HealthProbeCached(t *testing.T) {
	e := &testutil.FakeEngine{EngineName: "cached"}

	chain := newChain(t, engine.Descriptor{Engine: e, Priority: 1, HealthTTL: time.Hour})

	for i := 0; i < 5; i++ {
		require.True(t, chain.HasAvailable(context.Background()))
	}
	assert.Equal(t, int32(1), e.HealthCalls.Load(), "probe result must be cached within the TTL")

	chain.Invalidate()
	require.True(t, chain.HasAvailable(context.Background()))
	assert.Equal(t, int32(2), e.HealthCalls.Load())
}

func TestFallbackChain_NoHealthCheckerAlwaysAvailable(t *testing.T) {
	chain := newChain(t, engine.Descriptor{Engine: &bareEngine{}, Priority: 1})
	assert.True(t, chain.HasAvailable(context.Background()))
}

func TestFallbackChain_PanicBecomesFailure(t *testing.T) {
	angry := &testutil.FakeEngine{EngineName: "angry", PanicMsg: "segfault adjacent"}
	calm := &testutil.FakeEngine{EngineName: "calm", Text: "fine"}

	chain := newChain(t,
		engine.Descriptor{Engine: angry, Priority: 1},
		engine.Descriptor{Engine: calm, Priority: 2},
	)

	res, err := chain.Recognize(context.Background(), engine.Input{})
	require.NoError(t, err)
	assert.Equal(t, "calm", res.Engine)
	assert.True(t, res.Fallback)
}

func TestFallbackChain_ContextCancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	first := &testutil.FakeEngine{EngineName: "first", Err: errors.New("broke")}
	second := &testutil.FakeEngine{EngineName: "second", Text: "never"}

	chain := newChain(t,
		engine.Descriptor{Engine: first, Priority: 1},
		engine.Descriptor{Engine: second, Priority: 2},
	)

	cancel()
	_, err := chain.Recognize(ctx, engine.Input{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), second.Calls.Load())
}
