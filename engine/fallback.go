package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"
)

// Descriptor declares one provider in a fallback chain.
type Descriptor struct {
	// Engine is the provider implementation.
	Engine Engine

	// Priority orders candidates; lower values are tried first.
	Priority int

	// HealthTTL overrides DefaultHealthTTL for this provider's cached
	// availability probe.
	HealthTTL time.Duration
}

type chainEntry struct {
	engine   Engine
	priority int
	health   *healthCache
}

// FallbackChain selects among interchangeable providers and recovers from a
// provider-level failure by moving to the next candidate. The descriptor set
// is fixed at construction and safe for concurrent use.
type FallbackChain struct {
	entries []*chainEntry
	logger  *slog.Logger
}

// ChainOption configures a FallbackChain.
type ChainOption func(*FallbackChain)

// WithChainLogger sets the logger for fallback events.
func WithChainLogger(logger *slog.Logger) ChainOption {
	return func(c *FallbackChain) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewFallbackChain builds a chain from descriptors, ordered by ascending
// priority. At least one descriptor with a non-nil Engine is required.
func NewFallbackChain(descriptors []Descriptor, opts ...ChainOption) (*FallbackChain, error) {
	c := &FallbackChain{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, d := range descriptors {
		if d.Engine == nil {
			return nil, errors.New("fallback chain: nil engine in descriptor")
		}
		c.entries = append(c.entries, &chainEntry{
			engine:   d.Engine,
			priority: d.Priority,
			health:   newHealthCache(d.Engine, d.HealthTTL),
		})
	}
	if len(c.entries) == 0 {
		return nil, errors.New("fallback chain: no engines configured")
	}

	sort.SliceStable(c.entries, func(i, j int) bool {
		return c.entries[i].priority < c.entries[j].priority
	})

	return c, nil
}

// Engines returns provider names in preference order.
func (c *FallbackChain) Engines() []string {
	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.engine.Name())
	}
	return names
}

// Available returns the names of providers currently passing their health
// probe, in preference order.
func (c *FallbackChain) Available(ctx context.Context) []string {
	var names []string
	for _, e := range c.entries {
		if e.health.available(ctx) {
			names = append(names, e.engine.Name())
		}
	}
	return names
}

// HasAvailable reports whether at least one provider is currently usable.
// Callers use this to avoid committing an execution slot to a doomed
// attempt.
func (c *FallbackChain) HasAvailable(ctx context.Context) bool {
	for _, e := range c.entries {
		if e.health.available(ctx) {
			return true
		}
	}
	return false
}

// Invalidate drops every cached health probe so the next availability check
// re-probes all providers.
func (c *FallbackChain) Invalidate() {
	for _, e := range c.entries {
		e.health.invalidate()
	}
}

// Recognize invokes the available providers strictly in preference order and
// returns the first success, tagged with the provider that produced it. Each
// provider is tried at most once per invocation.
//
// Returns ErrNoEngineAvailable when no provider passes its health probe, the
// context error if ctx ends between attempts, or *AllEnginesFailedError when
// every candidate failed.
func (c *FallbackChain) Recognize(ctx context.Context, in Input) (Result, error) {
	var candidates []*chainEntry
	for _, e := range c.entries {
		if e.health.available(ctx) {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return Result{}, ErrNoEngineAvailable
	}

	var attempts []Attempt
	for i, e := range candidates {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		res, err := recognizeSafe(ctx, e.engine, in)
		if err != nil {
			c.logger.Warn("recognition engine failed",
				"engine", e.engine.Name(),
				"input", in.ID,
				"error", err,
			)
			attempts = append(attempts, Attempt{Engine: e.engine.Name(), Err: err})
			continue
		}

		res.Engine = e.engine.Name()
		if i > 0 {
			res.Fallback = true
			res.OriginalEngine = candidates[0].engine.Name()
			c.logger.Info("recognition succeeded after fallback",
				"engine", res.Engine,
				"original_engine", res.OriginalEngine,
				"input", in.ID,
			)
		}
		return res, nil
	}

	return Result{}, &AllEnginesFailedError{Attempts: attempts}
}

// recognizeSafe converts a provider panic into an error so one misbehaving
// provider cannot take down the whole chain.
func recognizeSafe(ctx context.Context, e Engine, in Input) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine %s panicked: %v", e.Name(), r)
		}
	}()
	return e.Recognize(ctx, in)
}
