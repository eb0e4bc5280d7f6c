// Package testutil provides scriptable test doubles for recognition
// engines.
package testutil

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ChinaCraig/DocManage-sub000/engine"
)

// FakeEngine implements engine.Engine and engine.HealthChecker with
// scriptable behavior. Safe for concurrent use.
type FakeEngine struct {
	// EngineName is returned by Name. Defaults to "fake".
	EngineName string

	// Text and Confidence populate successful results.
	Text       string
	Confidence float64

	// Err, when set, makes every Recognize call fail.
	Err error

	// HealthErr, when set, makes the health probe fail.
	HealthErr error

	// Delay stalls Recognize; the sleep observes ctx.
	Delay time.Duration

	// PanicMsg, when non-empty, makes Recognize panic.
	PanicMsg string

	// Calls counts Recognize invocations, HealthCalls health probes.
	Calls       atomic.Int32
	HealthCalls atomic.Int32
}

var _ engine.Engine = (*FakeEngine)(nil)
var _ engine.HealthChecker = (*FakeEngine)(nil)

// Name implements engine.Engine.
func (f *FakeEngine) Name() string {
	if f.EngineName == "" {
		return "fake"
	}
	return f.EngineName
}

// CheckHealth implements engine.HealthChecker.
func (f *FakeEngine) CheckHealth(context.Context) error {
	f.HealthCalls.Add(1)
	return f.HealthErr
}

// Recognize implements engine.Engine.
func (f *FakeEngine) Recognize(ctx context.Context, in engine.Input) (engine.Result, error) {
	f.Calls.Add(1)

	if f.PanicMsg != "" {
		panic(f.PanicMsg)
	}

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return engine.Result{}, ctx.Err()
		}
	}

	if f.Err != nil {
		return engine.Result{}, f.Err
	}

	return engine.Result{
		Text:       f.Text,
		Confidence: f.Confidence,
		Metadata:   map[string]string{"input": in.ID},
	}, nil
}
