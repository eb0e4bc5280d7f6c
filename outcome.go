package ocrflow

import "time"

// ErrorKind classifies how a task failed. Kinds are mutually exclusive; a
// successful outcome carries KindNone.
type ErrorKind int

const (
	// KindNone marks a successful outcome.
	KindNone ErrorKind = iota

	// KindMemoryLimit: admission refused because memory was over the soft
	// threshold. The task was never attempted.
	KindMemoryLimit

	// KindResourceLimit: admission refused because the pool was saturated
	// or the manager is shutting down.
	KindResourceLimit

	// KindTimeout: the hard deadline elapsed before the task finished
	// (including time spent waiting for admission).
	KindTimeout

	// KindExecutionError: the capability returned an error or panicked.
	KindExecutionError

	// KindNoEngine: no recognition provider passed its availability probe.
	KindNoEngine

	// KindAllEnginesFailed: every available provider was tried and failed.
	KindAllEnginesFailed

	// KindBatchError: batch coordination failed before the task could
	// produce its own outcome.
	KindBatchError
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindMemoryLimit:
		return "memory_limit"
	case KindResourceLimit:
		return "resource_limit"
	case KindTimeout:
		return "timeout"
	case KindExecutionError:
		return "execution_error"
	case KindNoEngine:
		return "no_engine"
	case KindAllEnginesFailed:
		return "all_engines_failed"
	case KindBatchError:
		return "batch_error"
	default:
		return "unknown"
	}
}

// Outcome is the structured, always-present result of attempting a task.
// Exactly one Outcome is produced per submitted task; outcomes are value
// objects and never mutated after creation.
type Outcome struct {
	// Success is true when the capability completed normally.
	Success bool

	// Data is the capability's return value on success.
	Data any

	// ErrorKind classifies the failure; KindNone on success.
	ErrorKind ErrorKind

	// ErrorMessage describes the failure for diagnostics.
	ErrorMessage string

	// EngineUsed names the recognition provider that produced the result,
	// when the task ran through a fallback chain.
	EngineUsed string

	// FallbackUsed is true when EngineUsed was not the first provider
	// tried.
	FallbackUsed bool

	// OriginalEngine names the first provider tried when FallbackUsed is
	// set.
	OriginalEngine string

	// Duration is the wall-clock time from submission to outcome.
	Duration time.Duration
}

// SuccessCount counts successful outcomes in a batch result. Derived from
// the slice itself, not from global stats, so concurrent non-batch work does
// not skew it.
func SuccessCount(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

// FailureCount counts failed outcomes in a batch result.
func FailureCount(outcomes []Outcome) int {
	return len(outcomes) - SuccessCount(outcomes)
}
