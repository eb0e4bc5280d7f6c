// Package resource implements admission control and memory governance for
// recognition task execution.
//
// Two cooperating pieces live here:
//
//   - Gate: a weighted-semaphore admission gate bounding the number of
//     concurrently executing tasks, with a memory soft-limit check that
//     rejects new admissions before a slot is consumed.
//   - Monitor: a background sampling loop that watches process memory,
//     forces a reclamation pass when the configured ceiling is exceeded,
//     and derives CPU utilization from rusage deltas.
//
// # Admission
//
//	gate := resource.NewGate(resource.GateConfig{
//	    MaxConcurrent: 4,
//	    MaxMemoryMB:   512,
//	})
//
//	permit, err := gate.Acquire(ctx) // blocking
//	if err != nil {
//	    // resource.ErrMemorySoftLimit, resource.ErrGateClosed, or ctx error
//	}
//	defer permit.Release()
//
// Release is idempotent, so guaranteed-release paths (defer on every exit,
// including panic and timeout paths) can never double-release a slot.
//
// # Thread Safety
//
// All Gate and Monitor methods are safe for concurrent use.
package resource
