// Package ocrflow implements the bounded-concurrency execution engine that
// governs expensive recognition (OCR) work.
//
// A Manager decides whether, when, and for how long a unit of recognition
// work may run: it admits tasks through a slot-bounded gate with a memory
// soft limit, enforces a hard per-task deadline, watches process memory in
// the background, and converts every failure mode into a typed Outcome. A
// fallback chain (package engine) selects among interchangeable recognition
// providers and recovers from provider-level failures.
//
// # Quick Start
//
//	mgr, err := ocrflow.New(ocrflow.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mgr.Close()
//
//	out := mgr.RunSingle(ctx, ocrflow.Task{
//	    Name: "invoice-17",
//	    Run: func(ctx context.Context) (any, error) {
//	        return doExpensiveRecognition(ctx)
//	    },
//	})
//	if !out.Success {
//	    log.Printf("recognition failed: %s (%s)", out.ErrorMessage, out.ErrorKind)
//	}
//
// # Guarantees
//
//   - At most Config.MaxConcurrentTasks tasks execute at once.
//   - A task never runs longer than Config.SingleTaskTimeout from the
//     caller's point of view; overrunning work is cancelled and abandoned.
//   - RunSingle and RunBatch never panic and never return an error: every
//     path terminates in a typed Outcome.
//   - RunBatch returns exactly one Outcome per (possibly truncated) input,
//     in input order, and one failing item never taints its siblings.
//
// # Lifecycle
//
// Managers are explicit instances: construct one at application start, pass
// it to call sites, and Close it during teardown. Close stops the memory
// monitor, refuses new admissions immediately, and lets in-flight work run
// to completion or timeout, whichever comes first.
package ocrflow
