package ocrflow

import "context"

// CapabilityFunc is one unit of recognition work. The context carries the
// task's hard deadline; well-behaved capabilities observe it so abandoned
// work stops consuming resources promptly.
type CapabilityFunc func(ctx context.Context) (any, error)

// Task describes work submitted for execution. The caller owns the task
// until submission; the manager borrows it for the duration of execution.
type Task struct {
	// Name is a human-readable label used only for diagnostics.
	Name string

	// Run is the capability to execute.
	Run CapabilityFunc
}

func (t Task) label() string {
	if t.Name != "" {
		return t.Name
	}
	return "unnamed"
}
