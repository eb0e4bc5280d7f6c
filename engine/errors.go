package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoEngineAvailable is returned when no provider passes its health probe.
var ErrNoEngineAvailable = errors.New("no recognition engine available")

// Attempt records one failed provider invocation inside a fallback pass.
type Attempt struct {
	Engine string
	Err    error
}

// AllEnginesFailedError indicates that every available provider was tried
// and all of them failed.
//
// The last provider's error is accessible via errors.Unwrap.
type AllEnginesFailedError struct {
	Attempts []Attempt
}

func (e *AllEnginesFailedError) Error() string {
	if len(e.Attempts) == 0 {
		return "all recognition engines failed"
	}
	names := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		names = append(names, a.Engine)
	}
	last := e.Attempts[len(e.Attempts)-1]
	return fmt.Sprintf("all recognition engines failed (%s): %v", strings.Join(names, ", "), last.Err)
}

func (e *AllEnginesFailedError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}
