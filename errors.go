package ocrflow

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by operations on a closed Manager where an error
// return exists; submission paths surface shutdown as a KindResourceLimit
// outcome instead.
var ErrClosed = errors.New("manager closed")

// ConfigError indicates an invalid Config field passed to New.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s %s", e.Field, e.Reason)
}
