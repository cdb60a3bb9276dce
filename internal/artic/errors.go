package artic

import (
	"errors"
	"fmt"
)

// Domain errors for the articulation pipeline.
var (
	// ErrConfiguration indicates a misconfiguration: bad joint patterns,
	// overlapping actuator groups, or mismatched array lengths. Raised
	// synchronously at the offending call, never silently corrected.
	ErrConfiguration = errors.New("artic: invalid configuration")

	// ErrInvalidHandle indicates use of a view after its bridge handle
	// was invalidated by scene teardown.
	ErrInvalidHandle = errors.New("artic: bridge handle invalidated")

	// ErrBackend indicates a failure propagated opaquely from the
	// physics backend. Never retried at this layer.
	ErrBackend = errors.New("artic: backend failure")

	// ErrStale indicates a state read before any refresh has occurred.
	// Advisory: reads return zeroed defaults rather than failing.
	ErrStale = errors.New("artic: state read before first update")
)

// ConfigError wraps ErrConfiguration with the operation and detail that
// caused it.
type ConfigError struct {
	Op     string
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("artic: %s: %s", e.Op, e.Detail)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

func Configf(op, format string, args ...any) error {
	return &ConfigError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// BackendError carries a backend failure through unchanged.
type BackendError struct {
	Op      string
	Wrapped error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("artic: %s: %v", e.Op, e.Wrapped)
}

func (e *BackendError) Unwrap() error { return e.Wrapped }

func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}
