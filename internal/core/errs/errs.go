// Package errs defines the error taxonomy shared by the core and its adapters.
// It has no internal dependencies so any layer can import it.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotKPIBased is returned when a kpi_based operation is applied to a custom key result.
	ErrNotKPIBased = errors.New("key result is not kpi_based")

	// ErrMalformedThresholds is returned when a KPI's threshold bands cannot be applied.
	ErrMalformedThresholds = errors.New("malformed threshold configuration")
)

// NotFoundError reports an unknown entity id passed to a resolver or repository.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NotFound builds a NotFoundError.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InvalidStateError reports an operation that the entity's current state does not allow.
type InvalidStateError struct {
	Entity string
	ID     string
	Reason string
	Err    error
}

func (e *InvalidStateError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid %s state: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("invalid %s %s state: %s", e.Entity, e.ID, e.Reason)
}

func (e *InvalidStateError) Unwrap() error { return e.Err }

// InvalidState builds an InvalidStateError wrapping cause (which may be nil).
func InvalidState(entity, id, reason string, cause error) error {
	return &InvalidStateError{Entity: entity, ID: id, Reason: reason, Err: cause}
}

// IsNotFound reports whether any error in err's chain is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInvalidState reports whether any error in err's chain is an InvalidStateError.
func IsInvalidState(err error) bool {
	var is *InvalidStateError
	return errors.As(err, &is)
}
