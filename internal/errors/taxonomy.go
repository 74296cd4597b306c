package errors

import (
	stderrors "errors"
	"fmt"
)

// InvalidStateError reports an operation that is illegal for the current
// status of a session or schedule item.
type InvalidStateError struct {
	Entity string
	ID     string
	State  string
	Op     string
}

func (e *InvalidStateError) Error() string {
	if e.State == "" {
		return fmt.Sprintf("cannot %s %s %s", e.Op, e.Entity, e.ID)
	}
	return fmt.Sprintf("cannot %s %s %s: status is %s", e.Op, e.Entity, e.ID, e.State)
}

// ConflictError reports an optimistic-concurrency version mismatch. The caller
// should reload and retry.
type ConflictError struct {
	SessionID string
	Expected  int
	Actual    int
}

func (e *ConflictError) Error() string {
	if e.Actual == 0 {
		return fmt.Sprintf("session %s was modified concurrently (expected version %d)", e.SessionID, e.Expected)
	}
	return fmt.Sprintf("session %s was modified concurrently (expected version %d, found %d)", e.SessionID, e.Expected, e.Actual)
}

// NotFoundError reports an unknown session, block or scene id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// ValidationError reports malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// SwapSide identifies which session of a cross-day swap failed.
type SwapSide string

const (
	SwapSideTarget SwapSide = "target"
	SwapSideSource SwapSide = "source"
)

// CrossDayTransactionError reports a scene swap that could not be committed.
// Nothing was written on either side.
type CrossDayTransactionError struct {
	Side      SwapSide
	SessionID string
	Err       error
}

func (e *CrossDayTransactionError) Error() string {
	return fmt.Sprintf("scene swap rolled back, %s session %s failed: %v", e.Side, e.SessionID, e.Err)
}

func (e *CrossDayTransactionError) Unwrap() error {
	return e.Err
}

func NewInvalidState(entity, id, state, op string) error {
	return &InvalidStateError{Entity: entity, ID: id, State: state, Op: op}
}

func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func NewValidation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func NewConflict(sessionID string, expected, actual int) error {
	return &ConflictError{SessionID: sessionID, Expected: expected, Actual: actual}
}

func IsInvalidState(err error) bool {
	var target *InvalidStateError
	return stderrors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return stderrors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

func IsCrossDay(err error) bool {
	var target *CrossDayTransactionError
	return stderrors.As(err, &target)
}

// Kind returns a short machine-readable name for err's category, or
// "internal" when it is not part of the taxonomy.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsCrossDay(err):
		return "cross_day_transaction"
	case IsConflict(err):
		return "conflict"
	case IsNotFound(err):
		return "not_found"
	case IsValidation(err):
		return "validation"
	case IsInvalidState(err):
		return "invalid_state"
	default:
		return "internal"
	}
}
