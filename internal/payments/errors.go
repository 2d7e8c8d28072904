package payments

import (
	"errors"
	"fmt"
)

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrPermissionDenied    = errors.New("permission denied")
)

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StateConflictError reports an action that is not allowed for the payment's
// current status.
type StateConflictError struct {
	Action Action
	Status Status
	Reason string
}

func (e *StateConflictError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s payment with status %s: %s", e.Action, e.Status, e.Reason)
	}
	return fmt.Sprintf("cannot %s payment with status %s", e.Action, e.Status)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsStateConflict(err error) bool {
	var target *StateConflictError
	return errors.As(err, &target)
}
