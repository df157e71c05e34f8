// Package apperrors defines the error kinds shared by the service layer and
// the HTTP layer. Callers match kinds with errors.Is against the sentinels.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrValidation          = errors.New("validation failed")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrAlreadyExists       = errors.New("resource already exists")
)

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Resource, e.ID)
}
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

type PermissionDeniedError struct {
	Reason string
}

func (e *PermissionDeniedError) Error() string {
	return "permission denied: " + e.Reason
}
func (e *PermissionDeniedError) Is(target error) bool { return target == ErrPermissionDenied }

func PermissionDenied(reason string) error {
	return &PermissionDeniedError{Reason: reason}
}

// InvalidTransitionError reports a lifecycle event that is not legal from the
// current status.
type InvalidTransitionError struct {
	Current string
	Event   string
	Reason  string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s request in status '%s': %s", e.Event, e.Current, e.Reason)
}
func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

func InvalidTransition(current, event, reason string) error {
	return &InvalidTransitionError{Current: current, Event: event, Reason: reason}
}

// ConcurrencyConflictError is returned when a conditional update lost a race.
// It also matches ErrInvalidTransition so callers that only care about
// legality keep working.
type ConcurrencyConflictError struct {
	Resource string
	ID       string
	Reason   string
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("%s '%s' was modified concurrently: %s", e.Resource, e.ID, e.Reason)
}
func (e *ConcurrencyConflictError) Is(target error) bool {
	return target == ErrConcurrencyConflict || target == ErrInvalidTransition
}

func ConcurrencyConflict(resource, id, reason string) error {
	return &ConcurrencyConflictError{Resource: resource, ID: id, Reason: reason}
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	msg := "validation failed"
	for i, s := range e.Errors {
		if i == 0 {
			msg += ": " + s
			continue
		}
		msg += ", " + s
	}
	return msg
}
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Validation(msgs ...string) error {
	return &ValidationError{Errors: msgs}
}

type InvalidOperationError struct {
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return "invalid operation: " + e.Reason
}
func (e *InvalidOperationError) Is(target error) bool { return target == ErrInvalidOperation }

func InvalidOperation(reason string) error {
	return &InvalidOperationError{Reason: reason}
}
