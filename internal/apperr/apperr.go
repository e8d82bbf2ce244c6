// Package apperr defines the typed failure modes shared by the collection
// managers and the HTTP layer. Every manager operation returns one of these
// instead of raising an unrecoverable fault.
package apperr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"jobtrail-backend/internal/model"
)

// ErrNotAuthenticated is returned when an operation runs without a current
// identity. It fails fast, before any network or database I/O.
var ErrNotAuthenticated = errors.New("not authenticated")

// ValidationError reports malformed input caught before any remote call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError reports a proposed status change that the
// transition table does not permit. No write is attempted.
type InvalidTransitionError struct {
	From model.JobStatus
	To   model.JobStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// NotFoundError reports a record that does not exist or is not owned by the
// caller. The two cases are deliberately indistinguishable.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// RemoteError wraps a store or network failure. Always recoverable from the
// caller's point of view.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
}

func (e *RemoteError) Unwrap() error { return e.Err }

// PartialFailureError reports a multi-step operation whose primary step
// succeeded while a secondary, non-critical step failed. The primary entity
// stands; the failure is logged and surfaced as a warning, never as a
// blocking error.
type PartialFailureError struct {
	Op  string
	Err error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s partially failed: %s", e.Op, e.Err.Error())
}

func (e *PartialFailureError) Unwrap() error { return e.Err }

// BusyError reports that the same logical operation is already in flight for
// the record. The second invocation is dropped, not queued.
type BusyError struct {
	JobID uuid.UUID
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("a status change for job %s is already in flight", e.JobID)
}

// IsValidation reports whether err is a malformed-input failure. Transition
// rejections are a separate category; use IsInvalidTransition for those.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInvalidTransition reports whether err is a rejected status transition.
func IsInvalidTransition(err error) bool {
	var te *InvalidTransitionError
	return errors.As(err, &te)
}

// IsNotFound reports whether err is a missing-record failure.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsPartialFailure reports whether err is a tolerated partial failure.
func IsPartialFailure(err error) bool {
	var pf *PartialFailureError
	return errors.As(err, &pf)
}

// IsBusy reports whether err is an in-flight guard rejection.
func IsBusy(err error) bool {
	var be *BusyError
	return errors.As(err, &be)
}
