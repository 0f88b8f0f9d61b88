// Package errors defines the failure taxonomy shared by the booking engine.
//
// Every manager operation either succeeds, returns a well-defined negative
// result, or fails with exactly one of the kinds below. Callers branch on the
// kind (via errors.As on the concrete types, or KindOf) instead of matching
// message strings.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a failure for propagation and retry decisions.
type Kind int

const (
	// KindValidation - malformed or incomplete input, no side effect occurred.
	// The caller must fix the request and resubmit.
	KindValidation Kind = iota + 1
	// KindConflict - state changed concurrently (seat taken, reservation
	// already cancelled). The caller may retry with fresh data.
	KindConflict
	// KindPolicy - a business rule denied the operation. Not retryable
	// without waiting for conditions to change.
	KindPolicy
	// KindBackend - transient processing failure, including timeouts. Safe to
	// retry with idempotency awareness.
	KindBackend
	// KindFatal - persistence unreachable or another unrecoverable condition.
	// Surfaced as-is, no recovery attempted in this layer.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindPolicy:
		return "policy"
	case KindBackend:
		return "backend"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is the base tagged error. Concrete payload-carrying failures embed or
// wrap it so both errors.As on the specific type and KindOf work.
type Error struct {
	ErrKind Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Kind() Kind { return e.ErrKind }

// Validation creates a validation failure (no side effect occurred).
func Validation(format string, args ...any) *Error {
	return &Error{ErrKind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a concurrent-state-change failure.
func Conflict(format string, args ...any) *Error {
	return &Error{ErrKind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Policy creates a business-rule denial.
func Policy(format string, args ...any) *Error {
	return &Error{ErrKind: KindPolicy, Message: fmt.Sprintf(format, args...)}
}

// Backend wraps a transient processing failure.
func Backend(err error, format string, args ...any) *Error {
	return &Error{ErrKind: KindBackend, Message: fmt.Sprintf(format, args...), Err: err}
}

// Fatal wraps an unrecoverable failure such as an unreachable store.
func Fatal(err error, format string, args ...any) *Error {
	return &Error{ErrKind: KindFatal, Message: fmt.Sprintf(format, args...), Err: err}
}

// SeatUnavailableError reports seats that could not be assigned because they
// were not AVAILABLE at mutation time. The failed assignment left no seat
// occupied.
type SeatUnavailableError struct {
	FlightID    int64
	SeatNumbers []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats %v are not available on flight %d", e.SeatNumbers, e.FlightID)
}

func (e *SeatUnavailableError) Kind() Kind { return KindConflict }

// CancellationNotAllowedError carries the hours remaining to departure so the
// gateway can report why cancellation was denied.
type CancellationNotAllowedError struct {
	ReservationID  string
	HoursRemaining int64
	Reason         string
}

func (e *CancellationNotAllowedError) Error() string {
	return fmt.Sprintf("cancellation not allowed for reservation %s (%s, %d hours remaining)",
		e.ReservationID, e.Reason, e.HoursRemaining)
}

func (e *CancellationNotAllowedError) Kind() Kind { return KindPolicy }

// ModificationNotAllowedError is returned when the modification window has
// closed for a reservation.
type ModificationNotAllowedError struct {
	ReservationID  string
	HoursRemaining int64
}

func (e *ModificationNotAllowedError) Error() string {
	return fmt.Sprintf("modification not allowed for reservation %s (%d hours remaining)",
		e.ReservationID, e.HoursRemaining)
}

func (e *ModificationNotAllowedError) Kind() Kind { return KindPolicy }

// TimeoutError is produced only by the bounded call executor when an
// operation did not respond within its budget. The underlying work may still
// be running; the caller decides whether and how to re-query.
type TimeoutError struct {
	Label  string
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation %q did not complete within %s", e.Label, e.Budget)
}

func (e *TimeoutError) Kind() Kind { return KindBackend }

// InvalidCardError reports a syntactically invalid or expired payment
// instrument.
type InvalidCardError struct {
	Reason string
}

func (e *InvalidCardError) Error() string {
	return "invalid card: " + e.Reason
}

func (e *InvalidCardError) Kind() Kind { return KindValidation }

// InsufficientFundsError is a processor-side rejection for lack of funds.
type InsufficientFundsError struct {
	Amount int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for amount %d", e.Amount)
}

func (e *InsufficientFundsError) Kind() Kind { return KindPolicy }

// NotFoundError marks an absent entity on write paths. Read paths return nil
// instead so callers can distinguish "absent" from "backend error".
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Kind() Kind { return KindValidation }

type kinder interface {
	Kind() Kind
}

// KindOf walks the error chain and returns the first tagged kind, or
// KindBackend for untagged errors.
func KindOf(err error) Kind {
	for err != nil {
		if k, ok := err.(kinder); ok {
			return k.Kind()
		}
		err = errors.Unwrap(err)
	}
	return KindBackend
}

// IsTimeout reports whether err is a bounded-call timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
