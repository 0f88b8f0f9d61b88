// Package executor bounds every manager call crossing the gateway boundary
// with a per-operation-class time budget. On expiry the operation context is
// cancelled (best-effort; the underlying work may not stop immediately) and a
// timeout error is returned without waiting further. The executor never
// retries: the caller decides, because a blind retry of e.g. a timed-out
// cancellation could double-refund.
package executor

import (
	"context"
	"time"

	apperr "github.com/Walid274gh/SkyBooking-sub001/internal/errors"
	"github.com/Walid274gh/SkyBooking-sub001/internal/logger"
	"github.com/Walid274gh/SkyBooking-sub001/internal/metrics"
)

// Class selects the time budget for an operation.
type Class string

const (
	ClassSearch       Class = "search"
	ClassReservation  Class = "reservation"
	ClassPayment      Class = "payment"
	ClassCancellation Class = "cancellation"
	ClassSeats        Class = "seats"
	ClassDefault      Class = "default"
)

// Budgets holds the per-class timeouts.
type Budgets struct {
	Search       time.Duration
	Reservation  time.Duration
	Payment      time.Duration
	Cancellation time.Duration
	Seats        time.Duration
	Default      time.Duration
}

// DefaultBudgets mirrors the gateway's fixed operation budgets.
func DefaultBudgets() Budgets {
	return Budgets{
		Search:       15 * time.Second,
		Reservation:  20 * time.Second,
		Payment:      15 * time.Second,
		Cancellation: 20 * time.Second,
		Seats:        15 * time.Second,
		Default:      10 * time.Second,
	}
}

func (b Budgets) For(class Class) time.Duration {
	var d time.Duration
	switch class {
	case ClassSearch:
		d = b.Search
	case ClassReservation:
		d = b.Reservation
	case ClassPayment:
		d = b.Payment
	case ClassCancellation:
		d = b.Cancellation
	case ClassSeats:
		d = b.Seats
	}
	if d <= 0 {
		d = b.Default
	}
	if d <= 0 {
		d = 10 * time.Second
	}
	return d
}

type result[T any] struct {
	value T
	err   error
}

// Execute runs fn with the class budget applied to its context. It returns
// fn's result or error unchanged, or a TimeoutError once the budget elapses.
func Execute[T any](ctx context.Context, budgets Budgets, class Class, label string, fn func(ctx context.Context) (T, error)) (T, error) {
	budget := budgets.For(class)

	opCtx, cancel := context.WithTimeout(ctx, budget)

	done := make(chan result[T], 1)
	go func() {
		value, err := fn(opCtx)
		done <- result[T]{value: value, err: err}
	}()

	select {
	case r := <-done:
		cancel()
		return r.value, r.err
	case <-opCtx.Done():
		// Signals the in-flight operation; it may not stop immediately.
		cancel()
		var zero T
		if ctx.Err() != nil {
			// Caller went away; propagate its cancellation.
			return zero, ctx.Err()
		}
		metrics.CallTimeouts.WithLabelValues(string(class)).Inc()
		logger.WithContext(ctx).Warn("Bounded call exceeded budget",
			"label", label, "class", string(class), "budget", budget.String())
		return zero, &apperr.TimeoutError{Label: label, Budget: budget}
	}
}
