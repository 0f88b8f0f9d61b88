// Package inventory owns per-flight seat state. Seats are mutated only
// through this manager; every transition keeps the flight's cached
// available-seat count in sync with the seat rows.
package inventory

import (
	"context"
	"errors"
	"fmt"

	apperr "github.com/Walid274gh/SkyBooking-sub001/internal/errors"
	"github.com/Walid274gh/SkyBooking-sub001/internal/locks"
	"github.com/Walid274gh/SkyBooking-sub001/internal/logger"
	"github.com/Walid274gh/SkyBooking-sub001/internal/metrics"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
)

// SeatStore is the persistence contract the manager needs. AssignSeats must
// be atomic: either every seat transitions AVAILABLE -> OCCUPIED or none do,
// with status re-checked under the store's own locking immediately before
// mutation.
type SeatStore interface {
	AssignSeats(ctx context.Context, flightID int64, seatNumbers []string) error
	ReleaseSeats(ctx context.Context, flightID int64, seatNumbers []string) error
	ListByFlight(ctx context.Context, flightID int64, status *string) ([]models.Seat, error)
	GetSeats(ctx context.Context, flightID int64, seatNumbers []string) ([]models.Seat, error)
}

type Manager struct {
	seats       SeatStore
	flightLocks *locks.KeyedMutex
}

func NewManager(seats SeatStore) *Manager {
	return &Manager{
		seats:       seats,
		flightLocks: locks.NewKeyedMutex(),
	}
}

func flightKey(flightID int64) string {
	return fmt.Sprintf("flight:%d", flightID)
}

// AssignSeats occupies every requested seat or none. Assignment for a flight
// is serialized, so two concurrent requests overlapping on a seat cannot
// both succeed; unrelated flights proceed concurrently.
func (m *Manager) AssignSeats(ctx context.Context, flightID int64, seatNumbers []string) ([]models.Seat, error) {
	if len(seatNumbers) == 0 {
		return nil, apperr.Validation("at least one seat number is required")
	}
	seen := make(map[string]struct{}, len(seatNumbers))
	for _, number := range seatNumbers {
		if number == "" {
			return nil, apperr.Validation("seat number must not be empty")
		}
		if _, dup := seen[number]; dup {
			return nil, apperr.Validation("duplicate seat number %q in request", number)
		}
		seen[number] = struct{}{}
	}

	unlock := m.flightLocks.Lock(flightKey(flightID))
	defer unlock()

	if err := m.seats.AssignSeats(ctx, flightID, seatNumbers); err != nil {
		var unavailable *apperr.SeatUnavailableError
		if errors.As(err, &unavailable) {
			metrics.SeatConflicts.Inc()
			logger.WithContext(ctx).Info("Seat assignment conflict",
				"flight_id", flightID, "seats", unavailable.SeatNumbers)
			return nil, err
		}
		return nil, apperr.Backend(err, "failed to assign seats on flight %d", flightID)
	}

	seats, err := m.seats.GetSeats(ctx, flightID, seatNumbers)
	if err != nil {
		return nil, apperr.Backend(err, "failed to read assigned seats on flight %d", flightID)
	}

	return seats, nil
}

// ReleaseSeats returns seats to AVAILABLE. Releasing seats that are already
// available is a no-op, so compensating releases can be retried safely.
func (m *Manager) ReleaseSeats(ctx context.Context, flightID int64, seatNumbers []string) error {
	if len(seatNumbers) == 0 {
		return nil
	}

	unlock := m.flightLocks.Lock(flightKey(flightID))
	defer unlock()

	if err := m.seats.ReleaseSeats(ctx, flightID, seatNumbers); err != nil {
		return apperr.Backend(err, "failed to release seats on flight %d", flightID)
	}
	return nil
}

// ListAvailable is a snapshot read with no side effect, ordered by seat
// number.
func (m *Manager) ListAvailable(ctx context.Context, flightID int64) ([]models.Seat, error) {
	status := models.SeatAvailable
	seats, err := m.seats.ListByFlight(ctx, flightID, &status)
	if err != nil {
		return nil, apperr.Backend(err, "failed to list available seats on flight %d", flightID)
	}
	return seats, nil
}

// PriceSeats totals the price of the given seats after checking that every
// requested seat exists on the flight.
func (m *Manager) PriceSeats(ctx context.Context, flightID int64, seatNumbers []string) (int64, []models.Seat, error) {
	seats, err := m.seats.GetSeats(ctx, flightID, seatNumbers)
	if err != nil {
		return 0, nil, apperr.Backend(err, "failed to read seats on flight %d", flightID)
	}
	if len(seats) != len(seatNumbers) {
		found := make(map[string]struct{}, len(seats))
		for _, s := range seats {
			found[s.SeatNumber] = struct{}{}
		}
		var missing []string
		for _, number := range seatNumbers {
			if _, ok := found[number]; !ok {
				missing = append(missing, number)
			}
		}
		return 0, nil, apperr.Validation("seats %v do not exist on flight %d", missing, flightID)
	}

	var total int64
	for _, s := range seats {
		total += s.Price
	}
	return total, seats, nil
}
