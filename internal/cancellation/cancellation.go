// Package cancellation applies the refund policy and drives reservation
// cancellation and seat modification. Refund amounts are a pure function of
// the time remaining to departure; this package wires that function to the
// reservation, payment and inventory state.
package cancellation

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperr "github.com/Walid274gh/SkyBooking-sub001/internal/errors"
	"github.com/Walid274gh/SkyBooking-sub001/internal/locks"
	"github.com/Walid274gh/SkyBooking-sub001/internal/logger"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
	"github.com/Walid274gh/SkyBooking-sub001/internal/policy"
)

// ModificationWindowHours is the minimum whole hours to departure for seat
// changes.
const ModificationWindowHours = 24

type ReservationStore interface {
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	UpdateStatusIf(ctx context.Context, id, from, to string) (bool, error)
	UpdateSeats(ctx context.Context, id string, seatNumbers []string, totalPrice int64) error
}

type FlightStore interface {
	GetByID(ctx context.Context, id int64) (*models.Flight, error)
}

type RefundStore interface {
	Create(ctx context.Context, refund *models.Refund) error
	ListByReservation(ctx context.Context, reservationID string) ([]models.Refund, error)
}

type Inventory interface {
	AssignSeats(ctx context.Context, flightID int64, seatNumbers []string) ([]models.Seat, error)
	ReleaseSeats(ctx context.Context, flightID int64, seatNumbers []string) error
	PriceSeats(ctx context.Context, flightID int64, seatNumbers []string) (int64, []models.Seat, error)
}

// Payments is the payment manager surface used when a cancellation carries a
// monetary refund.
type Payments interface {
	GetActiveByReservation(ctx context.Context, reservationID string) (*models.Payment, error)
	Refund(ctx context.Context, paymentID string, amount int64) error
}

type Publisher interface {
	Publish(subject string, data interface{}) error
}

type Manager struct {
	reservations ReservationStore
	flights      FlightStore
	refunds      RefundStore
	inventory    Inventory
	payments     Payments
	publisher    Publisher
	resLocks     *locks.KeyedMutex

	now func() time.Time
}

func NewManager(reservations ReservationStore, flights FlightStore, refunds RefundStore, inventory Inventory, payments Payments, publisher Publisher, resLocks *locks.KeyedMutex) *Manager {
	return &Manager{
		reservations: reservations,
		flights:      flights,
		refunds:      refunds,
		inventory:    inventory,
		payments:     payments,
		publisher:    publisher,
		resLocks:     resLocks,
		now:          time.Now,
	}
}

// GetPolicy evaluates the refund tier for a reservation at the current time.
func (m *Manager) GetPolicy(ctx context.Context, reservationID string) (*models.CancellationPolicy, error) {
	reservation, flight, err := m.load(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	p := policy.Evaluate(flight.DepartureTime, m.now())
	if reservation.Status == models.ReservationCancelled {
		return nil, &apperr.CancellationNotAllowedError{
			ReservationID:  reservationID,
			HoursRemaining: p.HoursRemaining,
			Reason:         "reservation is already cancelled",
		}
	}
	if p.HoursRemaining < 0 || flight.Status == models.FlightDeparted {
		return nil, &apperr.CancellationNotAllowedError{
			ReservationID:  reservationID,
			HoursRemaining: p.HoursRemaining,
			Reason:         "flight has already departed",
		}
	}
	return &p, nil
}

// CalculateRefundAmount reports what a cancellation right now would refund,
// without changing any state.
func (m *Manager) CalculateRefundAmount(ctx context.Context, reservationID string) (int64, error) {
	reservation, flight, err := m.load(ctx, reservationID)
	if err != nil {
		return 0, err
	}

	pay, err := m.payments.GetActiveByReservation(ctx, reservationID)
	if err != nil {
		return 0, err
	}
	if pay == nil || pay.Status != models.PaymentCompleted {
		return 0, nil
	}

	p := policy.Evaluate(flight.DepartureTime, m.now())
	return policy.RefundAmount(reservation.TotalPrice, p), nil
}

// Cancel releases the reservation's seats, records a refund decision, and
// refunds the payment when the policy grants a non-zero amount. A refund
// record is written even for a zero amount so the denial is auditable.
func (m *Manager) Cancel(ctx context.Context, customerID int64, reservationID, reason string) (int64, error) {
	unlock := m.resLocks.Lock("reservation:" + reservationID)
	defer unlock()

	reservation, flight, err := m.load(ctx, reservationID)
	if err != nil {
		return 0, err
	}
	if reservation.CustomerID != customerID {
		return 0, &apperr.NotFoundError{Entity: "reservation", ID: reservationID}
	}
	if reservation.Status == models.ReservationCancelled {
		return 0, apperr.Conflict("reservation %s is already cancelled", reservationID)
	}

	p := policy.Evaluate(flight.DepartureTime, m.now())
	if p.HoursRemaining < 0 || flight.Status == models.FlightDeparted {
		return 0, &apperr.CancellationNotAllowedError{
			ReservationID:  reservationID,
			HoursRemaining: p.HoursRemaining,
			Reason:         "flight has already departed",
		}
	}

	refundAmount := int64(0)
	pay, err := m.payments.GetActiveByReservation(ctx, reservationID)
	if err != nil {
		return 0, err
	}
	if pay != nil && pay.Status == models.PaymentCompleted {
		refundAmount = policy.RefundAmount(reservation.TotalPrice, p)
	}

	ok, err := m.reservations.UpdateStatusIf(ctx, reservationID, reservation.Status, models.ReservationCancelled)
	if err != nil {
		return 0, apperr.Backend(err, "failed to cancel reservation %s", reservationID)
	}
	if !ok {
		return 0, apperr.Conflict("reservation %s changed state concurrently", reservationID)
	}

	if err := m.inventory.ReleaseSeats(ctx, reservation.FlightID, reservation.SeatNumbers); err != nil {
		logger.WithContext(ctx).Error("Failed to release seats of cancelled reservation",
			"reservation_id", reservationID, "error", err)
		return 0, err
	}

	refund := &models.Refund{
		ID:            uuid.New().String(),
		ReservationID: reservationID,
		Amount:        refundAmount,
		Status:        models.RefundIssued,
		Reason:        reason,
	}
	if pay != nil && pay.Status == models.PaymentCompleted {
		refund.PaymentID = pay.ID
		if refundAmount > 0 {
			if err := m.payments.Refund(ctx, pay.ID, refundAmount); err != nil {
				return 0, err
			}
		} else {
			// Inside the flat-fee window the refund nets to zero; the
			// payment is still closed out.
			if err := m.payments.Refund(ctx, pay.ID, 0); err != nil {
				return 0, err
			}
		}
	}
	if err := m.refunds.Create(ctx, refund); err != nil {
		return 0, apperr.Backend(err, "failed to record refund for reservation %s", reservationID)
	}

	m.publish(ctx, models.EventReservationCancelled, models.ReservationCancelledEvent{
		ReservationID: reservationID,
		Reason:        reason,
		RefundAmount:  refundAmount,
		Timestamp:     m.now().UTC(),
	})
	m.publish(ctx, models.EventRefundIssued, models.RefundIssuedEvent{
		RefundID:      refund.ID,
		ReservationID: reservationID,
		PaymentID:     refund.PaymentID,
		Amount:        refundAmount,
		Timestamp:     m.now().UTC(),
	})

	logger.WithContext(ctx).Info("Reservation cancelled",
		"reservation_id", reservationID, "refund_amount", refundAmount,
		"hours_remaining", p.HoursRemaining)

	return refundAmount, nil
}

// CanModify reports whether seat changes are still allowed for the
// reservation.
func (m *Manager) CanModify(ctx context.Context, reservationID string) (bool, int64, error) {
	reservation, flight, err := m.load(ctx, reservationID)
	if err != nil {
		return false, 0, err
	}

	p := policy.Evaluate(flight.DepartureTime, m.now())
	allowed := reservation.Status != models.ReservationCancelled &&
		flight.Status != models.FlightDeparted &&
		p.HoursRemaining >= ModificationWindowHours
	return allowed, p.HoursRemaining, nil
}

// ModifySeats swaps the reservation onto a new seat set. Seats the new set
// adds are acquired before anything is released, and seats the new set drops
// are released only after the change is persisted, so the reservation always
// holds at least one complete seat set.
func (m *Manager) ModifySeats(ctx context.Context, customerID int64, reservationID string, newSeats []string) (*models.Reservation, error) {
	if len(newSeats) == 0 {
		return nil, apperr.Validation("at least one seat is required")
	}

	unlock := m.resLocks.Lock("reservation:" + reservationID)
	defer unlock()

	reservation, flight, err := m.load(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.CustomerID != customerID {
		return nil, &apperr.NotFoundError{Entity: "reservation", ID: reservationID}
	}
	if reservation.Status == models.ReservationCancelled {
		return nil, apperr.Conflict("reservation %s is cancelled", reservationID)
	}
	if len(newSeats) != len(reservation.Passengers) {
		return nil, apperr.Validation("got %d seats for %d passengers", len(newSeats), len(reservation.Passengers))
	}

	p := policy.Evaluate(flight.DepartureTime, m.now())
	if flight.Status == models.FlightDeparted || p.HoursRemaining < ModificationWindowHours {
		return nil, &apperr.ModificationNotAllowedError{
			ReservationID:  reservationID,
			HoursRemaining: p.HoursRemaining,
		}
	}

	oldSeats := reservation.SeatNumbers
	additions := seatDiff(newSeats, oldSeats)
	removed := seatDiff(oldSeats, newSeats)

	if len(additions) > 0 {
		if _, err := m.inventory.AssignSeats(ctx, reservation.FlightID, additions); err != nil {
			return nil, err
		}
	}

	newTotal, _, err := m.inventory.PriceSeats(ctx, reservation.FlightID, newSeats)
	if err != nil {
		m.releaseAdditions(ctx, reservation.FlightID, additions)
		return nil, err
	}

	pay, err := m.payments.GetActiveByReservation(ctx, reservationID)
	if err != nil {
		m.releaseAdditions(ctx, reservation.FlightID, additions)
		return nil, err
	}
	if pay != nil && pay.Status == models.PaymentCompleted && newTotal != reservation.TotalPrice {
		m.releaseAdditions(ctx, reservation.FlightID, additions)
		return nil, apperr.Policy("seat change would alter the paid total from %d to %d; cancel and rebook instead",
			reservation.TotalPrice, newTotal)
	}

	if err := m.reservations.UpdateSeats(ctx, reservationID, newSeats, newTotal); err != nil {
		m.releaseAdditions(ctx, reservation.FlightID, additions)
		return nil, apperr.Backend(err, "failed to persist seat change for reservation %s", reservationID)
	}

	if len(removed) > 0 {
		if err := m.inventory.ReleaseSeats(ctx, reservation.FlightID, removed); err != nil {
			logger.WithContext(ctx).Error("Failed to release dropped seats after modification",
				"reservation_id", reservationID, "flight_id", reservation.FlightID, "seats", removed, "error", err)
		}
	}

	m.publish(ctx, models.EventSeatsModified, models.SeatsModifiedEvent{
		ReservationID: reservationID,
		OldSeats:      oldSeats,
		NewSeats:      newSeats,
		Timestamp:     m.now().UTC(),
	})

	logger.WithContext(ctx).Info("Reservation seats modified",
		"reservation_id", reservationID, "old_seats", oldSeats, "new_seats", newSeats)

	reservation.SeatNumbers = newSeats
	reservation.TotalPrice = newTotal
	return reservation, nil
}

func (m *Manager) ListRefunds(ctx context.Context, reservationID string) ([]models.Refund, error) {
	refunds, err := m.refunds.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, apperr.Backend(err, "failed to list refunds for reservation %s", reservationID)
	}
	return refunds, nil
}

func (m *Manager) load(ctx context.Context, reservationID string) (*models.Reservation, *models.Flight, error) {
	reservation, err := m.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, nil, apperr.Backend(err, "failed to load reservation %s", reservationID)
	}
	if reservation == nil {
		return nil, nil, &apperr.NotFoundError{Entity: "reservation", ID: reservationID}
	}

	flight, err := m.flights.GetByID(ctx, reservation.FlightID)
	if err != nil {
		return nil, nil, apperr.Backend(err, "failed to load flight %d", reservation.FlightID)
	}
	if flight == nil {
		return nil, nil, apperr.Fatal(nil, "reservation %s references missing flight %d", reservationID, reservation.FlightID)
	}
	return reservation, flight, nil
}

func (m *Manager) releaseAdditions(ctx context.Context, flightID int64, additions []string) {
	if len(additions) == 0 {
		return
	}
	if err := m.inventory.ReleaseSeats(ctx, flightID, additions); err != nil {
		logger.WithContext(ctx).Error("Failed to release newly acquired seats during rollback",
			"flight_id", flightID, "seats", additions, "error", err)
	}
}

// seatDiff returns the seats in a that are not in b, preserving order.
func seatDiff(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := inB[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

func (m *Manager) publish(ctx context.Context, subject string, event interface{}) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.Publish(subject, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event", "subject", subject, "error", err)
	}
}
