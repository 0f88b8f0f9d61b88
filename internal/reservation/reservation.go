// Package reservation implements the reservation lifecycle: a reservation is
// created PENDING with its seats already occupied, confirmed by a completed
// payment, and cancelled either by the customer or by hold expiration.
package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperr "github.com/Walid274gh/SkyBooking-sub001/internal/errors"
	"github.com/Walid274gh/SkyBooking-sub001/internal/locks"
	"github.com/Walid274gh/SkyBooking-sub001/internal/logger"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
	"github.com/Walid274gh/SkyBooking-sub001/internal/validation"
)

type Store interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Reservation, error)
	UpdateStatusIf(ctx context.Context, id, from, to string) (bool, error)
}

type TicketStore interface {
	CreateBatch(ctx context.Context, tickets []models.Ticket) error
	GetByID(ctx context.Context, id string) (*models.Ticket, error)
	GetByReservation(ctx context.Context, reservationID string) ([]models.Ticket, error)
}

type FlightStore interface {
	GetByID(ctx context.Context, id int64) (*models.Flight, error)
}

// Inventory is the seat inventory manager surface the lifecycle needs.
type Inventory interface {
	AssignSeats(ctx context.Context, flightID int64, seatNumbers []string) ([]models.Seat, error)
	ReleaseSeats(ctx context.Context, flightID int64, seatNumbers []string) error
	PriceSeats(ctx context.Context, flightID int64, seatNumbers []string) (int64, []models.Seat, error)
}

type Publisher interface {
	Publish(subject string, data interface{}) error
}

type Manager struct {
	reservations Store
	tickets      TicketStore
	flights      FlightStore
	inventory    Inventory
	publisher    Publisher

	// resLocks serializes status transitions per reservation; the same
	// instance is shared with the payment and cancellation managers.
	resLocks *locks.KeyedMutex
}

func NewManager(reservations Store, tickets TicketStore, flights FlightStore, inventory Inventory, publisher Publisher, resLocks *locks.KeyedMutex) *Manager {
	return &Manager{
		reservations: reservations,
		tickets:      tickets,
		flights:      flights,
		inventory:    inventory,
		publisher:    publisher,
		resLocks:     resLocks,
	}
}

// Create validates the request, occupies the seats, and persists a PENDING
// reservation. If the reservation row cannot be written after the seats were
// occupied, the seats are released again so no seat stays occupied without a
// reservation referencing it.
func (m *Manager) Create(ctx context.Context, customerID int64, req models.CreateReservationRequest) (*models.Reservation, error) {
	if len(req.SeatNumbers) == 0 {
		return nil, apperr.Validation("at least one seat is required")
	}
	if len(req.Passengers) != len(req.SeatNumbers) {
		return nil, apperr.Validation("got %d passengers for %d seats", len(req.Passengers), len(req.SeatNumbers))
	}
	for i, p := range req.Passengers {
		if err := validation.ValidatePassenger(p); err != nil {
			return nil, apperr.Validation("passenger %d: %v", i+1, err)
		}
	}

	flight, err := m.flights.GetByID(ctx, req.FlightID)
	if err != nil {
		return nil, apperr.Backend(err, "failed to load flight %d", req.FlightID)
	}
	if flight == nil {
		return nil, &apperr.NotFoundError{Entity: "flight", ID: fmt.Sprintf("%d", req.FlightID)}
	}
	if flight.Status == models.FlightDeparted || flight.Status == models.FlightCancelled {
		return nil, apperr.Policy("flight %s is %s and cannot be booked", flight.FlightNumber, flight.Status)
	}

	seats, err := m.inventory.AssignSeats(ctx, req.FlightID, req.SeatNumbers)
	if err != nil {
		return nil, err
	}

	var totalPrice int64
	for _, s := range seats {
		totalPrice += s.Price
	}

	reservation := &models.Reservation{
		ID:              uuid.New().String(),
		CustomerID:      customerID,
		FlightID:        req.FlightID,
		SeatNumbers:     req.SeatNumbers,
		Passengers:      req.Passengers,
		Status:          models.ReservationPending,
		TotalPrice:      totalPrice,
		ReservationDate: time.Now().UTC(),
	}

	if err := m.reservations.Create(ctx, reservation); err != nil {
		if relErr := m.inventory.ReleaseSeats(ctx, req.FlightID, req.SeatNumbers); relErr != nil {
			logger.WithContext(ctx).Error("Failed to release seats after reservation write failure",
				"flight_id", req.FlightID, "seats", req.SeatNumbers, "error", relErr)
		}
		return nil, apperr.Backend(err, "failed to persist reservation")
	}

	m.publish(ctx, models.EventReservationCreated, models.ReservationCreatedEvent{
		ReservationID: reservation.ID,
		CustomerID:    customerID,
		FlightID:      req.FlightID,
		SeatNumbers:   req.SeatNumbers,
		TotalPrice:    totalPrice,
		Timestamp:     time.Now().UTC(),
	})

	logger.WithContext(ctx).Info("Reservation created",
		"reservation_id", reservation.ID, "flight_id", req.FlightID,
		"seats", req.SeatNumbers, "total_price", totalPrice)

	return reservation, nil
}

// Get returns nil when the reservation does not exist.
func (m *Manager) Get(ctx context.Context, id string) (*models.Reservation, error) {
	reservation, err := m.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Backend(err, "failed to load reservation %s", id)
	}
	return reservation, nil
}

func (m *Manager) ListByCustomer(ctx context.Context, customerID int64) ([]models.Reservation, error) {
	reservations, err := m.reservations.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperr.Backend(err, "failed to list reservations for customer %d", customerID)
	}
	return reservations, nil
}

// Confirm transitions a PENDING reservation to CONFIRMED and issues one
// ticket per seat. Called by the payment manager, which already holds the
// per-reservation lock, so Confirm must not take it again; the conditional
// status update makes a double confirmation impossible regardless.
func (m *Manager) Confirm(ctx context.Context, reservationID, paymentID string) ([]models.Ticket, error) {
	reservation, err := m.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, apperr.Backend(err, "failed to load reservation %s", reservationID)
	}
	if reservation == nil {
		return nil, &apperr.NotFoundError{Entity: "reservation", ID: reservationID}
	}

	ok, err := m.reservations.UpdateStatusIf(ctx, reservationID, models.ReservationPending, models.ReservationConfirmed)
	if err != nil {
		return nil, apperr.Backend(err, "failed to confirm reservation %s", reservationID)
	}
	if !ok {
		return nil, apperr.Conflict("reservation %s is %s, not PENDING", reservationID, reservation.Status)
	}

	flight, err := m.flights.GetByID(ctx, reservation.FlightID)
	if err != nil {
		return nil, apperr.Backend(err, "failed to load flight %d", reservation.FlightID)
	}
	if flight == nil {
		return nil, apperr.Fatal(nil, "reservation %s references missing flight %d", reservationID, reservation.FlightID)
	}

	_, seats, err := m.inventory.PriceSeats(ctx, reservation.FlightID, reservation.SeatNumbers)
	if err != nil {
		return nil, err
	}
	priceBySeat := make(map[string]int64, len(seats))
	for _, s := range seats {
		priceBySeat[s.SeatNumber] = s.Price
	}

	now := time.Now().UTC()
	tickets := make([]models.Ticket, 0, len(reservation.SeatNumbers))
	for i, seatNumber := range reservation.SeatNumbers {
		passengerName := ""
		if i < len(reservation.Passengers) {
			passengerName = reservation.Passengers[i].Name
		}
		tickets = append(tickets, models.Ticket{
			ID:            uuid.New().String(),
			ReservationID: reservationID,
			SeatNumber:    seatNumber,
			PassengerName: passengerName,
			FlightNumber:  flight.FlightNumber,
			Origin:        flight.Origin,
			Destination:   flight.Destination,
			DepartureTime: flight.DepartureTime,
			Price:         priceBySeat[seatNumber],
			IssuedAt:      now,
		})
	}

	if err := m.tickets.CreateBatch(ctx, tickets); err != nil {
		return nil, apperr.Backend(err, "failed to issue tickets for reservation %s", reservationID)
	}

	ticketIDs := make([]string, len(tickets))
	for i, t := range tickets {
		ticketIDs[i] = t.ID
	}
	m.publish(ctx, models.EventReservationConfirmed, models.ReservationConfirmedEvent{
		ReservationID: reservationID,
		PaymentID:     paymentID,
		TicketIDs:     ticketIDs,
		Timestamp:     now,
	})

	logger.WithContext(ctx).Info("Reservation confirmed",
		"reservation_id", reservationID, "payment_id", paymentID, "tickets", len(tickets))

	return tickets, nil
}

// ExpireHold cancels a PENDING reservation whose hold TTL elapsed without a
// payment, releasing its seats. Safe to call repeatedly for the same
// reservation; only the call that wins the status transition has effect.
func (m *Manager) ExpireHold(ctx context.Context, reservationID string) error {
	unlock := m.resLocks.Lock("reservation:" + reservationID)
	defer unlock()

	reservation, err := m.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return apperr.Backend(err, "failed to load reservation %s", reservationID)
	}
	if reservation == nil || reservation.Status != models.ReservationPending {
		return nil
	}

	ok, err := m.reservations.UpdateStatusIf(ctx, reservationID, models.ReservationPending, models.ReservationCancelled)
	if err != nil {
		return apperr.Backend(err, "failed to expire reservation %s", reservationID)
	}
	if !ok {
		return nil
	}

	if err := m.inventory.ReleaseSeats(ctx, reservation.FlightID, reservation.SeatNumbers); err != nil {
		logger.WithContext(ctx).Error("Failed to release seats of expired reservation",
			"reservation_id", reservationID, "error", err)
		return err
	}

	m.publish(ctx, models.EventReservationExpired, models.ReservationExpiredEvent{
		ReservationID: reservationID,
		FlightID:      reservation.FlightID,
		Timestamp:     time.Now().UTC(),
	})

	logger.WithContext(ctx).Info("Reservation hold expired",
		"reservation_id", reservationID, "flight_id", reservation.FlightID)
	return nil
}

func (m *Manager) GetTickets(ctx context.Context, reservationID string) ([]models.Ticket, error) {
	tickets, err := m.tickets.GetByReservation(ctx, reservationID)
	if err != nil {
		return nil, apperr.Backend(err, "failed to list tickets for reservation %s", reservationID)
	}
	return tickets, nil
}

// GetTicket returns nil when the ticket does not exist.
func (m *Manager) GetTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	ticket, err := m.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperr.Backend(err, "failed to load ticket %s", ticketID)
	}
	return ticket, nil
}

// GetReservationByTicket resolves the reservation a ticket belongs to; both
// lookups return nil on absence.
func (m *Manager) GetReservationByTicket(ctx context.Context, ticketID string) (*models.Reservation, error) {
	ticket, err := m.GetTicket(ctx, ticketID)
	if err != nil || ticket == nil {
		return nil, err
	}
	return m.Get(ctx, ticket.ReservationID)
}

// publish is best effort: reservation state is already durable and the event
// stream is a downstream notification, not part of the transaction.
func (m *Manager) publish(ctx context.Context, subject string, event interface{}) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.Publish(subject, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event", "subject", subject, "error", err)
	}
}
