package consumers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/stan.go"

	"github.com/Walid274gh/SkyBooking-sub001/internal/cache"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
	"github.com/Walid274gh/SkyBooking-sub001/internal/repository"
)

// Handlers consume domain events off NATS Streaming. Their job is keeping
// derived state fresh: the Elasticsearch flight documents and the Valkey
// flight list cache. Reservation state itself is never mutated here.
type Handlers struct {
	repos        *repository.Repositories
	valkeyClient *cache.ValkeyClient
}

func NewHandlers(repos *repository.Repositories, valkeyClient *cache.ValkeyClient) *Handlers {
	return &Handlers{
		repos:        repos,
		valkeyClient: valkeyClient,
	}
}

// refreshFlight reindexes the flight document and drops cached flight lists
// after any event that changed seat availability.
func (h *Handlers) refreshFlight(ctx context.Context, flightID int64) {
	flight, err := h.repos.Flights.GetByID(ctx, flightID)
	if err != nil || flight == nil {
		slog.Error("Failed to load flight for refresh", "flight_id", flightID, "error", err)
		return
	}

	if h.repos.FlightSearch != nil {
		if err := h.repos.FlightSearch.Index(ctx, flight); err != nil {
			slog.Error("Failed to reindex flight", "flight_id", flightID, "error", err)
		}
	}
	if h.valkeyClient != nil {
		if err := h.valkeyClient.InvalidateFlightLists(ctx); err != nil {
			slog.Error("Failed to invalidate flight list cache", "error", err)
		}
	}
}

func (h *Handlers) HandleReservationCreated(m *stan.Msg) {
	var event models.ReservationCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal reservation created event", "error", err)
		return
	}

	slog.Info("Reservation created", "reservation_id", event.ReservationID,
		"flight_id", event.FlightID, "seats", event.SeatNumbers)

	h.refreshFlight(context.Background(), event.FlightID)
	m.Ack()
}

func (h *Handlers) HandleReservationConfirmed(m *stan.Msg) {
	var event models.ReservationConfirmedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal reservation confirmed event", "error", err)
		return
	}

	slog.Info("Reservation confirmed", "reservation_id", event.ReservationID,
		"payment_id", event.PaymentID, "tickets", len(event.TicketIDs))
	m.Ack()
}

func (h *Handlers) HandleReservationCancelled(m *stan.Msg) {
	var event models.ReservationCancelledEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal reservation cancelled event", "error", err)
		return
	}

	ctx := context.Background()
	reservation, err := h.repos.Reservations.GetByID(ctx, event.ReservationID)
	if err != nil {
		slog.Error("Failed to load cancelled reservation", "reservation_id", event.ReservationID, "error", err)
		return
	}
	if reservation != nil {
		h.refreshFlight(ctx, reservation.FlightID)
	}

	slog.Info("Reservation cancelled", "reservation_id", event.ReservationID,
		"refund_amount", event.RefundAmount, "reason", event.Reason)
	m.Ack()
}

func (h *Handlers) HandleReservationExpired(m *stan.Msg) {
	var event models.ReservationExpiredEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal reservation expired event", "error", err)
		return
	}

	slog.Info("Reservation expired", "reservation_id", event.ReservationID, "flight_id", event.FlightID)
	h.refreshFlight(context.Background(), event.FlightID)
	m.Ack()
}

func (h *Handlers) HandleSeatsModified(m *stan.Msg) {
	var event models.SeatsModifiedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal seats modified event", "error", err)
		return
	}

	ctx := context.Background()
	reservation, err := h.repos.Reservations.GetByID(ctx, event.ReservationID)
	if err != nil {
		slog.Error("Failed to load modified reservation", "reservation_id", event.ReservationID, "error", err)
		return
	}
	if reservation != nil {
		h.refreshFlight(ctx, reservation.FlightID)
	}

	slog.Info("Reservation seats modified", "reservation_id", event.ReservationID,
		"old_seats", event.OldSeats, "new_seats", event.NewSeats)
	m.Ack()
}

func (h *Handlers) HandlePaymentCompleted(m *stan.Msg) {
	var event models.PaymentCompletedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment completed event", "error", err)
		return
	}

	slog.Info("Payment completed", "payment_id", event.PaymentID,
		"reservation_id", event.ReservationID, "amount", event.Amount)
	m.Ack()
}

func (h *Handlers) HandlePaymentFailed(m *stan.Msg) {
	var event models.PaymentFailedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment failed event", "error", err)
		return
	}

	slog.Warn("Payment failed", "reservation_id", event.ReservationID,
		"amount", event.Amount, "reason", event.Reason)
	m.Ack()
}

func (h *Handlers) HandleRefundIssued(m *stan.Msg) {
	var event models.RefundIssuedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal refund issued event", "error", err)
		return
	}

	slog.Info("Refund issued", "refund_id", event.RefundID,
		"reservation_id", event.ReservationID, "amount", event.Amount)
	m.Ack()
}
