package models

import "time"

// NATS event subjects
const (
	EventReservationCreated   = "reservation.created"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationExpired   = "reservation.expired"
	EventSeatsModified        = "reservation.seats_modified"
	EventPaymentCompleted     = "payment.completed"
	EventPaymentFailed        = "payment.failed"
	EventRefundIssued         = "refund.issued"
)

// ReservationCreatedEvent is published when a reservation enters PENDING
type ReservationCreatedEvent struct {
	ReservationID string    `json:"reservation_id"`
	CustomerID    int64     `json:"customer_id"`
	FlightID      int64     `json:"flight_id"`
	SeatNumbers   []string  `json:"seat_numbers"`
	TotalPrice    int64     `json:"total_price"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReservationConfirmedEvent is published after payment completion
type ReservationConfirmedEvent struct {
	ReservationID string    `json:"reservation_id"`
	PaymentID     string    `json:"payment_id"`
	TicketIDs     []string  `json:"ticket_ids"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReservationCancelledEvent is published on successful cancellation
type ReservationCancelledEvent struct {
	ReservationID string    `json:"reservation_id"`
	Reason        string    `json:"reason"`
	RefundAmount  int64     `json:"refund_amount"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReservationExpiredEvent is published when the hold TTL elapses on a
// PENDING reservation
type ReservationExpiredEvent struct {
	ReservationID string    `json:"reservation_id"`
	FlightID      int64     `json:"flight_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// SeatsModifiedEvent is published after a successful seat modification
type SeatsModifiedEvent struct {
	ReservationID string    `json:"reservation_id"`
	OldSeats      []string  `json:"old_seats"`
	NewSeats      []string  `json:"new_seats"`
	Timestamp     time.Time `json:"timestamp"`
}

// PaymentCompletedEvent is published when a payment reaches COMPLETED
type PaymentCompletedEvent struct {
	PaymentID     string    `json:"payment_id"`
	ReservationID string    `json:"reservation_id"`
	Amount        int64     `json:"amount"`
	Method        string    `json:"method"`
	Timestamp     time.Time `json:"timestamp"`
}

// PaymentFailedEvent is published when the processor rejects a payment
type PaymentFailedEvent struct {
	ReservationID string    `json:"reservation_id"`
	Amount        int64     `json:"amount"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}

// RefundIssuedEvent is published whenever a refund record is created
type RefundIssuedEvent struct {
	RefundID      string    `json:"refund_id"`
	ReservationID string    `json:"reservation_id"`
	PaymentID     string    `json:"payment_id,omitempty"`
	Amount        int64     `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
}
