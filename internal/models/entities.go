package models

import (
	"time"
)

// Customer represents a registered customer account
type Customer struct {
	CustomerID   int64     `json:"customer_id" db:"customer_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	Surname      string    `json:"surname" db:"surname"`
	Phone        string    `json:"phone" db:"phone"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	IsActive     bool      `json:"is_active" db:"is_active"`
}

// Flight statuses
const (
	FlightScheduled = "SCHEDULED"
	FlightDelayed   = "DELAYED"
	FlightDeparted  = "DEPARTED"
	FlightCancelled = "CANCELLED"
)

// Flight represents a scheduled flight. AvailableSeats is a cached count,
// reconciled by the seat inventory on every seat-state change; the source of
// truth is the seats table.
type Flight struct {
	ID             int64     `json:"id" db:"id"`
	FlightNumber   string    `json:"flight_number" db:"flight_number"`
	Origin         string    `json:"origin" db:"origin"`
	Destination    string    `json:"destination" db:"destination"`
	DepartureTime  time.Time `json:"departure_time" db:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time" db:"arrival_time"`
	TotalSeats     int       `json:"total_seats" db:"total_seats"`
	AvailableSeats int       `json:"available_seats" db:"available_seats"`
	Status         string    `json:"status" db:"status"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Duration returns the scheduled flight duration.
func (f *Flight) Duration() time.Duration {
	return f.ArrivalTime.Sub(f.DepartureTime)
}

// Seat statuses
const (
	SeatAvailable = "AVAILABLE"
	SeatOccupied  = "OCCUPIED"
	SeatBlocked   = "BLOCKED"
)

// Seat classes
const (
	ClassEconomy  = "ECONOMY"
	ClassBusiness = "BUSINESS"
	ClassFirst    = "FIRST"
)

// Seat belongs to exactly one flight and is mutated only through the seat
// inventory manager.
type Seat struct {
	ID         int64     `json:"id" db:"id"`
	FlightID   int64     `json:"flight_id" db:"flight_id"`
	SeatNumber string    `json:"seat_number" db:"seat_number"`
	Class      string    `json:"class" db:"class"`
	Status     string    `json:"status" db:"status"`
	Price      int64     `json:"price" db:"price"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Passenger is a value object embedded in reservations and tickets, never
// persisted on its own.
type Passenger struct {
	Name           string `json:"name"`
	PassportNumber string `json:"passport_number"`
	DateOfBirth    string `json:"date_of_birth"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
}

// Reservation statuses
const (
	ReservationPending   = "PENDING"
	ReservationConfirmed = "CONFIRMED"
	ReservationCancelled = "CANCELLED"
)

// Reservation links a customer to a set of seats on a flight. Immutable once
// CANCELLED.
type Reservation struct {
	ID              string      `json:"id" db:"id"`
	CustomerID      int64       `json:"customer_id" db:"customer_id"`
	FlightID        int64       `json:"flight_id" db:"flight_id"`
	SeatNumbers     []string    `json:"seat_numbers" db:"seat_numbers"`
	Passengers      []Passenger `json:"passengers" db:"passengers"`
	Status          string      `json:"status" db:"status"`
	TotalPrice      int64       `json:"total_price" db:"total_price"`
	ReservationDate time.Time   `json:"reservation_date" db:"reservation_date"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// Ticket is issued per (reservation, seat) pair at confirmation and never
// mutated afterwards.
type Ticket struct {
	ID            string    `json:"id" db:"id"`
	ReservationID string    `json:"reservation_id" db:"reservation_id"`
	SeatNumber    string    `json:"seat_number" db:"seat_number"`
	PassengerName string    `json:"passenger_name" db:"passenger_name"`
	FlightNumber  string    `json:"flight_number" db:"flight_number"`
	Origin        string    `json:"origin" db:"origin"`
	Destination   string    `json:"destination" db:"destination"`
	DepartureTime time.Time `json:"departure_time" db:"departure_time"`
	Price         int64     `json:"price" db:"price"`
	IssuedAt      time.Time `json:"issued_at" db:"issued_at"`
}

// Payment methods
const (
	MethodCIB      = "CIB"
	MethodEdahabia = "EDAHABIA"
)

// Payment statuses
const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"
	PaymentRefunded  = "REFUNDED"
)

// Payment records a payment attempt against a reservation. At most one
// payment per reservation may be in a non-refunded state.
type Payment struct {
	ID               string    `json:"id" db:"id"`
	ReservationID    string    `json:"reservation_id" db:"reservation_id"`
	CustomerID       int64     `json:"customer_id" db:"customer_id"`
	Amount           int64     `json:"amount" db:"amount"`
	Method           string    `json:"method" db:"method"`
	Status           string    `json:"status" db:"status"`
	MaskedInstrument string    `json:"masked_instrument" db:"masked_instrument"`
	TransactionID    string    `json:"transaction_id" db:"transaction_id"`
	BankReference    string    `json:"bank_reference" db:"bank_reference"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Refund statuses
const (
	RefundIssued  = "ISSUED"
	RefundSettled = "SETTLED"
)

// Refund is created only as a consequence of a successful cancellation or an
// explicit refund request. A zero-amount refund records the decision.
type Refund struct {
	ID            string    `json:"id" db:"id"`
	ReservationID string    `json:"reservation_id" db:"reservation_id"`
	PaymentID     string    `json:"payment_id,omitempty" db:"payment_id"`
	Amount        int64     `json:"amount" db:"amount"`
	Status        string    `json:"status" db:"status"`
	Reason        string    `json:"reason,omitempty" db:"reason"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// CancellationPolicy is computed at evaluation time from the departure
// timestamp and the current time; it is never persisted.
type CancellationPolicy struct {
	RefundPercentage int   `json:"refund_percentage"`
	HoursRemaining   int64 `json:"hours_remaining"`
	FlatFee          int64 `json:"flat_fee"`
}

// Invoice is derived from a completed payment; tax rate is fixed at 19%.
type Invoice struct {
	PaymentID     string    `json:"payment_id"`
	ReservationID string    `json:"reservation_id"`
	Subtotal      int64     `json:"subtotal"`
	Tax           int64     `json:"tax"`
	Total         int64     `json:"total"`
	IssuedAt      time.Time `json:"issued_at"`
}
