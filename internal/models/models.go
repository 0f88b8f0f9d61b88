package models

// Request/response payloads for the REST gateway. The gateway only reshapes
// these into manager calls; it defines no business rules of its own.

// Auth

type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	Surname   string `json:"surname" binding:"required"`
	Phone     string `json:"phone"`
}

type RegisterResponse struct {
	CustomerID int64 `json:"customer_id"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token      string `json:"token"`
	CustomerID int64  `json:"customer_id"`
}

// Flights

type CreateFlightRequest struct {
	FlightNumber  string `json:"flight_number" binding:"required"`
	Origin        string `json:"origin" binding:"required"`
	Destination   string `json:"destination" binding:"required"`
	DepartureTime string `json:"departure_time" binding:"required"`
	ArrivalTime   string `json:"arrival_time" binding:"required"`
	Rows          int    `json:"rows"`
	SeatsPerRow   int    `json:"seats_per_row"`
	EconomyPrice  int64  `json:"economy_price"`
	BusinessPrice int64  `json:"business_price"`
}

type CreateFlightResponse struct {
	ID int64 `json:"id"`
}

type SearchFlightsRequest struct {
	Origin      string `form:"origin"`
	Destination string `form:"destination"`
	Date        string `form:"date"`
	Query       string `form:"query"`
	Page        int    `form:"page"`
	PageSize    int    `form:"pageSize"`
}

// Reservations

type CreateReservationRequest struct {
	FlightID    int64       `json:"flight_id" binding:"required"`
	SeatNumbers []string    `json:"seat_numbers" binding:"required"`
	Passengers  []Passenger `json:"passengers" binding:"required"`
}

type ModifySeatsRequest struct {
	SeatNumbers []string `json:"seat_numbers" binding:"required"`
}

type CancelReservationRequest struct {
	Reason string `json:"reason"`
}

type CancelReservationResponse struct {
	ReservationID string `json:"reservation_id"`
	RefundAmount  int64  `json:"refund_amount"`
}

type CanModifyResponse struct {
	CanModify      bool  `json:"can_modify"`
	HoursRemaining int64 `json:"hours_remaining"`
}

// Payments

type ProcessPaymentRequest struct {
	ReservationID string `json:"reservation_id" binding:"required"`
	Amount        int64  `json:"amount" binding:"required"`
	Method        string `json:"method" binding:"required"`
	CardNumber    string `json:"card_number" binding:"required"`
	CardHolder    string `json:"card_holder" binding:"required"`
	CVV           string `json:"cvv" binding:"required"`
	Expiry        string `json:"expiry" binding:"required"`
}

type RefundResponse struct {
	PaymentID string `json:"payment_id"`
	RefundID  string `json:"refund_id"`
	Amount    int64  `json:"amount"`
}

// Favorites

type FavoriteRequest struct {
	FlightID int64 `json:"flight_id" binding:"required"`
}

// ErrorResponse is the uniform error envelope returned by the gateway.
type ErrorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}
