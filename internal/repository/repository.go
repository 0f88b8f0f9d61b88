package repository

import (
	"github.com/Walid274gh/SkyBooking-sub001/internal/database"
	"github.com/Walid274gh/SkyBooking-sub001/internal/search"
)

type Repositories struct {
	Customers    *CustomerRepository
	Flights      *FlightRepository
	FlightSearch *FlightSearchRepository
	Seats        *SeatRepository
	Reservations *ReservationRepository
	Tickets      *TicketRepository
	Payments     *PaymentRepository
	Refunds      *RefundRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Customers:    NewCustomerRepository(db),
		Flights:      NewFlightRepository(db),
		Seats:        NewSeatRepository(db),
		Reservations: NewReservationRepository(db),
		Tickets:      NewTicketRepository(db),
		Payments:     NewPaymentRepository(db),
		Refunds:      NewRefundRepository(db),
	}
}

func NewRepositoriesWithElasticsearch(db *database.DB, es *search.ElasticsearchClient) *Repositories {
	repos := NewRepositories(db)
	repos.FlightSearch = NewFlightSearchRepository(es)
	return repos
}
