package repository

import (
	"context"
	"database/sql"

	"github.com/Walid274gh/SkyBooking-sub001/internal/database"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
)

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// CreateBatch inserts all tickets for a confirmed reservation atomically.
func (r *TicketRepository) CreateBatch(ctx context.Context, tickets []models.Ticket) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tickets (id, reservation_id, seat_number, passenger_name, flight_number, origin, destination, departure_time, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, ticket := range tickets {
		_, err := tx.ExecContext(ctx, query,
			ticket.ID,
			ticket.ReservationID,
			ticket.SeatNumber,
			ticket.PassengerName,
			ticket.FlightNumber,
			ticket.Origin,
			ticket.Destination,
			ticket.DepartureTime,
			ticket.Price,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *TicketRepository) GetByID(ctx context.Context, id string) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	query := `
		SELECT id, reservation_id, seat_number, passenger_name, flight_number, origin, destination, departure_time, price, issued_at
		FROM tickets
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.ReservationID,
		&ticket.SeatNumber,
		&ticket.PassengerName,
		&ticket.FlightNumber,
		&ticket.Origin,
		&ticket.Destination,
		&ticket.DepartureTime,
		&ticket.Price,
		&ticket.IssuedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return ticket, err
}

func (r *TicketRepository) GetByReservation(ctx context.Context, reservationID string) ([]models.Ticket, error) {
	query := `
		SELECT id, reservation_id, seat_number, passenger_name, flight_number, origin, destination, departure_time, price, issued_at
		FROM tickets
		WHERE reservation_id = $1
		ORDER BY seat_number`

	rows, err := r.db.QueryContext(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		var ticket models.Ticket
		err := rows.Scan(
			&ticket.ID,
			&ticket.ReservationID,
			&ticket.SeatNumber,
			&ticket.PassengerName,
			&ticket.FlightNumber,
			&ticket.Origin,
			&ticket.Destination,
			&ticket.DepartureTime,
			&ticket.Price,
			&ticket.IssuedAt,
		)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	return tickets, rows.Err()
}
