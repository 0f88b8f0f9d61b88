package repository

import (
	"context"
	"database/sql"

	"github.com/Walid274gh/SkyBooking-sub001/internal/database"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
)

type FlightRepository struct {
	db *database.DB
}

func NewFlightRepository(db *database.DB) *FlightRepository {
	return &FlightRepository{db: db}
}

func (r *FlightRepository) Create(ctx context.Context, flight *models.Flight) error {
	query := `
		INSERT INTO flights (flight_number, origin, destination, departure_time, arrival_time, total_seats, available_seats, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		flight.FlightNumber,
		flight.Origin,
		flight.Destination,
		flight.DepartureTime,
		flight.ArrivalTime,
		flight.TotalSeats,
		flight.AvailableSeats,
		flight.Status,
	).Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
}

func (r *FlightRepository) GetByID(ctx context.Context, id int64) (*models.Flight, error) {
	flight := &models.Flight{}
	query := `
		SELECT id, flight_number, origin, destination, departure_time, arrival_time,
		       total_seats, available_seats, status, created_at, updated_at
		FROM flights
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&flight.ID,
		&flight.FlightNumber,
		&flight.Origin,
		&flight.Destination,
		&flight.DepartureTime,
		&flight.ArrivalTime,
		&flight.TotalSeats,
		&flight.AvailableSeats,
		&flight.Status,
		&flight.CreatedAt,
		&flight.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return flight, err
}

func (r *FlightRepository) List(ctx context.Context, page, pageSize int) ([]models.Flight, error) {
	query := `
		SELECT id, flight_number, origin, destination, departure_time, arrival_time,
		       total_seats, available_seats, status, created_at, updated_at
		FROM flights
		ORDER BY departure_time
		LIMIT $1 OFFSET $2`

	offset := 0
	if page > 1 {
		offset = (page - 1) * pageSize
	}

	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flights []models.Flight
	for rows.Next() {
		var flight models.Flight
		err := rows.Scan(
			&flight.ID,
			&flight.FlightNumber,
			&flight.Origin,
			&flight.Destination,
			&flight.DepartureTime,
			&flight.ArrivalTime,
			&flight.TotalSeats,
			&flight.AvailableSeats,
			&flight.Status,
			&flight.CreatedAt,
			&flight.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		flights = append(flights, flight)
	}

	return flights, rows.Err()
}

// ListAll streams the whole catalogue, used by the search reindexer.
func (r *FlightRepository) ListAll(ctx context.Context) ([]models.Flight, error) {
	query := `
		SELECT id, flight_number, origin, destination, departure_time, arrival_time,
		       total_seats, available_seats, status, created_at, updated_at
		FROM flights
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flights []models.Flight
	for rows.Next() {
		var flight models.Flight
		err := rows.Scan(
			&flight.ID,
			&flight.FlightNumber,
			&flight.Origin,
			&flight.Destination,
			&flight.DepartureTime,
			&flight.ArrivalTime,
			&flight.TotalSeats,
			&flight.AvailableSeats,
			&flight.Status,
			&flight.CreatedAt,
			&flight.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		flights = append(flights, flight)
	}

	return flights, rows.Err()
}

func (r *FlightRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE flights SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}
