package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Walid274gh/SkyBooking-sub001/internal/database"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
)

type ReservationRepository struct {
	db *database.DB
}

func NewReservationRepository(db *database.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	passengers, err := json.Marshal(reservation.Passengers)
	if err != nil {
		return fmt.Errorf("failed to marshal passengers: %w", err)
	}

	query := `
		INSERT INTO reservations (id, customer_id, flight_id, seat_numbers, passengers, status, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING reservation_date, updated_at`

	return r.db.QueryRowContext(ctx, query,
		reservation.ID,
		reservation.CustomerID,
		reservation.FlightID,
		pq.Array(reservation.SeatNumbers),
		passengers,
		reservation.Status,
		reservation.TotalPrice,
	).Scan(&reservation.ReservationDate, &reservation.UpdatedAt)
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	reservation := &models.Reservation{}
	var passengers []byte

	query := `
		SELECT id, customer_id, flight_id, seat_numbers, passengers, status, total_price, reservation_date, updated_at
		FROM reservations
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reservation.ID,
		&reservation.CustomerID,
		&reservation.FlightID,
		pq.Array(&reservation.SeatNumbers),
		&passengers,
		&reservation.Status,
		&reservation.TotalPrice,
		&reservation.ReservationDate,
		&reservation.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(passengers, &reservation.Passengers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal passengers: %w", err)
	}

	return reservation, nil
}

func (r *ReservationRepository) ListByCustomer(ctx context.Context, customerID int64) ([]models.Reservation, error) {
	query := `
		SELECT id, customer_id, flight_id, seat_numbers, passengers, status, total_price, reservation_date, updated_at
		FROM reservations
		WHERE customer_id = $1
		ORDER BY reservation_date DESC`

	return r.queryReservations(ctx, query, customerID)
}

// ListPendingBefore returns PENDING reservations created before the cutoff,
// used by the expiration worker.
func (r *ReservationRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Reservation, error) {
	query := `
		SELECT id, customer_id, flight_id, seat_numbers, passengers, status, total_price, reservation_date, updated_at
		FROM reservations
		WHERE status = 'PENDING' AND reservation_date < $1
		ORDER BY reservation_date`

	return r.queryReservations(ctx, query, cutoff)
}

func (r *ReservationRepository) queryReservations(ctx context.Context, query string, args ...interface{}) ([]models.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		var reservation models.Reservation
		var passengers []byte
		err := rows.Scan(
			&reservation.ID,
			&reservation.CustomerID,
			&reservation.FlightID,
			pq.Array(&reservation.SeatNumbers),
			&passengers,
			&reservation.Status,
			&reservation.TotalPrice,
			&reservation.ReservationDate,
			&reservation.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(passengers, &reservation.Passengers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal passengers: %w", err)
		}
		reservations = append(reservations, reservation)
	}

	return reservations, rows.Err()
}

// UpdateStatusIf performs a conditional status transition keyed on the
// current status. It reports false when the reservation was not in the
// expected state, which callers treat as a concurrent-modification conflict.
func (r *ReservationRepository) UpdateStatusIf(ctx context.Context, id, from, to string) (bool, error) {
	query := `
		UPDATE reservations SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// UpdateSeats replaces the reservation's seat set and price after a
// successful modification.
func (r *ReservationRepository) UpdateSeats(ctx context.Context, id string, seatNumbers []string, totalPrice int64) error {
	query := `
		UPDATE reservations SET seat_numbers = $1, total_price = $2, updated_at = NOW()
		WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, pq.Array(seatNumbers), totalPrice, id)
	return err
}
