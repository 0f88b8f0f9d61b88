package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Walid274gh/SkyBooking-sub001/internal/database"
	apperr "github.com/Walid274gh/SkyBooking-sub001/internal/errors"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
)

type SeatRepository struct {
	db *database.DB
}

func NewSeatRepository(db *database.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

// CreateSeatsForFlight generates the seat map for a new flight. The first
// two rows are business class.
func (r *SeatRepository) CreateSeatsForFlight(ctx context.Context, flightID int64, rows, seatsPerRow int, economyPrice, businessPrice int64) error {
	if seatsPerRow > 6 {
		seatsPerRow = 6
	}
	letters := "ABCDEF"[:seatsPerRow]

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for row := 1; row <= rows; row++ {
		class := models.ClassEconomy
		price := economyPrice
		if row <= 2 {
			class = models.ClassBusiness
			price = businessPrice
		}
		for _, letter := range letters {
			seatNumber := fmt.Sprintf("%d%c", row, letter)

			query := `
				INSERT INTO seats (flight_id, seat_number, class, status, price)
				VALUES ($1, $2, $3, 'AVAILABLE', $4)`

			if _, err := tx.ExecContext(ctx, query, flightID, seatNumber, class, price); err != nil {
				return err
			}
		}
	}

	total := rows * seatsPerRow
	updateQuery := `UPDATE flights SET total_seats = $1, available_seats = $1, updated_at = NOW() WHERE id = $2`
	if _, err := tx.ExecContext(ctx, updateQuery, total, flightID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *SeatRepository) ListByFlight(ctx context.Context, flightID int64, status *string) ([]models.Seat, error) {
	var seats []models.Seat
	args := []interface{}{flightID}

	query := `
		SELECT id, flight_id, seat_number, class, status, price, created_at, updated_at
		FROM seats
		WHERE flight_id = $1`

	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}

	query += ` ORDER BY LENGTH(seat_number), seat_number`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var seat models.Seat
		err := rows.Scan(
			&seat.ID,
			&seat.FlightID,
			&seat.SeatNumber,
			&seat.Class,
			&seat.Status,
			&seat.Price,
			&seat.CreatedAt,
			&seat.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}

	return seats, rows.Err()
}

func (r *SeatRepository) GetSeats(ctx context.Context, flightID int64, seatNumbers []string) ([]models.Seat, error) {
	query := `
		SELECT id, flight_id, seat_number, class, status, price, created_at, updated_at
		FROM seats
		WHERE flight_id = $1 AND seat_number = ANY($2)
		ORDER BY LENGTH(seat_number), seat_number`

	rows, err := r.db.QueryContext(ctx, query, flightID, pq.Array(seatNumbers))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []models.Seat
	for rows.Next() {
		var seat models.Seat
		err := rows.Scan(
			&seat.ID,
			&seat.FlightID,
			&seat.SeatNumber,
			&seat.Class,
			&seat.Status,
			&seat.Price,
			&seat.CreatedAt,
			&seat.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}

	return seats, rows.Err()
}

// AssignSeats transitions every requested seat AVAILABLE -> OCCUPIED in one
// transaction. Seat status is re-checked under row locks immediately before
// mutation, so a seat that "appeared available" to the caller but was claimed
// concurrently fails the whole assignment and nothing is occupied.
func (r *SeatRepository) AssignSeats(ctx context.Context, flightID int64, seatNumbers []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	checkQuery := `
		SELECT seat_number, status
		FROM seats
		WHERE flight_id = $1 AND seat_number = ANY($2)
		FOR UPDATE`

	rows, err := tx.QueryContext(ctx, checkQuery, flightID, pq.Array(seatNumbers))
	if err != nil {
		return err
	}

	statuses := make(map[string]string, len(seatNumbers))
	for rows.Next() {
		var number, status string
		if err := rows.Scan(&number, &status); err != nil {
			rows.Close()
			return err
		}
		statuses[number] = status
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	var unavailable []string
	for _, number := range seatNumbers {
		if statuses[number] != models.SeatAvailable {
			unavailable = append(unavailable, number)
		}
	}
	if len(unavailable) > 0 {
		return &apperr.SeatUnavailableError{FlightID: flightID, SeatNumbers: unavailable}
	}

	updateQuery := `
		UPDATE seats SET status = 'OCCUPIED', updated_at = NOW()
		WHERE flight_id = $1 AND seat_number = ANY($2)`
	if _, err := tx.ExecContext(ctx, updateQuery, flightID, pq.Array(seatNumbers)); err != nil {
		return err
	}

	if err := reconcileAvailableSeats(ctx, tx, flightID); err != nil {
		return err
	}

	return tx.Commit()
}

// ReleaseSeats transitions OCCUPIED -> AVAILABLE. Releasing a seat that is
// already AVAILABLE is a no-op, so the operation is idempotent.
func (r *SeatRepository) ReleaseSeats(ctx context.Context, flightID int64, seatNumbers []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE seats SET status = 'AVAILABLE', updated_at = NOW()
		WHERE flight_id = $1 AND seat_number = ANY($2) AND status = 'OCCUPIED'`
	if _, err := tx.ExecContext(ctx, updateQuery, flightID, pq.Array(seatNumbers)); err != nil {
		return err
	}

	if err := reconcileAvailableSeats(ctx, tx, flightID); err != nil {
		return err
	}

	return tx.Commit()
}

// reconcileAvailableSeats recomputes the cached counter on the flight row
// inside the same transaction as the seat-state change.
func reconcileAvailableSeats(ctx context.Context, tx *sql.Tx, flightID int64) error {
	query := `
		UPDATE flights
		SET available_seats = (SELECT COUNT(*) FROM seats WHERE flight_id = $1 AND status = 'AVAILABLE'),
		    updated_at = NOW()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, query, flightID)
	return err
}
