package repository

import (
	"context"
	"database/sql"

	"github.com/Walid274gh/SkyBooking-sub001/internal/database"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
)

type PaymentRepository struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (id, reservation_id, customer_id, amount, method, status, masked_instrument, transaction_id, bank_reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		payment.ID,
		payment.ReservationID,
		payment.CustomerID,
		payment.Amount,
		payment.Method,
		payment.Status,
		payment.MaskedInstrument,
		payment.TransactionID,
		payment.BankReference,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	payment := &models.Payment{}
	query := `
		SELECT id, reservation_id, customer_id, amount, method, status, masked_instrument, transaction_id, bank_reference, created_at, updated_at
		FROM payments
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&payment.ID,
		&payment.ReservationID,
		&payment.CustomerID,
		&payment.Amount,
		&payment.Method,
		&payment.Status,
		&payment.MaskedInstrument,
		&payment.TransactionID,
		&payment.BankReference,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return payment, err
}

// GetActiveByReservation returns the reservation's payment that has not been
// refunded, if any. At most one such payment exists at a time.
func (r *PaymentRepository) GetActiveByReservation(ctx context.Context, reservationID string) (*models.Payment, error) {
	payment := &models.Payment{}
	query := `
		SELECT id, reservation_id, customer_id, amount, method, status, masked_instrument, transaction_id, bank_reference, created_at, updated_at
		FROM payments
		WHERE reservation_id = $1 AND status != 'REFUNDED'
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.QueryRowContext(ctx, query, reservationID).Scan(
		&payment.ID,
		&payment.ReservationID,
		&payment.CustomerID,
		&payment.Amount,
		&payment.Method,
		&payment.Status,
		&payment.MaskedInstrument,
		&payment.TransactionID,
		&payment.BankReference,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return payment, err
}

// UpdateStatusIf performs a conditional status transition keyed on the
// current status, reporting false when the payment was not in the expected
// state.
func (r *PaymentRepository) UpdateStatusIf(ctx context.Context, id, from, to string) (bool, error) {
	query := `
		UPDATE payments SET status = $1, updated_at = NOW()
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
