package repository

import (
	"context"

	"github.com/Walid274gh/SkyBooking-sub001/internal/database"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
)

type RefundRepository struct {
	db *database.DB
}

func NewRefundRepository(db *database.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

func (r *RefundRepository) Create(ctx context.Context, refund *models.Refund) error {
	query := `
		INSERT INTO refunds (id, reservation_id, payment_id, amount, status, reason)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		RETURNING created_at`

	return r.db.QueryRowContext(ctx, query,
		refund.ID,
		refund.ReservationID,
		refund.PaymentID,
		refund.Amount,
		refund.Status,
		refund.Reason,
	).Scan(&refund.CreatedAt)
}

func (r *RefundRepository) ListByReservation(ctx context.Context, reservationID string) ([]models.Refund, error) {
	query := `
		SELECT id, reservation_id, COALESCE(payment_id::text, ''), amount, status, COALESCE(reason, ''), created_at
		FROM refunds
		WHERE reservation_id = $1
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refunds []models.Refund
	for rows.Next() {
		var refund models.Refund
		err := rows.Scan(
			&refund.ID,
			&refund.ReservationID,
			&refund.PaymentID,
			&refund.Amount,
			&refund.Status,
			&refund.Reason,
			&refund.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		refunds = append(refunds, refund)
	}

	return refunds, rows.Err()
}
