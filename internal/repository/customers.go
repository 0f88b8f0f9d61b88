package repository

import (
	"context"
	"database/sql"

	"github.com/Walid274gh/SkyBooking-sub001/internal/database"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
)

type CustomerRepository struct {
	db *database.DB
}

func NewCustomerRepository(db *database.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (email, password_hash, first_name, surname, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING customer_id, registered_at, is_active`

	return r.db.QueryRowContext(ctx, query,
		customer.Email,
		customer.PasswordHash,
		customer.FirstName,
		customer.Surname,
		customer.Phone,
	).Scan(&customer.CustomerID, &customer.RegisteredAt, &customer.IsActive)
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	customer := &models.Customer{}
	query := `
		SELECT customer_id, email, password_hash, first_name, surname, COALESCE(phone, ''), registered_at, is_active
		FROM customers
		WHERE email = $1`

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&customer.CustomerID,
		&customer.Email,
		&customer.PasswordHash,
		&customer.FirstName,
		&customer.Surname,
		&customer.Phone,
		&customer.RegisteredAt,
		&customer.IsActive,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return customer, err
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	customer := &models.Customer{}
	query := `
		SELECT customer_id, email, password_hash, first_name, surname, COALESCE(phone, ''), registered_at, is_active
		FROM customers
		WHERE customer_id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&customer.CustomerID,
		&customer.Email,
		&customer.PasswordHash,
		&customer.FirstName,
		&customer.Surname,
		&customer.Phone,
		&customer.RegisteredAt,
		&customer.IsActive,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return customer, err
}
