package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createCustomersTable,
		createFlightsTable,
		createSeatsTable,
		createReservationsTable,
		createTicketsTable,
		createPaymentsTable,
		createRefundsTable,
		createSecondaryIndexes,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createCustomersTable = `
CREATE TABLE IF NOT EXISTS customers (
    customer_id SERIAL PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(64) NOT NULL,
    first_name VARCHAR(100) NOT NULL,
    surname VARCHAR(100) NOT NULL,
    phone VARCHAR(32),
    registered_at TIMESTAMP NOT NULL DEFAULT NOW(),
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);`

const createFlightsTable = `
CREATE TABLE IF NOT EXISTS flights (
    id SERIAL PRIMARY KEY,
    flight_number VARCHAR(16) NOT NULL,
    origin VARCHAR(100) NOT NULL,
    destination VARCHAR(100) NOT NULL,
    departure_time TIMESTAMP NOT NULL,
    arrival_time TIMESTAMP NOT NULL,
    total_seats INTEGER NOT NULL DEFAULT 0,
    available_seats INTEGER NOT NULL DEFAULT 0,
    status VARCHAR(20) NOT NULL DEFAULT 'SCHEDULED',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('SCHEDULED', 'DELAYED', 'DEPARTED', 'CANCELLED'))
);`

const createSeatsTable = `
CREATE TABLE IF NOT EXISTS seats (
    id SERIAL PRIMARY KEY,
    flight_id INTEGER NOT NULL REFERENCES flights(id) ON DELETE CASCADE,
    seat_number VARCHAR(8) NOT NULL,
    class VARCHAR(20) NOT NULL DEFAULT 'ECONOMY',
    status VARCHAR(20) NOT NULL DEFAULT 'AVAILABLE',
    price BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE(flight_id, seat_number),
    CHECK (class IN ('ECONOMY', 'BUSINESS', 'FIRST')),
    CHECK (status IN ('AVAILABLE', 'OCCUPIED', 'BLOCKED'))
);`

const createReservationsTable = `
CREATE TABLE IF NOT EXISTS reservations (
    id UUID PRIMARY KEY,
    customer_id INTEGER NOT NULL REFERENCES customers(customer_id),
    flight_id INTEGER NOT NULL REFERENCES flights(id),
    seat_numbers TEXT[] NOT NULL,
    passengers JSONB NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
    total_price BIGINT NOT NULL DEFAULT 0,
    reservation_date TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('PENDING', 'CONFIRMED', 'CANCELLED'))
);`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id UUID PRIMARY KEY,
    reservation_id UUID NOT NULL REFERENCES reservations(id) ON DELETE CASCADE,
    seat_number VARCHAR(8) NOT NULL,
    passenger_name VARCHAR(200) NOT NULL,
    flight_number VARCHAR(16) NOT NULL,
    origin VARCHAR(100) NOT NULL,
    destination VARCHAR(100) NOT NULL,
    departure_time TIMESTAMP NOT NULL,
    price BIGINT NOT NULL,
    issued_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE(reservation_id, seat_number)
);`

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
    id UUID PRIMARY KEY,
    reservation_id UUID NOT NULL REFERENCES reservations(id),
    customer_id INTEGER NOT NULL REFERENCES customers(customer_id),
    amount BIGINT NOT NULL,
    method VARCHAR(20) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
    masked_instrument VARCHAR(32),
    transaction_id VARCHAR(64),
    bank_reference VARCHAR(64),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (method IN ('CIB', 'EDAHABIA')),
    CHECK (status IN ('PENDING', 'COMPLETED', 'FAILED', 'REFUNDED'))
);`

const createRefundsTable = `
CREATE TABLE IF NOT EXISTS refunds (
    id UUID PRIMARY KEY,
    reservation_id UUID NOT NULL REFERENCES reservations(id),
    payment_id UUID REFERENCES payments(id),
    amount BIGINT NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'ISSUED',
    reason VARCHAR(255),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('ISSUED', 'SETTLED'))
);`

const createSecondaryIndexes = `
CREATE INDEX IF NOT EXISTS seats_flight_status_idx ON seats (flight_id, status);
CREATE INDEX IF NOT EXISTS reservations_customer_idx ON reservations (customer_id);
CREATE INDEX IF NOT EXISTS reservations_flight_idx ON reservations (flight_id);
CREATE INDEX IF NOT EXISTS reservations_status_idx ON reservations (status, reservation_date);
CREATE INDEX IF NOT EXISTS payments_reservation_idx ON payments (reservation_id);
CREATE INDEX IF NOT EXISTS refunds_reservation_idx ON refunds (reservation_id);
CREATE INDEX IF NOT EXISTS flights_route_idx ON flights (origin, destination, departure_time);`
