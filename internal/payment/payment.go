// Package payment implements the payment lifecycle against the interbank
// processor. A completed payment is the only path that confirms a
// reservation; a refund never deletes the payment record.
package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperr "github.com/Walid274gh/SkyBooking-sub001/internal/errors"
	"github.com/Walid274gh/SkyBooking-sub001/internal/external"
	"github.com/Walid274gh/SkyBooking-sub001/internal/locks"
	"github.com/Walid274gh/SkyBooking-sub001/internal/logger"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
	"github.com/Walid274gh/SkyBooking-sub001/internal/validation"
)

// TaxRatePercent is the invoice VAT rate.
const TaxRatePercent = 19

type Store interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	GetActiveByReservation(ctx context.Context, reservationID string) (*models.Payment, error)
	UpdateStatusIf(ctx context.Context, id, from, to string) (bool, error)
}

type ReservationStore interface {
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
}

// Confirmer is the reservation lifecycle surface the payment manager calls
// after the processor accepted a payment.
type Confirmer interface {
	Confirm(ctx context.Context, reservationID, paymentID string) ([]models.Ticket, error)
}

// Bank is the processor client surface.
type Bank interface {
	Authorize(ctx context.Context, amount int64, method, cardNumber, cardHolder, cvv, expiry, orderID string) (*external.AuthorizeResponse, error)
	Refund(ctx context.Context, transactionID string, amount int64) error
}

type Publisher interface {
	Publish(subject string, data interface{}) error
}

type Manager struct {
	payments     Store
	reservations ReservationStore
	confirmer    Confirmer
	bank         Bank
	publisher    Publisher
	resLocks     *locks.KeyedMutex

	now func() time.Time
}

func NewManager(payments Store, reservations ReservationStore, confirmer Confirmer, bank Bank, publisher Publisher, resLocks *locks.KeyedMutex) *Manager {
	return &Manager{
		payments:     payments,
		reservations: reservations,
		confirmer:    confirmer,
		bank:         bank,
		publisher:    publisher,
		resLocks:     resLocks,
		now:          time.Now,
	}
}

// Process validates the instrument, authorizes the amount with the processor
// and, on success, confirms the reservation. The instrument itself is never
// persisted; only a masked form of the card number is stored.
func (m *Manager) Process(ctx context.Context, customerID int64, req models.ProcessPaymentRequest) (*models.Payment, error) {
	req.Method = strings.ToUpper(req.Method)
	if err := m.validateInstrument(req); err != nil {
		return nil, err
	}

	unlock := m.resLocks.Lock("reservation:" + req.ReservationID)
	defer unlock()

	reservation, err := m.reservations.GetByID(ctx, req.ReservationID)
	if err != nil {
		return nil, apperr.Backend(err, "failed to load reservation %s", req.ReservationID)
	}
	if reservation == nil {
		return nil, &apperr.NotFoundError{Entity: "reservation", ID: req.ReservationID}
	}
	if reservation.CustomerID != customerID {
		return nil, &apperr.NotFoundError{Entity: "reservation", ID: req.ReservationID}
	}
	if reservation.Status != models.ReservationPending {
		return nil, apperr.Conflict("reservation %s is %s and cannot be paid", req.ReservationID, reservation.Status)
	}
	if req.Amount != reservation.TotalPrice {
		return nil, apperr.Validation("payment amount %d does not match reservation total %d",
			req.Amount, reservation.TotalPrice)
	}

	if active, err := m.payments.GetActiveByReservation(ctx, req.ReservationID); err != nil {
		return nil, apperr.Backend(err, "failed to check existing payments for %s", req.ReservationID)
	} else if active != nil && active.Status != models.PaymentFailed {
		return nil, apperr.Conflict("reservation %s already has payment %s in status %s",
			req.ReservationID, active.ID, active.Status)
	}

	pay := &models.Payment{
		ID:               uuid.New().String(),
		ReservationID:    req.ReservationID,
		CustomerID:       customerID,
		Amount:           req.Amount,
		Method:           req.Method,
		Status:           models.PaymentPending,
		MaskedInstrument: validation.MaskCard(req.CardNumber),
	}
	if err := m.payments.Create(ctx, pay); err != nil {
		return nil, apperr.Backend(err, "failed to persist payment")
	}

	auth, err := m.bank.Authorize(ctx, req.Amount, req.Method, req.CardNumber, req.CardHolder, req.CVV, req.Expiry, req.ReservationID)
	if err != nil {
		m.markFailed(ctx, pay, "processor unreachable")
		return nil, apperr.Backend(err, "payment authorization failed")
	}
	if !auth.Success {
		m.markFailed(ctx, pay, auth.DeclineReason)
		if auth.DeclineCode == external.DeclineInsufficientFunds {
			return nil, &apperr.InsufficientFundsError{Amount: req.Amount}
		}
		return nil, apperr.Policy("payment declined: %s", auth.DeclineReason)
	}

	pay.TransactionID = auth.TransactionID
	pay.BankReference = auth.BankReference
	ok, err := m.payments.UpdateStatusIf(ctx, pay.ID, models.PaymentPending, models.PaymentCompleted)
	if err != nil {
		return nil, apperr.Backend(err, "failed to record completed payment %s", pay.ID)
	}
	if !ok {
		return nil, apperr.Conflict("payment %s is no longer pending", pay.ID)
	}
	pay.Status = models.PaymentCompleted

	if _, err := m.confirmer.Confirm(ctx, req.ReservationID, pay.ID); err != nil {
		// The charge went through; confirmation is retried out of band
		// rather than reversed.
		logger.WithContext(ctx).Error("Payment completed but confirmation failed",
			"payment_id", pay.ID, "reservation_id", req.ReservationID, "error", err)
		return pay, err
	}

	m.publish(ctx, models.EventPaymentCompleted, models.PaymentCompletedEvent{
		PaymentID:     pay.ID,
		ReservationID: req.ReservationID,
		Amount:        req.Amount,
		Method:        req.Method,
		Timestamp:     m.now().UTC(),
	})

	logger.WithContext(ctx).Info("Payment completed",
		"payment_id", pay.ID, "reservation_id", req.ReservationID,
		"amount", req.Amount, "method", req.Method)

	return pay, nil
}

// Refund reverses amount of a completed payment with the processor and marks
// the payment REFUNDED. Called by the cancellation manager; amount has
// already passed the refund policy there.
func (m *Manager) Refund(ctx context.Context, paymentID string, amount int64) error {
	pay, err := m.payments.GetByID(ctx, paymentID)
	if err != nil {
		return apperr.Backend(err, "failed to load payment %s", paymentID)
	}
	if pay == nil {
		return &apperr.NotFoundError{Entity: "payment", ID: paymentID}
	}
	if pay.Status != models.PaymentCompleted {
		return apperr.Conflict("payment %s is %s and cannot be refunded", paymentID, pay.Status)
	}
	if amount < 0 || amount > pay.Amount {
		return apperr.Validation("refund amount %d is outside [0, %d]", amount, pay.Amount)
	}

	if amount > 0 {
		if err := m.bank.Refund(ctx, pay.TransactionID, amount); err != nil {
			return apperr.Backend(err, "processor refund failed for payment %s", paymentID)
		}
	}

	ok, err := m.payments.UpdateStatusIf(ctx, paymentID, models.PaymentCompleted, models.PaymentRefunded)
	if err != nil {
		return apperr.Backend(err, "failed to mark payment %s refunded", paymentID)
	}
	if !ok {
		return apperr.Conflict("payment %s was refunded concurrently", paymentID)
	}

	logger.WithContext(ctx).Info("Payment refunded",
		"payment_id", paymentID, "amount", amount)
	return nil
}

// Get returns nil when the payment does not exist.
func (m *Manager) Get(ctx context.Context, id string) (*models.Payment, error) {
	pay, err := m.payments.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Backend(err, "failed to load payment %s", id)
	}
	return pay, nil
}

// GetActiveByReservation returns the reservation's non-refunded payment, or
// nil when there is none.
func (m *Manager) GetActiveByReservation(ctx context.Context, reservationID string) (*models.Payment, error) {
	pay, err := m.payments.GetActiveByReservation(ctx, reservationID)
	if err != nil {
		return nil, apperr.Backend(err, "failed to load payment for reservation %s", reservationID)
	}
	return pay, nil
}

// Invoice derives the invoice for a completed payment. The stored amount is
// the subtotal; tax is added on top at the fixed rate.
func (m *Manager) Invoice(ctx context.Context, paymentID string) (*models.Invoice, error) {
	pay, err := m.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, apperr.Backend(err, "failed to load payment %s", paymentID)
	}
	if pay == nil {
		return nil, &apperr.NotFoundError{Entity: "payment", ID: paymentID}
	}
	if pay.Status != models.PaymentCompleted && pay.Status != models.PaymentRefunded {
		return nil, apperr.Conflict("payment %s is %s; an invoice requires a completed payment", paymentID, pay.Status)
	}

	tax := pay.Amount * TaxRatePercent / 100
	return &models.Invoice{
		PaymentID:     pay.ID,
		ReservationID: pay.ReservationID,
		Subtotal:      pay.Amount,
		Tax:           tax,
		Total:         pay.Amount + tax,
		IssuedAt:      m.now().UTC(),
	}, nil
}

func (m *Manager) validateInstrument(req models.ProcessPaymentRequest) error {
	if req.Method != models.MethodCIB && req.Method != models.MethodEdahabia {
		return apperr.Validation("unsupported payment method %q", req.Method)
	}
	if !validation.ValidCardNumber(req.CardNumber) {
		return &apperr.InvalidCardError{Reason: "card number must be 13-19 digits"}
	}
	if strings.TrimSpace(req.CardHolder) == "" {
		return &apperr.InvalidCardError{Reason: "card holder name is required"}
	}
	if !validation.ValidCVV(req.CVV) {
		return &apperr.InvalidCardError{Reason: "cvv must be exactly 3 digits"}
	}
	if !validation.ValidExpiry(req.Expiry, m.now()) {
		return &apperr.InvalidCardError{Reason: "card is expired or expiry is malformed"}
	}
	if req.Amount <= 0 {
		return apperr.Validation("payment amount must be positive")
	}
	return nil
}

func (m *Manager) markFailed(ctx context.Context, pay *models.Payment, reason string) {
	if _, err := m.payments.UpdateStatusIf(ctx, pay.ID, models.PaymentPending, models.PaymentFailed); err != nil {
		logger.WithContext(ctx).Error("Failed to mark payment failed",
			"payment_id", pay.ID, "error", err)
	}
	pay.Status = models.PaymentFailed

	m.publish(ctx, models.EventPaymentFailed, models.PaymentFailedEvent{
		ReservationID: pay.ReservationID,
		Amount:        pay.Amount,
		Reason:        reason,
		Timestamp:     m.now().UTC(),
	})
}

func (m *Manager) publish(ctx context.Context, subject string, event interface{}) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.Publish(subject, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event", "subject", subject, "error", err)
	}
}
