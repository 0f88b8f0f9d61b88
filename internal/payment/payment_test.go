package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperr "github.com/Walid274gh/SkyBooking-sub001/internal/errors"
	"github.com/Walid274gh/SkyBooking-sub001/internal/external"
	"github.com/Walid274gh/SkyBooking-sub001/internal/locks"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) Create(ctx context.Context, p *models.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockStore) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockStore) GetActiveByReservation(ctx context.Context, reservationID string) (*models.Payment, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockStore) UpdateStatusIf(ctx context.Context, id, from, to string) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

type mockReservationStore struct{ mock.Mock }

func (m *mockReservationStore) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

type mockConfirmer struct{ mock.Mock }

func (m *mockConfirmer) Confirm(ctx context.Context, reservationID, paymentID string) ([]models.Ticket, error) {
	args := m.Called(ctx, reservationID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

type mockBank struct{ mock.Mock }

func (m *mockBank) Authorize(ctx context.Context, amount int64, method, cardNumber, cardHolder, cvv, expiry, orderID string) (*external.AuthorizeResponse, error) {
	args := m.Called(ctx, amount, method, cardNumber, cardHolder, cvv, expiry, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*external.AuthorizeResponse), args.Error(1)
}

func (m *mockBank) Refund(ctx context.Context, transactionID string, amount int64) error {
	return m.Called(ctx, transactionID, amount).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(subject string, data interface{}) error {
	return m.Called(subject, data).Error(0)
}

type fixture struct {
	payments     *mockStore
	reservations *mockReservationStore
	confirmer    *mockConfirmer
	bank         *mockBank
	publisher    *mockPublisher
	mgr          *Manager
}

func newFixture() *fixture {
	f := &fixture{
		payments:     new(mockStore),
		reservations: new(mockReservationStore),
		confirmer:    new(mockConfirmer),
		bank:         new(mockBank),
		publisher:    new(mockPublisher),
	}
	f.mgr = NewManager(f.payments, f.reservations, f.confirmer, f.bank, f.publisher, locks.NewKeyedMutex())
	f.mgr.now = func() time.Time { return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC) }
	return f
}

func pendingReservation() *models.Reservation {
	return &models.Reservation{
		ID:          "res-1",
		CustomerID:  42,
		FlightID:    7,
		SeatNumbers: []string{"3A"},
		Status:      models.ReservationPending,
		TotalPrice:  60000,
	}
}

func validPayment() models.ProcessPaymentRequest {
	return models.ProcessPaymentRequest{
		ReservationID: "res-1",
		Amount:        60000,
		Method:        models.MethodCIB,
		CardNumber:    "4111 1111 1111 1111",
		CardHolder:    "AMINE KACI",
		CVV:           "123",
		Expiry:        "06/27",
	}
}

func TestProcessPaymentCompletes(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(pendingReservation(), nil)
	f.payments.On("GetActiveByReservation", mock.Anything, "res-1").Return(nil, nil)
	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*models.Payment")).Return(nil)
	f.bank.On("Authorize", mock.Anything, int64(60000), models.MethodCIB,
		"4111 1111 1111 1111", "AMINE KACI", "123", "06/27", "res-1").
		Return(&external.AuthorizeResponse{Success: true, TransactionID: "tx-9", BankReference: "ref-9"}, nil)
	f.payments.On("UpdateStatusIf", mock.Anything, mock.Anything, models.PaymentPending, models.PaymentCompleted).
		Return(true, nil)
	f.confirmer.On("Confirm", mock.Anything, "res-1", mock.Anything).
		Return([]models.Ticket{{ID: "t-1"}}, nil)
	f.publisher.On("Publish", models.EventPaymentCompleted, mock.Anything).Return(nil)

	pay, err := f.mgr.Process(context.Background(), 42, validPayment())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, pay.Status)
	assert.Equal(t, "tx-9", pay.TransactionID)
	assert.Equal(t, "************1111", pay.MaskedInstrument)
	f.confirmer.AssertExpectations(t)
}

func TestProcessPaymentCompletionRaceRejected(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(pendingReservation(), nil)
	f.payments.On("GetActiveByReservation", mock.Anything, "res-1").Return(nil, nil)
	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*models.Payment")).Return(nil)
	f.bank.On("Authorize", mock.Anything, int64(60000), models.MethodCIB,
		"4111 1111 1111 1111", "AMINE KACI", "123", "06/27", "res-1").
		Return(&external.AuthorizeResponse{Success: true, TransactionID: "tx-9", BankReference: "ref-9"}, nil)
	// The payment left PENDING underneath us; completion must not proceed.
	f.payments.On("UpdateStatusIf", mock.Anything, mock.Anything, models.PaymentPending, models.PaymentCompleted).
		Return(false, nil)

	_, err := f.mgr.Process(context.Background(), 42, validPayment())
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	f.confirmer.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessPaymentAmountMismatch(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(pendingReservation(), nil)

	req := validPayment()
	req.Amount = 59999
	_, err := f.mgr.Process(context.Background(), 42, req)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	f.bank.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessPaymentInvalidInstrument(t *testing.T) {
	f := newFixture()

	cases := []struct {
		name   string
		mutate func(*models.ProcessPaymentRequest)
	}{
		{"bad method", func(r *models.ProcessPaymentRequest) { r.Method = "PAYPAL" }},
		{"short card", func(r *models.ProcessPaymentRequest) { r.CardNumber = "4111" }},
		{"bad cvv", func(r *models.ProcessPaymentRequest) { r.CVV = "12" }},
		{"expired card", func(r *models.ProcessPaymentRequest) { r.Expiry = "05/25" }},
		{"no holder", func(r *models.ProcessPaymentRequest) { r.CardHolder = " " }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validPayment()
			tc.mutate(&req)
			_, err := f.mgr.Process(context.Background(), 42, req)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
	f.reservations.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestProcessPaymentExpiryCurrentMonthAccepted(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(pendingReservation(), nil)
	f.payments.On("GetActiveByReservation", mock.Anything, "res-1").Return(nil, nil)
	f.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.bank.On("Authorize", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&external.AuthorizeResponse{Success: true, TransactionID: "tx-1"}, nil)
	f.payments.On("UpdateStatusIf", mock.Anything, mock.Anything, models.PaymentPending, models.PaymentCompleted).
		Return(true, nil)
	f.confirmer.On("Confirm", mock.Anything, "res-1", mock.Anything).Return([]models.Ticket{}, nil)
	f.publisher.On("Publish", models.EventPaymentCompleted, mock.Anything).Return(nil)

	req := validPayment()
	req.Expiry = "06/25" // now is June 2025

	_, err := f.mgr.Process(context.Background(), 42, req)
	require.NoError(t, err)
}

func TestProcessPaymentInsufficientFunds(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(pendingReservation(), nil)
	f.payments.On("GetActiveByReservation", mock.Anything, "res-1").Return(nil, nil)
	f.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.bank.On("Authorize", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&external.AuthorizeResponse{
			Success:       false,
			DeclineCode:   external.DeclineInsufficientFunds,
			DeclineReason: "insufficient funds",
		}, nil)
	f.payments.On("UpdateStatusIf", mock.Anything, mock.Anything, models.PaymentPending, models.PaymentFailed).
		Return(true, nil)
	f.publisher.On("Publish", models.EventPaymentFailed, mock.Anything).Return(nil)

	_, err := f.mgr.Process(context.Background(), 42, validPayment())
	var insufficient *apperr.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(60000), insufficient.Amount)
	f.confirmer.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessPaymentProcessorUnreachable(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(pendingReservation(), nil)
	f.payments.On("GetActiveByReservation", mock.Anything, "res-1").Return(nil, nil)
	f.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.bank.On("Authorize", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connect timeout"))
	f.payments.On("UpdateStatusIf", mock.Anything, mock.Anything, models.PaymentPending, models.PaymentFailed).
		Return(true, nil)
	f.publisher.On("Publish", models.EventPaymentFailed, mock.Anything).Return(nil)

	_, err := f.mgr.Process(context.Background(), 42, validPayment())
	assert.Equal(t, apperr.KindBackend, apperr.KindOf(err))
}

func TestProcessPaymentDuplicateRejected(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(pendingReservation(), nil)
	f.payments.On("GetActiveByReservation", mock.Anything, "res-1").
		Return(&models.Payment{ID: "pay-0", Status: models.PaymentCompleted}, nil)

	_, err := f.mgr.Process(context.Background(), 42, validPayment())
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestProcessPaymentRetryAfterFailureAllowed(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(pendingReservation(), nil)
	f.payments.On("GetActiveByReservation", mock.Anything, "res-1").
		Return(&models.Payment{ID: "pay-0", Status: models.PaymentFailed}, nil)
	f.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.bank.On("Authorize", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&external.AuthorizeResponse{Success: true, TransactionID: "tx-2"}, nil)
	f.payments.On("UpdateStatusIf", mock.Anything, mock.Anything, models.PaymentPending, models.PaymentCompleted).
		Return(true, nil)
	f.confirmer.On("Confirm", mock.Anything, "res-1", mock.Anything).Return([]models.Ticket{}, nil)
	f.publisher.On("Publish", models.EventPaymentCompleted, mock.Anything).Return(nil)

	_, err := f.mgr.Process(context.Background(), 42, validPayment())
	require.NoError(t, err)
}

func TestProcessPaymentWrongCustomer(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(pendingReservation(), nil)

	_, err := f.mgr.Process(context.Background(), 99, validPayment())
	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestRefundFull(t *testing.T) {
	f := newFixture()

	f.payments.On("GetByID", mock.Anything, "pay-1").
		Return(&models.Payment{ID: "pay-1", Amount: 60000, Status: models.PaymentCompleted, TransactionID: "tx-9"}, nil)
	f.bank.On("Refund", mock.Anything, "tx-9", int64(60000)).Return(nil)
	f.payments.On("UpdateStatusIf", mock.Anything, "pay-1", models.PaymentCompleted, models.PaymentRefunded).
		Return(true, nil)

	require.NoError(t, f.mgr.Refund(context.Background(), "pay-1", 60000))
	f.bank.AssertExpectations(t)
}

func TestRefundZeroSkipsProcessor(t *testing.T) {
	f := newFixture()

	f.payments.On("GetByID", mock.Anything, "pay-1").
		Return(&models.Payment{ID: "pay-1", Amount: 60000, Status: models.PaymentCompleted, TransactionID: "tx-9"}, nil)
	f.payments.On("UpdateStatusIf", mock.Anything, "pay-1", models.PaymentCompleted, models.PaymentRefunded).
		Return(true, nil)

	require.NoError(t, f.mgr.Refund(context.Background(), "pay-1", 0))
	f.bank.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefundOverAmountRejected(t *testing.T) {
	f := newFixture()

	f.payments.On("GetByID", mock.Anything, "pay-1").
		Return(&models.Payment{ID: "pay-1", Amount: 60000, Status: models.PaymentCompleted}, nil)

	err := f.mgr.Refund(context.Background(), "pay-1", 60001)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestInvoiceAddsTax(t *testing.T) {
	f := newFixture()

	f.payments.On("GetByID", mock.Anything, "pay-1").
		Return(&models.Payment{
			ID: "pay-1", ReservationID: "res-1",
			Amount: 60000, Status: models.PaymentCompleted,
		}, nil)

	invoice, err := f.mgr.Invoice(context.Background(), "pay-1")
	require.NoError(t, err)
	assert.Equal(t, int64(60000), invoice.Subtotal)
	assert.Equal(t, int64(11400), invoice.Tax)
	assert.Equal(t, int64(71400), invoice.Total)
}

func TestInvoiceRequiresCompletedPayment(t *testing.T) {
	f := newFixture()

	f.payments.On("GetByID", mock.Anything, "pay-1").
		Return(&models.Payment{ID: "pay-1", Status: models.PaymentFailed}, nil)

	_, err := f.mgr.Invoice(context.Background(), "pay-1")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}
