package cancellation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperr "github.com/Walid274gh/SkyBooking-sub001/internal/errors"
	"github.com/Walid274gh/SkyBooking-sub001/internal/locks"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
)

type mockReservationStore struct{ mock.Mock }

func (m *mockReservationStore) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *mockReservationStore) UpdateStatusIf(ctx context.Context, id, from, to string) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *mockReservationStore) UpdateSeats(ctx context.Context, id string, seatNumbers []string, totalPrice int64) error {
	return m.Called(ctx, id, seatNumbers, totalPrice).Error(0)
}

type mockFlightStore struct{ mock.Mock }

func (m *mockFlightStore) GetByID(ctx context.Context, id int64) (*models.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flight), args.Error(1)
}

type mockRefundStore struct{ mock.Mock }

func (m *mockRefundStore) Create(ctx context.Context, refund *models.Refund) error {
	return m.Called(ctx, refund).Error(0)
}

func (m *mockRefundStore) ListByReservation(ctx context.Context, reservationID string) ([]models.Refund, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Refund), args.Error(1)
}

type mockInventory struct{ mock.Mock }

func (m *mockInventory) AssignSeats(ctx context.Context, flightID int64, seatNumbers []string) ([]models.Seat, error) {
	args := m.Called(ctx, flightID, seatNumbers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Seat), args.Error(1)
}

func (m *mockInventory) ReleaseSeats(ctx context.Context, flightID int64, seatNumbers []string) error {
	return m.Called(ctx, flightID, seatNumbers).Error(0)
}

func (m *mockInventory) PriceSeats(ctx context.Context, flightID int64, seatNumbers []string) (int64, []models.Seat, error) {
	args := m.Called(ctx, flightID, seatNumbers)
	if args.Get(1) == nil {
		return args.Get(0).(int64), nil, args.Error(2)
	}
	return args.Get(0).(int64), args.Get(1).([]models.Seat), args.Error(2)
}

type mockPayments struct{ mock.Mock }

func (m *mockPayments) GetActiveByReservation(ctx context.Context, reservationID string) (*models.Payment, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPayments) Refund(ctx context.Context, paymentID string, amount int64) error {
	return m.Called(ctx, paymentID, amount).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(subject string, data interface{}) error {
	return m.Called(subject, data).Error(0)
}

type fixture struct {
	reservations *mockReservationStore
	flights      *mockFlightStore
	refunds      *mockRefundStore
	inventory    *mockInventory
	payments     *mockPayments
	publisher    *mockPublisher
	mgr          *Manager
	now          time.Time
}

func newFixture() *fixture {
	f := &fixture{
		reservations: new(mockReservationStore),
		flights:      new(mockFlightStore),
		refunds:      new(mockRefundStore),
		inventory:    new(mockInventory),
		payments:     new(mockPayments),
		publisher:    new(mockPublisher),
		now:          time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC),
	}
	f.mgr = NewManager(f.reservations, f.flights, f.refunds, f.inventory, f.payments, f.publisher, locks.NewKeyedMutex())
	f.mgr.now = func() time.Time { return f.now }
	return f
}

// departsIn sets a flight departing the given duration after the fixed test
// clock.
func (f *fixture) departsIn(d time.Duration) *models.Flight {
	return &models.Flight{
		ID:            7,
		FlightNumber:  "SB101",
		DepartureTime: f.now.Add(d),
		Status:        models.FlightScheduled,
	}
}

func confirmedReservation() *models.Reservation {
	return &models.Reservation{
		ID:          "res-1",
		CustomerID:  42,
		FlightID:    7,
		SeatNumbers: []string{"3A", "3B"},
		Passengers:  []models.Passenger{{Name: "A"}, {Name: "B"}},
		Status:      models.ReservationConfirmed,
		TotalPrice:  20000,
	}
}

func completedPayment() *models.Payment {
	return &models.Payment{
		ID:            "pay-1",
		ReservationID: "res-1",
		Amount:        20000,
		Status:        models.PaymentCompleted,
	}
}

func (f *fixture) expectCancelPlumbing() {
	f.reservations.On("UpdateStatusIf", mock.Anything, "res-1", models.ReservationConfirmed, models.ReservationCancelled).
		Return(true, nil)
	f.inventory.On("ReleaseSeats", mock.Anything, int64(7), []string{"3A", "3B"}).Return(nil)
	f.refunds.On("Create", mock.Anything, mock.AnythingOfType("*models.Refund")).Return(nil)
	f.publisher.On("Publish", models.EventReservationCancelled, mock.Anything).Return(nil)
	f.publisher.On("Publish", models.EventRefundIssued, mock.Anything).Return(nil)
}

func TestCancelFullRefundTier(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(confirmedReservation(), nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(72*time.Hour), nil)
	f.payments.On("GetActiveByReservation", mock.Anything, "res-1").Return(completedPayment(), nil)
	f.payments.On("Refund", mock.Anything, "pay-1", int64(20000)).Return(nil)
	f.expectCancelPlumbing()

	refund, err := f.mgr.Cancel(context.Background(), 42, "res-1", "change of plans")
	require.NoError(t, err)
	assert.Equal(t, int64(20000), refund)
}

func TestCancelHalfRefundTier(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(confirmedReservation(), nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(30*time.Hour), nil)
	f.payments.On("GetActiveByReservation", mock.Anything, "res-1").Return(completedPayment(), nil)
	f.payments.On("Refund", mock.Anything, "pay-1", int64(10000)).Return(nil)
	f.expectCancelPlumbing()

	refund, err := f.mgr.Cancel(context.Background(), 42, "res-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), refund)
}

func TestCancelLateWindowZeroRefund(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(confirmedReservation(), nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(5*time.Hour), nil)
	f.payments.On("GetActiveByReservation", mock.Anything, "res-1").Return(completedPayment(), nil)
	// Zero refund still closes out the payment and records the decision.
	f.payments.On("Refund", mock.Anything, "pay-1", int64(0)).Return(nil)
	f.expectCancelPlumbing()

	refund, err := f.mgr.Cancel(context.Background(), 42, "res-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), refund)
	f.refunds.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(r *models.Refund) bool {
		return r.Amount == 0 && r.Status == models.RefundIssued
	}))
}

func TestCancelAfterDeparture(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(confirmedReservation(), nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(-2*time.Hour), nil)

	_, err := f.mgr.Cancel(context.Background(), 42, "res-1", "")
	var denied *apperr.CancellationNotAllowedError
	require.ErrorAs(t, err, &denied)
	f.inventory.AssertNotCalled(t, "ReleaseSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelUnpaidReservationNoProcessorCall(t *testing.T) {
	f := newFixture()

	pending := confirmedReservation()
	pending.Status = models.ReservationPending
	f.reservations.On("GetByID", mock.Anything, "res-1").Return(pending, nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(72*time.Hour), nil)
	f.payments.On("GetActiveByReservation", mock.Anything, "res-1").Return(nil, nil)
	f.reservations.On("UpdateStatusIf", mock.Anything, "res-1", models.ReservationPending, models.ReservationCancelled).
		Return(true, nil)
	f.inventory.On("ReleaseSeats", mock.Anything, int64(7), []string{"3A", "3B"}).Return(nil)
	f.refunds.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	refund, err := f.mgr.Cancel(context.Background(), 42, "res-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), refund)
	f.payments.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelAlreadyCancelled(t *testing.T) {
	f := newFixture()

	cancelled := confirmedReservation()
	cancelled.Status = models.ReservationCancelled
	f.reservations.On("GetByID", mock.Anything, "res-1").Return(cancelled, nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(72*time.Hour), nil)

	_, err := f.mgr.Cancel(context.Background(), 42, "res-1", "")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCancelWrongCustomer(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(confirmedReservation(), nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(72*time.Hour), nil)

	_, err := f.mgr.Cancel(context.Background(), 99, "res-1", "")
	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGetPolicyTierBoundary(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(confirmedReservation(), nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(48*time.Hour), nil)

	p, err := f.mgr.GetPolicy(context.Background(), "res-1")
	require.NoError(t, err)
	assert.Equal(t, 100, p.RefundPercentage)
	assert.Equal(t, int64(48), p.HoursRemaining)
}

func TestGetPolicyAfterDeparture(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(confirmedReservation(), nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(-5*time.Hour), nil)

	_, err := f.mgr.GetPolicy(context.Background(), "res-1")
	var notAllowed *apperr.CancellationNotAllowedError
	require.ErrorAs(t, err, &notAllowed)
	assert.Equal(t, int64(-5), notAllowed.HoursRemaining)
}

func TestGetPolicyCancelledReservation(t *testing.T) {
	f := newFixture()

	cancelled := confirmedReservation()
	cancelled.Status = models.ReservationCancelled
	f.reservations.On("GetByID", mock.Anything, "res-1").Return(cancelled, nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(72*time.Hour), nil)

	_, err := f.mgr.GetPolicy(context.Background(), "res-1")
	var notAllowed *apperr.CancellationNotAllowedError
	require.ErrorAs(t, err, &notAllowed)
	assert.Equal(t, int64(72), notAllowed.HoursRemaining)
}

func TestCalculateRefundAmountUnpaid(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(confirmedReservation(), nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(72*time.Hour), nil)
	f.payments.On("GetActiveByReservation", mock.Anything, "res-1").Return(nil, nil)

	amount, err := f.mgr.CalculateRefundAmount(context.Background(), "res-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), amount)
}

func TestCanModifyWindow(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(confirmedReservation(), nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(25*time.Hour), nil)

	allowed, hours, err := f.mgr.CanModify(context.Background(), "res-1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(25), hours)
}

func TestCanModifyWindowClosed(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(confirmedReservation(), nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(10*time.Hour), nil)

	allowed, _, err := f.mgr.CanModify(context.Background(), "res-1")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestModifySeatsSwaps(t *testing.T) {
	f := newFixture()

	pending := confirmedReservation()
	pending.Status = models.ReservationPending
	f.reservations.On("GetByID", mock.Anything, "res-1").Return(pending, nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(72*time.Hour), nil)
	f.inventory.On("AssignSeats", mock.Anything, int64(7), []string{"5C", "5D"}).
		Return([]models.Seat{
			{SeatNumber: "5C", Price: 12000},
			{SeatNumber: "5D", Price: 12000},
		}, nil)
	f.inventory.On("PriceSeats", mock.Anything, int64(7), []string{"5C", "5D"}).
		Return(int64(24000), []models.Seat{
			{SeatNumber: "5C", Price: 12000},
			{SeatNumber: "5D", Price: 12000},
		}, nil)
	f.payments.On("GetActiveByReservation", mock.Anything, "res-1").Return(nil, nil)
	f.reservations.On("UpdateSeats", mock.Anything, "res-1", []string{"5C", "5D"}, int64(24000)).Return(nil)
	f.inventory.On("ReleaseSeats", mock.Anything, int64(7), []string{"3A", "3B"}).Return(nil)
	f.publisher.On("Publish", models.EventSeatsModified, mock.Anything).Return(nil)

	updated, err := f.mgr.ModifySeats(context.Background(), 42, "res-1", []string{"5C", "5D"})
	require.NoError(t, err)
	assert.Equal(t, []string{"5C", "5D"}, updated.SeatNumbers)
	assert.Equal(t, int64(24000), updated.TotalPrice)
	f.inventory.AssertCalled(t, "ReleaseSeats", mock.Anything, int64(7), []string{"3A", "3B"})
}

func TestModifySeatsConflictKeepsOriginal(t *testing.T) {
	f := newFixture()

	pending := confirmedReservation()
	pending.Status = models.ReservationPending
	f.reservations.On("GetByID", mock.Anything, "res-1").Return(pending, nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(72*time.Hour), nil)
	f.inventory.On("AssignSeats", mock.Anything, int64(7), []string{"5C", "5D"}).
		Return(nil, &apperr.SeatUnavailableError{FlightID: 7, SeatNumbers: []string{"5D"}})

	_, err := f.mgr.ModifySeats(context.Background(), 42, "res-1", []string{"5C", "5D"})
	var unavailable *apperr.SeatUnavailableError
	require.ErrorAs(t, err, &unavailable)
	// The original seats were never released, so there is nothing to roll back.
	f.inventory.AssertNotCalled(t, "ReleaseSeats", mock.Anything, mock.Anything, mock.Anything)
	f.reservations.AssertNotCalled(t, "UpdateSeats", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestModifySeatsOverlapReleasesOnlyDropped(t *testing.T) {
	f := newFixture()

	pending := confirmedReservation()
	pending.Status = models.ReservationPending
	f.reservations.On("GetByID", mock.Anything, "res-1").Return(pending, nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(72*time.Hour), nil)
	// Keeping 3B: only 5C is newly acquired and only 3A is released.
	f.inventory.On("AssignSeats", mock.Anything, int64(7), []string{"5C"}).
		Return([]models.Seat{{SeatNumber: "5C", Price: 12000}}, nil)
	f.inventory.On("PriceSeats", mock.Anything, int64(7), []string{"3B", "5C"}).
		Return(int64(22000), []models.Seat{
			{SeatNumber: "3B", Price: 10000},
			{SeatNumber: "5C", Price: 12000},
		}, nil)
	f.payments.On("GetActiveByReservation", mock.Anything, "res-1").Return(nil, nil)
	f.reservations.On("UpdateSeats", mock.Anything, "res-1", []string{"3B", "5C"}, int64(22000)).Return(nil)
	f.inventory.On("ReleaseSeats", mock.Anything, int64(7), []string{"3A"}).Return(nil)
	f.publisher.On("Publish", models.EventSeatsModified, mock.Anything).Return(nil)

	updated, err := f.mgr.ModifySeats(context.Background(), 42, "res-1", []string{"3B", "5C"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3B", "5C"}, updated.SeatNumbers)
	f.inventory.AssertCalled(t, "ReleaseSeats", mock.Anything, int64(7), []string{"3A"})
	f.inventory.AssertNotCalled(t, "ReleaseSeats", mock.Anything, int64(7), []string{"3A", "3B"})
}

func TestModifySeatsWindowClosed(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(confirmedReservation(), nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(10*time.Hour), nil)

	_, err := f.mgr.ModifySeats(context.Background(), 42, "res-1", []string{"5C", "5D"})
	var denied *apperr.ModificationNotAllowedError
	require.ErrorAs(t, err, &denied)
	f.inventory.AssertNotCalled(t, "ReleaseSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestModifySeatsPaidTotalMustMatch(t *testing.T) {
	f := newFixture()

	f.reservations.On("GetByID", mock.Anything, "res-1").Return(confirmedReservation(), nil)
	f.flights.On("GetByID", mock.Anything, int64(7)).Return(f.departsIn(72*time.Hour), nil)
	f.inventory.On("AssignSeats", mock.Anything, int64(7), []string{"1A", "1B"}).
		Return([]models.Seat{
			{SeatNumber: "1A", Price: 45000},
			{SeatNumber: "1B", Price: 45000},
		}, nil)
	f.inventory.On("PriceSeats", mock.Anything, int64(7), []string{"1A", "1B"}).
		Return(int64(90000), []models.Seat{
			{SeatNumber: "1A", Price: 45000},
			{SeatNumber: "1B", Price: 45000},
		}, nil)
	f.payments.On("GetActiveByReservation", mock.Anything, "res-1").Return(completedPayment(), nil)
	// Only the newly acquired seats are rolled back.
	f.inventory.On("ReleaseSeats", mock.Anything, int64(7), []string{"1A", "1B"}).Return(nil)

	_, err := f.mgr.ModifySeats(context.Background(), 42, "res-1", []string{"1A", "1B"})
	assert.Equal(t, apperr.KindPolicy, apperr.KindOf(err))
	f.reservations.AssertNotCalled(t, "UpdateSeats", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.inventory.AssertNotCalled(t, "ReleaseSeats", mock.Anything, int64(7), []string{"3A", "3B"})
}
