// Package handlers is the REST gateway. Handlers reshape HTTP requests into
// manager calls wrapped by the bounded call executor and map error kinds to
// status codes; no business rule lives here.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Walid274gh/SkyBooking-sub001/internal/cache"
	apperr "github.com/Walid274gh/SkyBooking-sub001/internal/errors"
	"github.com/Walid274gh/SkyBooking-sub001/internal/executor"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
	"github.com/Walid274gh/SkyBooking-sub001/internal/search"
)

type CustomerStore interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
}

type FlightStore interface {
	Create(ctx context.Context, flight *models.Flight) error
	GetByID(ctx context.Context, id int64) (*models.Flight, error)
	List(ctx context.Context, page, pageSize int) ([]models.Flight, error)
}

type SeatCreator interface {
	CreateSeatsForFlight(ctx context.Context, flightID int64, rows, seatsPerRow int, economyPrice, businessPrice int64) error
}

type FlightSearcher interface {
	Index(ctx context.Context, flight *models.Flight) error
	Search(ctx context.Context, req models.SearchFlightsRequest) ([]search.FlightDocument, error)
}

type InventoryManager interface {
	ListAvailable(ctx context.Context, flightID int64) ([]models.Seat, error)
}

type ReservationManager interface {
	Create(ctx context.Context, customerID int64, req models.CreateReservationRequest) (*models.Reservation, error)
	Get(ctx context.Context, id string) (*models.Reservation, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Reservation, error)
	GetTickets(ctx context.Context, reservationID string) ([]models.Ticket, error)
	GetTicket(ctx context.Context, ticketID string) (*models.Ticket, error)
	GetReservationByTicket(ctx context.Context, ticketID string) (*models.Reservation, error)
}

type PaymentManager interface {
	Process(ctx context.Context, customerID int64, req models.ProcessPaymentRequest) (*models.Payment, error)
	Get(ctx context.Context, id string) (*models.Payment, error)
	Invoice(ctx context.Context, paymentID string) (*models.Invoice, error)
}

type CancellationManager interface {
	GetPolicy(ctx context.Context, reservationID string) (*models.CancellationPolicy, error)
	CalculateRefundAmount(ctx context.Context, reservationID string) (int64, error)
	Cancel(ctx context.Context, customerID int64, reservationID, reason string) (int64, error)
	CanModify(ctx context.Context, reservationID string) (bool, int64, error)
	ModifySeats(ctx context.Context, customerID int64, reservationID string, newSeats []string) (*models.Reservation, error)
	ListRefunds(ctx context.Context, reservationID string) ([]models.Refund, error)
}

type Renderer interface {
	RenderTicket(ctx context.Context, payload interface{}) ([]byte, error)
	RenderInvoice(ctx context.Context, payload interface{}) ([]byte, error)
}

type Handlers struct {
	customers     CustomerStore
	flights       FlightStore
	seats         SeatCreator
	flightSearch  FlightSearcher
	inventory     InventoryManager
	reservations  ReservationManager
	payments      PaymentManager
	cancellations CancellationManager
	renderer      Renderer
	valkeyClient  *cache.ValkeyClient
	budgets       executor.Budgets
}

func NewHandlers(
	customers CustomerStore,
	flights FlightStore,
	seats SeatCreator,
	flightSearch FlightSearcher,
	inventory InventoryManager,
	reservations ReservationManager,
	payments PaymentManager,
	cancellations CancellationManager,
	renderer Renderer,
	valkeyClient *cache.ValkeyClient,
	budgets executor.Budgets,
) *Handlers {
	return &Handlers{
		customers:     customers,
		flights:       flights,
		seats:         seats,
		flightSearch:  flightSearch,
		inventory:     inventory,
		reservations:  reservations,
		payments:      payments,
		cancellations: cancellations,
		renderer:      renderer,
		valkeyClient:  valkeyClient,
		budgets:       budgets,
	}
}

// customerID returns the authenticated customer id set by the auth
// middleware.
func customerID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("customer_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// writeError maps a tagged error to an HTTP status and the uniform error
// envelope.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var notFound *apperr.NotFoundError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case apperr.IsTimeout(err):
		status = http.StatusGatewayTimeout
	default:
		switch apperr.KindOf(err) {
		case apperr.KindValidation:
			status = http.StatusBadRequest
		case apperr.KindConflict:
			status = http.StatusConflict
		case apperr.KindPolicy:
			status = http.StatusUnprocessableEntity
		case apperr.KindBackend:
			status = http.StatusBadGateway
		}
	}

	c.JSON(status, models.ErrorResponse{
		Kind:  apperr.KindOf(err).String(),
		Error: err.Error(),
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Kind:  apperr.KindValidation.String(),
		Error: err.Error(),
	})
}
