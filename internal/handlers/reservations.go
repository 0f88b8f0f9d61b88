package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "github.com/Walid274gh/SkyBooking-sub001/internal/errors"
	"github.com/Walid274gh/SkyBooking-sub001/internal/executor"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
)

// Reservations handlers

// CreateReservation - POST /api/reservations
func (h *Handlers) CreateReservation(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reservation, err := executor.Execute(c.Request.Context(), h.budgets, executor.ClassReservation, "reservations.create",
		func(ctx context.Context) (*models.Reservation, error) {
			return h.reservations.Create(ctx, id, req)
		})
	if err != nil {
		slog.Error("Failed to create reservation", "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reservation)
}

// ListReservations - GET /api/reservations
func (h *Handlers) ListReservations(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reservations, err := executor.Execute(c.Request.Context(), h.budgets, executor.ClassDefault, "reservations.list",
		func(ctx context.Context) ([]models.Reservation, error) {
			return h.reservations.ListByCustomer(ctx, id)
		})
	if err != nil {
		slog.Error("Failed to list reservations", "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservations)
}

// GetReservation - GET /api/reservations/:id
func (h *Handlers) GetReservation(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reservation, err := executor.Execute(c.Request.Context(), h.budgets, executor.ClassDefault, "reservations.get",
		func(ctx context.Context) (*models.Reservation, error) {
			return h.reservations.Get(ctx, c.Param("id"))
		})
	if err != nil {
		writeError(c, err)
		return
	}
	if reservation == nil || reservation.CustomerID != id {
		c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// ListReservationTickets - GET /api/reservations/:id/tickets
func (h *Handlers) ListReservationTickets(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reservationID := c.Param("id")
	tickets, err := executor.Execute(c.Request.Context(), h.budgets, executor.ClassDefault, "reservations.tickets",
		func(ctx context.Context) ([]models.Ticket, error) {
			reservation, err := h.reservations.Get(ctx, reservationID)
			if err != nil {
				return nil, err
			}
			if reservation == nil || reservation.CustomerID != id {
				return nil, &apperr.NotFoundError{Entity: "reservation", ID: reservationID}
			}
			return h.reservations.GetTickets(ctx, reservationID)
		})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tickets)
}

// loadOwnedTicket resolves a ticket and its reservation, hiding tickets that
// belong to another customer behind a not-found.
func (h *Handlers) loadOwnedTicket(ctx context.Context, customerID int64, ticketID string) (*models.Ticket, *models.Reservation, error) {
	ticket, err := h.reservations.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if ticket == nil {
		return nil, nil, &apperr.NotFoundError{Entity: "ticket", ID: ticketID}
	}

	reservation, err := h.reservations.GetReservationByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if reservation == nil || reservation.CustomerID != customerID {
		return nil, nil, &apperr.NotFoundError{Entity: "ticket", ID: ticketID}
	}
	return ticket, reservation, nil
}

// GetTicket - GET /api/tickets/:id
func (h *Handlers) GetTicket(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ticket, err := executor.Execute(c.Request.Context(), h.budgets, executor.ClassDefault, "tickets.get",
		func(ctx context.Context) (*models.Ticket, error) {
			ticket, _, err := h.loadOwnedTicket(ctx, id, c.Param("id"))
			return ticket, err
		})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// GetTicketReservation - GET /api/tickets/:id/reservation
func (h *Handlers) GetTicketReservation(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reservation, err := executor.Execute(c.Request.Context(), h.budgets, executor.ClassDefault, "tickets.reservation",
		func(ctx context.Context) (*models.Reservation, error) {
			_, reservation, err := h.loadOwnedTicket(ctx, id, c.Param("id"))
			return reservation, err
		})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// GetTicketPDF - GET /api/tickets/:id/pdf
func (h *Handlers) GetTicketPDF(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ticket, err := executor.Execute(c.Request.Context(), h.budgets, executor.ClassDefault, "tickets.get",
		func(ctx context.Context) (*models.Ticket, error) {
			ticket, _, err := h.loadOwnedTicket(ctx, id, c.Param("id"))
			return ticket, err
		})
	if err != nil {
		writeError(c, err)
		return
	}

	pdf, err := h.renderer.RenderTicket(c.Request.Context(), ticket)
	if err != nil {
		slog.Error("Failed to render ticket", "ticket_id", ticket.ID, "error", err)
		writeError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/pdf", pdf)
}
