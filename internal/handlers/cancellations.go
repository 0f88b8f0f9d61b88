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

// Cancellation and modification handlers

// GetCancellationPolicy - GET /api/reservations/:id/cancellation-policy
func (h *Handlers) GetCancellationPolicy(c *gin.Context) {
	if _, ok := customerID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reservationID := c.Param("id")
	type policyQuote struct {
		policy *models.CancellationPolicy
		refund int64
	}
	quote, err := executor.Execute(c.Request.Context(), h.budgets, executor.ClassDefault, "reservations.cancellation_policy",
		func(ctx context.Context) (policyQuote, error) {
			policy, err := h.cancellations.GetPolicy(ctx, reservationID)
			if err != nil {
				return policyQuote{}, err
			}
			refund, err := h.cancellations.CalculateRefundAmount(ctx, reservationID)
			if err != nil {
				return policyQuote{}, err
			}
			return policyQuote{policy: policy, refund: refund}, nil
		})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"refund_percentage": quote.policy.RefundPercentage,
		"hours_remaining":   quote.policy.HoursRemaining,
		"flat_fee":          quote.policy.FlatFee,
		"refund_amount":     quote.refund,
	})
}

// CancelReservation - POST /api/reservations/:id/cancel
func (h *Handlers) CancelReservation(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CancelReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		badRequest(c, err)
		return
	}

	reservationID := c.Param("id")
	refund, err := executor.Execute(c.Request.Context(), h.budgets, executor.ClassCancellation, "reservations.cancel",
		func(ctx context.Context) (int64, error) {
			return h.cancellations.Cancel(ctx, id, reservationID, req.Reason)
		})
	if err != nil {
		slog.Error("Failed to cancel reservation", "reservation_id", reservationID, "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CancelReservationResponse{
		ReservationID: reservationID,
		RefundAmount:  refund,
	})
}

// CanModifyReservation - GET /api/reservations/:id/can-modify
func (h *Handlers) CanModifyReservation(c *gin.Context) {
	if _, ok := customerID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	answer, err := executor.Execute(c.Request.Context(), h.budgets, executor.ClassDefault, "reservations.can_modify",
		func(ctx context.Context) (models.CanModifyResponse, error) {
			allowed, hours, err := h.cancellations.CanModify(ctx, c.Param("id"))
			return models.CanModifyResponse{CanModify: allowed, HoursRemaining: hours}, err
		})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

// ModifyReservationSeats - PATCH /api/reservations/:id/seats
func (h *Handlers) ModifyReservationSeats(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.ModifySeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reservationID := c.Param("id")
	reservation, err := executor.Execute(c.Request.Context(), h.budgets, executor.ClassSeats, "reservations.modify_seats",
		func(ctx context.Context) (*models.Reservation, error) {
			return h.cancellations.ModifySeats(ctx, id, reservationID, req.SeatNumbers)
		})
	if err != nil {
		slog.Error("Failed to modify seats", "reservation_id", reservationID, "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// ListRefunds - GET /api/reservations/:id/refunds
func (h *Handlers) ListRefunds(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reservationID := c.Param("id")
	refunds, err := executor.Execute(c.Request.Context(), h.budgets, executor.ClassDefault, "reservations.refunds",
		func(ctx context.Context) ([]models.Refund, error) {
			reservation, err := h.reservations.Get(ctx, reservationID)
			if err != nil {
				return nil, err
			}
			if reservation == nil || reservation.CustomerID != id {
				return nil, &apperr.NotFoundError{Entity: "reservation", ID: reservationID}
			}
			return h.cancellations.ListRefunds(ctx, reservationID)
		})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, refunds)
}
