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

// Payments handlers

// ProcessPayment - POST /api/payments
func (h *Handlers) ProcessPayment(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	payment, err := executor.Execute(c.Request.Context(), h.budgets, executor.ClassPayment, "payments.process",
		func(ctx context.Context) (*models.Payment, error) {
			return h.payments.Process(ctx, id, req)
		})
	if err != nil {
		slog.Error("Payment failed", "reservation_id", req.ReservationID, "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// GetPayment - GET /api/payments/:id
func (h *Handlers) GetPayment(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := executor.Execute(c.Request.Context(), h.budgets, executor.ClassDefault, "payments.get",
		func(ctx context.Context) (*models.Payment, error) {
			return h.payments.Get(ctx, c.Param("id"))
		})
	if err != nil {
		writeError(c, err)
		return
	}
	if payment == nil || payment.CustomerID != id {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}

	c.JSON(http.StatusOK, payment)
}

// GetInvoice - GET /api/payments/:id/invoice
func (h *Handlers) GetInvoice(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	paymentID := c.Param("id")
	invoice, err := executor.Execute(c.Request.Context(), h.budgets, executor.ClassDefault, "payments.invoice",
		func(ctx context.Context) (*models.Invoice, error) {
			payment, err := h.payments.Get(ctx, paymentID)
			if err != nil {
				return nil, err
			}
			if payment == nil || payment.CustomerID != id {
				return nil, &apperr.NotFoundError{Entity: "payment", ID: paymentID}
			}
			return h.payments.Invoice(ctx, payment.ID)
		})
	if err != nil {
		writeError(c, err)
		return
	}

	if c.Query("format") == "pdf" {
		pdf, err := h.renderer.RenderInvoice(c.Request.Context(), invoice)
		if err != nil {
			slog.Error("Failed to render invoice", "payment_id", paymentID, "error", err)
			writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/pdf", pdf)
		return
	}

	c.JSON(http.StatusOK, invoice)
}
