package handlers

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
	"github.com/Walid274gh/SkyBooking-sub001/internal/validation"
)

// Auth handlers

func hashPassword(password string) string {
	hash := sha256.Sum256([]byte(password))
	return fmt.Sprintf("%x", hash)
}

// Register - POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !validation.ValidEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		return
	}

	ctx := c.Request.Context()
	existing, err := h.customers.GetByEmail(ctx, req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	customer := &models.Customer{
		Email:        strings.ToLower(req.Email),
		PasswordHash: hashPassword(req.Password),
		FirstName:    req.FirstName,
		Surname:      req.Surname,
		Phone:        req.Phone,
		IsActive:     true,
	}
	if err := h.customers.Create(ctx, customer); err != nil {
		slog.Error("Failed to create customer", "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.RegisterResponse{CustomerID: customer.CustomerID})
}

// Login - POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	customer, err := h.customers.GetByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		writeError(c, err)
		return
	}
	if customer == nil || !customer.IsActive || customer.PasswordHash != hashPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token := uuid.New().String()
	if err := h.valkeyClient.StoreSession(ctx, token, customer.CustomerID); err != nil {
		slog.Error("Failed to store session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{Token: token, CustomerID: customer.CustomerID})
}

// Logout - POST /api/auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token != "" && token != header {
		if err := h.valkeyClient.DeleteSession(c.Request.Context(), token); err != nil {
			slog.Error("Failed to delete session", "error", err)
		}
	}
	c.Status(http.StatusNoContent)
}
