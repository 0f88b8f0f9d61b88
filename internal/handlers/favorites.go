package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
)

// Favorites handlers. Favorites live only in Valkey; losing them is
// acceptable.

// AddFavorite - POST /api/favorites
func (h *Handlers) AddFavorite(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	flight, err := h.flights.GetByID(c.Request.Context(), req.FlightID)
	if err != nil {
		writeError(c, err)
		return
	}
	if flight == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "flight not found"})
		return
	}

	if err := h.valkeyClient.AddFavorite(c.Request.Context(), id, req.FlightID); err != nil {
		slog.Error("Failed to add favorite", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add favorite"})
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveFavorite - DELETE /api/favorites/:flightId
func (h *Handlers) RemoveFavorite(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	flightID, err := strconv.ParseInt(c.Param("flightId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id"})
		return
	}

	if err := h.valkeyClient.RemoveFavorite(c.Request.Context(), id, flightID); err != nil {
		slog.Error("Failed to remove favorite", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove favorite"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ListFavorites - GET /api/favorites
func (h *Handlers) ListFavorites(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	flightIDs, err := h.valkeyClient.ListFavorites(c.Request.Context(), id)
	if err != nil {
		slog.Error("Failed to list favorites", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list favorites"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"flight_ids": flightIDs})
}
