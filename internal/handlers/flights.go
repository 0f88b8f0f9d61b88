package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Walid274gh/SkyBooking-sub001/internal/executor"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
	"github.com/Walid274gh/SkyBooking-sub001/internal/search"
)

// Flights handlers

// CreateFlight - POST /api/flights
func (h *Handlers) CreateFlight(c *gin.Context) {
	var req models.CreateFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	departure, err := time.Parse(time.RFC3339, req.DepartureTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "departure_time must be RFC3339"})
		return
	}
	arrival, err := time.Parse(time.RFC3339, req.ArrivalTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "arrival_time must be RFC3339"})
		return
	}
	if !arrival.After(departure) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "arrival_time must be after departure_time"})
		return
	}
	if req.Rows <= 0 {
		req.Rows = 30
	}
	if req.SeatsPerRow <= 0 || req.SeatsPerRow > 6 {
		req.SeatsPerRow = 6
	}

	ctx := c.Request.Context()
	flight := &models.Flight{
		FlightNumber:   req.FlightNumber,
		Origin:         req.Origin,
		Destination:    req.Destination,
		DepartureTime:  departure,
		ArrivalTime:    arrival,
		TotalSeats:     req.Rows * req.SeatsPerRow,
		AvailableSeats: req.Rows * req.SeatsPerRow,
		Status:         models.FlightScheduled,
	}
	if err := h.flights.Create(ctx, flight); err != nil {
		slog.Error("Failed to create flight", "error", err)
		writeError(c, err)
		return
	}
	if err := h.seats.CreateSeatsForFlight(ctx, flight.ID, req.Rows, req.SeatsPerRow, req.EconomyPrice, req.BusinessPrice); err != nil {
		slog.Error("Failed to create seats", "flight_id", flight.ID, "error", err)
		writeError(c, err)
		return
	}

	// Search index and list cache refresh are best effort.
	if h.flightSearch != nil {
		if err := h.flightSearch.Index(ctx, flight); err != nil {
			slog.Error("Failed to index flight", "flight_id", flight.ID, "error", err)
		}
	}
	if h.valkeyClient != nil {
		if err := h.valkeyClient.InvalidateFlightLists(ctx); err != nil {
			slog.Error("Failed to invalidate flight list cache", "error", err)
		}
	}

	c.JSON(http.StatusCreated, models.CreateFlightResponse{ID: flight.ID})
}

// ListFlights - GET /api/flights
func (h *Handlers) ListFlights(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return
	}
	if pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 100"})
		return
	}

	ctx := c.Request.Context()

	// Serve the raw cached JSON when available to skip re-marshaling.
	if h.valkeyClient != nil {
		if rawJSON, err := h.valkeyClient.GetFlightListRaw(ctx, page, pageSize); err == nil {
			c.Data(http.StatusOK, "application/json", rawJSON)
			return
		}
	}

	flights, err := h.flights.List(ctx, page, pageSize)
	if err != nil {
		slog.Error("Failed to list flights", "error", err)
		writeError(c, err)
		return
	}

	if h.valkeyClient != nil {
		if err := h.valkeyClient.SetFlightList(ctx, page, pageSize, flights); err != nil {
			slog.Error("Failed to cache flight list", "error", err)
		}
	}

	c.JSON(http.StatusOK, flights)
}

// SearchFlights - GET /api/flights/search
func (h *Handlers) SearchFlights(c *gin.Context) {
	var req models.SearchFlightsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	docs, err := executor.Execute(c.Request.Context(), h.budgets, executor.ClassSearch, "flights.search",
		func(ctx context.Context) ([]search.FlightDocument, error) {
			return h.flightSearch.Search(ctx, req)
		})
	if err != nil {
		slog.Error("Flight search failed", "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, docs)
}

// GetFlight - GET /api/flights/:id
func (h *Handlers) GetFlight(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id"})
		return
	}

	flight, err := h.flights.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if flight == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "flight not found"})
		return
	}

	c.JSON(http.StatusOK, flight)
}

// ListFlightSeats - GET /api/flights/:id/seats
func (h *Handlers) ListFlightSeats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id"})
		return
	}

	seats, err := executor.Execute(c.Request.Context(), h.budgets, executor.ClassSeats, "seats.list_available",
		func(ctx context.Context) ([]models.Seat, error) {
			return h.inventory.ListAvailable(ctx, id)
		})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, seats)
}
