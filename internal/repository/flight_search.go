package repository

import (
	"context"

	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
	"github.com/Walid274gh/SkyBooking-sub001/internal/search"
)

// FlightSearchRepository serves the search endpoint from the Elasticsearch
// index. It is optional: when Elasticsearch is not configured the gateway
// falls back to plain catalogue listing.
type FlightSearchRepository struct {
	es *search.ElasticsearchClient
}

func NewFlightSearchRepository(es *search.ElasticsearchClient) *FlightSearchRepository {
	return &FlightSearchRepository{es: es}
}

func (r *FlightSearchRepository) Index(ctx context.Context, flight *models.Flight) error {
	return r.es.IndexFlight(ctx, search.FlightDocument{
		ID:             flight.ID,
		FlightNumber:   flight.FlightNumber,
		Origin:         flight.Origin,
		Destination:    flight.Destination,
		DepartureTime:  flight.DepartureTime,
		ArrivalTime:    flight.ArrivalTime,
		AvailableSeats: flight.AvailableSeats,
		Status:         flight.Status,
	})
}

func (r *FlightSearchRepository) Search(ctx context.Context, req models.SearchFlightsRequest) ([]search.FlightDocument, error) {
	return r.es.SearchFlights(ctx, search.SearchParams{
		Origin:      req.Origin,
		Destination: req.Destination,
		Date:        req.Date,
		Query:       req.Query,
		Page:        req.Page,
		PageSize:    req.PageSize,
	})
}
