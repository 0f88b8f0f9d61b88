// Command generator seeds the database with flights and their seat maps for
// load testing and local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/Walid274gh/SkyBooking-sub001/internal/config"
	"github.com/Walid274gh/SkyBooking-sub001/internal/database"
	"github.com/Walid274gh/SkyBooking-sub001/internal/logger"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
	"github.com/Walid274gh/SkyBooking-sub001/internal/repository"
	"github.com/Walid274gh/SkyBooking-sub001/internal/search"
)

var (
	flightCount = flag.Int("flights", 50, "Number of flights to generate")
	days        = flag.Int("days", 14, "Spread departures over this many days")
	rows        = flag.Int("rows", 30, "Seat rows per flight")
	seatsPerRow = flag.Int("seats-per-row", 6, "Seats per row (max 6)")
	dryRun      = flag.Bool("dry-run", false, "Show what would be generated without writing")
)

var airports = []string{"ALG", "ORN", "CZL", "TLM", "AAE", "BJA", "GHA", "TMR"}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, "text")

	slog.Info("Starting flight generator", "flights", *flightCount, "days", *days)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		slog.Error("Failed to connect to Elasticsearch", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositoriesWithElasticsearch(db, esClient)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ctx := context.Background()

	for i := 0; i < *flightCount; i++ {
		origin := airports[rng.Intn(len(airports))]
		destination := airports[rng.Intn(len(airports))]
		for destination == origin {
			destination = airports[rng.Intn(len(airports))]
		}

		departure := time.Now().
			Add(time.Duration(rng.Intn(*days*24)) * time.Hour).
			Truncate(time.Hour)
		duration := time.Duration(60+rng.Intn(120)) * time.Minute

		flight := &models.Flight{
			FlightNumber:   fmt.Sprintf("SB%03d", 100+i),
			Origin:         origin,
			Destination:    destination,
			DepartureTime:  departure,
			ArrivalTime:    departure.Add(duration),
			TotalSeats:     *rows * *seatsPerRow,
			AvailableSeats: *rows * *seatsPerRow,
			Status:         models.FlightScheduled,
		}

		if *dryRun {
			slog.Info("Would generate flight", "flight_number", flight.FlightNumber,
				"origin", origin, "destination", destination, "departure", departure)
			continue
		}

		if err := repos.Flights.Create(ctx, flight); err != nil {
			slog.Error("Failed to create flight", "flight_number", flight.FlightNumber, "error", err)
			continue
		}

		economyPrice := int64(15000 + rng.Intn(20)*1000)
		businessPrice := economyPrice * 3
		if err := repos.Seats.CreateSeatsForFlight(ctx, flight.ID, *rows, *seatsPerRow, economyPrice, businessPrice); err != nil {
			slog.Error("Failed to create seats", "flight_id", flight.ID, "error", err)
			continue
		}

		if err := repos.FlightSearch.Index(ctx, flight); err != nil {
			slog.Error("Failed to index flight", "flight_id", flight.ID, "error", err)
		}

		slog.Info("Generated flight", "flight_number", flight.FlightNumber,
			"origin", origin, "destination", destination,
			"seats", flight.TotalSeats, "economy_price", economyPrice)
	}

	slog.Info("Flight generation completed")
}
