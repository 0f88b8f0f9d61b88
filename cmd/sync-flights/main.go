// Command sync-flights rebuilds the Elasticsearch flight index from the
// database, which is the source of truth. Run it after index mapping changes
// or when the index drifted.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/Walid274gh/SkyBooking-sub001/internal/config"
	"github.com/Walid274gh/SkyBooking-sub001/internal/database"
	"github.com/Walid274gh/SkyBooking-sub001/internal/logger"
	"github.com/Walid274gh/SkyBooking-sub001/internal/repository"
	"github.com/Walid274gh/SkyBooking-sub001/internal/search"
)

func main() {
	var timeout time.Duration
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Total reindexing timeout")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, "text")

	slog.Info("Starting flight index synchronization")

	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		slog.Error("Failed to connect to Elasticsearch", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositoriesWithElasticsearch(db, esClient)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	flights, err := repos.Flights.ListAll(ctx)
	if err != nil {
		slog.Error("Failed to list flights", "error", err)
		os.Exit(1)
	}

	indexed, failed := 0, 0
	for i := range flights {
		if err := repos.FlightSearch.Index(ctx, &flights[i]); err != nil {
			slog.Error("Failed to index flight", "flight_id", flights[i].ID, "error", err)
			failed++
			continue
		}
		indexed++
	}

	slog.Info("Flight index synchronization completed", "indexed", indexed, "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}
