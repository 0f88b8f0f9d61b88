package consumers

import (
	"context"
	"log/slog"
	"time"

	"github.com/Walid274gh/SkyBooking-sub001/internal/cache"
	"github.com/Walid274gh/SkyBooking-sub001/internal/config"
	"github.com/Walid274gh/SkyBooking-sub001/internal/database"
	"github.com/Walid274gh/SkyBooking-sub001/internal/inventory"
	"github.com/Walid274gh/SkyBooking-sub001/internal/locks"
	"github.com/Walid274gh/SkyBooking-sub001/internal/messaging"
	"github.com/Walid274gh/SkyBooking-sub001/internal/repository"
	"github.com/Walid274gh/SkyBooking-sub001/internal/reservation"
	"github.com/Walid274gh/SkyBooking-sub001/internal/search"
)

// ConsumerService runs the event consumers and the hold expiration job in
// one process.
type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	repos    *repository.Repositories
	handlers *Handlers

	reservations *reservation.Manager
	holdTTL      time.Duration

	stop chan struct{}
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	valkeyClient, err := cache.NewValkeyClient(cfg.Cache)
	if err != nil {
		return nil, err
	}

	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		return nil, err
	}

	repos := repository.NewRepositoriesWithElasticsearch(db, esClient)

	inventoryMgr := inventory.NewManager(repos.Seats)
	reservationMgr := reservation.NewManager(repos.Reservations, repos.Tickets, repos.Flights,
		inventoryMgr, natsClient, locks.NewKeyedMutex())

	return &ConsumerService{
		db:           db,
		nats:         natsClient,
		valkey:       valkeyClient,
		repos:        repos,
		handlers:     NewHandlers(repos, valkeyClient),
		reservations: reservationMgr,
		holdTTL:      cfg.HoldTTL,
		stop:         make(chan struct{}),
	}, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	if _, err := cs.nats.SubscribeQueue("reservation.created", "consumers", cs.handlers.HandleReservationCreated); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue("reservation.confirmed", "consumers", cs.handlers.HandleReservationConfirmed); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue("reservation.cancelled", "consumers", cs.handlers.HandleReservationCancelled); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue("reservation.expired", "consumers", cs.handlers.HandleReservationExpired); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue("reservation.seats_modified", "consumers", cs.handlers.HandleSeatsModified); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue("payment.completed", "consumers", cs.handlers.HandlePaymentCompleted); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue("payment.failed", "consumers", cs.handlers.HandlePaymentFailed); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue("refund.issued", "consumers", cs.handlers.HandleRefundIssued); err != nil {
		return err
	}

	go cs.runExpirationLoop()

	slog.Info("All consumers started successfully")
	return nil
}

// runExpirationLoop cancels PENDING reservations whose hold elapsed. The
// conditional status transition inside ExpireHold makes it safe to run this
// loop in more than one consumer instance.
func (cs *ConsumerService) runExpirationLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-cs.stop:
			return
		case <-ticker.C:
			cs.expireHolds()
		}
	}
}

func (cs *ConsumerService) expireHolds() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-cs.holdTTL)
	pending, err := cs.repos.Reservations.ListPendingBefore(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to list expired holds", "error", err)
		return
	}

	for _, r := range pending {
		if err := cs.reservations.ExpireHold(ctx, r.ID); err != nil {
			slog.Error("Failed to expire reservation", "reservation_id", r.ID, "error", err)
		}
	}

	if len(pending) > 0 {
		slog.Info("Expired reservation holds", "count", len(pending))
	}
}

func (cs *ConsumerService) Stop() error {
	close(cs.stop)

	if err := cs.nats.Close(); err != nil {
		slog.Error("Error closing NATS connection", "error", err)
	}
	if err := cs.valkey.Close(); err != nil {
		slog.Error("Error closing Valkey connection", "error", err)
	}
	return cs.db.Close()
}
