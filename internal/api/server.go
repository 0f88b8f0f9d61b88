package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Walid274gh/SkyBooking-sub001/internal/cache"
	"github.com/Walid274gh/SkyBooking-sub001/internal/cancellation"
	"github.com/Walid274gh/SkyBooking-sub001/internal/config"
	"github.com/Walid274gh/SkyBooking-sub001/internal/database"
	"github.com/Walid274gh/SkyBooking-sub001/internal/external"
	"github.com/Walid274gh/SkyBooking-sub001/internal/handlers"
	"github.com/Walid274gh/SkyBooking-sub001/internal/inventory"
	"github.com/Walid274gh/SkyBooking-sub001/internal/locks"
	"github.com/Walid274gh/SkyBooking-sub001/internal/logger"
	"github.com/Walid274gh/SkyBooking-sub001/internal/messaging"
	"github.com/Walid274gh/SkyBooking-sub001/internal/middleware"
	"github.com/Walid274gh/SkyBooking-sub001/internal/payment"
	"github.com/Walid274gh/SkyBooking-sub001/internal/repository"
	"github.com/Walid274gh/SkyBooking-sub001/internal/reservation"
	"github.com/Walid274gh/SkyBooking-sub001/internal/search"
)

// Server wires storage, messaging, caches and the lifecycle managers behind
// the REST gateway.
type Server struct {
	router *gin.Engine
	config *config.Config
	db     *database.DB
	nats   *messaging.NATSClient
	valkey *cache.ValkeyClient
	repos  *repository.Repositories

	Inventory     *inventory.Manager
	Reservations  *reservation.Manager
	Payments      *payment.Manager
	Cancellations *cancellation.Manager
}

func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	valkeyClient, err := cache.NewValkeyClient(cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to connect to Valkey", "error", err)
	}

	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", "error", err)
	}

	bankClient := external.NewBankClient(cfg.Bank)
	rendererClient := external.NewRendererClient(cfg.Renderer)

	repos := repository.NewRepositoriesWithElasticsearch(db, esClient)

	// The reservation lock is shared: payment, cancellation and expiration
	// all serialize on the same reservation key.
	resLocks := locks.NewKeyedMutex()

	inventoryMgr := inventory.NewManager(repos.Seats)
	reservationMgr := reservation.NewManager(repos.Reservations, repos.Tickets, repos.Flights, inventoryMgr, natsClient, resLocks)
	paymentMgr := payment.NewManager(repos.Payments, repos.Reservations, reservationMgr, bankClient, natsClient, resLocks)
	cancellationMgr := cancellation.NewManager(repos.Reservations, repos.Flights, repos.Refunds, inventoryMgr, paymentMgr, natsClient, resLocks)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	server := &Server{
		router: router,
		config: cfg,
		db:     db,
		nats:   natsClient,
		valkey: valkeyClient,
		repos:  repos,

		Inventory:     inventoryMgr,
		Reservations:  reservationMgr,
		Payments:      paymentMgr,
		Cancellations: cancellationMgr,
	}

	h := handlers.NewHandlers(
		repos.Customers,
		repos.Flights,
		repos.Seats,
		repos.FlightSearch,
		inventoryMgr,
		reservationMgr,
		paymentMgr,
		cancellationMgr,
		rendererClient,
		valkeyClient,
		cfg.Budgets,
	)
	server.setupRoutes(h)

	return server
}

func (s *Server) setupRoutes(h *handlers.Handlers) {
	api := s.router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/logout", h.Logout)
		}

		flights := api.Group("/flights")
		{
			flights.POST("", h.CreateFlight)
			flights.GET("", h.ListFlights)
			flights.GET("/search", h.SearchFlights)
			flights.GET("/:id", h.GetFlight)
			flights.GET("/:id/seats", h.ListFlightSeats)
		}

		authed := api.Group("")
		authed.Use(middleware.TokenAuth(s.valkey))
		{
			reservations := authed.Group("/reservations")
			{
				reservations.POST("", h.CreateReservation)
				reservations.GET("", h.ListReservations)
				reservations.GET("/:id", h.GetReservation)
				reservations.GET("/:id/tickets", h.ListReservationTickets)
				reservations.GET("/:id/cancellation-policy", h.GetCancellationPolicy)
				reservations.POST("/:id/cancel", h.CancelReservation)
				reservations.GET("/:id/can-modify", h.CanModifyReservation)
				reservations.PATCH("/:id/seats", h.ModifyReservationSeats)
				reservations.GET("/:id/refunds", h.ListRefunds)
			}

			tickets := authed.Group("/tickets")
			{
				tickets.GET("/:id", h.GetTicket)
				tickets.GET("/:id/reservation", h.GetTicketReservation)
				tickets.GET("/:id/pdf", h.GetTicketPDF)
			}

			payments := authed.Group("/payments")
			{
				payments.POST("", h.ProcessPayment)
				payments.GET("/:id", h.GetPayment)
				payments.GET("/:id/invoice", h.GetInvoice)
			}

			favorites := authed.Group("/favorites")
			{
				favorites.POST("", h.AddFavorite)
				favorites.DELETE("/:flightId", h.RemoveFavorite)
				favorites.GET("", h.ListFavorites)
			}
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) healthCheck(c *gin.Context) {
	check := s.db.HealthCheck(c.Request.Context())
	if check.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": check})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "skybooking-api",
		"database": check,
	})
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests and the outer http.Server.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes the connections in reverse dependency order.
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			logger.Get().Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
