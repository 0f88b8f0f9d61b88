package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Walid274gh/SkyBooking-sub001/internal/config"
	"github.com/Walid274gh/SkyBooking-sub001/internal/consumers"
	"github.com/Walid274gh/SkyBooking-sub001/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// Consumers need their own NATS client id
	cfg.NATS.ClientID = "skybooking-consumers"

	slog.Info("Starting consumers service...")

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	slog.Info("Consumers service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down consumers service...")

	if err := consumerService.Stop(); err != nil {
		slog.Error("Error during shutdown", "error", err)
	}

	slog.Info("Consumers service stopped")
}
