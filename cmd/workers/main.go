package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ovation/cmd/workers/jobs"
	"ovation/internal/config"
	"ovation/internal/consumers"
	"ovation/internal/logger"
)

func main() {
	cfg := config.Load()
	cfg.NATS.ClientID = "ovation-workers"

	logger.Init(cfg.LogLevel, cfg.LogFormat)

	log.Println("Starting workers service...")

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		log.Fatalf("Failed to create consumer service: %v", err)
	}

	if err := consumerService.Start(); err != nil {
		log.Fatalf("Failed to start consumers: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expirationJob := jobs.NewBookingExpirationJob(
		consumerService.Repositories().Bookings,
		consumerService.BookingService(),
		cfg.BookingExpiration,
		cfg.ExpirationCheckInterval,
	)
	expirationJob.Start(ctx)

	log.Println("Workers service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down workers service...")

	expirationJob.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := consumerService.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Workers service stopped")
}
