package consumers

import (
	"context"
	"log/slog"

	"ovation/internal/config"
	"ovation/internal/database"
	"ovation/internal/external"
	"ovation/internal/messaging"
	"ovation/internal/repository"
	"ovation/internal/service"
)

// ConsumerService re-drives booking transitions from the payment event
// stream. Because MarkConfirmed/MarkFailed are idempotent, replaying an
// event that the webhook path already applied is harmless; this closes the
// gap when the API crashed between transition and downstream effects.
type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	repos    *repository.Repositories
	handlers *Handlers
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

	paymentClient := external.NewPaymentClient(cfg.Payment)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, natsClient, paymentClient, cfg.Payment)

	handlers := NewHandlers(services.Bookings)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		repos:    repos,
		handlers: handlers,
	}, nil
}

func (cs *ConsumerService) Repositories() *repository.Repositories {
	return cs.repos
}

func (cs *ConsumerService) NATS() *messaging.NATSClient {
	return cs.nats
}

func (cs *ConsumerService) BookingService() *service.BookingService {
	return cs.handlers.bookings
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	if _, err := cs.nats.SubscribeQueue("payment.completed", "workers", cs.handlers.HandlePaymentCompleted); err != nil {
		return err
	}

	if _, err := cs.nats.SubscribeQueue("payment.failed", "workers", cs.handlers.HandlePaymentFailed); err != nil {
		return err
	}

	if _, err := cs.nats.SubscribeQueue("booking.confirmed", "workers", cs.handlers.HandleBookingConfirmed); err != nil {
		return err
	}

	slog.Info("NATS consumers started")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	if err := cs.nats.Close(); err != nil {
		slog.Error("Failed to close NATS connection", "error", err)
	}
	return cs.db.Close()
}
