package service

import (
	"context"
	"time"

	"ovation/internal/external"
	"ovation/internal/messaging"
	"ovation/internal/models"
	"ovation/internal/repository"
)

// EventStore is the persistence surface the booking flow needs from events.
// *repository.EventRepository is the production implementation.
type EventStore interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	ReserveTickets(ctx context.Context, eventID int64, name string, qty int) error
	ReleaseTickets(ctx context.Context, eventID int64, name string, qty int) error
}

// BookingStore is the persistence surface for bookings. Transition methods
// are conditional on the current status and report whether the row actually
// moved, which is what makes the state machine race-safe.
type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	GetByUserID(ctx context.Context, userID int64) ([]models.Booking, error)
	SetPaymentIntent(ctx context.Context, id int64, intentID string) (bool, error)
	ConfirmFromPending(ctx context.Context, id int64, intentID string) (bool, error)
	FailFromPending(ctx context.Context, id int64, intentID string) (bool, error)
	CancelFromActive(ctx context.Context, id int64) (string, bool, error)
	CancelFromPending(ctx context.Context, id int64) (bool, error)
	GetExpiredPending(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
}

// PaymentProvider is the external payment gateway surface
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*external.Intent, error)
	Retrieve(ctx context.Context, intentID string) (*external.Intent, error)
}

// Publisher emits lifecycle events to the message bus
type Publisher interface {
	Publish(subject string, data interface{}) error
}

type Services struct {
	Events   *EventService
	Bookings *BookingService
	Payments *PaymentService
}

func NewServices(repos *repository.Repositories, natsClient *messaging.NATSClient, paymentClient *external.PaymentClient, paymentCfg external.PaymentConfig) *Services {
	inventory := NewInventoryService(repos.Events)
	eventService := NewEventService(repos.Events)
	bookingService := NewBookingService(repos.Bookings, repos.Events, inventory, natsClient)
	paymentService := NewPaymentService(repos.Bookings, bookingService, paymentClient, natsClient, paymentCfg)

	return &Services{
		Events:   eventService,
		Bookings: bookingService,
		Payments: paymentService,
	}
}
