package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "ovation/internal/errors"
	"ovation/internal/logger"
	"ovation/internal/models"
	"ovation/internal/monitoring"
)

// BookingService owns the booking state machine. Bookings enter as pending
// (or confirmed for free events), and leave pending through exactly one of
// confirmed, cancelled or failed. The only exit from a terminal state is
// the explicit confirmed -> cancelled user cancellation.
type BookingService struct {
	bookings  BookingStore
	events    EventStore
	inventory *InventoryService
	publisher Publisher
}

func NewBookingService(bookings BookingStore, events EventStore, inventory *InventoryService, publisher Publisher) *BookingService {
	return &BookingService{
		bookings:  bookings,
		events:    events,
		inventory: inventory,
		publisher: publisher,
	}
}

func (s *BookingService) Create(ctx context.Context, userID int64, req *models.CreateBookingRequest) (*models.Booking, error) {
	event, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperrors.ErrEventNotFound
	}

	now := time.Now()
	booking := &models.Booking{
		UserID:     userID,
		EventID:    event.ID,
		TicketType: req.TicketType,
		Quantity:   req.Quantity,
	}

	reserved := false
	if event.EventType == models.EventTypeFree {
		// Free events skip the ledger entirely and need no payment step
		booking.Status = models.BookingStatusConfirmed
		booking.TotalAmount = 0
	} else {
		class := findTicketClass(event, req.TicketType)
		if class == nil {
			return nil, apperrors.ErrTicketTypeNotFound
		}

		if err := s.inventory.Reserve(ctx, event.ID, class.Name, req.Quantity); err != nil {
			return nil, err
		}
		reserved = true

		booking.Status = models.BookingStatusPending
		booking.TotalAmount = class.Price * int64(req.Quantity)
	}

	booking.TicketNumbers = generateTicketNumbers(event.ID, req.Quantity)

	if err := s.bookings.Create(ctx, booking); err != nil {
		// Never leave the counter decremented without a persisted booking
		if reserved {
			if relErr := s.inventory.Release(ctx, event.ID, req.TicketType, req.Quantity); relErr != nil {
				logger.WithContext(ctx).Error("Failed to roll back reservation after booking create failure",
					"error", relErr,
					"event_id", event.ID,
					"ticket_type", req.TicketType)
			}
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	monitoring.BookingsCreated.WithLabelValues(event.EventType, booking.Status).Inc()

	s.publish(ctx, models.EventBookingCreated, models.BookingCreatedEvent{
		BookingID:  booking.ID,
		EventID:    booking.EventID,
		UserID:     booking.UserID,
		TicketType: booking.TicketType,
		Quantity:   booking.Quantity,
		Timestamp:  now,
	})

	return booking, nil
}

func (s *BookingService) List(ctx context.Context, userID int64) ([]models.Booking, error) {
	bookings, err := s.bookings.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) Get(ctx context.Context, bookingID int64) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, apperrors.ErrBookingNotFound
	}
	return booking, nil
}

// Cancel handles user-initiated cancellation from pending or confirmed.
// Inventory held by the booking is restored exactly once, gated on the
// status transition actually happening.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, apperrors.ErrBookingNotFound
	}
	if booking.UserID != userID {
		return nil, apperrors.ErrForbidden
	}

	prev, ok, err := s.bookings.CancelFromActive(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	if !ok {
		if prev == models.BookingStatusCancelled {
			return nil, apperrors.ErrAlreadyCancelled
		}
		return nil, apperrors.ErrAlreadyTerminal
	}

	if err := s.releaseFor(ctx, booking); err != nil {
		logger.WithContext(ctx).Error("Failed to release inventory during cancellation",
			"error", err,
			"booking_id", booking.ID)
	}

	booking.Status = models.BookingStatusCancelled
	monitoring.BookingTransitions.WithLabelValues(models.BookingStatusCancelled).Inc()

	s.publish(ctx, models.EventBookingCancelled, models.BookingCancelledEvent{
		BookingID: booking.ID,
		EventID:   booking.EventID,
		Reason:    "user cancellation",
		Timestamp: time.Now(),
	})

	return booking, nil
}

// MarkConfirmed drives the pending -> confirmed transition. It is
// idempotent: confirming an already-confirmed booking with the same intent
// id is a successful no-op, so at-least-once webhook delivery and the
// direct confirmation path can both call it freely.
func (s *BookingService) MarkConfirmed(ctx context.Context, bookingID int64, intentID string) (*models.Booking, error) {
	ok, err := s.bookings.ConfirmFromPending(ctx, bookingID, intentID)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, apperrors.ErrBookingNotFound
	}

	if !ok {
		if booking.Status == models.BookingStatusConfirmed &&
			booking.PaymentIntentID != nil && *booking.PaymentIntentID == intentID {
			return booking, nil
		}
		return nil, apperrors.ErrAlreadyTerminal
	}

	monitoring.BookingTransitions.WithLabelValues(models.BookingStatusConfirmed).Inc()

	s.publish(ctx, models.EventBookingConfirmed, models.BookingConfirmedEvent{
		BookingID:       booking.ID,
		EventID:         booking.EventID,
		PaymentIntentID: intentID,
		Timestamp:       time.Now(),
	})

	return booking, nil
}

// MarkFailed drives the pending -> failed transition and restores the
// reserved inventory. Repeating the call for the same intent is a no-op.
func (s *BookingService) MarkFailed(ctx context.Context, bookingID int64, intentID string) (*models.Booking, error) {
	ok, err := s.bookings.FailFromPending(ctx, bookingID, intentID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark booking failed: %w", err)
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, apperrors.ErrBookingNotFound
	}

	if !ok {
		if booking.Status == models.BookingStatusFailed &&
			booking.PaymentIntentID != nil && *booking.PaymentIntentID == intentID {
			return booking, nil
		}
		return nil, apperrors.ErrAlreadyTerminal
	}

	if err := s.releaseFor(ctx, booking); err != nil {
		logger.WithContext(ctx).Error("Failed to release inventory after payment failure",
			"error", err,
			"booking_id", booking.ID)
	}

	monitoring.BookingTransitions.WithLabelValues(models.BookingStatusFailed).Inc()

	s.publish(ctx, models.EventPaymentFailed, models.PaymentFailedEvent{
		BookingID: booking.ID,
		IntentID:  intentID,
		Reason:    "payment failed",
		Timestamp: time.Now(),
	})

	return booking, nil
}

// ExpirePending reaps an abandoned pending booking: cancel, release,
// notify. The pending-only guard means a payment that confirmed in the
// meantime is left alone.
func (s *BookingService) ExpirePending(ctx context.Context, booking *models.Booking) error {
	ok, err := s.bookings.CancelFromPending(ctx, booking.ID)
	if err != nil {
		return fmt.Errorf("failed to expire booking: %w", err)
	}
	if !ok {
		return nil
	}

	if err := s.releaseFor(ctx, booking); err != nil {
		logger.WithContext(ctx).Error("Failed to release inventory during expiration",
			"error", err,
			"booking_id", booking.ID)
	}

	monitoring.BookingExpirations.Inc()

	s.publish(ctx, models.EventBookingExpired, models.BookingExpiredEvent{
		BookingID: booking.ID,
		EventID:   booking.EventID,
		UserID:    booking.UserID,
		Reason:    "pending booking timed out",
		Timestamp: time.Now(),
	})

	return nil
}

// releaseFor restores inventory for bookings of ticketed events. Free-event
// bookings never reserved anything.
func (s *BookingService) releaseFor(ctx context.Context, booking *models.Booking) error {
	event, err := s.events.GetByID(ctx, booking.EventID)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil || event.EventType != models.EventTypeTicketed {
		return nil
	}

	return s.inventory.Release(ctx, booking.EventID, booking.TicketType, booking.Quantity)
}

func (s *BookingService) publish(ctx context.Context, subject string, data interface{}) {
	if err := s.publisher.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"subject", subject)
	}
}

func findTicketClass(event *models.Event, name string) *models.TicketClass {
	for i := range event.TicketClasses {
		if event.TicketClasses[i].Name == name {
			return &event.TicketClasses[i]
		}
	}
	return nil
}

// generateTicketNumbers derives ticket numbers from the event id, a random
// per-booking token and the ticket's position, so two bookings created in
// the same instant still get distinct numbers. They are generated once at
// creation and never regenerated.
func generateTicketNumbers(eventID int64, qty int) []string {
	token := strings.Split(uuid.New().String(), "-")[0]
	numbers := make([]string, qty)
	for i := 0; i < qty; i++ {
		numbers[i] = fmt.Sprintf("TKT-%d-%s-%04d", eventID, token, i+1)
	}
	return numbers
}
