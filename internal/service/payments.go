package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	apperrors "ovation/internal/errors"
	"ovation/internal/external"
	"ovation/internal/logger"
	"ovation/internal/models"
	"ovation/internal/monitoring"
)

// MinPaymentAmount is the smallest charge the provider accepts, in minor
// currency units.
const MinPaymentAmount = 50

const defaultCurrency = "usd"

// Provider webhook event types the reconciler understands
const (
	webhookPaymentSucceeded = "payment_intent.succeeded"
	webhookPaymentFailed    = "payment_intent.payment_failed"
)

const metadataBookingIDKey = "booking_id"

// PaymentService reconciles external payment outcomes into booking state.
// Both entry points, direct confirmation and webhooks, converge on the
// idempotent MarkConfirmed/MarkFailed transitions; this layer does no
// deduplication of its own.
type PaymentService struct {
	bookings   BookingStore
	bookingSvc *BookingService
	provider   PaymentProvider
	publisher  Publisher

	webhookSecret    string
	webhookTolerance time.Duration
	now              func() time.Time
}

func NewPaymentService(bookings BookingStore, bookingSvc *BookingService, provider PaymentProvider, publisher Publisher, cfg external.PaymentConfig) *PaymentService {
	return &PaymentService{
		bookings:         bookings,
		bookingSvc:       bookingSvc,
		provider:         provider,
		publisher:        publisher,
		webhookSecret:    cfg.WebhookSecret,
		webhookTolerance: cfg.WebhookTolerance,
		now:              time.Now,
	}
}

// CreateIntent registers a payment with the provider for a pending booking
func (s *PaymentService) CreateIntent(ctx context.Context, bookingID, userID int64, currency string) (*models.CreatePaymentIntentResponse, error) {
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
	if booking.IsTerminal() {
		return nil, apperrors.ErrAlreadyTerminal
	}
	if booking.TotalAmount < MinPaymentAmount {
		return nil, apperrors.ErrAmountTooSmall
	}

	if currency == "" {
		currency = defaultCurrency
	}

	intent, err := s.provider.CreateIntent(ctx, booking.TotalAmount, currency, map[string]string{
		metadataBookingIDKey: strconv.FormatInt(booking.ID, 10),
	})
	if err != nil {
		monitoring.PaymentIntents.WithLabelValues("error").Inc()
		return nil, err
	}

	ok, err := s.bookings.SetPaymentIntent(ctx, booking.ID, intent.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to store payment intent: %w", err)
	}
	if !ok {
		// Booking reached a terminal state while we talked to the provider
		return nil, apperrors.ErrAlreadyTerminal
	}

	monitoring.PaymentIntents.WithLabelValues("created").Inc()

	s.publish(ctx, models.EventPaymentInitiated, models.PaymentInitiatedEvent{
		BookingID:   booking.ID,
		EventID:     booking.EventID,
		TotalAmount: booking.TotalAmount,
		IntentID:    intent.ID,
		Timestamp:   s.now(),
	})

	return &models.CreatePaymentIntentResponse{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// Confirm is the direct confirmation path: the client reports success, we
// trust only the provider's view of the intent. The intent must carry the
// target booking in its metadata; a succeeded intent can only ever confirm
// the booking it was created for. Anything other than a succeeded or failed
// intent leaves the booking untouched.
func (s *PaymentService) Confirm(ctx context.Context, intentID string, bookingID int64) (*models.ConfirmPaymentResponse, error) {
	intent, err := s.provider.Retrieve(ctx, intentID)
	if err != nil {
		return nil, err
	}

	intentBookingID, err := bookingIDFromMetadata(intent.Metadata)
	if err != nil || intentBookingID != bookingID {
		return nil, apperrors.ErrForbidden
	}

	switch intent.Status {
	case models.PaymentStatusSucceeded:
		// fall through to MarkConfirmed below
	case models.PaymentStatusFailed:
		booking, err := s.bookingSvc.MarkFailed(ctx, bookingID, intentID)
		if err != nil {
			return nil, err
		}
		return &models.ConfirmPaymentResponse{
			Booking:       booking,
			PaymentStatus: intent.Status,
			Confirmed:     false,
		}, nil
	default:
		booking, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return nil, fmt.Errorf("failed to get booking: %w", err)
		}
		if booking == nil {
			return nil, apperrors.ErrBookingNotFound
		}
		return &models.ConfirmPaymentResponse{
			Booking:       booking,
			PaymentStatus: intent.Status,
			Confirmed:     false,
		}, nil
	}

	booking, err := s.bookingSvc.MarkConfirmed(ctx, bookingID, intentID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.EventPaymentCompleted, models.PaymentCompletedEvent{
		BookingID: booking.ID,
		IntentID:  intentID,
		Timestamp: s.now(),
	})

	return &models.ConfirmPaymentResponse{
		Booking:       booking,
		PaymentStatus: intent.Status,
		Confirmed:     true,
	}, nil
}

// HandleWebhook processes a provider notification. The signature is
// verified before anything else; an unverified payload is never acted on.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	if err := external.VerifyWebhookSignature(payload, signatureHeader, s.webhookSecret, s.webhookTolerance, s.now()); err != nil {
		monitoring.WebhookEvents.WithLabelValues("unknown", "invalid_signature").Inc()
		return err
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		monitoring.WebhookEvents.WithLabelValues("unknown", "malformed").Inc()
		return fmt.Errorf("%w: %v", apperrors.ErrMalformedPayload, err)
	}

	switch event.Type {
	case webhookPaymentSucceeded:
		return s.webhookOutcome(ctx, event, true)
	case webhookPaymentFailed:
		return s.webhookOutcome(ctx, event, false)
	default:
		// Unknown event types are acknowledged so the provider stops retrying
		monitoring.WebhookEvents.WithLabelValues(event.Type, "ignored").Inc()
		logger.WithContext(ctx).Info("Ignoring webhook event type", "type", event.Type)
		return nil
	}
}

func (s *PaymentService) webhookOutcome(ctx context.Context, event models.WebhookEvent, succeeded bool) error {
	bookingID, err := bookingIDFromMetadata(event.Data.Metadata)
	if err != nil {
		monitoring.WebhookEvents.WithLabelValues(event.Type, "malformed").Inc()
		return err
	}

	if succeeded {
		booking, err := s.bookingSvc.MarkConfirmed(ctx, bookingID, event.Data.ID)
		if err != nil {
			if errors.Is(err, apperrors.ErrAlreadyTerminal) {
				// A conflicting terminal state; retrying the delivery cannot
				// change the outcome, so acknowledge it.
				monitoring.WebhookEvents.WithLabelValues(event.Type, "stale").Inc()
				logger.WithContext(ctx).Warn("Webhook arrived for terminal booking",
					"booking_id", bookingID,
					"intent_id", event.Data.ID)
				return nil
			}
			monitoring.WebhookEvents.WithLabelValues(event.Type, "error").Inc()
			return err
		}

		monitoring.WebhookEvents.WithLabelValues(event.Type, "processed").Inc()

		s.publish(ctx, models.EventPaymentCompleted, models.PaymentCompletedEvent{
			BookingID: booking.ID,
			IntentID:  event.Data.ID,
			Timestamp: s.now(),
		})
		return nil
	}

	if _, err := s.bookingSvc.MarkFailed(ctx, bookingID, event.Data.ID); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyTerminal) {
			monitoring.WebhookEvents.WithLabelValues(event.Type, "stale").Inc()
			logger.WithContext(ctx).Warn("Webhook arrived for terminal booking",
				"booking_id", bookingID,
				"intent_id", event.Data.ID)
			return nil
		}
		monitoring.WebhookEvents.WithLabelValues(event.Type, "error").Inc()
		return err
	}

	monitoring.WebhookEvents.WithLabelValues(event.Type, "processed").Inc()
	return nil
}

func (s *PaymentService) publish(ctx context.Context, subject string, data interface{}) {
	if err := s.publisher.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"subject", subject)
	}
}

func bookingIDFromMetadata(metadata map[string]string) (int64, error) {
	raw, ok := metadata[metadataBookingIDKey]
	if !ok {
		return 0, fmt.Errorf("%w: metadata missing %s", apperrors.ErrMalformedPayload, metadataBookingIDKey)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", apperrors.ErrMalformedPayload, metadataBookingIDKey, raw)
	}

	return id, nil
}
