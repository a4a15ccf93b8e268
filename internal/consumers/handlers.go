package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/nats-io/stan.go"

	apperrors "ovation/internal/errors"
	"ovation/internal/models"
	"ovation/internal/service"
)

type Handlers struct {
	bookings *service.BookingService
}

func NewHandlers(bookings *service.BookingService) *Handlers {
	return &Handlers{bookings: bookings}
}

// HandlePaymentCompleted applies a completed payment to its booking. The
// transition is idempotent, so redelivery and races with the webhook path
// resolve to the same state.
func (h *Handlers) HandlePaymentCompleted(msg *stan.Msg) {
	var event models.PaymentCompletedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment completed event", "error", err)
		return
	}

	_, err := h.bookings.MarkConfirmed(context.Background(), event.BookingID, event.IntentID)
	if err != nil && !errors.Is(err, apperrors.ErrAlreadyTerminal) {
		slog.Error("Failed to confirm booking from payment event",
			"error", err,
			"booking_id", event.BookingID,
			"intent_id", event.IntentID)
		return
	}

	slog.Info("Processed payment completed event",
		"booking_id", event.BookingID,
		"intent_id", event.IntentID)
}

// HandlePaymentFailed applies a failed payment to its booking
func (h *Handlers) HandlePaymentFailed(msg *stan.Msg) {
	var event models.PaymentFailedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment failed event", "error", err)
		return
	}

	_, err := h.bookings.MarkFailed(context.Background(), event.BookingID, event.IntentID)
	if err != nil && !errors.Is(err, apperrors.ErrAlreadyTerminal) {
		slog.Error("Failed to fail booking from payment event",
			"error", err,
			"booking_id", event.BookingID,
			"intent_id", event.IntentID)
		return
	}

	slog.Info("Processed payment failed event",
		"booking_id", event.BookingID,
		"intent_id", event.IntentID)
}

// HandleBookingConfirmed kicks off post-confirmation work such as ticket
// delivery notifications.
func (h *Handlers) HandleBookingConfirmed(msg *stan.Msg) {
	var event models.BookingConfirmedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking confirmed event", "error", err)
		return
	}

	booking, err := h.bookings.Get(context.Background(), event.BookingID)
	if err != nil {
		slog.Error("Failed to load confirmed booking",
			"error", err,
			"booking_id", event.BookingID)
		return
	}

	slog.Info("Booking confirmed, tickets ready for delivery",
		"booking_id", booking.ID,
		"event_id", booking.EventID,
		"ticket_count", len(booking.TicketNumbers))
}
