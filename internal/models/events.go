package models

import "time"

// NATS subjects for booking and payment lifecycle events
const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingExpired   = "booking.expired"
	EventPaymentInitiated = "payment.initiated"
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
)

// BookingCreatedEvent represents a booking creation event
type BookingCreatedEvent struct {
	BookingID  int64     `json:"booking_id"`
	EventID    int64     `json:"event_id"`
	UserID     int64     `json:"user_id"`
	TicketType string    `json:"ticket_type"`
	Quantity   int       `json:"quantity"`
	Timestamp  time.Time `json:"timestamp"`
}

// BookingConfirmedEvent represents a booking reaching the confirmed state
type BookingConfirmedEvent struct {
	BookingID       int64     `json:"booking_id"`
	EventID         int64     `json:"event_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	Timestamp       time.Time `json:"timestamp"`
}

// BookingCancelledEvent represents a booking cancellation
type BookingCancelledEvent struct {
	BookingID int64     `json:"booking_id"`
	EventID   int64     `json:"event_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// BookingExpiredEvent represents a pending booking reaped by the expiry job
type BookingExpiredEvent struct {
	BookingID int64     `json:"booking_id"`
	EventID   int64     `json:"event_id"`
	UserID    int64     `json:"user_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// PaymentInitiatedEvent represents a payment intent creation
type PaymentInitiatedEvent struct {
	BookingID   int64     `json:"booking_id"`
	EventID     int64     `json:"event_id"`
	TotalAmount int64     `json:"total_amount"`
	IntentID    string    `json:"intent_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// PaymentCompletedEvent represents a successful payment notification
type PaymentCompletedEvent struct {
	BookingID int64     `json:"booking_id"`
	IntentID  string    `json:"intent_id"`
	Timestamp time.Time `json:"timestamp"`
}

// PaymentFailedEvent represents a failed payment notification
type PaymentFailedEvent struct {
	BookingID int64     `json:"booking_id"`
	IntentID  string    `json:"intent_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
