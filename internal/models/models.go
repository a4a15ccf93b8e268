package models

// TicketClassInput describes one fare tier in an event create request
type TicketClassInput struct {
	Name     string `json:"name" binding:"required"`
	Price    int64  `json:"price" binding:"min=0"`
	Quantity int    `json:"quantity" binding:"min=0"`
}

// CreateEventRequest - request body for creating an event
type CreateEventRequest struct {
	Title         string             `json:"title" binding:"required"`
	Description   *string            `json:"description,omitempty"`
	EventType     string             `json:"event_type" binding:"required,oneof=ticketed free"`
	DatetimeStart string             `json:"datetime_start" binding:"required"`
	TicketClasses []TicketClassInput `json:"ticket_classes,omitempty"`
}

// UpdateEventRequest - post-publish edits are limited to this allow-listed
// field set; quantity and price changes go through dedicated flows.
type UpdateEventRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateBookingRequest - request body for creating a booking
type CreateBookingRequest struct {
	EventID    int64  `json:"event_id" binding:"required"`
	TicketType string `json:"ticket_type"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
}

// CancelBookingRequest - request body for cancelling a booking
type CancelBookingRequest struct {
	BookingID int64 `json:"booking_id" binding:"required"`
}

// CreatePaymentIntentRequest - request body for initiating a payment
type CreatePaymentIntentRequest struct {
	BookingID int64  `json:"booking_id" binding:"required"`
	Currency  string `json:"currency"`
}

// CreatePaymentIntentResponse carries the provider handle back to the client
type CreatePaymentIntentResponse struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
}

// ConfirmPaymentRequest - request body for the direct confirmation path
type ConfirmPaymentRequest struct {
	IntentID  string `json:"intent_id" binding:"required"`
	BookingID int64  `json:"booking_id" binding:"required"`
}

// ConfirmPaymentResponse reports the booking together with the provider-side
// payment status; Confirmed is false while the payment has not yet succeeded.
type ConfirmPaymentResponse struct {
	Booking       *Booking `json:"booking"`
	PaymentStatus string   `json:"payment_status"`
	Confirmed     bool     `json:"confirmed"`
}

// WebhookEvent - payload delivered by the payment provider
type WebhookEvent struct {
	Type string           `json:"type"`
	Data WebhookEventData `json:"data"`
}

// WebhookEventData - provider object inside a webhook event
type WebhookEventData struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
}

// ErrorResponse - uniform error body for all endpoints
type ErrorResponse struct {
	Error string `json:"error"`
}
