package models

import (
	"time"
)

// Event types
const (
	EventTypeTicketed = "ticketed"
	EventTypeFree     = "free"
)

// Booking statuses. Status is an explicit enum with validated transitions;
// it is never inferred from side fields like payment_intent_id.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusFailed    = "failed"
)

// Payment intent statuses as reported by the payment provider
const (
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// User represents a user in the system
type User struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	IsActive     bool      `json:"is_active" db:"is_active"`
}

// Event represents an event with its ticket classes
type Event struct {
	ID            int64         `json:"id" db:"id"`
	Title         string        `json:"title" db:"title"`
	Description   *string       `json:"description" db:"description"`
	EventType     string        `json:"event_type" db:"event_type"`
	DatetimeStart time.Time     `json:"datetime_start" db:"datetime_start"`
	Published     bool          `json:"published" db:"published"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
	TicketClasses []TicketClass `json:"ticket_classes,omitempty"` // Not from events row, filled separately
}

// TicketClass is a named fare tier on an event. Quantity is the live
// available count; it must never go negative and is only mutated through
// the inventory reserve/release operations.
type TicketClass struct {
	ID        int64     `json:"id" db:"id"`
	EventID   int64     `json:"event_id" db:"event_id"`
	Name      string    `json:"name" db:"name"`
	Price     int64     `json:"price" db:"price"` // minor currency units
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Booking represents a user's intent to purchase tickets
type Booking struct {
	ID              int64      `json:"id" db:"id"`
	UserID          int64      `json:"user_id" db:"user_id"`
	EventID         int64      `json:"event_id" db:"event_id"`
	TicketType      string     `json:"ticket_type" db:"ticket_type"`
	Quantity        int        `json:"quantity" db:"quantity"`
	TotalAmount     int64      `json:"total_amount" db:"total_amount"` // minor currency units
	Status          string     `json:"status" db:"status"`
	PaymentIntentID *string    `json:"payment_intent_id,omitempty" db:"payment_intent_id"`
	PaidAt          *time.Time `json:"paid_at,omitempty" db:"paid_at"`
	TicketNumbers   []string   `json:"ticket_numbers" db:"ticket_numbers"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether no further status transition is permitted,
// except the explicit confirmed -> cancelled path.
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case BookingStatusConfirmed, BookingStatusCancelled, BookingStatusFailed:
		return true
	}
	return false
}
