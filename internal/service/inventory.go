package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "ovation/internal/errors"
	"ovation/internal/logger"
	"ovation/internal/monitoring"
)

// InventoryService is the only writer of ticket-class quantities. Reserve
// and Release delegate to the store's atomic conditional updates; no code
// path may mutate a quantity directly.
type InventoryService struct {
	events EventStore
}

func NewInventoryService(events EventStore) *InventoryService {
	return &InventoryService{events: events}
}

// Reserve decrements the available quantity for a ticket class, failing
// without side effects when the class is unknown or exhausted.
func (s *InventoryService) Reserve(ctx context.Context, eventID int64, ticketType string, qty int) error {
	err := s.events.ReserveTickets(ctx, eventID, ticketType, qty)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTicketTypeNotFound):
			monitoring.ReserveFailures.WithLabelValues("unknown_type").Inc()
		case errors.Is(err, apperrors.ErrInsufficientInventory):
			monitoring.ReserveFailures.WithLabelValues("sold_out").Inc()
		default:
			monitoring.ReserveFailures.WithLabelValues("storage").Inc()
		}
		return err
	}

	return nil
}

// Release restores quantity previously taken by Reserve. Callers must gate
// it on a booking status transition so one booking releases at most once.
func (s *InventoryService) Release(ctx context.Context, eventID int64, ticketType string, qty int) error {
	if err := s.events.ReleaseTickets(ctx, eventID, ticketType, qty); err != nil {
		return fmt.Errorf("failed to release %d tickets for event %d class %q: %w", qty, eventID, ticketType, err)
	}

	logger.WithContext(ctx).Info("Released inventory",
		"event_id", eventID,
		"ticket_type", ticketType,
		"quantity", qty)

	return nil
}
