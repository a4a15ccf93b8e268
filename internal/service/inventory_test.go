package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ovation/internal/errors"
	"ovation/internal/models"
)

func TestReserveDecrementsQuantity(t *testing.T) {
	store := newFakeEventStore(ticketedEvent(1, models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: 10}))
	inventory := NewInventoryService(store)

	err := inventory.Reserve(context.Background(), 1, "GA", 3)

	require.NoError(t, err)
	assert.Equal(t, 7, store.quantity(1, "GA"))
}

func TestReserveInsufficientInventoryLeavesCounterUntouched(t *testing.T) {
	store := newFakeEventStore(ticketedEvent(1, models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: 2}))
	inventory := NewInventoryService(store)

	err := inventory.Reserve(context.Background(), 1, "GA", 3)

	require.ErrorIs(t, err, apperrors.ErrInsufficientInventory)
	assert.Equal(t, 2, store.quantity(1, "GA"))
}

func TestReserveUnknownTicketType(t *testing.T) {
	store := newFakeEventStore(ticketedEvent(1, models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: 2}))
	inventory := NewInventoryService(store)

	err := inventory.Reserve(context.Background(), 1, "VIP", 1)

	require.ErrorIs(t, err, apperrors.ErrTicketTypeNotFound)
}

func TestReleaseRestoresQuantity(t *testing.T) {
	store := newFakeEventStore(ticketedEvent(1, models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: 10}))
	inventory := NewInventoryService(store)

	require.NoError(t, inventory.Reserve(context.Background(), 1, "GA", 4))
	require.NoError(t, inventory.Release(context.Background(), 1, "GA", 4))

	assert.Equal(t, 10, store.quantity(1, "GA"))
}

// Fifty buyers race for five tickets; exactly five reservations may succeed
// and the counter must end at zero, never below.
func TestConcurrentReservesNeverOversell(t *testing.T) {
	const available = 5
	const buyers = 50

	store := newFakeEventStore(ticketedEvent(1, models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: available}))
	inventory := NewInventoryService(store)

	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- inventory.Reserve(context.Background(), 1, "GA", 1)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrInsufficientInventory)
		}
	}

	assert.Equal(t, available, succeeded)
	assert.Equal(t, 0, store.quantity(1, "GA"))
}
