package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ovation/internal/errors"
	"ovation/internal/models"
)

func TestCreateBookingPendingWithReservation(t *testing.T) {
	events := newFakeEventStore(ticketedEvent(1,
		models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: 5}))
	bookings := newFakeBookingStore()
	pub := newFakePublisher()
	svc := newTestBookingService(events, bookings, pub)

	booking, err := svc.Create(context.Background(), 42, &models.CreateBookingRequest{
		EventID:    1,
		TicketType: "GA",
		Quantity:   3,
	})

	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, int64(6000), booking.TotalAmount)
	assert.Equal(t, int64(42), booking.UserID)
	assert.Len(t, booking.TicketNumbers, 3)
	assert.Equal(t, 2, events.quantity(1, "GA"))
	assert.Equal(t, 1, pub.count(models.EventBookingCreated))
}

func TestCreateBookingFreeEventConfirmedImmediately(t *testing.T) {
	events := newFakeEventStore(freeEvent(1))
	bookings := newFakeBookingStore()
	svc := newTestBookingService(events, bookings, newFakePublisher())

	booking, err := svc.Create(context.Background(), 42, &models.CreateBookingRequest{
		EventID:    1,
		TicketType: "",
		Quantity:   2,
	})

	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, int64(0), booking.TotalAmount)
	assert.Len(t, booking.TicketNumbers, 2)
}

func TestCreateBookingEventNotFound(t *testing.T) {
	svc := newTestBookingService(newFakeEventStore(), newFakeBookingStore(), newFakePublisher())

	_, err := svc.Create(context.Background(), 42, &models.CreateBookingRequest{
		EventID:    99,
		TicketType: "GA",
		Quantity:   1,
	})

	require.ErrorIs(t, err, apperrors.ErrEventNotFound)
}

func TestCreateBookingUnknownTicketType(t *testing.T) {
	events := newFakeEventStore(ticketedEvent(1,
		models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: 5}))
	svc := newTestBookingService(events, newFakeBookingStore(), newFakePublisher())

	_, err := svc.Create(context.Background(), 42, &models.CreateBookingRequest{
		EventID:    1,
		TicketType: "VIP",
		Quantity:   1,
	})

	require.ErrorIs(t, err, apperrors.ErrTicketTypeNotFound)
	assert.Equal(t, 5, events.quantity(1, "GA"))
}

// Two buyers against a five-ticket class: the first booking of three leaves
// two, the second request for three is rejected without touching the
// counter, and cancelling the first restores all five.
func TestBookingLifecycleAgainstSharedInventory(t *testing.T) {
	events := newFakeEventStore(ticketedEvent(1,
		models.TicketClass{EventID: 1, Name: "GA", Price: 20, Quantity: 5}))
	bookings := newFakeBookingStore()
	pub := newFakePublisher()
	svc := newTestBookingService(events, bookings, pub)
	ctx := context.Background()

	first, err := svc.Create(ctx, 1, &models.CreateBookingRequest{EventID: 1, TicketType: "GA", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(60), first.TotalAmount)
	assert.Equal(t, 2, events.quantity(1, "GA"))

	_, err = svc.Create(ctx, 2, &models.CreateBookingRequest{EventID: 1, TicketType: "GA", Quantity: 3})
	require.ErrorIs(t, err, apperrors.ErrInsufficientInventory)
	assert.Equal(t, 2, events.quantity(1, "GA"))

	cancelled, err := svc.Cancel(ctx, first.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, 5, events.quantity(1, "GA"))
	assert.Equal(t, 1, pub.count(models.EventBookingCancelled))
}

func TestCancelForbiddenForOtherUser(t *testing.T) {
	events := newFakeEventStore(ticketedEvent(1,
		models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: 5}))
	bookings := newFakeBookingStore()
	svc := newTestBookingService(events, bookings, newFakePublisher())
	ctx := context.Background()

	booking, err := svc.Create(ctx, 1, &models.CreateBookingRequest{EventID: 1, TicketType: "GA", Quantity: 1})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, booking.ID, 2)

	require.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, 4, events.quantity(1, "GA"))
}

func TestCancelMissingBooking(t *testing.T) {
	svc := newTestBookingService(newFakeEventStore(), newFakeBookingStore(), newFakePublisher())

	_, err := svc.Cancel(context.Background(), 99, 1)

	require.ErrorIs(t, err, apperrors.ErrBookingNotFound)
}

func TestCancelTwiceReleasesOnce(t *testing.T) {
	events := newFakeEventStore(ticketedEvent(1,
		models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: 5}))
	bookings := newFakeBookingStore()
	svc := newTestBookingService(events, bookings, newFakePublisher())
	ctx := context.Background()

	booking, err := svc.Create(ctx, 1, &models.CreateBookingRequest{EventID: 1, TicketType: "GA", Quantity: 2})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, booking.ID, 1)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, booking.ID, 1)
	require.ErrorIs(t, err, apperrors.ErrAlreadyCancelled)
	assert.Equal(t, 5, events.quantity(1, "GA"))
}

// A confirmed booking may still be cancelled by its owner; the held
// inventory goes back.
func TestCancelConfirmedBooking(t *testing.T) {
	events := newFakeEventStore(ticketedEvent(1,
		models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: 5}))
	bookings := newFakeBookingStore()
	svc := newTestBookingService(events, bookings, newFakePublisher())
	ctx := context.Background()

	booking, err := svc.Create(ctx, 1, &models.CreateBookingRequest{EventID: 1, TicketType: "GA", Quantity: 2})
	require.NoError(t, err)
	_, err = svc.MarkConfirmed(ctx, booking.ID, "pi_1")
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, booking.ID, 1)

	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, 5, events.quantity(1, "GA"))
}

func TestCancelFailedBookingRejected(t *testing.T) {
	events := newFakeEventStore(ticketedEvent(1,
		models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: 5}))
	bookings := newFakeBookingStore()
	svc := newTestBookingService(events, bookings, newFakePublisher())
	ctx := context.Background()

	booking, err := svc.Create(ctx, 1, &models.CreateBookingRequest{EventID: 1, TicketType: "GA", Quantity: 2})
	require.NoError(t, err)
	_, err = svc.MarkFailed(ctx, booking.ID, "pi_1")
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, booking.ID, 1)

	require.ErrorIs(t, err, apperrors.ErrAlreadyTerminal)
	// Only the failure transition released; cancel must not release again
	assert.Equal(t, 5, events.quantity(1, "GA"))
}

func TestMarkConfirmedIdempotent(t *testing.T) {
	events := newFakeEventStore(ticketedEvent(1,
		models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: 5}))
	bookings := newFakeBookingStore()
	pub := newFakePublisher()
	svc := newTestBookingService(events, bookings, pub)
	ctx := context.Background()

	booking, err := svc.Create(ctx, 1, &models.CreateBookingRequest{EventID: 1, TicketType: "GA", Quantity: 1})
	require.NoError(t, err)

	first, err := svc.MarkConfirmed(ctx, booking.ID, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, first.Status)

	second, err := svc.MarkConfirmed(ctx, booking.ID, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, second.Status)

	assert.Equal(t, 1, pub.count(models.EventBookingConfirmed))
	assert.Equal(t, 4, events.quantity(1, "GA"))
}

func TestMarkConfirmedConflictingIntentRejected(t *testing.T) {
	bookings := newFakeBookingStore()
	events := newFakeEventStore(ticketedEvent(1,
		models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: 5}))
	svc := newTestBookingService(events, bookings, newFakePublisher())
	ctx := context.Background()

	booking, err := svc.Create(ctx, 1, &models.CreateBookingRequest{EventID: 1, TicketType: "GA", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.MarkConfirmed(ctx, booking.ID, "pi_1")
	require.NoError(t, err)

	_, err = svc.MarkConfirmed(ctx, booking.ID, "pi_other")

	require.ErrorIs(t, err, apperrors.ErrAlreadyTerminal)
}

func TestMarkConfirmedAfterCancelRejected(t *testing.T) {
	events := newFakeEventStore(ticketedEvent(1,
		models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: 5}))
	bookings := newFakeBookingStore()
	svc := newTestBookingService(events, bookings, newFakePublisher())
	ctx := context.Background()

	booking, err := svc.Create(ctx, 1, &models.CreateBookingRequest{EventID: 1, TicketType: "GA", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, booking.ID, 1)
	require.NoError(t, err)

	_, err = svc.MarkConfirmed(ctx, booking.ID, "pi_1")

	require.ErrorIs(t, err, apperrors.ErrAlreadyTerminal)
	assert.Equal(t, 5, events.quantity(1, "GA"))
}

func TestMarkFailedReleasesInventoryOnce(t *testing.T) {
	events := newFakeEventStore(ticketedEvent(1,
		models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: 5}))
	bookings := newFakeBookingStore()
	svc := newTestBookingService(events, bookings, newFakePublisher())
	ctx := context.Background()

	booking, err := svc.Create(ctx, 1, &models.CreateBookingRequest{EventID: 1, TicketType: "GA", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, events.quantity(1, "GA"))

	failed, err := svc.MarkFailed(ctx, booking.ID, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusFailed, failed.Status)
	assert.Equal(t, 5, events.quantity(1, "GA"))

	// Redelivery of the same failure must not release again
	_, err = svc.MarkFailed(ctx, booking.ID, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, 5, events.quantity(1, "GA"))
}

func TestMarkFailedOnConfirmedRejected(t *testing.T) {
	events := newFakeEventStore(ticketedEvent(1,
		models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: 5}))
	bookings := newFakeBookingStore()
	svc := newTestBookingService(events, bookings, newFakePublisher())
	ctx := context.Background()

	booking, err := svc.Create(ctx, 1, &models.CreateBookingRequest{EventID: 1, TicketType: "GA", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.MarkConfirmed(ctx, booking.ID, "pi_1")
	require.NoError(t, err)

	_, err = svc.MarkFailed(ctx, booking.ID, "pi_1")

	require.ErrorIs(t, err, apperrors.ErrAlreadyTerminal)
	assert.Equal(t, 4, events.quantity(1, "GA"))
}

func TestExpirePendingCancelsAndReleases(t *testing.T) {
	events := newFakeEventStore(ticketedEvent(1,
		models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: 5}))
	bookings := newFakeBookingStore()
	pub := newFakePublisher()
	svc := newTestBookingService(events, bookings, pub)
	ctx := context.Background()

	booking, err := svc.Create(ctx, 1, &models.CreateBookingRequest{EventID: 1, TicketType: "GA", Quantity: 2})
	require.NoError(t, err)
	bookings.setCreatedAt(booking.ID, time.Now().Add(-30*time.Minute))

	expired, err := bookings.GetExpiredPending(ctx, time.Now().Add(-15*time.Minute))
	require.NoError(t, err)
	require.Len(t, expired, 1)

	require.NoError(t, svc.ExpirePending(ctx, &expired[0]))

	updated, err := bookings.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, updated.Status)
	assert.Equal(t, 5, events.quantity(1, "GA"))
	assert.Equal(t, 1, pub.count(models.EventBookingExpired))
}

// A booking that confirmed between the reaper's query and its action must
// be left untouched.
func TestExpirePendingSkipsConfirmedBooking(t *testing.T) {
	events := newFakeEventStore(ticketedEvent(1,
		models.TicketClass{EventID: 1, Name: "GA", Price: 2000, Quantity: 5}))
	bookings := newFakeBookingStore()
	svc := newTestBookingService(events, bookings, newFakePublisher())
	ctx := context.Background()

	booking, err := svc.Create(ctx, 1, &models.CreateBookingRequest{EventID: 1, TicketType: "GA", Quantity: 2})
	require.NoError(t, err)
	snapshot, err := bookings.GetByID(ctx, booking.ID)
	require.NoError(t, err)

	_, err = svc.MarkConfirmed(ctx, booking.ID, "pi_1")
	require.NoError(t, err)

	require.NoError(t, svc.ExpirePending(ctx, snapshot))

	updated, err := bookings.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, updated.Status)
	assert.Equal(t, 3, events.quantity(1, "GA"))
}

func TestGenerateTicketNumbers(t *testing.T) {
	numbers := generateTicketNumbers(7, 3)

	require.Len(t, numbers, 3)
	for i, number := range numbers {
		assert.True(t, strings.HasPrefix(number, "TKT-7-"), "unexpected number %q", number)
		assert.True(t, strings.HasSuffix(number, fmt.Sprintf("-%04d", i+1)), "unexpected number %q", number)
	}
}

// Two bookings created in the same instant must not share ticket numbers
func TestGenerateTicketNumbersDistinctPerBooking(t *testing.T) {
	first := generateTicketNumbers(7, 2)
	second := generateTicketNumbers(7, 2)

	for _, a := range first {
		for _, b := range second {
			assert.NotEqual(t, a, b)
		}
	}
}
