package service

import (
	"context"
	"sync"
	"time"

	apperrors "ovation/internal/errors"
	"ovation/internal/external"
	"ovation/internal/models"
)

// In-memory stores implementing the service interfaces. The event store
// guards its counters with a mutex so the concurrency tests exercise the
// same decrement-if-sufficient semantics the SQL implementation has.

type fakeEventStore struct {
	mu     sync.Mutex
	events map[int64]*models.Event
}

func newFakeEventStore(events ...*models.Event) *fakeEventStore {
	store := &fakeEventStore{events: make(map[int64]*models.Event)}
	for _, e := range events {
		store.events[e.ID] = e
	}
	return store
}

func (f *fakeEventStore) GetByID(_ context.Context, id int64) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[id]
	if !ok {
		return nil, nil
	}

	cp := *event
	cp.TicketClasses = append([]models.TicketClass(nil), event.TicketClasses...)
	return &cp, nil
}

func (f *fakeEventStore) ReserveTickets(_ context.Context, eventID int64, name string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	class := f.findClass(eventID, name)
	if class == nil {
		return apperrors.ErrTicketTypeNotFound
	}
	if class.Quantity < qty {
		return apperrors.ErrInsufficientInventory
	}

	class.Quantity -= qty
	return nil
}

func (f *fakeEventStore) ReleaseTickets(_ context.Context, eventID int64, name string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	class := f.findClass(eventID, name)
	if class == nil {
		return apperrors.ErrTicketTypeNotFound
	}

	class.Quantity += qty
	return nil
}

func (f *fakeEventStore) findClass(eventID int64, name string) *models.TicketClass {
	event, ok := f.events[eventID]
	if !ok {
		return nil
	}
	for i := range event.TicketClasses {
		if event.TicketClasses[i].Name == name {
			return &event.TicketClasses[i]
		}
	}
	return nil
}

func (f *fakeEventStore) quantity(eventID int64, name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if class := f.findClass(eventID, name); class != nil {
		return class.Quantity
	}
	return -1
}

type fakeBookingStore struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]*models.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[int64]*models.Booking)}
}

func (f *fakeBookingStore) Create(_ context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	booking.ID = f.nextID
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	booking.UpdatedAt = booking.CreatedAt

	cp := *booking
	f.bookings[booking.ID] = &cp
	return nil
}

func (f *fakeBookingStore) GetByID(_ context.Context, id int64) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}

	cp := *booking
	return &cp, nil
}

func (f *fakeBookingStore) GetByUserID(_ context.Context, userID int64) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []models.Booking
	for _, booking := range f.bookings {
		if booking.UserID == userID {
			result = append(result, *booking)
		}
	}
	return result, nil
}

func (f *fakeBookingStore) SetPaymentIntent(_ context.Context, id int64, intentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[id]
	if !ok || booking.Status != models.BookingStatusPending {
		return false, nil
	}

	booking.PaymentIntentID = &intentID
	return true, nil
}

func (f *fakeBookingStore) ConfirmFromPending(_ context.Context, id int64, intentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[id]
	if !ok || booking.Status != models.BookingStatusPending {
		return false, nil
	}

	now := time.Now()
	booking.Status = models.BookingStatusConfirmed
	booking.PaymentIntentID = &intentID
	booking.PaidAt = &now
	return true, nil
}

func (f *fakeBookingStore) FailFromPending(_ context.Context, id int64, intentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[id]
	if !ok || booking.Status != models.BookingStatusPending {
		return false, nil
	}

	booking.Status = models.BookingStatusFailed
	booking.PaymentIntentID = &intentID
	return true, nil
}

func (f *fakeBookingStore) CancelFromActive(_ context.Context, id int64) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[id]
	if !ok {
		return "", false, nil
	}

	prev := booking.Status
	if prev != models.BookingStatusPending && prev != models.BookingStatusConfirmed {
		return prev, false, nil
	}

	booking.Status = models.BookingStatusCancelled
	return prev, true, nil
}

func (f *fakeBookingStore) CancelFromPending(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[id]
	if !ok || booking.Status != models.BookingStatusPending {
		return false, nil
	}

	booking.Status = models.BookingStatusCancelled
	return true, nil
}

func (f *fakeBookingStore) GetExpiredPending(_ context.Context, cutoff time.Time) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []models.Booking
	for _, booking := range f.bookings {
		if booking.Status == models.BookingStatusPending && booking.CreatedAt.Before(cutoff) {
			result = append(result, *booking)
		}
	}
	return result, nil
}

func (f *fakeBookingStore) setCreatedAt(id int64, t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if booking, ok := f.bookings[id]; ok {
		booking.CreatedAt = t
	}
}

type fakePublisher struct {
	mu       sync.Mutex
	messages map[string]int
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{messages: make(map[string]int)}
}

func (f *fakePublisher) Publish(subject string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[subject]++
	return nil
}

func (f *fakePublisher) count(subject string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[subject]
}

type fakeProvider struct {
	mu          sync.Mutex
	intents     map[string]*external.Intent
	createErr   error
	retrieveErr error
	created     []createdIntent
}

type createdIntent struct {
	amount   int64
	currency string
	metadata map[string]string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{intents: make(map[string]*external.Intent)}
}

func (f *fakeProvider) CreateIntent(_ context.Context, amount int64, currency string, metadata map[string]string) (*external.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}

	f.created = append(f.created, createdIntent{amount: amount, currency: currency, metadata: metadata})
	intent := &external.Intent{
		ID:           "pi_test_1",
		ClientSecret: "pi_test_1_secret",
		Status:       "requires_payment",
		Amount:       amount,
		Currency:     currency,
		Metadata:     metadata,
	}
	f.intents[intent.ID] = intent
	return intent, nil
}

func (f *fakeProvider) Retrieve(_ context.Context, intentID string) (*external.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}

	intent, ok := f.intents[intentID]
	if !ok {
		return nil, apperrors.ErrProviderUnavailable
	}
	return intent, nil
}

func (f *fakeProvider) setStatus(intentID, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if intent, ok := f.intents[intentID]; ok {
		intent.Status = status
	}
}

// Test fixture helpers

func ticketedEvent(id int64, classes ...models.TicketClass) *models.Event {
	return &models.Event{
		ID:            id,
		Title:         "Test Event",
		EventType:     models.EventTypeTicketed,
		DatetimeStart: time.Now().Add(24 * time.Hour),
		Published:     true,
		TicketClasses: classes,
	}
}

func freeEvent(id int64) *models.Event {
	return &models.Event{
		ID:            id,
		Title:         "Free Meetup",
		EventType:     models.EventTypeFree,
		DatetimeStart: time.Now().Add(24 * time.Hour),
		Published:     true,
	}
}

func newTestBookingService(events *fakeEventStore, bookings *fakeBookingStore, pub *fakePublisher) *BookingService {
	return NewBookingService(bookings, events, NewInventoryService(events), pub)
}
