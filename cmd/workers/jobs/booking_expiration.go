package jobs

import (
	"context"
	"log/slog"
	"time"

	"ovation/internal/repository"
	"ovation/internal/service"
)

// BookingExpirationJob reaps bookings stuck in pending because a payment
// confirmation never arrived. Reaped bookings go back to cancelled and
// their inventory is released; the timeout is configuration, not contract.
type BookingExpirationJob struct {
	bookingRepo *repository.BookingRepository
	bookingSvc  *service.BookingService
	timeout     time.Duration
	interval    time.Duration
	ticker      *time.Ticker
	done        chan bool
}

func NewBookingExpirationJob(bookingRepo *repository.BookingRepository, bookingSvc *service.BookingService, timeout, interval time.Duration) *BookingExpirationJob {
	return &BookingExpirationJob{
		bookingRepo: bookingRepo,
		bookingSvc:  bookingSvc,
		timeout:     timeout,
		interval:    interval,
		done:        make(chan bool),
	}
}

// Start begins the background loop that scans for expired bookings
func (j *BookingExpirationJob) Start(ctx context.Context) {
	slog.Info("Starting booking expiration job",
		"check_interval", j.interval.String(),
		"timeout", j.timeout.String())

	j.ticker = time.NewTicker(j.interval)

	// Run initial check immediately
	go j.checkExpiredBookings(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.checkExpiredBookings(ctx)
			case <-j.done:
				slog.Info("Booking expiration job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job
func (j *BookingExpirationJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *BookingExpirationJob) checkExpiredBookings(ctx context.Context) {
	cutoff := time.Now().Add(-j.timeout)

	expired, err := j.bookingRepo.GetExpiredPending(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to get expired bookings", "error", err)
		return
	}

	if len(expired) == 0 {
		return
	}

	slog.Info("Found expired bookings to process", "count", len(expired))

	for i := range expired {
		booking := &expired[i]
		if err := j.bookingSvc.ExpirePending(ctx, booking); err != nil {
			slog.Error("Failed to expire booking",
				"error", err,
				"booking_id", booking.ID,
				"event_id", booking.EventID)
			continue
		}

		slog.Info("Expired pending booking",
			"booking_id", booking.ID,
			"event_id", booking.EventID,
			"age", time.Since(booking.CreatedAt).String())
	}
}
