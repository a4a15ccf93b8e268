package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Bookings created, by event type and initial status",
		},
		[]string{"event_type", "status"},
	)

	ReserveFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_reserve_failures_total",
			Help: "Failed inventory reservations, by reason",
		},
		[]string{"reason"},
	)

	BookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_transitions_total",
			Help: "Booking state transitions, by target state",
		},
		[]string{"to"},
	)

	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
			Help: "Webhook deliveries, by event type and outcome",
		},
		[]string{"type", "result"},
	)

	PaymentIntents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_intents_total",
			Help: "Payment intent creations, by outcome",
		},
		[]string{"result"},
	)

	BookingExpirations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_expirations_total",
			Help: "Pending bookings reaped by the expiration job",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method, path and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
