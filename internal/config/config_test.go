package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.BookingExpiration)
	assert.Equal(t, 30*time.Second, cfg.ExpirationCheckInterval)
	assert.Equal(t, 300*time.Second, cfg.Payment.WebhookTolerance)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BOOKING_EXPIRATION_MIN", "5")
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "whsec_env")
	t.Setenv("NATS_CLIENT_ID", "ovation-test")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.BookingExpiration)
	assert.Equal(t, "whsec_env", cfg.Payment.WebhookSecret)
	assert.Equal(t, "ovation-test", cfg.NATS.ClientID)
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("BOOKING_EXPIRATION_MIN", "not-a-number")

	cfg := Load()

	assert.Equal(t, 15*time.Minute, cfg.BookingExpiration)
}
