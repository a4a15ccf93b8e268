package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"ovation/internal/logger"
	"ovation/internal/models"
)

// SignatureHeaderName carries the provider's webhook signature
const SignatureHeaderName = "Payment-Signature"

// Payments handlers

// CreatePaymentIntent - POST /api/payments/intent
func (h *Handlers) CreatePaymentIntent(c *gin.Context) {
	var req models.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	resp, err := h.services.Payments.CreateIntent(c.Request.Context(), req.BookingID, uid, req.Currency)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to create payment intent",
			"error", err,
			"booking_id", req.BookingID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ConfirmPayment - POST /api/payments/confirm
// Direct confirmation path: the client says the provider reported success,
// we verify against the provider before touching the booking.
func (h *Handlers) ConfirmPayment(c *gin.Context) {
	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.services.Payments.Confirm(c.Request.Context(), req.IntentID, req.BookingID)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to confirm payment",
			"error", err,
			"intent_id", req.IntentID,
			"booking_id", req.BookingID)
		respondError(c, err)
		return
	}

	if resp.Confirmed {
		c.JSON(http.StatusOK, resp)
	} else {
		c.JSON(http.StatusAccepted, resp)
	}
}

// HandlePaymentWebhook - POST /api/payments/webhook
// Signature failures are rejected with 4xx and never acknowledged as
// processed; the provider is expected to retry delivery.
func (h *Handlers) HandlePaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read payload"})
		return
	}

	signature := c.GetHeader(SignatureHeaderName)

	if err := h.services.Payments.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to handle payment webhook", "error", err)
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}
