package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ovation/internal/logger"
	"ovation/internal/models"
)

// Bookings handlers

// CreateBooking - POST /api/bookings
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	booking, err := h.services.Bookings.Create(c.Request.Context(), uid, &req)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to create booking", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListBookings - GET /api/bookings
func (h *Handlers) ListBookings(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	bookings, err := h.services.Bookings.List(c.Request.Context(), uid)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to list bookings", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// CancelBooking - PATCH /api/bookings/cancel
func (h *Handlers) CancelBooking(c *gin.Context) {
	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	booking, err := h.services.Bookings.Cancel(c.Request.Context(), req.BookingID, uid)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to cancel booking",
			"error", err,
			"booking_id", req.BookingID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}
