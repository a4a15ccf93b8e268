package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ovation/internal/logger"
	"ovation/internal/models"
)

// Events handlers

// CreateEvent - POST /api/events
// Event management is reserved to admin accounts
func (h *Handlers) CreateEvent(c *gin.Context) {
	if !requireRole(c, "admin") {
		return
	}

	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	event, err := h.services.Events.Create(c.Request.Context(), &req)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to create event", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// ListEvents - GET /api/events
func (h *Handlers) ListEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	if page < 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "page must be >= 1"})
		return
	}
	if pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "pageSize must be between 1 and 100"})
		return
	}

	// The events list is hot and rarely changes; serve cached JSON when we
	// can and fall through to the database otherwise.
	if h.cacheClient != nil {
		if rawJSON, err := h.cacheClient.GetEventsListRaw(c.Request.Context(), page, pageSize); err == nil {
			c.Data(http.StatusOK, "application/json", rawJSON)
			return
		}
	}

	events, err := h.services.Events.List(c.Request.Context(), page, pageSize)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to list events", "error", err)
		respondError(c, err)
		return
	}

	if h.cacheClient != nil {
		_ = h.cacheClient.SetEventsList(c.Request.Context(), page, pageSize, events)
	}

	c.JSON(http.StatusOK, events)
}

// GetEvent - GET /api/events/:id
func (h *Handlers) GetEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid event id"})
		return
	}

	event, err := h.services.Events.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// UpdateEvent - PATCH /api/events/:id
func (h *Handlers) UpdateEvent(c *gin.Context) {
	if !requireRole(c, "admin") {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid event id"})
		return
	}

	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.services.Events.Update(c.Request.Context(), id, &req); err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to update event",
			"error", err,
			"event_id", id)
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}
