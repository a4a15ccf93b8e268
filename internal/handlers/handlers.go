package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ovation/internal/cache"
	apperrors "ovation/internal/errors"
	"ovation/internal/middleware"
	"ovation/internal/models"
	"ovation/internal/service"
)

type Handlers struct {
	services    *service.Services
	cacheClient *cache.Client
}

func NewHandlers(services *service.Services, cacheClient *cache.Client) *Handlers {
	return &Handlers{
		services:    services,
		cacheClient: cacheClient,
	}
}

// respondError maps sentinel errors from the service layer to HTTP status
// codes with a uniform body. Internal details never reach the client.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, apperrors.ErrEventNotFound),
		errors.Is(err, apperrors.ErrBookingNotFound),
		errors.Is(err, apperrors.ErrTicketTypeNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, apperrors.ErrInsufficientInventory),
		errors.Is(err, apperrors.ErrAlreadyCancelled),
		errors.Is(err, apperrors.ErrAlreadyTerminal):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, apperrors.ErrAmountTooSmall):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, apperrors.ErrInvalidSignature):
		status = http.StatusBadRequest
		message = apperrors.ErrInvalidSignature.Error()
	case errors.Is(err, apperrors.ErrMalformedPayload):
		// Permanently broken deliveries get a 4xx so the provider stops
		// retrying something that can never succeed
		status = http.StatusUnprocessableEntity
		message = apperrors.ErrMalformedPayload.Error()
	case errors.Is(err, apperrors.ErrProviderUnavailable):
		status = http.StatusBadGateway
		message = apperrors.ErrProviderUnavailable.Error()
	}

	c.JSON(status, models.ErrorResponse{Error: message})
	_ = c.Error(err)
}

// userID pulls the authenticated principal the auth middleware attached to
// the request context
func userID(c *gin.Context) (int64, bool) {
	return middleware.UserIDFromContext(c.Request.Context())
}

// requireRole aborts with 403 unless the principal holds the given role
func requireRole(c *gin.Context, role string) bool {
	got, ok := middleware.RoleFromContext(c.Request.Context())
	if !ok || got != role {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: apperrors.ErrForbidden.Error()})
		return false
	}
	return true
}
