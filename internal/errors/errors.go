package errors

import "errors"

// Sentinel errors for the booking and payment flows. Handlers map these to
// HTTP status codes; services wrap them with context via fmt.Errorf("%w").

var ErrUnauthorized = errors.New("user is not authorized")
var ErrForbidden = errors.New("operation is forbidden for user")

var ErrEventNotFound = errors.New("event not found")
var ErrBookingNotFound = errors.New("booking not found")
var ErrTicketTypeNotFound = errors.New("ticket type not found")

var ErrInsufficientInventory = errors.New("insufficient inventory for ticket type")
var ErrAlreadyCancelled = errors.New("booking is already cancelled")
var ErrAlreadyTerminal = errors.New("booking is in a terminal state")

var ErrAmountTooSmall = errors.New("payment amount is below the minimum")
var ErrInvalidSignature = errors.New("webhook signature verification failed")
var ErrMalformedPayload = errors.New("webhook payload is malformed")
var ErrProviderUnavailable = errors.New("payment provider is unavailable")
