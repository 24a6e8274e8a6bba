package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nemt/internal/repository"
	"nemt/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrQuoteNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidClientID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidAttemptID),
		errors.Is(err, service.ErrInvalidAddress),
		errors.Is(err, service.ErrSameAddress),
		errors.Is(err, service.ErrInvalidWeight),
		errors.Is(err, service.ErrInvalidDistance),
		errors.Is(err, service.ErrInvalidPickupTime),
		errors.Is(err, service.ErrInvalidReturnTime),
		errors.Is(err, service.ErrInvalidWheelchairMode),
		errors.Is(err, service.ErrInvalidPassengerCount),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrMissingInstrument):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrAlreadyRated),
		errors.Is(err, service.ErrPaymentInProgress),
		errors.Is(err, service.ErrRefundFailed):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrActorNotAllowed),
		errors.Is(err, service.ErrNotTripOwner):
		return http.StatusForbidden

	// Upstream mapping failure
	case errors.Is(err, service.ErrResolution):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
