package dto

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/taskboardpro/automation/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse creates a new error response.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// MapDomainError maps domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code string, message string) {
	message = err.Error()

	switch {
	// Rule errors
	case errors.Is(err, domain.ErrRuleNotFound):
		return http.StatusNotFound, "RULE_NOT_FOUND", message
	case errors.Is(err, domain.ErrProjectNotFound):
		return http.StatusNotFound, "PROJECT_NOT_FOUND", message

	// Validation errors
	case errors.Is(err, domain.ErrInvalidTrigger),
		errors.Is(err, domain.ErrInvalidAction),
		errors.Is(err, domain.ErrInvalidCondition),
		errors.Is(err, domain.ErrInvalidActionValue),
		errors.Is(err, domain.ErrInvalidRuleStatus),
		errors.Is(err, domain.ErrEmptyRuleName):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message

	// Event errors
	case errors.Is(err, domain.ErrUnrecognizedEvent):
		return http.StatusUnprocessableEntity, "UNRECOGNIZED_EVENT", message

	// Auth errors
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "INVALID_TOKEN", message

	// Default: internal server error
	default:
		slog.Error("unmapped domain error returned to client",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		)
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}
