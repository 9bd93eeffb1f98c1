package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/domain/srs"
	"github.com/recallkit/recall-api/internal/service/auth"
	"github.com/recallkit/recall-api/internal/service/decks"
	"github.com/recallkit/recall-api/internal/service/study"
	"github.com/recallkit/recall-api/internal/session"
	"github.com/recallkit/recall-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, study.ErrDeckNotOwned),
		errors.Is(err, study.ErrSessionNotOwned),
		errors.Is(err, decks.ErrDeckNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrDeckNotFound),
		errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, study.ErrDeckNotFound),
		errors.Is(err, study.ErrSessionNotFound),
		errors.Is(err, decks.ErrDeckNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, session.ErrOutOfSequence),
		errors.Is(err, store.ErrConcurrencyConflict):
		return http.StatusConflict

	// Gone: the session's expiry has passed
	case errors.Is(err, session.ErrSessionExpired):
		return http.StatusGone

	// Unprocessable: no deck had anything to contribute
	case errors.Is(err, session.ErrEmptySession):
		return http.StatusUnprocessableEntity

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, session.ErrNoDecks),
		errors.Is(err, session.ErrSessionNotActive),
		errors.Is(err, srs.ErrInvalidOutcome),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"

	// Authorization errors
	case errors.Is(err, study.ErrDeckNotOwned), errors.Is(err, decks.ErrDeckNotOwned):
		return "You do not own this deck"

	case errors.Is(err, study.ErrSessionNotOwned):
		return "You do not own this session"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrDeckNotFound),
		errors.Is(err, study.ErrDeckNotFound),
		errors.Is(err, decks.ErrDeckNotFound):
		return "Deck not found"

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, store.ErrSessionNotFound), errors.Is(err, study.ErrSessionNotFound):
		return "Session not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, session.ErrOutOfSequence):
		return "Answer submitted out of order"

	case errors.Is(err, store.ErrConcurrencyConflict):
		return "The card was rescheduled concurrently; please retry"

	// Session lifecycle errors
	case errors.Is(err, session.ErrSessionExpired):
		return "Session has expired"

	case errors.Is(err, session.ErrSessionNotActive):
		return "Session is not active"

	case errors.Is(err, session.ErrEmptySession):
		return "No cards available for a session"

	case errors.Is(err, session.ErrNoDecks):
		return "At least one deck is required"

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, srs.ErrInvalidOutcome):
		return "Invalid review outcome"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid identifier"

	case errors.Is(err, domain.ErrValidation):
		return "Validation error"

	// Default case for unknown errors
	default:
		if strings.Contains(err.Error(), "submit_answer") {
			return "Failed to submit answer"
		} else if strings.Contains(err.Error(), "start_session") {
			return "Failed to start session"
		}
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
