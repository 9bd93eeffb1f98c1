package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/service/auth"
	"github.com/recallkit/recall-api/internal/service/decks"
	"github.com/recallkit/recall-api/internal/service/study"
	"github.com/recallkit/recall-api/internal/session"
	"github.com/recallkit/recall-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "nil error",
			err:            nil,
			expectedStatus: http.StatusInternalServerError, // Default to 500 for nil error
		},
		{
			name:           "authentication error",
			err:            auth.ErrInvalidToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrapped authentication error",
			err:            fmt.Errorf("failed to authenticate: %w", auth.ErrInvalidToken),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid credentials",
			err:            auth.ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "deck not owned",
			err:            study.ErrDeckNotOwned,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "session not owned",
			err:            study.ErrSessionNotOwned,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "deck not found",
			err:            decks.ErrDeckNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "session not found",
			err:            study.ErrSessionNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "email exists conflict",
			err:            store.ErrEmailExists,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "out of sequence answer",
			err:            session.ErrOutOfSequence,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "schedule version conflict",
			err:            store.ErrConcurrencyConflict,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "expired session",
			err:            session.ErrSessionExpired,
			expectedStatus: http.StatusGone,
		},
		{
			name:           "empty session",
			err:            session.ErrEmptySession,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "no decks requested",
			err:            session.ErrNoDecks,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid entity",
			err:            store.ErrInvalidEntity,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "wrapped conflict inside a service error",
			err:            study.NewSubmitAnswerError("failed to submit answer", store.ErrConcurrencyConflict),
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "unknown error",
			err:            errors.New("unknown error"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := MapErrorToStatusCode(tt.err)
			assert.Equal(t, tt.expectedStatus, status)
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedMessage string
	}{
		{
			name:            "nil error",
			err:             nil,
			expectedMessage: "An unexpected error occurred",
		},
		{
			name:            "authentication error",
			err:             auth.ErrExpiredToken,
			expectedMessage: "Invalid token",
		},
		{
			name:            "invalid credentials",
			err:             auth.ErrInvalidCredentials,
			expectedMessage: "Invalid email or password",
		},
		{
			name:            "deck not owned",
			err:             decks.ErrDeckNotOwned,
			expectedMessage: "You do not own this deck",
		},
		{
			name:            "session not found",
			err:             fmt.Errorf("lookup failed: %w", study.ErrSessionNotFound),
			expectedMessage: "Session not found",
		},
		{
			name:            "version conflict",
			err:             store.ErrConcurrencyConflict,
			expectedMessage: "The card was rescheduled concurrently; please retry",
		},
		{
			name:            "expired session",
			err:             session.ErrSessionExpired,
			expectedMessage: "Session has expired",
		},
		{
			name:            "empty session",
			err:             session.ErrEmptySession,
			expectedMessage: "No cards available for a session",
		},
		{
			name:            "invalid outcome",
			err:             fmt.Errorf("bad answer: %w", domain.ErrValidation),
			expectedMessage: "Validation error",
		},
		{
			name:            "unknown submit answer failure",
			err:             study.NewSubmitAnswerError("failed to submit answer", errors.New("database error")),
			expectedMessage: "Failed to submit answer",
		},
		{
			name:            "unknown start session failure",
			err:             study.NewStartSessionError("failed to build session", errors.New("database error")),
			expectedMessage: "Failed to start session",
		},
		{
			name:            "unknown error",
			err:             errors.New("pq: relation does not exist"),
			expectedMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message := GetSafeErrorMessage(tt.err)
			assert.Equal(t, tt.expectedMessage, message)

			// Leaked internals never reach the client.
			assert.NotContains(t, message, "pq:")
			assert.NotContains(t, message, "database")
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "field validation error with tag",
			err:      errors.New("Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"),
			expected: "Invalid Email: required field",
		},
		{
			name:     "field validation error with min tag",
			err:      errors.New("Key: 'RegisterRequest.Password' Error:Field validation for 'Password' failed on the 'min' tag"),
			expected: "Invalid Password: too short",
		},
		{
			name:     "field validation error with oneof tag",
			err:      errors.New("Key: 'SubmitAnswerRequest.Outcome' Error:Field validation for 'Outcome' failed on the 'oneof' tag"),
			expected: "Invalid Outcome: invalid value",
		},
		{
			name:     "non-validation error",
			err:      errors.New("something else entirely"),
			expected: "Validation error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeValidationError(tt.err))
		})
	}
}
