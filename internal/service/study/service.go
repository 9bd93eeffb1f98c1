package study

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/recallkit/recall-api/internal/domain"
)

// StartOptions controls how a new quiz session is assembled.
type StartOptions struct {
	// CardsPerDeck caps how many cards each deck contributes.
	// Zero means unbounded.
	CardsPerDeck int `json:"cards_per_deck"`

	// Difficulty restricts candidates to one difficulty label.
	Difficulty *domain.Difficulty `json:"difficulty,omitempty"`

	// DueOnly restricts candidates to cards due for review.
	DueOnly bool `json:"due_only"`
}

// SubmitOutcome is a user's graded answer for one session slot.
type SubmitOutcome struct {
	SlotIndex int                  `json:"slot_index"`
	Outcome   domain.ReviewOutcome `json:"outcome"`
}

// SubmitResult bundles the state produced by recording one answer: the
// advanced session, the immutable result record, and the card's recomputed
// schedule.
type SubmitResult struct {
	Session  *domain.QuizSession
	Result   *domain.QuizResult
	Schedule *domain.CardSchedule
}

// StudyService orchestrates quiz sessions: building them from deck pools,
// recording graded answers, and keeping card schedules current.
type StudyService interface {
	// StartSession builds and persists a new interleaved quiz session for the
	// user over the given decks.
	//
	// Returns ErrDeckNotFound if any deck does not exist, ErrDeckNotOwned if
	// any deck belongs to another user, and session.ErrEmptySession if no
	// deck contributes an eligible card.
	StartSession(
		ctx context.Context,
		userID uuid.UUID,
		deckIDs []uuid.UUID,
		opts StartOptions,
	) (*domain.QuizSession, error)

	// GetSession retrieves a session owned by the user.
	//
	// Returns ErrSessionNotFound if the session does not exist and
	// ErrSessionNotOwned if it belongs to another user.
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*domain.QuizSession, error)

	// SubmitAnswer records a graded answer for the session's current slot,
	// advancing the session and rescheduling the answered card atomically.
	// Version conflicts on the schedule write are retried a bounded number of
	// times with fresh reads; the session and schedule are never merged.
	//
	// Returns session.ErrOutOfSequence, session.ErrSessionExpired,
	// session.ErrSessionNotActive, or srs.ErrInvalidOutcome for the
	// corresponding precondition failures, and store.ErrConcurrencyConflict
	// once the retry budget is exhausted.
	SubmitAnswer(
		ctx context.Context,
		userID uuid.UUID,
		sessionID uuid.UUID,
		answer SubmitOutcome,
	) (*SubmitResult, error)

	// ListDueCards returns the IDs of the deck's cards that are due for
	// review right now, oldest-overdue first. Cards that have never been
	// reviewed count as due. An optional difficulty restricts candidates.
	//
	// Returns ErrDeckNotFound if the deck does not exist and ErrDeckNotOwned
	// if it belongs to another user.
	ListDueCards(
		ctx context.Context,
		userID uuid.UUID,
		deckID uuid.UUID,
		difficulty *domain.Difficulty,
	) ([]uuid.UUID, error)
}

// Common error types for StudyService
var (
	// ErrDeckNotFound indicates a requested deck does not exist.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrDeckNotOwned indicates the user does not own a requested deck.
	ErrDeckNotOwned = errors.New("unauthorized access: deck not owned by user")

	// ErrSessionNotFound indicates the session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionNotOwned indicates the user does not own the session.
	ErrSessionNotOwned = errors.New("unauthorized access: session not owned by user")
)

// ServiceError wraps errors from the study service with additional context.
// This allows consumers to differentiate between different types of service
// errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_session", "submit_answer")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewStartSessionError returns a new ServiceError for the start_session operation.
func NewStartSessionError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "start_session",
		Message:   message,
		Err:       err,
	}
}

// NewSubmitAnswerError returns a new ServiceError for the submit_answer operation.
func NewSubmitAnswerError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "submit_answer",
		Message:   message,
		Err:       err,
	}
}

// nowFunc returns the current UTC time. Injectable for testing.
type nowFunc func() time.Time
