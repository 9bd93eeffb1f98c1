package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// QuizResult validation errors
var (
	ErrEmptyResultID        = errors.New("result ID cannot be empty")
	ErrEmptyResultSessionID = errors.New("result session ID cannot be empty")
	ErrEmptyResultCardID    = errors.New("result card ID cannot be empty")
)

// QuizResult records one graded answer within a session. It is immutable
// after creation: a card's schedule is updated at most once per result.
type QuizResult struct {
	ID         uuid.UUID     `json:"id"`
	SessionID  uuid.UUID     `json:"session_id"`
	CardID     uuid.UUID     `json:"card_id"`
	Outcome    ReviewOutcome `json:"outcome"`
	IsCorrect  bool          `json:"is_correct"`
	AnsweredAt time.Time     `json:"answered_at"`
}

// NewQuizResult creates a result for one answered slot.
// Returns an error if validation fails.
func NewQuizResult(
	sessionID, cardID uuid.UUID,
	outcome ReviewOutcome,
	isCorrect bool,
	answeredAt time.Time,
) (*QuizResult, error) {
	result := &QuizResult{
		ID:         uuid.New(),
		SessionID:  sessionID,
		CardID:     cardID,
		Outcome:    outcome,
		IsCorrect:  isCorrect,
		AnsweredAt: answeredAt,
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return result, nil
}

// Validate checks if the QuizResult has valid data.
func (r *QuizResult) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyResultID
	}

	if r.SessionID == uuid.Nil {
		return ErrEmptyResultSessionID
	}

	if r.CardID == uuid.Nil {
		return ErrEmptyResultCardID
	}

	if !r.Outcome.Valid() {
		return ErrInvalidReviewOutcome
	}

	return nil
}
