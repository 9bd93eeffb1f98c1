package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewOutcome represents the learner's recall rating for one card review.
type ReviewOutcome string

// Possible review outcome values, ordered from worst to best recall.
const (
	ReviewOutcomeAgain ReviewOutcome = "again"
	ReviewOutcomeHard  ReviewOutcome = "hard"
	ReviewOutcomeGood  ReviewOutcome = "good"
	ReviewOutcomeEasy  ReviewOutcome = "easy"
)

// Valid reports whether o is one of the closed set of review outcomes.
func (o ReviewOutcome) Valid() bool {
	switch o {
	case ReviewOutcomeAgain, ReviewOutcomeHard, ReviewOutcomeGood, ReviewOutcomeEasy:
		return true
	default:
		return false
	}
}

// CardSchedule validation errors
var (
	ErrEmptyScheduleCardID = errors.New("card schedule card ID cannot be empty")
	ErrInvalidInterval     = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEaseFactor   = errors.New("ease factor must be at least 1.3")
	ErrInvalidRepetitions  = errors.New("repetitions must be greater than or equal to 0")
)

// DefaultEaseFactor is the ease factor assigned to a card that has never been
// reviewed. MinEaseFactor is the hard floor the scheduler never goes below.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// CardSchedule tracks the spaced-repetition state of a single card.
// It is an immutable value: the srs package computes a new CardSchedule from
// the old one, and the storage layer writes it back conditioned on Version
// being unchanged (optimistic concurrency).
type CardSchedule struct {
	CardID         uuid.UUID  `json:"card_id"`
	EaseFactor     float64    `json:"ease_factor"`                // Difficulty weighting, >= 1.3
	IntervalDays   int        `json:"interval_days"`              // 0 means never successfully reviewed
	Repetitions    int        `json:"repetitions"`                // Consecutive passes since the last lapse
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"` // nil before first review
	NextReviewAt   time.Time  `json:"next_review_at"`
	Version        int64      `json:"version"` // Revision marker for conditional writes
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewCardSchedule creates the initial schedule for a card, due immediately.
func NewCardSchedule(cardID uuid.UUID) (*CardSchedule, error) {
	now := time.Now().UTC()
	schedule := &CardSchedule{
		CardID:         cardID,
		EaseFactor:     DefaultEaseFactor,
		IntervalDays:   0,
		Repetitions:    0,
		LastReviewedAt: nil,
		NextReviewAt:   now,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	return schedule, nil
}

// Validate checks if the CardSchedule has valid data.
func (s *CardSchedule) Validate() error {
	if s.CardID == uuid.Nil {
		return ErrEmptyScheduleCardID
	}

	if s.IntervalDays < 0 {
		return ErrInvalidInterval
	}

	if s.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if s.Repetitions < 0 {
		return ErrInvalidRepetitions
	}

	return nil
}

// Reviewed reports whether the card has ever been reviewed.
func (s *CardSchedule) Reviewed() bool {
	return s.LastReviewedAt != nil
}

// Due reports whether the card is due for review at the given time.
// A card that has never been reviewed is always due.
func (s *CardSchedule) Due(now time.Time) bool {
	return !s.Reviewed() || !s.NextReviewAt.After(now)
}

// Clone returns a deep copy of the schedule. The srs package mutates the copy
// rather than the original.
func (s *CardSchedule) Clone() *CardSchedule {
	clone := *s
	if s.LastReviewedAt != nil {
		t := *s.LastReviewedAt
		clone.LastReviewedAt = &t
	}
	return &clone
}
