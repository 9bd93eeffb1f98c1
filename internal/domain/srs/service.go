package srs

import (
	"errors"
	"time"

	"github.com/recallkit/recall-api/internal/domain"
)

// Common errors
var (
	ErrNilSchedule    = errors.New("card schedule cannot be nil")
	ErrInvalidOutcome = errors.New("invalid review outcome")
	ErrInvalidDays    = errors.New("postpone days must be at least 1")
)

// Service defines the interface for SRS algorithm operations.
type Service interface {
	// Advance computes a new schedule from the prior state and a recall
	// rating. It performs no I/O; "now" is always passed in explicitly.
	Advance(
		schedule *domain.CardSchedule,
		outcome domain.ReviewOutcome,
		now time.Time,
	) (*domain.CardSchedule, error)

	// Postpone pushes the next review time forward by a number of days
	// without touching the ease factor or repetition streak.
	Postpone(
		schedule *domain.CardSchedule,
		days int,
		now time.Time,
	) (*domain.CardSchedule, error)

	// IsPass reports whether the outcome counts as successful recall
	// under the service's parameters.
	IsPass(outcome domain.ReviewOutcome) bool
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// Advance implements the Service interface for calculating updated schedules.
func (s *defaultService) Advance(
	schedule *domain.CardSchedule,
	outcome domain.ReviewOutcome,
	now time.Time,
) (*domain.CardSchedule, error) {
	if schedule == nil {
		return nil, ErrNilSchedule
	}

	if !outcome.Valid() {
		return nil, ErrInvalidOutcome
	}

	return calculateNextSchedule(schedule, outcome, now, s.params), nil
}

// Postpone implements the Service interface for postponing reviews.
func (s *defaultService) Postpone(
	schedule *domain.CardSchedule,
	days int,
	now time.Time,
) (*domain.CardSchedule, error) {
	if schedule == nil {
		return nil, ErrNilSchedule
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	newSchedule := schedule.Clone()
	newSchedule.NextReviewAt = schedule.NextReviewAt.AddDate(0, 0, days)
	newSchedule.UpdatedAt = now

	return newSchedule, nil
}

// IsPass implements the Service interface.
func (s *defaultService) IsPass(outcome domain.ReviewOutcome) bool {
	return s.params.IsPass(outcome)
}
