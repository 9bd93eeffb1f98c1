package session

import (
	"errors"
	"time"

	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/domain/srs"
)

// Recorder errors
var (
	// ErrOutOfSequence indicates an answer was submitted for a slot other
	// than the session's current one. Answers must be recorded in order.
	ErrOutOfSequence = errors.New("answer submitted out of session order")

	// ErrSessionExpired indicates the session's expiry timestamp has passed.
	// No scheduling update occurs for the submitted answer.
	ErrSessionExpired = errors.New("session has expired")

	// ErrSessionNotActive indicates the session is already terminal or has
	// not finished building.
	ErrSessionNotActive = errors.New("session is not active")

	// ErrScheduleMismatch indicates the supplied schedule does not belong
	// to the card at the answered slot.
	ErrScheduleMismatch = errors.New("schedule does not match the slot's card")
)

// Recorder applies one graded answer to a session and the answered card's
// schedule. It is a pure state-threading step: inputs are never mutated, and
// all persistence (including the optimistic-concurrency write of the new
// schedule) is the caller's responsibility.
type Recorder struct {
	srsService srs.Service
}

// NewRecorder creates a Recorder using the given SRS service.
func NewRecorder(srsService srs.Service) *Recorder {
	if srsService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("srsService cannot be nil")
	}

	return &Recorder{srsService: srsService}
}

// RecordAnswer grades the card at slotIndex and advances the session.
//
// Preconditions: the session is active, not expired at "now", and slotIndex
// equals the session's current index. On success it returns the advanced
// session, the new immutable QuizResult, and the card's recomputed schedule.
// The session transitions to completed once its last slot is answered.
//
// If the session's expiry has passed, the returned session carries the
// expired status alongside ErrSessionExpired so the caller can persist the
// transition; the schedule is left untouched. All other failures return the
// inputs unchanged.
func (r *Recorder) RecordAnswer(
	sess *domain.QuizSession,
	schedule *domain.CardSchedule,
	slotIndex int,
	outcome domain.ReviewOutcome,
	now time.Time,
) (*domain.QuizSession, *domain.QuizResult, *domain.CardSchedule, error) {
	if !outcome.Valid() {
		return nil, nil, nil, srs.ErrInvalidOutcome
	}

	if sess.Status != domain.SessionStatusActive {
		return nil, nil, nil, ErrSessionNotActive
	}

	if sess.ExpiredBy(now) {
		expired := sess.Clone()
		expired.Status = domain.SessionStatusExpired
		expired.UpdatedAt = now
		return expired, nil, nil, ErrSessionExpired
	}

	if slotIndex != sess.CurrentIndex {
		return nil, nil, nil, ErrOutOfSequence
	}

	slot, ok := sess.CurrentSlot()
	if !ok {
		return nil, nil, nil, ErrSessionNotActive
	}

	if schedule == nil || schedule.CardID != slot.CardID {
		return nil, nil, nil, ErrScheduleMismatch
	}

	newSchedule, err := r.srsService.Advance(schedule, outcome, now)
	if err != nil {
		return nil, nil, nil, err
	}

	result, err := domain.NewQuizResult(
		sess.ID,
		slot.CardID,
		outcome,
		r.srsService.IsPass(outcome),
		now,
	)
	if err != nil {
		return nil, nil, nil, err
	}

	advanced := sess.Clone()
	advanced.Results = append(advanced.Results, result.ID)
	advanced.CurrentIndex++
	advanced.UpdatedAt = now
	if advanced.CurrentIndex == len(advanced.Slots) {
		advanced.Status = domain.SessionStatusCompleted
	}

	return advanced, result, newSchedule, nil
}
