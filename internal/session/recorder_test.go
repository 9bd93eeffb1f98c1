package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/domain/srs"
)

// activeSession builds a two-slot active session spanning two decks.
func activeSession(now time.Time) *domain.QuizSession {
	deckA := uuid.New()
	deckB := uuid.New()
	cardA := uuid.New()
	cardB := uuid.New()

	return &domain.QuizSession{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		DeckIDs: []uuid.UUID{deckA, deckB},
		Slots: []domain.SessionSlot{
			{CardID: cardA, DeckID: deckA, Position: 0},
			{CardID: cardB, DeckID: deckB, Position: 1},
		},
		PerDeckCounts: map[uuid.UUID]int{deckA: 1, deckB: 1},
		CurrentIndex:  0,
		Status:        domain.SessionStatusActive,
		CreatedAt:     now.Add(-time.Minute),
		UpdatedAt:     now.Add(-time.Minute),
	}
}

func scheduleFor(t *testing.T, cardID uuid.UUID) *domain.CardSchedule {
	t.Helper()
	schedule, err := domain.NewCardSchedule(cardID)
	if err != nil {
		t.Fatalf("Failed to create schedule: %v", err)
	}
	return schedule
}

func TestRecordAnswer(t *testing.T) {
	t.Parallel()
	recorder := NewRecorder(srs.NewDefaultService())
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("Invalid outcome is rejected", func(t *testing.T) {
		sess := activeSession(now)
		schedule := scheduleFor(t, sess.Slots[0].CardID)

		_, _, _, err := recorder.RecordAnswer(sess, schedule, 0, domain.ReviewOutcome("perfect"), now)
		assert.ErrorIs(t, err, srs.ErrInvalidOutcome)
	})

	t.Run("Completed session rejects further answers", func(t *testing.T) {
		sess := activeSession(now)
		sess.Status = domain.SessionStatusCompleted
		schedule := scheduleFor(t, sess.Slots[0].CardID)

		_, _, _, err := recorder.RecordAnswer(sess, schedule, 0, domain.ReviewOutcomeGood, now)
		assert.ErrorIs(t, err, ErrSessionNotActive)
	})

	t.Run("Expired session returns the expired transition", func(t *testing.T) {
		sess := activeSession(now)
		expiresAt := now.Add(-time.Second)
		sess.ExpiresAt = &expiresAt
		schedule := scheduleFor(t, sess.Slots[0].CardID)

		expired, result, newSchedule, err := recorder.RecordAnswer(
			sess, schedule, 0, domain.ReviewOutcomeGood, now,
		)

		assert.ErrorIs(t, err, ErrSessionExpired)
		assert.Nil(t, result)
		assert.Nil(t, newSchedule, "an expired session must not touch the schedule")

		require.NotNil(t, expired, "caller needs the expired session to persist it")
		assert.Equal(t, domain.SessionStatusExpired, expired.Status)
		assert.Equal(t, domain.SessionStatusActive, sess.Status, "input session must not be mutated")
	})

	t.Run("Out-of-sequence slot index is rejected", func(t *testing.T) {
		sess := activeSession(now)
		schedule := scheduleFor(t, sess.Slots[1].CardID)

		_, _, _, err := recorder.RecordAnswer(sess, schedule, 1, domain.ReviewOutcomeGood, now)
		assert.ErrorIs(t, err, ErrOutOfSequence)
	})

	t.Run("Schedule for a different card is rejected", func(t *testing.T) {
		sess := activeSession(now)
		schedule := scheduleFor(t, uuid.New())

		_, _, _, err := recorder.RecordAnswer(sess, schedule, 0, domain.ReviewOutcomeGood, now)
		assert.ErrorIs(t, err, ErrScheduleMismatch)
	})

	t.Run("Nil schedule is rejected", func(t *testing.T) {
		sess := activeSession(now)

		_, _, _, err := recorder.RecordAnswer(sess, nil, 0, domain.ReviewOutcomeGood, now)
		assert.ErrorIs(t, err, ErrScheduleMismatch)
	})

	t.Run("Good answer advances the session and the schedule", func(t *testing.T) {
		sess := activeSession(now)
		schedule := scheduleFor(t, sess.Slots[0].CardID)

		advanced, result, newSchedule, err := recorder.RecordAnswer(
			sess, schedule, 0, domain.ReviewOutcomeGood, now,
		)
		require.NoError(t, err)

		assert.Equal(t, 1, advanced.CurrentIndex)
		assert.Equal(t, domain.SessionStatusActive, advanced.Status)
		require.Len(t, advanced.Results, 1)
		assert.Equal(t, result.ID, advanced.Results[0])

		assert.Equal(t, sess.ID, result.SessionID)
		assert.Equal(t, sess.Slots[0].CardID, result.CardID)
		assert.Equal(t, domain.ReviewOutcomeGood, result.Outcome)
		assert.True(t, result.IsCorrect)
		assert.True(t, result.AnsweredAt.Equal(now))

		assert.Equal(t, 1, newSchedule.Repetitions)
		assert.Equal(t, 1, newSchedule.IntervalDays)

		// Inputs stay untouched.
		assert.Equal(t, 0, sess.CurrentIndex)
		assert.Empty(t, sess.Results)
		assert.Equal(t, 0, schedule.Repetitions)
	})

	t.Run("Again answer is recorded as incorrect", func(t *testing.T) {
		sess := activeSession(now)
		schedule := scheduleFor(t, sess.Slots[0].CardID)

		_, result, newSchedule, err := recorder.RecordAnswer(
			sess, schedule, 0, domain.ReviewOutcomeAgain, now,
		)
		require.NoError(t, err)

		assert.False(t, result.IsCorrect)
		assert.Equal(t, 0, newSchedule.Repetitions)
		assert.Equal(t, 1, newSchedule.IntervalDays)
	})

	t.Run("Answering the last slot completes the session", func(t *testing.T) {
		sess := activeSession(now)
		sess.CurrentIndex = 1
		schedule := scheduleFor(t, sess.Slots[1].CardID)

		advanced, _, _, err := recorder.RecordAnswer(
			sess, schedule, 1, domain.ReviewOutcomeEasy, now,
		)
		require.NoError(t, err)

		assert.Equal(t, domain.SessionStatusCompleted, advanced.Status)
		assert.Equal(t, len(sess.Slots), advanced.CurrentIndex)
	})

	t.Run("Hard counts as a lapse under strict grading", func(t *testing.T) {
		strict := NewRecorder(srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{HardIsLapse: true})))
		sess := activeSession(now)
		schedule := scheduleFor(t, sess.Slots[0].CardID)

		_, result, _, err := strict.RecordAnswer(sess, schedule, 0, domain.ReviewOutcomeHard, now)
		require.NoError(t, err)
		assert.False(t, result.IsCorrect)
	})
}
