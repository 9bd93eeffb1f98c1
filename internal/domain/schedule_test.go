package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewCardSchedule(t *testing.T) {
	t.Parallel()
	cardID := uuid.New()

	schedule, err := NewCardSchedule(cardID)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if schedule.CardID != cardID {
		t.Errorf("Expected card ID %s, got %s", cardID, schedule.CardID)
	}

	if schedule.EaseFactor != DefaultEaseFactor {
		t.Errorf("Expected ease factor %v, got %v", DefaultEaseFactor, schedule.EaseFactor)
	}

	if schedule.IntervalDays != 0 {
		t.Errorf("Expected interval 0, got %d", schedule.IntervalDays)
	}

	if schedule.Repetitions != 0 {
		t.Errorf("Expected 0 repetitions, got %d", schedule.Repetitions)
	}

	if schedule.LastReviewedAt != nil {
		t.Error("Expected nil LastReviewedAt for a new schedule")
	}

	if schedule.Version != 1 {
		t.Errorf("Expected version 1, got %d", schedule.Version)
	}

	// A new schedule is due immediately.
	if !schedule.Due(time.Now().UTC()) {
		t.Error("Expected a new schedule to be due")
	}

	// Test invalid card ID
	_, err = NewCardSchedule(uuid.Nil)
	if err != ErrEmptyScheduleCardID {
		t.Errorf("Expected error %v, got %v", ErrEmptyScheduleCardID, err)
	}
}

func TestCardScheduleValidate(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	valid := CardSchedule{
		CardID:       uuid.New(),
		EaseFactor:   DefaultEaseFactor,
		NextReviewAt: now,
		Version:      1,
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalid := valid
	invalid.IntervalDays = -1
	if err := invalid.Validate(); err != ErrInvalidInterval {
		t.Errorf("Expected error %v, got %v", ErrInvalidInterval, err)
	}

	invalid = valid
	invalid.EaseFactor = 1.2
	if err := invalid.Validate(); err != ErrInvalidEaseFactor {
		t.Errorf("Expected error %v, got %v", ErrInvalidEaseFactor, err)
	}

	invalid = valid
	invalid.Repetitions = -1
	if err := invalid.Validate(); err != ErrInvalidRepetitions {
		t.Errorf("Expected error %v, got %v", ErrInvalidRepetitions, err)
	}
}

func TestCardScheduleDue(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	reviewedAt := now.AddDate(0, 0, -3)

	schedule := CardSchedule{
		CardID:         uuid.New(),
		EaseFactor:     DefaultEaseFactor,
		LastReviewedAt: &reviewedAt,
		NextReviewAt:   now.AddDate(0, 0, 2),
		Version:        1,
	}

	if schedule.Due(now) {
		t.Error("Expected a future schedule not to be due")
	}

	schedule.NextReviewAt = now.AddDate(0, 0, -1)
	if !schedule.Due(now) {
		t.Error("Expected a past schedule to be due")
	}

	schedule.NextReviewAt = now
	if !schedule.Due(now) {
		t.Error("Expected a schedule due exactly now to be due")
	}
}

func TestCardScheduleClone(t *testing.T) {
	t.Parallel()
	reviewedAt := time.Now().UTC()
	original := &CardSchedule{
		CardID:         uuid.New(),
		EaseFactor:     2.1,
		IntervalDays:   6,
		Repetitions:    2,
		LastReviewedAt: &reviewedAt,
		NextReviewAt:   reviewedAt.AddDate(0, 0, 6),
		Version:        4,
	}

	clone := original.Clone()
	clone.EaseFactor = 1.5
	*clone.LastReviewedAt = clone.LastReviewedAt.AddDate(0, 0, 1)

	if original.EaseFactor != 2.1 {
		t.Error("Clone shares the ease factor with the original")
	}
	if !original.LastReviewedAt.Equal(reviewedAt) {
		t.Error("Clone shares the LastReviewedAt pointer with the original")
	}
}

func TestReviewOutcomeValid(t *testing.T) {
	t.Parallel()

	for _, o := range []ReviewOutcome{ReviewOutcomeAgain, ReviewOutcomeHard, ReviewOutcomeGood, ReviewOutcomeEasy} {
		if !o.Valid() {
			t.Errorf("Expected %s to be valid", o)
		}
	}

	for _, o := range []ReviewOutcome{"", "perfect", "GOOD"} {
		if o.Valid() {
			t.Errorf("Expected %q to be invalid", o)
		}
	}
}
