package srs

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/recallkit/recall-api/internal/domain"
)

const easeTolerance = 1e-9

func TestCalculateNewEaseFactor(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		current  float64
		quality  int
		expected float64
	}{
		{
			name:     "Again sharply decreases ease factor",
			current:  2.5,
			quality:  0,
			expected: 1.7, // 2.5 - 0.8
		},
		{
			name:     "Hard slightly decreases ease factor",
			current:  2.5,
			quality:  3,
			expected: 2.36, // 2.5 - 0.14
		},
		{
			name:     "Good leaves ease factor unchanged",
			current:  2.5,
			quality:  4,
			expected: 2.5,
		},
		{
			name:     "Easy increases ease factor",
			current:  2.5,
			quality:  5,
			expected: 2.6, // 2.5 + 0.1
		},
		{
			name:     "Minimum ease factor is enforced",
			current:  1.4,
			quality:  0,
			expected: 1.3, // 1.4 - 0.8 = 0.6, clamped to 1.3
		},
		{
			name:     "Ease factor already at floor stays at floor on lapse",
			current:  1.3,
			quality:  0,
			expected: 1.3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			newEF := calculateNewEaseFactor(tc.current, tc.quality, params)

			if math.Abs(newEF-tc.expected) > easeTolerance {
				t.Errorf("Expected ease factor %v, got %v", tc.expected, newEF)
			}
		})
	}
}

func TestCalculateNewInterval(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name        string
		current     int
		repetitions int
		ef          float64
		expected    int
	}{
		{
			name:        "Lapse restarts at one day",
			current:     30,
			repetitions: 0,
			ef:          1.7,
			expected:    1,
		},
		{
			name:        "First pass uses the fixed first interval",
			current:     0,
			repetitions: 1,
			ef:          2.5,
			expected:    1,
		},
		{
			name:        "Second pass uses the fixed second interval",
			current:     1,
			repetitions: 2,
			ef:          2.5,
			expected:    6,
		},
		{
			name:        "Third pass multiplies by the ease factor",
			current:     6,
			repetitions: 3,
			ef:          2.5,
			expected:    15, // round(6 * 2.5)
		},
		{
			name:        "Rounding to nearest day",
			current:     6,
			repetitions: 3,
			ef:          2.36,
			expected:    14, // round(14.16)
		},
		{
			name:        "Interval strictly increases even at the ease floor",
			current:     10,
			repetitions: 5,
			ef:          1.04,
			expected:    11, // round(10.4) = 10, floored to current+1
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			newInterval := calculateNewInterval(tc.current, tc.repetitions, tc.ef, params)

			if newInterval != tc.expected {
				t.Errorf("Expected interval %d, got %d", tc.expected, newInterval)
			}
		})
	}
}

func TestCalculateNextSchedule(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	newSchedule := func(t *testing.T) *domain.CardSchedule {
		t.Helper()
		s, err := domain.NewCardSchedule(uuid.New())
		if err != nil {
			t.Fatalf("Failed to create schedule: %v", err)
		}
		return s
	}

	t.Run("First Good review grants a one-day interval", func(t *testing.T) {
		before := newSchedule(t)

		after := calculateNextSchedule(before, domain.ReviewOutcomeGood, now, params)

		if after.Repetitions != 1 {
			t.Errorf("Expected 1 repetition, got %d", after.Repetitions)
		}
		if after.IntervalDays != 1 {
			t.Errorf("Expected interval 1, got %d", after.IntervalDays)
		}
		if math.Abs(after.EaseFactor-2.5) > easeTolerance {
			t.Errorf("Expected ease factor 2.5, got %v", after.EaseFactor)
		}
		if after.LastReviewedAt == nil || !after.LastReviewedAt.Equal(now) {
			t.Errorf("Expected LastReviewedAt %v, got %v", now, after.LastReviewedAt)
		}
		if want := now.AddDate(0, 0, 1); !after.NextReviewAt.Equal(want) {
			t.Errorf("Expected NextReviewAt %v, got %v", want, after.NextReviewAt)
		}
	})

	t.Run("Again resets the streak and interval", func(t *testing.T) {
		before := newSchedule(t)
		before.Repetitions = 4
		before.IntervalDays = 30

		after := calculateNextSchedule(before, domain.ReviewOutcomeAgain, now, params)

		if after.Repetitions != 0 {
			t.Errorf("Expected 0 repetitions, got %d", after.Repetitions)
		}
		if after.IntervalDays != 1 {
			t.Errorf("Expected interval 1, got %d", after.IntervalDays)
		}
		if math.Abs(after.EaseFactor-1.7) > easeTolerance {
			t.Errorf("Expected ease factor 1.7, got %v", after.EaseFactor)
		}
	})

	t.Run("Three consecutive Good reviews follow 1, 6, 15", func(t *testing.T) {
		schedule := newSchedule(t)
		wantIntervals := []int{1, 6, 15}

		for i, want := range wantIntervals {
			schedule = calculateNextSchedule(schedule, domain.ReviewOutcomeGood, now, params)
			if schedule.IntervalDays != want {
				t.Fatalf("Review %d: expected interval %d, got %d", i+1, want, schedule.IntervalDays)
			}
		}
	})

	t.Run("Input schedule is never mutated", func(t *testing.T) {
		before := newSchedule(t)
		originalEF := before.EaseFactor
		originalReps := before.Repetitions

		_ = calculateNextSchedule(before, domain.ReviewOutcomeAgain, now, params)

		if before.EaseFactor != originalEF || before.Repetitions != originalReps {
			t.Error("Input schedule was mutated")
		}
		if before.LastReviewedAt != nil {
			t.Error("Input schedule's LastReviewedAt was set")
		}
	})

	t.Run("Deterministic for identical inputs", func(t *testing.T) {
		before := newSchedule(t)

		first := calculateNextSchedule(before, domain.ReviewOutcomeEasy, now, params)
		second := calculateNextSchedule(before, domain.ReviewOutcomeEasy, now, params)

		if first.IntervalDays != second.IntervalDays ||
			first.EaseFactor != second.EaseFactor ||
			!first.NextReviewAt.Equal(second.NextReviewAt) {
			t.Error("Identical inputs produced different schedules")
		}
	})
}
