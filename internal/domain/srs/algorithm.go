package srs

import (
	"math"
	"time"

	"github.com/recallkit/recall-api/internal/domain"
)

// calculateNewEaseFactor determines the new ease factor after a review.
//
// The ease factor represents the card's difficulty weighting - higher values
// mean the card is easier and intervals grow faster. The adjustment follows
// the SM-2 formula, driven by the quality score of the outcome:
//
//	EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02))
//
// A perfect recall (q=5) raises the ease factor slightly, hesitant recall
// (q=3,4) lowers it a little, and a blackout (q=0) lowers it sharply. The
// result is always clamped to params.MinEaseFactor so a card can never become
// impossibly hard.
func calculateNewEaseFactor(currentEF float64, quality int, params *Params) float64 {
	q := float64(quality)
	newEF := currentEF + (0.1 - (5-q)*(0.08+(5-q)*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the new interval in days after a review.
//
// Lapses (quality below the pass threshold) restart the card at a one-day
// interval. For passes, the interval depends on the new repetition streak:
// the first two passes use the fixed params intervals (1 and 6 days by
// default), and later passes multiply the previous interval by the new ease
// factor, rounded to the nearest day. The result is floored at
// currentInterval+1 so spacing strictly increases on repeated passes even
// when the ease factor has been driven down to its minimum.
func calculateNewInterval(
	currentInterval int,
	newRepetitions int,
	newEaseFactor float64,
	params *Params,
) int {
	if newRepetitions == 0 {
		// Lapse: start over.
		return 1
	}

	switch newRepetitions {
	case 1:
		return params.FirstInterval
	case 2:
		return params.SecondInterval
	}

	interval := int(math.Round(float64(currentInterval) * newEaseFactor))
	if interval <= currentInterval {
		interval = currentInterval + 1
	}
	return interval
}

// calculateNextSchedule creates a new CardSchedule with updated values based
// on the review outcome.
//
// The function follows immutability principles: the input schedule is never
// modified, and the returned value is a fresh copy with the new ease factor,
// interval, repetition streak, and review dates. It is deterministic and
// total - calling it twice with identical arguments yields identical results.
func calculateNextSchedule(
	schedule *domain.CardSchedule,
	outcome domain.ReviewOutcome,
	now time.Time,
	params *Params,
) *domain.CardSchedule {
	newSchedule := schedule.Clone()

	quality := params.Quality[outcome]

	newSchedule.EaseFactor = calculateNewEaseFactor(schedule.EaseFactor, quality, params)

	if quality < params.PassThreshold {
		newSchedule.Repetitions = 0
	} else {
		newSchedule.Repetitions = schedule.Repetitions + 1
	}

	newSchedule.IntervalDays = calculateNewInterval(
		schedule.IntervalDays,
		newSchedule.Repetitions,
		newSchedule.EaseFactor,
		params,
	)

	reviewedAt := now
	newSchedule.LastReviewedAt = &reviewedAt
	newSchedule.NextReviewAt = now.AddDate(0, 0, newSchedule.IntervalDays)
	newSchedule.UpdatedAt = now

	return newSchedule
}
