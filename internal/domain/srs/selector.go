package srs

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/recallkit/recall-api/internal/domain"
)

// SelectDue returns the IDs of every card in the pool that is due for review
// at the given time: cards whose next review date has arrived or passed, and
// cards that have never been reviewed. An optional difficulty filter
// restricts candidates before the due check.
//
// The result is ordered by ascending next review date (oldest-overdue first),
// with ties broken by ascending card ID so the ordering is deterministic.
// The pool and its schedules are never mutated.
func SelectDue(
	pool *domain.DeckCardPool,
	now time.Time,
	difficulty *domain.Difficulty,
) []uuid.UUID {
	if pool == nil {
		return nil
	}

	var due []domain.PoolCard
	for _, card := range pool.Filter(difficulty).Cards {
		if card.Schedule.Due(now) {
			due = append(due, card)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].Schedule.NextReviewAt.Equal(due[j].Schedule.NextReviewAt) {
			return due[i].Schedule.NextReviewAt.Before(due[j].Schedule.NextReviewAt)
		}
		return due[i].CardID.String() < due[j].CardID.String()
	})

	ids := make([]uuid.UUID, len(due))
	for i, card := range due {
		ids[i] = card.CardID
	}
	return ids
}
