package domain

import "github.com/google/uuid"

// PoolCard is one candidate card in a deck's pool: the card identifier tagged
// with its difficulty label and current schedule. The schedule is read-only
// here; session construction never mutates it.
type PoolCard struct {
	CardID     uuid.UUID
	Difficulty Difficulty
	Schedule   CardSchedule
}

// DeckCardPool is the set of candidate cards for one deck. Order is not
// significant; selection and shuffling impose their own orderings.
type DeckCardPool struct {
	DeckID uuid.UUID
	Cards  []PoolCard
}

// Filter returns a new pool containing only cards with the given difficulty.
// A nil filter returns the pool unchanged.
func (p *DeckCardPool) Filter(difficulty *Difficulty) *DeckCardPool {
	if difficulty == nil {
		return p
	}

	filtered := &DeckCardPool{DeckID: p.DeckID}
	for _, card := range p.Cards {
		if card.Difficulty == *difficulty {
			filtered.Cards = append(filtered.Cards, card)
		}
	}
	return filtered
}
