package study

import (
	"context"

	"github.com/google/uuid"

	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/session"
	"github.com/recallkit/recall-api/internal/store"
)

// cardSourceAdapter adapts a store.CardStore to the session.CardSource
// interface so the session builder stays decoupled from the store layer.
type cardSourceAdapter struct {
	cards store.CardStore
}

// Ensure cardSourceAdapter implements session.CardSource interface
var _ session.CardSource = (*cardSourceAdapter)(nil)

// newCardSourceAdapter creates a session.CardSource backed by the given
// card store.
func newCardSourceAdapter(cards store.CardStore) *cardSourceAdapter {
	return &cardSourceAdapter{cards: cards}
}

// FetchDeckCardPool implements session.CardSource.FetchDeckCardPool.
func (a *cardSourceAdapter) FetchDeckCardPool(
	ctx context.Context,
	deckID uuid.UUID,
	difficulty *domain.Difficulty,
) (*domain.DeckCardPool, error) {
	return a.cards.GetDeckCardPool(ctx, deckID, difficulty)
}
