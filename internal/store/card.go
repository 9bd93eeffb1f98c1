package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/recallkit/recall-api/internal/domain"
)

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a new card.
	// Returns ErrInvalidEntity if the deck does not exist.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetDeckCardPool retrieves the candidate pool for one deck: every card
	// in the deck joined with its current schedule, optionally restricted to
	// a difficulty label.
	GetDeckCardPool(
		ctx context.Context,
		deckID uuid.UUID,
		difficulty *domain.Difficulty,
	) (*domain.DeckCardPool, error)

	// Delete removes a card from the store by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CardStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CardStore
}
