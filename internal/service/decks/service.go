// Package decks provides deck and card management operations: creating
// decks, listing a user's decks, and adding cards with their initial review
// schedules.
package decks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/platform/logger"
	"github.com/recallkit/recall-api/internal/store"
)

// Common error types for DeckService
var (
	// ErrDeckNotFound indicates the deck does not exist.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrDeckNotOwned indicates the user does not own the deck.
	ErrDeckNotOwned = errors.New("unauthorized access: deck not owned by user")
)

// DeckService provides deck and card management operations.
type DeckService interface {
	// CreateDeck creates a new deck for the user.
	CreateDeck(ctx context.Context, userID uuid.UUID, name, description string) (*domain.Deck, error)

	// ListDecks retrieves all decks owned by the user.
	ListDecks(ctx context.Context, userID uuid.UUID) ([]*domain.Deck, error)

	// CreateCard adds a card to a deck the user owns, together with its
	// initial due-immediately review schedule, in a single transaction.
	//
	// Returns ErrDeckNotFound if the deck does not exist and ErrDeckNotOwned
	// if it belongs to another user.
	CreateCard(
		ctx context.Context,
		userID uuid.UUID,
		deckID uuid.UUID,
		content json.RawMessage,
		difficulty domain.Difficulty,
	) (*domain.Card, error)
}

// deckServiceImpl implements the DeckService interface.
type deckServiceImpl struct {
	db            *sql.DB
	deckStore     store.DeckStore
	cardStore     store.CardStore
	scheduleStore store.CardScheduleStore
	logger        *slog.Logger
}

// NewDeckService creates a new DeckService.
func NewDeckService(
	db *sql.DB,
	deckStore store.DeckStore,
	cardStore store.CardStore,
	scheduleStore store.CardScheduleStore,
	logger *slog.Logger,
) DeckService {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if deckStore == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("deckStore cannot be nil")
	}
	if cardStore == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("cardStore cannot be nil")
	}
	if scheduleStore == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("scheduleStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &deckServiceImpl{
		db:            db,
		deckStore:     deckStore,
		cardStore:     cardStore,
		scheduleStore: scheduleStore,
		logger:        logger.With(slog.String("component", "deck_service")),
	}
}

// CreateDeck implements DeckService.CreateDeck.
func (s *deckServiceImpl) CreateDeck(
	ctx context.Context,
	userID uuid.UUID,
	name, description string,
) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, err := domain.NewDeck(userID, name, description)
	if err != nil {
		return nil, err
	}

	if err := s.deckStore.Create(ctx, deck); err != nil {
		log.Error("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}

	return deck, nil
}

// ListDecks implements DeckService.ListDecks.
func (s *deckServiceImpl) ListDecks(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Deck, error) {
	decks, err := s.deckStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return decks, nil
}

// CreateCard implements DeckService.CreateCard.
func (s *deckServiceImpl) CreateCard(
	ctx context.Context,
	userID uuid.UUID,
	deckID uuid.UUID,
	content json.RawMessage,
	difficulty domain.Difficulty,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, err := s.deckStore.GetByID(ctx, deckID)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	if deck.UserID != userID {
		log.Warn("user does not own deck",
			slog.String("user_id", userID.String()),
			slog.String("deck_id", deckID.String()),
			slog.String("owner_id", deck.UserID.String()))
		return nil, ErrDeckNotOwned
	}

	card, err := domain.NewCard(deckID, content, difficulty)
	if err != nil {
		return nil, err
	}

	schedule, err := domain.NewCardSchedule(card.ID)
	if err != nil {
		return nil, err
	}

	// The card and its initial schedule are created atomically so the deck
	// pool never sees a card in a half-initialized state.
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.cardStore.WithTx(tx).Create(ctx, card); err != nil {
			return fmt.Errorf("failed to create card: %w", err)
		}
		if err := s.scheduleStore.WithTx(tx).Create(ctx, schedule); err != nil {
			return fmt.Errorf("failed to create schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to create card with schedule",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return nil, err
	}

	log.Info("card created with initial schedule",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", deckID.String()))

	return card, nil
}
