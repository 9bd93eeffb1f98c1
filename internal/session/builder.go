// Package session builds deck-interleaved quiz sessions and records graded
// answers against them. Both operations are deterministic given their inputs:
// the builder derives its shuffle seed from the session and deck identifiers,
// and the recorder is a pure state-threading step over immutable domain
// values.
package session

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/domain/srs"
)

// Builder errors
var (
	// ErrEmptySession indicates that no deck contributed any eligible card,
	// so there is nothing to study.
	ErrEmptySession = errors.New("no eligible cards in any requested deck")

	// ErrNoDecks indicates that the caller requested a session without decks.
	ErrNoDecks = errors.New("at least one deck is required")
)

// CardSource supplies the candidate card pool for one deck. It is implemented
// by the storage layer; the builder itself performs no I/O beyond these calls.
type CardSource interface {
	FetchDeckCardPool(
		ctx context.Context,
		deckID uuid.UUID,
		difficulty *domain.Difficulty,
	) (*domain.DeckCardPool, error)
}

// BuildOptions controls session construction.
type BuildOptions struct {
	// CardsPerDeck caps how many cards each deck contributes.
	// Zero means unbounded: the whole filtered pool is used.
	CardsPerDeck int

	// Difficulty restricts candidates to one difficulty label.
	Difficulty *domain.Difficulty

	// DueOnly restricts candidates to cards due for review.
	DueOnly bool

	// ExpiresAt, if set, is the instant after which recording answers fails
	// and the session transitions to the expired state.
	ExpiresAt *time.Time
}

// Builder assembles interleaved quiz sessions from per-deck card pools.
type Builder struct {
	source CardSource
	logger *slog.Logger
}

// NewBuilder creates a session Builder over the given card source.
// If logger is nil, a default logger will be used.
func NewBuilder(source CardSource, logger *slog.Logger) *Builder {
	if source == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("source cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Builder{
		source: source,
		logger: logger.With(slog.String("component", "session_builder")),
	}
}

// Build produces an active QuizSession drawing cards from the given decks.
//
// Each deck contributes its filtered pool (due-only when requested), capped
// at CardsPerDeck and shuffled with a seed derived from the new session and
// deck IDs, so the order is reproducible but not predictable by the learner.
// The per-deck selections are then interleaved round-robin with the
// constraint that no two consecutive slots share a deck unless all other
// decks are exhausted.
//
// Returns ErrEmptySession if every deck's filtered pool is empty.
func (b *Builder) Build(
	ctx context.Context,
	userID uuid.UUID,
	deckIDs []uuid.UUID,
	opts BuildOptions,
	now time.Time,
) (*domain.QuizSession, error) {
	if len(deckIDs) == 0 {
		return nil, ErrNoDecks
	}

	sessionID := uuid.New()

	session := &domain.QuizSession{
		ID:               sessionID,
		UserID:           userID,
		DeckIDs:          append([]uuid.UUID(nil), deckIDs...),
		DifficultyFilter: opts.Difficulty,
		PerDeckCounts:    make(map[uuid.UUID]int, len(deckIDs)),
		Status:           domain.SessionStatusBuilding,
		ExpiresAt:        opts.ExpiresAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Step 1: per-deck selection.
	queues := make([]deckQueue, 0, len(deckIDs))
	for _, deckID := range deckIDs {
		pool, err := b.source.FetchDeckCardPool(ctx, deckID, opts.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch pool for deck %s: %w", deckID, err)
		}

		selected := selectCandidates(pool, opts, now)
		if len(selected) > 0 {
			shuffleCards(selected, sessionID, deckID)
			queues = append(queues, deckQueue{deckID: deckID, cards: selected})
		}
		session.PerDeckCounts[deckID] = len(selected)
	}

	if len(queues) == 0 {
		b.logger.Debug("no eligible cards for session",
			slog.String("user_id", userID.String()),
			slog.Int("deck_count", len(deckIDs)))
		return nil, ErrEmptySession
	}

	// Step 2: interleave.
	session.Slots = interleave(queues)
	session.Status = domain.SessionStatusActive

	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("built session failed validation: %w", err)
	}

	b.logger.Debug("session built",
		slog.String("session_id", sessionID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("slot_count", len(session.Slots)))

	return session, nil
}

// deckQueue is the remaining cards one deck has to contribute, in draw order.
type deckQueue struct {
	deckID uuid.UUID
	cards  []uuid.UUID
}

// selectCandidates applies the due filter, difficulty filter, and per-deck
// cap to one pool. Full-pool selection orders by card ID before the cap so
// repeated builds over the same pool pick the same candidates.
func selectCandidates(pool *domain.DeckCardPool, opts BuildOptions, now time.Time) []uuid.UUID {
	var ids []uuid.UUID
	if opts.DueOnly {
		ids = srs.SelectDue(pool, now, opts.Difficulty)
	} else {
		for _, card := range pool.Filter(opts.Difficulty).Cards {
			ids = append(ids, card.CardID)
		}
		sort.Slice(ids, func(i, j int) bool {
			return ids[i].String() < ids[j].String()
		})
	}

	if opts.CardsPerDeck > 0 && len(ids) > opts.CardsPerDeck {
		ids = ids[:opts.CardsPerDeck]
	}
	return ids
}

// shuffleCards permutes one deck's selection in place using a deterministic
// seed derived from the session and deck IDs.
func shuffleCards(cards []uuid.UUID, sessionID, deckID uuid.UUID) {
	h := fnv.New64a()
	h.Write(sessionID[:])
	h.Write(deckID[:])

	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// interleave draws cards round-robin across the deck queues, skipping the
// deck of the immediately preceding slot unless it is the only deck with
// cards remaining. Positions are dense and zero-based.
func interleave(queues []deckQueue) []domain.SessionSlot {
	total := 0
	for _, q := range queues {
		total += len(q.cards)
	}

	slots := make([]domain.SessionSlot, 0, total)
	cursor := 0
	prevDeck := uuid.Nil

	for len(slots) < total {
		pick := -1
		for i := 0; i < len(queues); i++ {
			j := (cursor + i) % len(queues)
			if len(queues[j].cards) == 0 || queues[j].deckID == prevDeck {
				continue
			}
			pick = j
			break
		}
		if pick == -1 {
			// Only the previous slot's deck still has cards.
			for j := range queues {
				if len(queues[j].cards) > 0 {
					pick = j
					break
				}
			}
		}

		q := &queues[pick]
		slots = append(slots, domain.SessionSlot{
			CardID:   q.cards[0],
			DeckID:   q.deckID,
			Position: len(slots),
		})
		q.cards = q.cards[1:]
		prevDeck = q.deckID
		cursor = pick + 1
	}

	return slots
}
