package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/platform/logger"
	"github.com/recallkit/recall-api/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// Create implements store.CardStore.Create
// Returns store.ErrInvalidEntity if the deck does not exist.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query := `
		INSERT INTO cards (id, deck_id, content, difficulty, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.DeckID,
		card.Content,
		card.Difficulty,
		card.CreatedAt,
		card.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during card creation",
				slog.String("card_id", card.ID.String()),
				slog.String("deck_id", card.DeckID.String()))
			return fmt.Errorf("%w: deck with ID %s not found",
				store.ErrInvalidEntity, card.DeckID)
		}

		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return MapError(err)
	}

	log.Info("card created successfully",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", card.DeckID.String()))
	return nil
}

// GetByID implements store.CardStore.GetByID
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, deck_id, content, difficulty, created_at, updated_at
		FROM cards
		WHERE id = $1
	`

	var card domain.Card
	var difficulty string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&card.ID,
		&card.DeckID,
		&card.Content,
		&difficulty,
		&card.CreatedAt,
		&card.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, MapError(err)
	}

	card.Difficulty = domain.Difficulty(difficulty)
	return &card, nil
}

// GetDeckCardPool implements store.CardStore.GetDeckCardPool
// It joins every card in the deck with its current schedule. Cards without a
// schedule row are treated as never reviewed and due immediately.
func (s *PostgresCardStore) GetDeckCardPool(
	ctx context.Context,
	deckID uuid.UUID,
	difficulty *domain.Difficulty,
) (*domain.DeckCardPool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT c.id, c.difficulty,
		       COALESCE(s.ease_factor, $2),
		       COALESCE(s.interval_days, 0),
		       COALESCE(s.repetitions, 0),
		       s.last_reviewed_at,
		       COALESCE(s.next_review_at, c.created_at),
		       COALESCE(s.version, 1)
		FROM cards c
		LEFT JOIN card_schedules s ON s.card_id = c.id
		WHERE c.deck_id = $1
	`
	args := []any{deckID, domain.DefaultEaseFactor}

	if difficulty != nil {
		query += " AND c.difficulty = $3"
		args = append(args, string(*difficulty))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query deck card pool",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	pool := &domain.DeckCardPool{DeckID: deckID}
	for rows.Next() {
		var card domain.PoolCard
		var diff string
		var lastReviewedAt sql.NullTime

		err := rows.Scan(
			&card.CardID,
			&diff,
			&card.Schedule.EaseFactor,
			&card.Schedule.IntervalDays,
			&card.Schedule.Repetitions,
			&lastReviewedAt,
			&card.Schedule.NextReviewAt,
			&card.Schedule.Version,
		)
		if err != nil {
			log.Error("failed to scan pool row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		card.Difficulty = domain.Difficulty(diff)
		card.Schedule.CardID = card.CardID
		if lastReviewedAt.Valid {
			t := lastReviewedAt.Time
			card.Schedule.LastReviewedAt = &t
		}

		pool.Cards = append(pool.Cards, card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("fetched deck card pool",
		slog.String("deck_id", deckID.String()),
		slog.Int("count", len(pool.Cards)))
	return pool, nil
}

// Delete implements store.CardStore.Delete
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM cards WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrCardNotFound); err != nil {
		return err
	}

	log.Info("card deleted successfully",
		slog.String("card_id", id.String()))
	return nil
}

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}
