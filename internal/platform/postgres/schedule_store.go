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

// PostgresCardScheduleStore implements the store.CardScheduleStore interface
// using a PostgreSQL database as the storage backend. Updates are
// compare-and-swap on the version column.
type PostgresCardScheduleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardScheduleStore creates a new PostgreSQL implementation of
// the CardScheduleStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresCardScheduleStore(
	db store.DBTX,
	logger *slog.Logger,
) *PostgresCardScheduleStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardScheduleStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_schedule_store")),
	}
}

// Ensure PostgresCardScheduleStore implements store.CardScheduleStore interface
var _ store.CardScheduleStore = (*PostgresCardScheduleStore)(nil)

// Create implements store.CardScheduleStore.Create
// Returns store.ErrInvalidEntity if the card does not exist.
func (s *PostgresCardScheduleStore) Create(
	ctx context.Context,
	schedule *domain.CardSchedule,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := schedule.Validate(); err != nil {
		log.Warn("schedule validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", schedule.CardID.String()))
		return err
	}

	query := `
		INSERT INTO card_schedules
			(card_id, ease_factor, interval_days, repetitions,
			 last_reviewed_at, next_review_at, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		schedule.CardID,
		schedule.EaseFactor,
		schedule.IntervalDays,
		schedule.Repetitions,
		schedule.LastReviewedAt,
		schedule.NextReviewAt,
		schedule.Version,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during schedule creation",
				slog.String("card_id", schedule.CardID.String()))
			return fmt.Errorf("%w: card with ID %s not found",
				store.ErrInvalidEntity, schedule.CardID)
		}

		log.Error("failed to create schedule",
			slog.String("error", err.Error()),
			slog.String("card_id", schedule.CardID.String()))
		return MapError(err)
	}

	log.Debug("schedule created",
		slog.String("card_id", schedule.CardID.String()))
	return nil
}

// Get implements store.CardScheduleStore.Get
// Returns store.ErrScheduleNotFound if no schedule exists for the card.
func (s *PostgresCardScheduleStore) Get(
	ctx context.Context,
	cardID uuid.UUID,
) (*domain.CardSchedule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT card_id, ease_factor, interval_days, repetitions,
		       last_reviewed_at, next_review_at, version, created_at, updated_at
		FROM card_schedules
		WHERE card_id = $1
	`

	var schedule domain.CardSchedule
	var lastReviewedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, cardID).Scan(
		&schedule.CardID,
		&schedule.EaseFactor,
		&schedule.IntervalDays,
		&schedule.Repetitions,
		&lastReviewedAt,
		&schedule.NextReviewAt,
		&schedule.Version,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("schedule not found",
				slog.String("card_id", cardID.String()))
			return nil, store.ErrScheduleNotFound
		}
		log.Error("failed to get schedule",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, MapError(err)
	}

	if lastReviewedAt.Valid {
		t := lastReviewedAt.Time
		schedule.LastReviewedAt = &t
	}

	return &schedule, nil
}

// Update implements store.CardScheduleStore.Update
// The write succeeds only if the stored version equals expectedVersion;
// on success the stored version is incremented and schedule.Version is set
// to the new value.
// Returns store.ErrConcurrencyConflict if another writer got there first.
// Returns store.ErrScheduleNotFound if no schedule exists for the card.
func (s *PostgresCardScheduleStore) Update(
	ctx context.Context,
	schedule *domain.CardSchedule,
	expectedVersion int64,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := schedule.Validate(); err != nil {
		log.Warn("schedule validation failed during update",
			slog.String("error", err.Error()),
			slog.String("card_id", schedule.CardID.String()))
		return err
	}

	query := `
		UPDATE card_schedules
		SET ease_factor = $1, interval_days = $2, repetitions = $3,
		    last_reviewed_at = $4, next_review_at = $5,
		    version = version + 1, updated_at = $6
		WHERE card_id = $7 AND version = $8
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		schedule.EaseFactor,
		schedule.IntervalDays,
		schedule.Repetitions,
		schedule.LastReviewedAt,
		schedule.NextReviewAt,
		schedule.UpdatedAt,
		schedule.CardID,
		expectedVersion,
	)

	if err != nil {
		log.Error("failed to update schedule",
			slog.String("error", err.Error()),
			slog.String("card_id", schedule.CardID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Distinguish a missing row from a version mismatch.
		var exists bool
		checkErr := s.db.QueryRowContext(
			ctx,
			`SELECT EXISTS (SELECT 1 FROM card_schedules WHERE card_id = $1)`,
			schedule.CardID,
		).Scan(&exists)
		if checkErr != nil {
			return MapError(checkErr)
		}
		if !exists {
			return store.ErrScheduleNotFound
		}

		log.Debug("schedule version conflict",
			slog.String("card_id", schedule.CardID.String()),
			slog.Int64("expected_version", expectedVersion))
		return store.ErrConcurrencyConflict
	}

	schedule.Version = expectedVersion + 1

	log.Debug("schedule updated",
		slog.String("card_id", schedule.CardID.String()),
		slog.Int64("version", schedule.Version))
	return nil
}

// WithTx implements store.CardScheduleStore.WithTx
func (s *PostgresCardScheduleStore) WithTx(tx *sql.Tx) store.CardScheduleStore {
	return &PostgresCardScheduleStore{
		db:     tx,
		logger: s.logger,
	}
}
