package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/platform/logger"
	"github.com/recallkit/recall-api/internal/store"
)

// PostgresResultStore implements the store.ResultStore interface
// using a PostgreSQL database as the storage backend.
type PostgresResultStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresResultStore creates a new PostgreSQL implementation of the
// ResultStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresResultStore(db store.DBTX, logger *slog.Logger) *PostgresResultStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresResultStore{
		db:     db,
		logger: logger.With(slog.String("component", "result_store")),
	}
}

// Ensure PostgresResultStore implements store.ResultStore interface
var _ store.ResultStore = (*PostgresResultStore)(nil)

// Create implements store.ResultStore.Create
// Returns store.ErrInvalidEntity if the session or card does not exist.
func (s *PostgresResultStore) Create(ctx context.Context, result *domain.QuizResult) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := result.Validate(); err != nil {
		log.Warn("result validation failed during create",
			slog.String("error", err.Error()),
			slog.String("result_id", result.ID.String()))
		return err
	}

	query := `
		INSERT INTO quiz_results
			(id, session_id, card_id, outcome, is_correct, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		result.ID,
		result.SessionID,
		result.CardID,
		string(result.Outcome),
		result.IsCorrect,
		result.AnsweredAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during result creation",
				slog.String("result_id", result.ID.String()),
				slog.String("session_id", result.SessionID.String()))
			return fmt.Errorf("%w: session %s or card %s not found",
				store.ErrInvalidEntity, result.SessionID, result.CardID)
		}

		log.Error("failed to create result",
			slog.String("error", err.Error()),
			slog.String("result_id", result.ID.String()))
		return MapError(err)
	}

	log.Debug("result created",
		slog.String("result_id", result.ID.String()),
		slog.String("session_id", result.SessionID.String()))
	return nil
}

// ListBySession implements store.ResultStore.ListBySession
// Results are returned in answer order. Returns an empty slice if the
// session has no results.
func (s *PostgresResultStore) ListBySession(
	ctx context.Context,
	sessionID uuid.UUID,
) ([]*domain.QuizResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, session_id, card_id, outcome, is_correct, answered_at
		FROM quiz_results
		WHERE session_id = $1
		ORDER BY answered_at
	`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		log.Error("failed to list results",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	results := []*domain.QuizResult{}
	for rows.Next() {
		var result domain.QuizResult
		var outcome string

		err := rows.Scan(
			&result.ID,
			&result.SessionID,
			&result.CardID,
			&outcome,
			&result.IsCorrect,
			&result.AnsweredAt,
		)
		if err != nil {
			log.Error("failed to scan result row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		result.Outcome = domain.ReviewOutcome(outcome)
		results = append(results, &result)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return results, nil
}

// WithTx implements store.ResultStore.WithTx
func (s *PostgresResultStore) WithTx(tx *sql.Tx) store.ResultStore {
	return &PostgresResultStore{
		db:     tx,
		logger: s.logger,
	}
}
