package postgres

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

// PostgresSessionStore implements the store.SessionStore interface
// using a PostgreSQL database as the storage backend. The variable-length
// parts of a session (deck list, slots, per-deck counts, result list) are
// stored as JSONB columns.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the
// SessionStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure PostgresSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// sessionRow carries the JSONB payloads between a QuizSession and its row.
type sessionRow struct {
	deckIDs       []byte
	slots         []byte
	perDeckCounts []byte
	results       []byte
}

func encodeSessionRow(session *domain.QuizSession) (*sessionRow, error) {
	deckIDs, err := json.Marshal(session.DeckIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal deck IDs: %w", err)
	}

	slots, err := json.Marshal(session.Slots)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal slots: %w", err)
	}

	perDeckCounts, err := json.Marshal(session.PerDeckCounts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal per-deck counts: %w", err)
	}

	results, err := json.Marshal(session.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal results: %w", err)
	}

	return &sessionRow{
		deckIDs:       deckIDs,
		slots:         slots,
		perDeckCounts: perDeckCounts,
		results:       results,
	}, nil
}

func (r *sessionRow) decodeInto(session *domain.QuizSession) error {
	if err := json.Unmarshal(r.deckIDs, &session.DeckIDs); err != nil {
		return fmt.Errorf("failed to unmarshal deck IDs: %w", err)
	}

	if err := json.Unmarshal(r.slots, &session.Slots); err != nil {
		return fmt.Errorf("failed to unmarshal slots: %w", err)
	}

	if err := json.Unmarshal(r.perDeckCounts, &session.PerDeckCounts); err != nil {
		return fmt.Errorf("failed to unmarshal per-deck counts: %w", err)
	}

	if err := json.Unmarshal(r.results, &session.Results); err != nil {
		return fmt.Errorf("failed to unmarshal results: %w", err)
	}

	return nil
}

// Create implements store.SessionStore.Create
// Returns store.ErrInvalidEntity if the owning user does not exist.
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.QuizSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	row, err := encodeSessionRow(session)
	if err != nil {
		return err
	}

	var difficulty *string
	if session.DifficultyFilter != nil {
		d := string(*session.DifficultyFilter)
		difficulty = &d
	}

	query := `
		INSERT INTO quiz_sessions
			(id, user_id, deck_ids, difficulty_filter, slots, per_deck_counts,
			 current_index, results, status, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.UserID,
		row.deckIDs,
		difficulty,
		row.slots,
		row.perDeckCounts,
		session.CurrentIndex,
		row.results,
		string(session.Status),
		session.ExpiresAt,
		session.CreatedAt,
		session.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during session creation",
				slog.String("session_id", session.ID.String()),
				slog.String("user_id", session.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, session.UserID)
		}

		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return MapError(err)
	}

	log.Info("session created successfully",
		slog.String("session_id", session.ID.String()),
		slog.Int("slot_count", len(session.Slots)))
	return nil
}

// GetByID implements store.SessionStore.GetByID
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *PostgresSessionStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.QuizSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, deck_ids, difficulty_filter, slots, per_deck_counts,
		       current_index, results, status, expires_at, created_at, updated_at
		FROM quiz_sessions
		WHERE id = $1
	`

	var session domain.QuizSession
	var row sessionRow
	var difficulty sql.NullString
	var status string
	var expiresAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&row.deckIDs,
		&difficulty,
		&row.slots,
		&row.perDeckCounts,
		&session.CurrentIndex,
		&row.results,
		&status,
		&expiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("session not found",
				slog.String("session_id", id.String()))
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get session by ID",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, MapError(err)
	}

	if err := row.decodeInto(&session); err != nil {
		log.Error("failed to decode session payload",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, err
	}

	session.Status = domain.SessionStatus(status)
	if difficulty.Valid {
		d := domain.Difficulty(difficulty.String)
		session.DifficultyFilter = &d
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		session.ExpiresAt = &t
	}

	return &session, nil
}

// Update implements store.SessionStore.Update
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *PostgresSessionStore) Update(ctx context.Context, session *domain.QuizSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during update",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	results, err := json.Marshal(session.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	// Deck list, slots, and per-deck counts are immutable after Create;
	// only the advancing state is written back.
	query := `
		UPDATE quiz_sessions
		SET current_index = $1, results = $2, status = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		session.CurrentIndex,
		results,
		string(session.Status),
		session.UpdatedAt,
		session.ID,
	)

	if err != nil {
		log.Error("failed to update session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrSessionNotFound); err != nil {
		return err
	}

	log.Debug("session updated",
		slog.String("session_id", session.ID.String()),
		slog.Int("current_index", session.CurrentIndex),
		slog.String("status", string(session.Status)))
	return nil
}

// WithTx implements store.SessionStore.WithTx
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{
		db:     tx,
		logger: s.logger,
	}
}
