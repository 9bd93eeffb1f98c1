package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/recallkit/recall-api/internal/domain"
)

// SessionStore defines the interface for quiz session persistence.
type SessionStore interface {
	// Create saves a newly built session.
	Create(ctx context.Context, session *domain.QuizSession) error

	// GetByID retrieves a session by its unique ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.QuizSession, error)

	// Update persists the session's advancing state: current index, result
	// list, status, and updated timestamp.
	// Returns ErrSessionNotFound if the session does not exist.
	Update(ctx context.Context, session *domain.QuizSession) error

	// WithTx returns a new SessionStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) SessionStore
}

// ResultStore defines the interface for quiz result persistence.
// Results are immutable once created, so there is no update operation.
type ResultStore interface {
	// Create saves a new quiz result.
	Create(ctx context.Context, result *domain.QuizResult) error

	// ListBySession retrieves all results for one session in answer order.
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.QuizResult, error)

	// WithTx returns a new ResultStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ResultStore
}
