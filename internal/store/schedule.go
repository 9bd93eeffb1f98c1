package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/recallkit/recall-api/internal/domain"
)

// CardScheduleStore defines the interface for card schedule persistence.
//
// The same card can be due in two concurrently active sessions, so schedule
// writes are the one shared-resource hazard in the system. Update is
// version-conditioned: callers read the current schedule, compute the new one
// with srs.Service.Advance, and write back expecting the version they read.
// On ErrConcurrencyConflict they must re-read and recompute - never merge.
type CardScheduleStore interface {
	// Create saves the initial schedule for a card.
	// Returns ErrInvalidEntity if the card does not exist.
	Create(ctx context.Context, schedule *domain.CardSchedule) error

	// Get retrieves the schedule for a card together with its current
	// version marker.
	// Returns ErrScheduleNotFound if no schedule exists for the card.
	Get(ctx context.Context, cardID uuid.UUID) (*domain.CardSchedule, error)

	// Update writes a recomputed schedule conditioned on expectedVersion
	// matching the stored version. On success the stored version is
	// incremented and schedule.Version reflects the new value.
	// Returns ErrConcurrencyConflict if the stored version has moved on.
	// Returns ErrScheduleNotFound if no schedule exists for the card.
	Update(ctx context.Context, schedule *domain.CardSchedule, expectedVersion int64) error

	// WithTx returns a new CardScheduleStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CardScheduleStore
}
