// Package testutils provides shared helpers for database-backed tests. The
// tests that use it run only when DATABASE_URL points at a reachable
// PostgreSQL instance and skip otherwise.
package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"github.com/recallkit/recall-api/internal/store"
	"github.com/recallkit/recall-api/migrations"
)

// migrationsRunOnce guards schema setup so migrations run once per test
// binary even when several tests ask for a database.
var migrationsRunOnce sync.Once

// IsIntegrationTestEnvironment returns true if the environment is configured
// for running integration tests with a database connection. Tests that need
// one should check this and skip otherwise.
func IsIntegrationTestEnvironment() bool {
	return os.Getenv("DATABASE_URL") != ""
}

// MustGetTestDatabaseURL returns the database URL for integration tests.
// Designed for TestMain functions where a testing.T is not available.
func MustGetTestDatabaseURL() string {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		// ALLOW-PANIC
		panic("DATABASE_URL environment variable is required for integration tests")
	}
	return dbURL
}

// SetupTestDatabaseSchema resets the schema to baseline and applies all
// embedded migrations. Call it once per test binary, typically from TestMain
// or GetTestDB.
func SetupTestDatabaseSchema(db *sql.DB) error {
	var setupErr error
	migrationsRunOnce.Do(func() {
		goose.SetBaseFS(migrations.FS)
		goose.SetLogger(goose.NopLogger())

		if err := goose.SetDialect("postgres"); err != nil {
			setupErr = fmt.Errorf("failed to set goose dialect: %w", err)
			return
		}

		if err := goose.DownTo(db, ".", 0); err != nil {
			setupErr = fmt.Errorf("failed to reset database schema: %w", err)
			return
		}

		if err := goose.Up(db, "."); err != nil {
			setupErr = fmt.Errorf("failed to apply migrations: %w", err)
			return
		}
	})

	return setupErr
}

// GetTestDB opens a connection to the test database, verifies it, applies the
// schema, and registers cleanup. Tests calling it should first skip when
// IsIntegrationTestEnvironment is false.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", MustGetTestDatabaseURL())
	require.NoError(t, err, "Failed to open database connection")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "Failed to ping database")

	require.NoError(t, SetupTestDatabaseSchema(db), "Failed to setup database schema")
	return db
}

// WithTx runs a test function inside a transaction that is rolled back when
// the function returns, isolating the test's writes from the rest of the
// suite.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			t.Errorf("Failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// MustInsertUser inserts a user row with a unique email and returns its ID.
func MustInsertUser(ctx context.Context, t *testing.T, db store.DBTX) uuid.UUID {
	t.Helper()

	id := uuid.New()
	email := fmt.Sprintf("it-%s@example.com", id.String()[:8])
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, email, hashed_password, created_at, updated_at)
		VALUES ($1, $2, 'test-hash', NOW(), NOW())
	`, id, email)
	require.NoError(t, err, "Failed to insert test user")
	return id
}

// MustInsertDeck inserts a deck row owned by userID and returns its ID.
func MustInsertDeck(ctx context.Context, t *testing.T, db store.DBTX, userID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.ExecContext(ctx, `
		INSERT INTO decks (id, user_id, name, description, created_at, updated_at)
		VALUES ($1, $2, 'Test Deck', '', NOW(), NOW())
	`, id, userID)
	require.NoError(t, err, "Failed to insert test deck")
	return id
}

// MustInsertCard inserts a medium-difficulty card into deckID and returns
// its ID.
func MustInsertCard(ctx context.Context, t *testing.T, db store.DBTX, deckID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.ExecContext(ctx, `
		INSERT INTO cards (id, deck_id, content, difficulty, created_at, updated_at)
		VALUES ($1, $2, '{"front": "q", "back": "a"}', 'medium', NOW(), NOW())
	`, id, deckID)
	require.NoError(t, err, "Failed to insert test card")
	return id
}
