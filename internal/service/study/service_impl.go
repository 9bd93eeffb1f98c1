package study

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/recallkit/recall-api/internal/config"
	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/domain/srs"
	"github.com/recallkit/recall-api/internal/platform/logger"
	"github.com/recallkit/recall-api/internal/session"
	"github.com/recallkit/recall-api/internal/store"
)

// Verify interface compliance at compile time
var _ StudyService = (*studyServiceImpl)(nil)

// studyServiceImpl implements the StudyService interface.
type studyServiceImpl struct {
	db            *sql.DB
	deckStore     store.DeckStore
	cardStore     store.CardStore
	scheduleStore store.CardScheduleStore
	sessionStore  store.SessionStore
	resultStore   store.ResultStore
	builder       *session.Builder
	recorder      *session.Recorder
	cfg           config.StudyConfig
	logger        *slog.Logger
	timeFunc      nowFunc
}

// NewStudyService creates a new StudyService implementation.
// The session builder and answer recorder are constructed internally from the
// given stores and SRS service.
func NewStudyService(
	db *sql.DB,
	deckStore store.DeckStore,
	cardStore store.CardStore,
	scheduleStore store.CardScheduleStore,
	sessionStore store.SessionStore,
	resultStore store.ResultStore,
	srsService srs.Service,
	cfg config.StudyConfig,
	logger *slog.Logger,
) StudyService {
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
	if sessionStore == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessionStore cannot be nil")
	}
	if resultStore == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("resultStore cannot be nil")
	}
	if srsService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("srsService cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "study_service"))

	return &studyServiceImpl{
		db:            db,
		deckStore:     deckStore,
		cardStore:     cardStore,
		scheduleStore: scheduleStore,
		sessionStore:  sessionStore,
		resultStore:   resultStore,
		builder:       session.NewBuilder(newCardSourceAdapter(cardStore), logger),
		recorder:      session.NewRecorder(srsService),
		cfg:           cfg,
		logger:        logger,
		timeFunc:      func() time.Time { return time.Now().UTC() },
	}
}

// StartSession implements StudyService.StartSession.
func (s *studyServiceImpl) StartSession(
	ctx context.Context,
	userID uuid.UUID,
	deckIDs []uuid.UUID,
	opts StartOptions,
) (*domain.QuizSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.timeFunc()

	log.Debug("starting quiz session",
		slog.String("user_id", userID.String()),
		slog.Int("deck_count", len(deckIDs)))

	// Verify every requested deck exists and belongs to the user before
	// touching any pools.
	for _, deckID := range deckIDs {
		deck, err := s.deckStore.GetByID(ctx, deckID)
		if err != nil {
			if errors.Is(err, store.ErrDeckNotFound) {
				log.Warn("deck not found for session",
					slog.String("user_id", userID.String()),
					slog.String("deck_id", deckID.String()))
				return nil, ErrDeckNotFound
			}
			return nil, NewStartSessionError("failed to get deck", err)
		}
		if deck.UserID != userID {
			log.Warn("user does not own deck",
				slog.String("user_id", userID.String()),
				slog.String("deck_id", deckID.String()),
				slog.String("owner_id", deck.UserID.String()))
			return nil, ErrDeckNotOwned
		}
	}

	buildOpts := session.BuildOptions{
		CardsPerDeck: opts.CardsPerDeck,
		Difficulty:   opts.Difficulty,
		DueOnly:      opts.DueOnly,
	}
	if s.cfg.SessionTTLMinutes > 0 {
		expiresAt := now.Add(time.Duration(s.cfg.SessionTTLMinutes) * time.Minute)
		buildOpts.ExpiresAt = &expiresAt
	}

	sess, err := s.builder.Build(ctx, userID, deckIDs, buildOpts, now)
	if err != nil {
		if errors.Is(err, session.ErrEmptySession) || errors.Is(err, session.ErrNoDecks) {
			return nil, err
		}
		return nil, NewStartSessionError("failed to build session", err)
	}

	if err := s.sessionStore.Create(ctx, sess); err != nil {
		return nil, NewStartSessionError("failed to persist session", err)
	}

	log.Info("quiz session started",
		slog.String("session_id", sess.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("slot_count", len(sess.Slots)))

	return sess, nil
}

// GetSession implements StudyService.GetSession.
func (s *studyServiceImpl) GetSession(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*domain.QuizSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sess, err := s.sessionStore.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			log.Debug("session not found",
				slog.String("session_id", sessionID.String()))
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if sess.UserID != userID {
		log.Warn("user does not own session",
			slog.String("user_id", userID.String()),
			slog.String("session_id", sessionID.String()),
			slog.String("owner_id", sess.UserID.String()))
		return nil, ErrSessionNotOwned
	}

	// Expiry is detected lazily: an active session read past its deadline is
	// transitioned and written back here.
	if sess.Status == domain.SessionStatusActive && sess.ExpiredBy(s.timeFunc()) {
		expired := sess.Clone()
		expired.Status = domain.SessionStatusExpired
		expired.UpdatedAt = s.timeFunc()
		if err := s.sessionStore.Update(ctx, expired); err != nil {
			return nil, fmt.Errorf("failed to expire session: %w", err)
		}
		log.Info("session expired on read",
			slog.String("session_id", sessionID.String()))
		return expired, nil
	}

	return sess, nil
}

// ListDueCards implements StudyService.ListDueCards.
func (s *studyServiceImpl) ListDueCards(
	ctx context.Context,
	userID uuid.UUID,
	deckID uuid.UUID,
	difficulty *domain.Difficulty,
) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.timeFunc()

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

	pool, err := s.cardStore.GetDeckCardPool(ctx, deckID, difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck card pool: %w", err)
	}

	due := srs.SelectDue(pool, now, nil)

	log.Debug("listed due cards",
		slog.String("deck_id", deckID.String()),
		slog.Int("due_count", len(due)))

	return due, nil
}

// SubmitAnswer implements StudyService.SubmitAnswer.
//
// The answer is recorded in a single transaction: read the session and the
// card's schedule, grade the answer, then write back the advanced session,
// the new result, and the recomputed schedule conditioned on the version
// that was read. A version conflict aborts the transaction and the whole
// read-compute-write cycle is retried with fresh state, up to the configured
// retry budget.
func (s *studyServiceImpl) SubmitAnswer(
	ctx context.Context,
	userID uuid.UUID,
	sessionID uuid.UUID,
	answer SubmitOutcome,
) (*SubmitResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing answer",
		slog.String("user_id", userID.String()),
		slog.String("session_id", sessionID.String()),
		slog.Int("slot_index", answer.SlotIndex),
		slog.String("outcome", string(answer.Outcome)))

	if !answer.Outcome.Valid() {
		return nil, srs.ErrInvalidOutcome
	}

	var submitted *SubmitResult
	var lastErr error

	for attempt := 0; attempt <= s.cfg.ConflictRetries; attempt++ {
		if attempt > 0 {
			log.Debug("retrying answer after version conflict",
				slog.String("session_id", sessionID.String()),
				slog.Int("attempt", attempt))
		}

		submitted, lastErr = s.submitAnswerTx(ctx, userID, sessionID, answer)
		if !errors.Is(lastErr, store.ErrConcurrencyConflict) {
			break
		}
	}

	if lastErr != nil {
		if isSubmitPreconditionError(lastErr) {
			return nil, lastErr
		}

		log.Error("failed to submit answer",
			slog.String("error", lastErr.Error()),
			slog.String("user_id", userID.String()),
			slog.String("session_id", sessionID.String()))
		return nil, NewSubmitAnswerError("failed to submit answer", lastErr)
	}

	log.Debug("answer recorded",
		slog.String("session_id", sessionID.String()),
		slog.String("card_id", submitted.Result.CardID.String()),
		slog.String("outcome", string(answer.Outcome)),
		slog.Float64("ease_factor", submitted.Schedule.EaseFactor),
		slog.Int("interval_days", submitted.Schedule.IntervalDays),
		slog.Time("next_review_at", submitted.Schedule.NextReviewAt))

	return submitted, nil
}

// submitAnswerTx performs one read-compute-write cycle for an answer inside
// a single transaction.
func (s *studyServiceImpl) submitAnswerTx(
	ctx context.Context,
	userID uuid.UUID,
	sessionID uuid.UUID,
	answer SubmitOutcome,
) (*SubmitResult, error) {
	now := s.timeFunc()
	var submitted *SubmitResult
	var expired *domain.QuizSession

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		sessions := s.sessionStore.WithTx(tx)
		schedules := s.scheduleStore.WithTx(tx)
		results := s.resultStore.WithTx(tx)

		sess, err := sessions.GetByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, store.ErrSessionNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to get session: %w", err)
		}
		if sess.UserID != userID {
			return ErrSessionNotOwned
		}

		slot, ok := sess.CurrentSlot()
		if !ok {
			return session.ErrSessionNotActive
		}

		schedule, err := s.loadOrCreateSchedule(ctx, schedules, slot.CardID)
		if err != nil {
			return err
		}
		expectedVersion := schedule.Version

		advanced, result, newSchedule, err := s.recorder.RecordAnswer(
			sess, schedule, answer.SlotIndex, answer.Outcome, now,
		)
		if errors.Is(err, session.ErrSessionExpired) {
			// The transaction is about to roll back; hand the expired clone
			// out so the transition can be written separately.
			expired = advanced
			return err
		}
		if err != nil {
			return err
		}

		// Conflicts propagate so the caller can retry the whole cycle.
		if err := schedules.Update(ctx, newSchedule, expectedVersion); err != nil {
			return err
		}

		if err := results.Create(ctx, result); err != nil {
			return fmt.Errorf("failed to save result: %w", err)
		}

		if err := sessions.Update(ctx, advanced); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		submitted = &SubmitResult{
			Session:  advanced,
			Result:   result,
			Schedule: newSchedule,
		}
		return nil
	})

	if err != nil {
		// The rollback undid any write made inside the closure, so the expiry
		// transition gets its own single-statement write here.
		if expired != nil {
			if updateErr := s.sessionStore.Update(ctx, expired); updateErr != nil {
				logger.FromContextOrDefault(ctx, s.logger).Error(
					"failed to mark session expired",
					slog.String("error", updateErr.Error()),
					slog.String("session_id", sessionID.String()))
			}
		}
		return nil, err
	}
	return submitted, nil
}

// loadOrCreateSchedule fetches the card's schedule, creating the initial
// due-immediately schedule for cards that have never been reviewed.
func (s *studyServiceImpl) loadOrCreateSchedule(
	ctx context.Context,
	schedules store.CardScheduleStore,
	cardID uuid.UUID,
) (*domain.CardSchedule, error) {
	schedule, err := schedules.Get(ctx, cardID)
	if err == nil {
		return schedule, nil
	}
	if !errors.Is(err, store.ErrScheduleNotFound) {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	schedule, err = domain.NewCardSchedule(cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial schedule: %w", err)
	}
	if err := schedules.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to save initial schedule: %w", err)
	}
	return schedule, nil
}

// isSubmitPreconditionError reports whether the error is one of the
// precondition failures SubmitAnswer passes through unwrapped.
func isSubmitPreconditionError(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrSessionNotOwned) ||
		errors.Is(err, session.ErrOutOfSequence) ||
		errors.Is(err, session.ErrSessionExpired) ||
		errors.Is(err, session.ErrSessionNotActive) ||
		errors.Is(err, session.ErrScheduleMismatch) ||
		errors.Is(err, srs.ErrInvalidOutcome)
}
