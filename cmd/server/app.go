package main

import (
	"database/sql"
	"log/slog"

	"github.com/recallkit/recall-api/internal/api"
	"github.com/recallkit/recall-api/internal/config"
	"github.com/recallkit/recall-api/internal/domain/srs"
	"github.com/recallkit/recall-api/internal/platform/postgres"
	"github.com/recallkit/recall-api/internal/service/auth"
	"github.com/recallkit/recall-api/internal/service/decks"
	"github.com/recallkit/recall-api/internal/service/study"
)

// application holds the fully wired service graph.
type application struct {
	cfg          *config.Config
	logger       *slog.Logger
	authHandler  *api.AuthHandler
	deckHandler  *api.DeckHandler
	studyHandler *api.StudyHandler
	jwtService   auth.JWTService
}

// newApplication builds the stores, services, and handlers from the
// configuration and database connection.
func newApplication(cfg *config.Config, db *sql.DB, log *slog.Logger) (*application, error) {
	userStore := postgres.NewPostgresUserStore(db, log)
	deckStore := postgres.NewPostgresDeckStore(db, log)
	cardStore := postgres.NewPostgresCardStore(db, log)
	scheduleStore := postgres.NewPostgresCardScheduleStore(db, log)
	sessionStore := postgres.NewPostgresSessionStore(db, log)
	resultStore := postgres.NewPostgresResultStore(db, log)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, err
	}
	passwordHasher := auth.NewBcryptHasher(0)

	srsParams := srs.NewParams(srs.ParamsConfig{
		HardIsLapse: cfg.Study.HardIsLapse,
	})
	srsService := srs.NewServiceWithParams(srsParams)

	deckService := decks.NewDeckService(db, deckStore, cardStore, scheduleStore, log)
	studyService := study.NewStudyService(
		db,
		deckStore,
		cardStore,
		scheduleStore,
		sessionStore,
		resultStore,
		srsService,
		cfg.Study,
		log,
	)

	return &application{
		cfg:          cfg,
		logger:       log,
		authHandler:  api.NewAuthHandler(userStore, jwtService, passwordHasher),
		deckHandler:  api.NewDeckHandler(deckService),
		studyHandler: api.NewStudyHandler(studyService),
		jwtService:   jwtService,
	}, nil
}
