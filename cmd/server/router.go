package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apiMiddleware "github.com/recallkit/recall-api/internal/api/middleware"
)

// routes configures the application router with all routes and middleware.
func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", app.authHandler.Register)
		r.Post("/auth/login", app.authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Deck and card management
			r.Post("/decks", app.deckHandler.CreateDeck)
			r.Get("/decks", app.deckHandler.ListDecks)
			r.Post("/decks/{deck_id}/cards", app.deckHandler.CreateCard)
			r.Get("/decks/{deck_id}/due", app.studyHandler.ListDueCards)

			// Quiz sessions
			r.Post("/sessions", app.studyHandler.StartSession)
			r.Get("/sessions/{session_id}", app.studyHandler.GetSession)
			r.Post("/sessions/{session_id}/answers", app.studyHandler.SubmitAnswer)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
