package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/recallkit/recall-api/internal/api/shared"
	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/service/study"
)

// StudyHandler handles quiz session API requests.
type StudyHandler struct {
	studyService study.StudyService
	validator    *validator.Validate
}

// NewStudyHandler creates a new StudyHandler with the given dependencies.
func NewStudyHandler(studyService study.StudyService) *StudyHandler {
	return &StudyHandler{
		studyService: studyService,
		validator:    validator.New(),
	}
}

// StartSession handles POST /sessions.
func (h *StudyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found")
		return
	}

	var req StartSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	opts := study.StartOptions{
		CardsPerDeck: req.CardsPerDeck,
		DueOnly:      req.DueOnly,
	}
	if req.Difficulty != "" {
		difficulty := domain.Difficulty(req.Difficulty)
		opts.Difficulty = &difficulty
	}

	sess, err := h.studyService.StartSession(r.Context(), userID, req.DeckIDs, opts)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewSessionResponse(sess))
}

// GetSession handles GET /sessions/{session_id}.
func (h *StudyHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found")
		return
	}

	sessionID, err := getPathUUID(r, "session_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	sess, err := h.studyService.GetSession(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewSessionResponse(sess))
}

// ListDueCards handles GET /decks/{deck_id}/due. An optional difficulty
// query parameter restricts the candidates.
func (h *StudyHandler) ListDueCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found")
		return
	}

	deckID, err := getPathUUID(r, "deck_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var difficulty *domain.Difficulty
	if raw := r.URL.Query().Get("difficulty"); raw != "" {
		d := domain.Difficulty(raw)
		if !d.Valid() {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid difficulty")
			return
		}
		difficulty = &d
	}

	cardIDs, err := h.studyService.ListDueCards(r.Context(), userID, deckID, difficulty)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if cardIDs == nil {
		cardIDs = []uuid.UUID{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DueCardsResponse{
		DeckID:  deckID,
		CardIDs: cardIDs,
		Count:   len(cardIDs),
	})
}

// SubmitAnswer handles POST /sessions/{session_id}/answers.
func (h *StudyHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found")
		return
	}

	sessionID, err := getPathUUID(r, "session_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req SubmitAnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.studyService.SubmitAnswer(r.Context(), userID, sessionID, study.SubmitOutcome{
		SlotIndex: req.SlotIndex,
		Outcome:   domain.ReviewOutcome(req.Outcome),
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubmitAnswerResponse{
		Session:  NewSessionResponse(result.Session),
		Schedule: NewScheduleResponse(result.Schedule),
		Correct:  result.Result.IsCorrect,
	})
}
