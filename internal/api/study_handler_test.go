package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/recallkit/recall-api/internal/api/shared"
	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/service/study"
	"github.com/recallkit/recall-api/internal/session"
)

// mockStudyService is a mock implementation of the StudyService interface
type mockStudyService struct {
	startSessionFn func(ctx context.Context, userID uuid.UUID, deckIDs []uuid.UUID, opts study.StartOptions) (*domain.QuizSession, error)
	getSessionFn   func(ctx context.Context, userID, sessionID uuid.UUID) (*domain.QuizSession, error)
	submitAnswerFn func(ctx context.Context, userID, sessionID uuid.UUID, answer study.SubmitOutcome) (*study.SubmitResult, error)
	listDueCardsFn func(ctx context.Context, userID, deckID uuid.UUID, difficulty *domain.Difficulty) ([]uuid.UUID, error)
}

func (m *mockStudyService) StartSession(
	ctx context.Context,
	userID uuid.UUID,
	deckIDs []uuid.UUID,
	opts study.StartOptions,
) (*domain.QuizSession, error) {
	return m.startSessionFn(ctx, userID, deckIDs, opts)
}

func (m *mockStudyService) GetSession(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*domain.QuizSession, error) {
	return m.getSessionFn(ctx, userID, sessionID)
}

func (m *mockStudyService) SubmitAnswer(
	ctx context.Context,
	userID uuid.UUID,
	sessionID uuid.UUID,
	answer study.SubmitOutcome,
) (*study.SubmitResult, error) {
	return m.submitAnswerFn(ctx, userID, sessionID, answer)
}

func (m *mockStudyService) ListDueCards(
	ctx context.Context,
	userID uuid.UUID,
	deckID uuid.UUID,
	difficulty *domain.Difficulty,
) ([]uuid.UUID, error) {
	return m.listDueCardsFn(ctx, userID, deckID, difficulty)
}

// sampleSession builds a minimal active session owned by userID.
func sampleSession(userID uuid.UUID) *domain.QuizSession {
	deckID := uuid.New()
	cardID := uuid.New()
	now := time.Now().UTC()
	return &domain.QuizSession{
		ID:      uuid.New(),
		UserID:  userID,
		DeckIDs: []uuid.UUID{deckID},
		Slots: []domain.SessionSlot{
			{CardID: cardID, DeckID: deckID, Position: 0},
		},
		PerDeckCounts: map[uuid.UUID]int{deckID: 1},
		Status:        domain.SessionStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// withUserID attaches an authenticated user to the request context.
func withUserID(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

// withPathParam attaches a chi route parameter to the request context.
func withPathParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestStartSessionHandler(t *testing.T) {
	userID := uuid.New()
	deckID := uuid.New()

	tests := []struct {
		name           string
		userIDInCtx    uuid.UUID
		body           string
		serviceResult  *domain.QuizSession
		serviceError   error
		expectedStatus int
	}{
		{
			name:           "Success",
			userIDInCtx:    userID,
			body:           fmt.Sprintf(`{"deck_ids":[%q],"cards_per_deck":5}`, deckID),
			serviceResult:  sampleSession(userID),
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing User ID",
			userIDInCtx:    uuid.Nil,
			body:           fmt.Sprintf(`{"deck_ids":[%q]}`, deckID),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed JSON",
			userIDInCtx:    userID,
			body:           `{"deck_ids":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "No Decks",
			userIDInCtx:    userID,
			body:           `{"deck_ids":[]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid Difficulty",
			userIDInCtx:    userID,
			body:           fmt.Sprintf(`{"deck_ids":[%q],"difficulty":"impossible"}`, deckID),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Deck Not Owned",
			userIDInCtx:    userID,
			body:           fmt.Sprintf(`{"deck_ids":[%q]}`, deckID),
			serviceError:   study.ErrDeckNotOwned,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "No Eligible Cards",
			userIDInCtx:    userID,
			body:           fmt.Sprintf(`{"deck_ids":[%q]}`, deckID),
			serviceError:   session.ErrEmptySession,
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &mockStudyService{
				startSessionFn: func(ctx context.Context, gotUserID uuid.UUID, deckIDs []uuid.UUID, opts study.StartOptions) (*domain.QuizSession, error) {
					return tc.serviceResult, tc.serviceError
				},
			}
			handler := NewStudyHandler(mockService)

			req := httptest.NewRequest("POST", "/sessions", bytes.NewBufferString(tc.body))
			if tc.userIDInCtx != uuid.Nil {
				req = withUserID(req, tc.userIDInCtx)
			}

			rr := httptest.NewRecorder()
			handler.StartSession(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v (body: %s)",
					rr.Code, tc.expectedStatus, rr.Body.String())
			}

			if tc.expectedStatus == http.StatusCreated {
				var resp SessionResponse
				if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.ID != tc.serviceResult.ID {
					t.Errorf("response session ID = %v, want %v", resp.ID, tc.serviceResult.ID)
				}
				if resp.Status != string(domain.SessionStatusActive) {
					t.Errorf("response status = %q, want %q", resp.Status, domain.SessionStatusActive)
				}
			}
		})
	}
}

func TestGetSessionHandler(t *testing.T) {
	userID := uuid.New()
	sess := sampleSession(userID)

	tests := []struct {
		name           string
		userIDInCtx    uuid.UUID
		sessionParam   string
		serviceResult  *domain.QuizSession
		serviceError   error
		expectedStatus int
	}{
		{
			name:           "Success",
			userIDInCtx:    userID,
			sessionParam:   sess.ID.String(),
			serviceResult:  sess,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid Session ID",
			userIDInCtx:    userID,
			sessionParam:   "not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Session Not Found",
			userIDInCtx:    userID,
			sessionParam:   uuid.New().String(),
			serviceError:   study.ErrSessionNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Session Not Owned",
			userIDInCtx:    userID,
			sessionParam:   sess.ID.String(),
			serviceError:   study.ErrSessionNotOwned,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &mockStudyService{
				getSessionFn: func(ctx context.Context, gotUserID, sessionID uuid.UUID) (*domain.QuizSession, error) {
					return tc.serviceResult, tc.serviceError
				},
			}
			handler := NewStudyHandler(mockService)

			req := httptest.NewRequest("GET", "/sessions/"+tc.sessionParam, nil)
			req = withUserID(req, tc.userIDInCtx)
			req = withPathParam(req, "session_id", tc.sessionParam)

			rr := httptest.NewRecorder()
			handler.GetSession(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v (body: %s)",
					rr.Code, tc.expectedStatus, rr.Body.String())
			}
		})
	}
}

func TestListDueCardsHandler(t *testing.T) {
	userID := uuid.New()
	deckID := uuid.New()
	dueIDs := []uuid.UUID{uuid.New(), uuid.New()}

	tests := []struct {
		name           string
		deckParam      string
		query          string
		serviceResult  []uuid.UUID
		serviceError   error
		expectedStatus int
		expectedCount  int
	}{
		{
			name:           "Success",
			deckParam:      deckID.String(),
			serviceResult:  dueIDs,
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:           "Nothing Due",
			deckParam:      deckID.String(),
			serviceResult:  nil,
			expectedStatus: http.StatusOK,
			expectedCount:  0,
		},
		{
			name:           "Difficulty Filter",
			deckParam:      deckID.String(),
			query:          "?difficulty=hard",
			serviceResult:  dueIDs[:1],
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "Invalid Difficulty",
			deckParam:      deckID.String(),
			query:          "?difficulty=impossible",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid Deck ID",
			deckParam:      "not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Deck Not Found",
			deckParam:      uuid.New().String(),
			serviceError:   study.ErrDeckNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Deck Not Owned",
			deckParam:      deckID.String(),
			serviceError:   study.ErrDeckNotOwned,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotDifficulty *domain.Difficulty
			mockService := &mockStudyService{
				listDueCardsFn: func(ctx context.Context, gotUserID, gotDeckID uuid.UUID, difficulty *domain.Difficulty) ([]uuid.UUID, error) {
					gotDifficulty = difficulty
					return tc.serviceResult, tc.serviceError
				},
			}
			handler := NewStudyHandler(mockService)

			req := httptest.NewRequest("GET", "/decks/"+tc.deckParam+"/due"+tc.query, nil)
			req = withUserID(req, userID)
			req = withPathParam(req, "deck_id", tc.deckParam)

			rr := httptest.NewRecorder()
			handler.ListDueCards(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v (body: %s)",
					rr.Code, tc.expectedStatus, rr.Body.String())
			}

			if tc.expectedStatus != http.StatusOK {
				return
			}

			var resp DueCardsResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Count != tc.expectedCount {
				t.Errorf("response count = %d, want %d", resp.Count, tc.expectedCount)
			}
			if resp.CardIDs == nil {
				t.Error("expected a non-nil card ID list")
			}
			if tc.query == "?difficulty=hard" {
				if gotDifficulty == nil || *gotDifficulty != domain.DifficultyHard {
					t.Errorf("service difficulty = %v, want hard", gotDifficulty)
				}
			}
		})
	}
}

func TestSubmitAnswerHandler(t *testing.T) {
	userID := uuid.New()
	sess := sampleSession(userID)
	schedule, _ := domain.NewCardSchedule(sess.Slots[0].CardID)
	result := &domain.QuizResult{
		ID:         uuid.New(),
		SessionID:  sess.ID,
		CardID:     sess.Slots[0].CardID,
		Outcome:    domain.ReviewOutcomeGood,
		IsCorrect:  true,
		AnsweredAt: time.Now().UTC(),
	}

	tests := []struct {
		name           string
		body           string
		serviceResult  *study.SubmitResult
		serviceError   error
		expectedStatus int
	}{
		{
			name: "Success",
			body: `{"slot_index":0,"outcome":"good"}`,
			serviceResult: &study.SubmitResult{
				Session:  sess,
				Result:   result,
				Schedule: schedule,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid Outcome Value",
			body:           `{"slot_index":0,"outcome":"perfect"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Out Of Sequence",
			body:           `{"slot_index":2,"outcome":"good"}`,
			serviceError:   session.ErrOutOfSequence,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Expired Session",
			body:           `{"slot_index":0,"outcome":"good"}`,
			serviceError:   session.ErrSessionExpired,
			expectedStatus: http.StatusGone,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &mockStudyService{
				submitAnswerFn: func(ctx context.Context, gotUserID, sessionID uuid.UUID, answer study.SubmitOutcome) (*study.SubmitResult, error) {
					return tc.serviceResult, tc.serviceError
				},
			}
			handler := NewStudyHandler(mockService)

			req := httptest.NewRequest(
				"POST", "/sessions/"+sess.ID.String()+"/answers", bytes.NewBufferString(tc.body),
			)
			req = withUserID(req, userID)
			req = withPathParam(req, "session_id", sess.ID.String())

			rr := httptest.NewRecorder()
			handler.SubmitAnswer(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v (body: %s)",
					rr.Code, tc.expectedStatus, rr.Body.String())
			}

			if tc.expectedStatus == http.StatusOK {
				var resp SubmitAnswerResponse
				if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if !resp.Correct {
					t.Error("expected a correct answer in the response")
				}
				if resp.Schedule.CardID != sess.Slots[0].CardID {
					t.Errorf("response schedule card = %v, want %v",
						resp.Schedule.CardID, sess.Slots[0].CardID)
				}
			}
		})
	}
}
