package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/recallkit/recall-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// CreateDeckRequest defines the payload for creating a deck.
type CreateDeckRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// CreateCardRequest defines the payload for adding a card to a deck.
type CreateCardRequest struct {
	Content    json.RawMessage `json:"content"    validate:"required"`
	Difficulty string          `json:"difficulty" validate:"required,oneof=easy medium hard"`
}

// StartSessionRequest defines the payload for starting a quiz session.
type StartSessionRequest struct {
	DeckIDs      []uuid.UUID `json:"deck_ids"       validate:"required,min=1,dive,required"`
	CardsPerDeck int         `json:"cards_per_deck" validate:"gte=0"`
	Difficulty   string      `json:"difficulty"     validate:"omitempty,oneof=easy medium hard"`
	DueOnly      bool        `json:"due_only"`
}

// SubmitAnswerRequest defines the payload for answering the session's
// current slot.
type SubmitAnswerRequest struct {
	SlotIndex int    `json:"slot_index" validate:"gte=0"`
	Outcome   string `json:"outcome"    validate:"required,oneof=again hard good easy"`
}

// SlotResponse is one position of a session as returned to the client.
type SlotResponse struct {
	CardID   uuid.UUID `json:"card_id"`
	DeckID   uuid.UUID `json:"deck_id"`
	Position int       `json:"position"`
}

// SessionResponse is the client view of a quiz session.
type SessionResponse struct {
	ID            uuid.UUID         `json:"id"`
	DeckIDs       []uuid.UUID       `json:"deck_ids"`
	Slots         []SlotResponse    `json:"slots"`
	PerDeckCounts map[uuid.UUID]int `json:"per_deck_counts"`
	CurrentIndex  int               `json:"current_index"`
	Status        string            `json:"status"`
	ExpiresAt     *time.Time        `json:"expires_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ScheduleResponse is the client view of a card's review schedule.
type ScheduleResponse struct {
	CardID       uuid.UUID `json:"card_id"`
	EaseFactor   float64   `json:"ease_factor"`
	IntervalDays int       `json:"interval_days"`
	Repetitions  int       `json:"repetitions"`
	NextReviewAt time.Time `json:"next_review_at"`
}

// DueCardsResponse lists the cards of one deck that are due for review,
// oldest-overdue first.
type DueCardsResponse struct {
	DeckID  uuid.UUID   `json:"deck_id"`
	CardIDs []uuid.UUID `json:"card_ids"`
	Count   int         `json:"count"`
}

// SubmitAnswerResponse bundles the state produced by recording one answer.
type SubmitAnswerResponse struct {
	Session  SessionResponse  `json:"session"`
	Schedule ScheduleResponse `json:"schedule"`
	Correct  bool             `json:"correct"`
}

// NewSessionResponse converts a domain session to its client representation.
func NewSessionResponse(sess *domain.QuizSession) SessionResponse {
	slots := make([]SlotResponse, len(sess.Slots))
	for i, slot := range sess.Slots {
		slots[i] = SlotResponse{
			CardID:   slot.CardID,
			DeckID:   slot.DeckID,
			Position: slot.Position,
		}
	}

	return SessionResponse{
		ID:            sess.ID,
		DeckIDs:       sess.DeckIDs,
		Slots:         slots,
		PerDeckCounts: sess.PerDeckCounts,
		CurrentIndex:  sess.CurrentIndex,
		Status:        string(sess.Status),
		ExpiresAt:     sess.ExpiresAt,
		CreatedAt:     sess.CreatedAt,
	}
}

// NewScheduleResponse converts a domain schedule to its client representation.
func NewScheduleResponse(schedule *domain.CardSchedule) ScheduleResponse {
	return ScheduleResponse{
		CardID:       schedule.CardID,
		EaseFactor:   schedule.EaseFactor,
		IntervalDays: schedule.IntervalDays,
		Repetitions:  schedule.Repetitions,
		NextReviewAt: schedule.NextReviewAt,
	}
}
