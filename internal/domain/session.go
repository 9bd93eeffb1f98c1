package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// QuizSession validation errors
var (
	ErrEmptySessionID      = errors.New("session ID cannot be empty")
	ErrEmptySessionUserID  = errors.New("session user ID cannot be empty")
	ErrEmptySessionDecks   = errors.New("session must reference at least one deck")
	ErrSparseSlotPositions = errors.New("slot positions must be dense and zero-based")
	ErrInvalidCurrentIndex = errors.New("current index must be between 0 and the slot count")
)

// SessionStatus is the lifecycle state of a quiz session.
type SessionStatus string

// Session lifecycle: Building -> Active -> Completed, with Expired reachable
// from Active once the expiry timestamp has passed.
const (
	SessionStatusBuilding  SessionStatus = "building"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusExpired   SessionStatus = "expired"
)

// Valid reports whether s is one of the closed set of session statuses.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusBuilding, SessionStatusActive, SessionStatusCompleted, SessionStatusExpired:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status is an end state.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusExpired
}

// SessionSlot is one position in a built session. Position is a dense 0-based
// index within the session.
type SessionSlot struct {
	CardID   uuid.UUID `json:"card_id"`
	DeckID   uuid.UUID `json:"deck_id"`
	Position int       `json:"position"`
}

// QuizSession is an ordered, deck-interleaved sequence of cards for one
// sitting, advanced one slot at a time as the learner answers.
type QuizSession struct {
	ID               uuid.UUID         `json:"id"`
	UserID           uuid.UUID         `json:"user_id"`
	DeckIDs          []uuid.UUID       `json:"deck_ids"`
	DifficultyFilter *Difficulty       `json:"difficulty_filter,omitempty"`
	Slots            []SessionSlot     `json:"slots"`
	PerDeckCounts    map[uuid.UUID]int `json:"per_deck_counts"`
	CurrentIndex     int               `json:"current_index"`
	Results          []uuid.UUID       `json:"results"`
	Status           SessionStatus     `json:"status"`
	ExpiresAt        *time.Time        `json:"expires_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Validate checks if the QuizSession has valid data, including the dense
// zero-based slot position invariant.
func (s *QuizSession) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySessionID
	}

	if s.UserID == uuid.Nil {
		return ErrEmptySessionUserID
	}

	if len(s.DeckIDs) == 0 {
		return ErrEmptySessionDecks
	}

	if !s.Status.Valid() {
		return ErrInvalidSessionStatus
	}

	for i, slot := range s.Slots {
		if slot.Position != i {
			return ErrSparseSlotPositions
		}
	}

	if s.CurrentIndex < 0 || s.CurrentIndex > len(s.Slots) {
		return ErrInvalidCurrentIndex
	}

	return nil
}

// CurrentSlot returns the slot awaiting an answer, or false if the session
// has no remaining slots.
func (s *QuizSession) CurrentSlot() (SessionSlot, bool) {
	if s.CurrentIndex >= len(s.Slots) {
		return SessionSlot{}, false
	}
	return s.Slots[s.CurrentIndex], true
}

// ExpiredBy reports whether the session's expiry timestamp has passed at the
// given time. The boundary is inclusive of the expiry instant: a session is
// still usable at exactly ExpiresAt and expires strictly after it. Sessions
// without an expiry never expire.
func (s *QuizSession) ExpiredBy(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

// Clone returns a deep copy of the session. The session package mutates the
// copy rather than the original.
func (s *QuizSession) Clone() *QuizSession {
	clone := *s

	clone.DeckIDs = append([]uuid.UUID(nil), s.DeckIDs...)
	clone.Slots = append([]SessionSlot(nil), s.Slots...)
	clone.Results = append([]uuid.UUID(nil), s.Results...)

	clone.PerDeckCounts = make(map[uuid.UUID]int, len(s.PerDeckCounts))
	for deckID, count := range s.PerDeckCounts {
		clone.PerDeckCounts[deckID] = count
	}

	if s.DifficultyFilter != nil {
		d := *s.DifficultyFilter
		clone.DifficultyFilter = &d
	}
	if s.ExpiresAt != nil {
		t := *s.ExpiresAt
		clone.ExpiresAt = &t
	}

	return &clone
}
