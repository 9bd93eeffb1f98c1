package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func validSession() *QuizSession {
	deckA := uuid.New()
	deckB := uuid.New()
	now := time.Now().UTC()

	return &QuizSession{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		DeckIDs: []uuid.UUID{deckA, deckB},
		Slots: []SessionSlot{
			{CardID: uuid.New(), DeckID: deckA, Position: 0},
			{CardID: uuid.New(), DeckID: deckB, Position: 1},
			{CardID: uuid.New(), DeckID: deckA, Position: 2},
		},
		PerDeckCounts: map[uuid.UUID]int{deckA: 2, deckB: 1},
		Status:        SessionStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestQuizSessionValidate(t *testing.T) {
	t.Parallel()

	if err := validSession().Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	s := validSession()
	s.ID = uuid.Nil
	if err := s.Validate(); err != ErrEmptySessionID {
		t.Errorf("Expected error %v, got %v", ErrEmptySessionID, err)
	}

	s = validSession()
	s.UserID = uuid.Nil
	if err := s.Validate(); err != ErrEmptySessionUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptySessionUserID, err)
	}

	s = validSession()
	s.DeckIDs = nil
	if err := s.Validate(); err != ErrEmptySessionDecks {
		t.Errorf("Expected error %v, got %v", ErrEmptySessionDecks, err)
	}

	s = validSession()
	s.Status = SessionStatus("paused")
	if err := s.Validate(); err != ErrInvalidSessionStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidSessionStatus, err)
	}

	s = validSession()
	s.Slots[2].Position = 5
	if err := s.Validate(); err != ErrSparseSlotPositions {
		t.Errorf("Expected error %v, got %v", ErrSparseSlotPositions, err)
	}

	s = validSession()
	s.CurrentIndex = len(s.Slots) + 1
	if err := s.Validate(); err != ErrInvalidCurrentIndex {
		t.Errorf("Expected error %v, got %v", ErrInvalidCurrentIndex, err)
	}

	// CurrentIndex == len(Slots) marks a finished session and is legal.
	s = validSession()
	s.CurrentIndex = len(s.Slots)
	if err := s.Validate(); err != nil {
		t.Errorf("Expected no error for a finished index, got %v", err)
	}
}

func TestSessionStatusTerminal(t *testing.T) {
	t.Parallel()

	if SessionStatusBuilding.Terminal() || SessionStatusActive.Terminal() {
		t.Error("Building and active sessions must not be terminal")
	}
	if !SessionStatusCompleted.Terminal() || !SessionStatusExpired.Terminal() {
		t.Error("Completed and expired sessions must be terminal")
	}
}

func TestQuizSessionCurrentSlot(t *testing.T) {
	t.Parallel()
	s := validSession()

	slot, ok := s.CurrentSlot()
	if !ok {
		t.Fatal("Expected a current slot")
	}
	if slot.Position != 0 {
		t.Errorf("Expected position 0, got %d", slot.Position)
	}

	s.CurrentIndex = len(s.Slots)
	if _, ok := s.CurrentSlot(); ok {
		t.Error("Expected no current slot for a finished session")
	}
}

func TestQuizSessionExpiredBy(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	s := validSession()

	if s.ExpiredBy(now) {
		t.Error("A session without an expiry must never expire")
	}

	past := now.Add(-time.Minute)
	s.ExpiresAt = &past
	if !s.ExpiredBy(now) {
		t.Error("Expected the session to be expired")
	}

	future := now.Add(time.Minute)
	s.ExpiresAt = &future
	if s.ExpiredBy(now) {
		t.Error("Expected the session not to be expired yet")
	}

	// The expiry instant itself is still inside the session's lifetime.
	s.ExpiresAt = &now
	if s.ExpiredBy(now) {
		t.Error("Expected the session to be usable at exactly its expiry instant")
	}
}

func TestQuizSessionClone(t *testing.T) {
	t.Parallel()
	s := validSession()
	expiresAt := time.Now().UTC().Add(time.Hour)
	s.ExpiresAt = &expiresAt
	s.Results = []uuid.UUID{uuid.New()}

	clone := s.Clone()
	clone.CurrentIndex = 2
	clone.Results = append(clone.Results, uuid.New())
	clone.Slots[0].Position = 9
	clone.PerDeckCounts[s.DeckIDs[0]] = 99
	*clone.ExpiresAt = clone.ExpiresAt.Add(time.Hour)

	if s.CurrentIndex != 0 {
		t.Error("Clone shares CurrentIndex with the original")
	}
	if len(s.Results) != 1 {
		t.Error("Clone shares the results slice with the original")
	}
	if s.Slots[0].Position != 0 {
		t.Error("Clone shares the slots slice with the original")
	}
	if s.PerDeckCounts[s.DeckIDs[0]] != 2 {
		t.Error("Clone shares the per-deck counts map with the original")
	}
	if !s.ExpiresAt.Equal(expiresAt) {
		t.Error("Clone shares the expiry pointer with the original")
	}
}
