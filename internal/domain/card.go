package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Card validation errors
var (
	ErrCardIDEmpty        = errors.New("card ID cannot be empty")
	ErrCardDeckIDEmpty    = errors.New("card deck ID cannot be empty")
	ErrCardContentEmpty   = errors.New("card content cannot be empty")
	ErrCardContentInvalid = errors.New("card content must be valid JSON")
)

// Difficulty is the author-assigned difficulty label of a card. It is used to
// filter session candidates; it is unrelated to the scheduler's ease factor.
type Difficulty string

// Possible difficulty values
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the closed set of difficulty labels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// Card represents a flashcard belonging to a deck. The content is stored as a
// JSONB structure, allowing for flexible card formats and future extensibility.
type Card struct {
	ID         uuid.UUID       `json:"id"`
	DeckID     uuid.UUID       `json:"deck_id"`
	Content    json.RawMessage `json:"content"`
	Difficulty Difficulty      `json:"difficulty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CardContent represents the structure of the content field in a Card.
// This is provided as a sample structure but cards can have flexible content
// as it's stored as a JSONB field.
type CardContent struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Hint  string   `json:"hint,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// NewCard creates a new Card in the given deck.
// Returns an error if validation fails.
func NewCard(deckID uuid.UUID, content json.RawMessage, difficulty Difficulty) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:         uuid.New(),
		DeckID:     deckID,
		Content:    content,
		Difficulty: difficulty,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}

	if len(c.Content) == 0 {
		return ErrCardContentEmpty
	}

	var js json.RawMessage
	if err := json.Unmarshal(c.Content, &js); err != nil {
		return ErrCardContentInvalid
	}

	if !c.Difficulty.Valid() {
		return ErrInvalidDifficulty
	}

	return nil
}
