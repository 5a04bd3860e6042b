// Package flashcard holds the persistent flashcard data model: cards grouped
// into decks, decks optionally labeled with tags, all stored as JSON-encoded
// collections in a key-value store.
package flashcard

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card is a front/back question-answer pair owned by exactly one deck.
// Timestamps are epoch milliseconds. Difficulty, LastReviewed and
// ReviewCount are persisted but no scheduling algorithm consumes them.
type Card struct {
	ID           string   `json:"id"`
	Front        string   `json:"front"`
	Back         string   `json:"back"`
	DeckID       string   `json:"deckId"`
	CreatedAt    int64    `json:"createdAt"`
	UpdatedAt    int64    `json:"updatedAt"`
	Difficulty   *float64 `json:"difficulty,omitempty"`
	LastReviewed *int64   `json:"lastReviewed,omitempty"`
	ReviewCount  *int     `json:"reviewCount,omitempty"`
}

// Deck is a named collection of cards. TagIDs is either absent or non-empty;
// an empty list is normalized to absent on write.
type Deck struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	TagIDs      []string `json:"tagIds,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

// Tag is a named, colored label decks can carry. Names are stored
// lower-cased and are unique case-insensitively.
type Tag struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	CreatedAt int64  `json:"createdAt"`
}

// TagColors is the fixed palette tags can use. The first entry is the
// default.
var TagColors = []string{"#646cff", "#74ffb3", "#ff6464", "#ffb364", "#64b3ff", "#b364ff"}

func ValidTagColor(color string) bool {
	for _, c := range TagColors {
		if c == color {
			return true
		}
	}
	return false
}

func NewCard(front, back, deckID string) Card {
	return Card{
		ID:     uuid.NewString(),
		Front:  strings.TrimSpace(front),
		Back:   strings.TrimSpace(back),
		DeckID: deckID,
	}
}

func NewDeck(name, description string, tagIDs []string) Deck {
	return Deck{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		TagIDs:      tagIDs,
	}
}

// NewTag lower-cases the name and falls back to the default palette color
// when the given one is not in the palette.
func NewTag(name, color string, createdAt time.Time) Tag {
	if !ValidTagColor(color) {
		color = TagColors[0]
	}
	return Tag{
		ID:        uuid.NewString(),
		Name:      strings.ToLower(strings.TrimSpace(name)),
		Color:     color,
		CreatedAt: createdAt.UnixMilli(),
	}
}
