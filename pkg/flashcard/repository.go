package flashcard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vpetrenko/tg-flashdecks/pkg/kvstore"
	"github.com/vpetrenko/tg-flashdecks/pkg/logger"
)

// Storage keys, one JSON array per entity type.
const (
	cardsKey = "cards"
	decksKey = "decks"
	tagsKey  = "tags"
)

var (
	ErrCardInvalid  = errors.New("card needs non-empty front, back and an owning deck")
	ErrDeckInvalid  = errors.New("deck needs a non-empty name")
	ErrTagInvalid   = errors.New("tag needs a non-empty name")
	ErrDuplicateTag = errors.New("a tag with this name already exists")
)

// Repository owns load/save/delete for the card, deck and tag collections.
// Every save re-serializes the whole collection for its type; there are no
// partial writes. Reads degrade to an empty collection on storage or decode
// failures, writes propagate storage errors to the caller.
//
// Cross-collection cleanup (deck delete cascading to cards, tag delete
// rewriting decks) is not atomic: each collection is read-modify-written on
// its own, and a failure in between leaves dangling references. Readers
// treat any unknown deck/tag id as absent, never as an error.
type Repository struct {
	store  kvstore.Store
	prefix string
	now    func() time.Time
}

// NewRepository creates a repository over the given store. The prefix scopes
// the storage keys (the bot uses one keyspace per user); an empty prefix
// reproduces the plain cards/decks/tags layout. A nil clock means time.Now.
func NewRepository(store kvstore.Store, prefix string, now func() time.Time) *Repository {
	if now == nil {
		now = time.Now
	}
	return &Repository{store: store, prefix: prefix, now: now}
}

// ForUser scopes a repository to a single Telegram user's keyspace.
func ForUser(store kvstore.Store, userID int64) *Repository {
	return NewRepository(store, fmt.Sprintf("u%d:", userID), nil)
}

func (r *Repository) key(name string) string {
	return r.prefix + name
}

// loadCollection deserializes the stored array for key. A missing key, a
// storage read failure or a corrupt value all degrade to an empty
// collection: reads never fail, at worst the view is empty.
func loadCollection[T any](ctx context.Context, r *Repository, key string) []T {
	value, ok, err := r.store.Get(ctx, key)
	if err != nil {
		logger.Error("failed to read collection, treating as empty", "key", key, "error", err)
		return nil
	}
	if !ok || value == "" {
		return nil
	}
	var items []T
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		logger.Error("failed to decode stored collection, treating as empty", "key", key, "error", err)
		return nil
	}
	return items
}

func saveCollection[T any](ctx context.Context, r *Repository, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, key, string(raw))
}

// ListCards returns all cards, in stored order.
func (r *Repository) ListCards(ctx context.Context) []Card {
	return loadCollection[Card](ctx, r, r.key(cardsKey))
}

// SaveCard inserts or updates a card by id. Updates keep the original
// createdAt and refresh updatedAt; inserts stamp both, overriding whatever
// the caller supplied.
func (r *Repository) SaveCard(ctx context.Context, card Card) error {
	card.Front = strings.TrimSpace(card.Front)
	card.Back = strings.TrimSpace(card.Back)
	if card.Front == "" || card.Back == "" || card.DeckID == "" {
		return ErrCardInvalid
	}

	now := r.now().UnixMilli()
	cards := r.ListCards(ctx)
	updated := false
	for i := range cards {
		if cards[i].ID == card.ID {
			card.CreatedAt = cards[i].CreatedAt
			card.UpdatedAt = now
			cards[i] = card
			updated = true
			break
		}
	}
	if !updated {
		card.CreatedAt = now
		card.UpdatedAt = now
		cards = append(cards, card)
	}
	return saveCollection(ctx, r, r.key(cardsKey), cards)
}

// DeleteCard removes the card with the given id, if present.
func (r *Repository) DeleteCard(ctx context.Context, cardID string) error {
	cards := r.ListCards(ctx)
	remaining := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.ID != cardID {
			remaining = append(remaining, c)
		}
	}
	return saveCollection(ctx, r, r.key(cardsKey), remaining)
}

// CardsByDeck is a pure derived read over ListCards.
func (r *Repository) CardsByDeck(ctx context.Context, deckID string) []Card {
	return CardsForDeck(r.ListCards(ctx), deckID)
}

// ListDecks returns all decks, in stored order.
func (r *Repository) ListDecks(ctx context.Context) []Deck {
	return loadCollection[Deck](ctx, r, r.key(decksKey))
}

// SaveDeck inserts or updates a deck by id, with the same timestamp rules as
// SaveCard. An empty tag list is normalized to absent.
func (r *Repository) SaveDeck(ctx context.Context, deck Deck) error {
	deck.Name = strings.TrimSpace(deck.Name)
	if deck.Name == "" {
		return ErrDeckInvalid
	}
	if len(deck.TagIDs) == 0 {
		deck.TagIDs = nil
	}

	now := r.now().UnixMilli()
	decks := r.ListDecks(ctx)
	updated := false
	for i := range decks {
		if decks[i].ID == deck.ID {
			deck.CreatedAt = decks[i].CreatedAt
			deck.UpdatedAt = now
			decks[i] = deck
			updated = true
			break
		}
	}
	if !updated {
		deck.CreatedAt = now
		deck.UpdatedAt = now
		decks = append(decks, deck)
	}
	return saveCollection(ctx, r, r.key(decksKey), decks)
}

// DeleteDeck removes the deck and cascades to every card owned by it. The
// deck collection is written first, then the card collection; see the type
// comment for the consistency window this opens.
func (r *Repository) DeleteDeck(ctx context.Context, deckID string) error {
	decks := r.ListDecks(ctx)
	remaining := make([]Deck, 0, len(decks))
	for _, d := range decks {
		if d.ID != deckID {
			remaining = append(remaining, d)
		}
	}
	if err := saveCollection(ctx, r, r.key(decksKey), remaining); err != nil {
		return err
	}

	cards := r.ListCards(ctx)
	keep := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.DeckID != deckID {
			keep = append(keep, c)
		}
	}
	return saveCollection(ctx, r, r.key(cardsKey), keep)
}

// ListTags returns all tags, in stored order.
func (r *Repository) ListTags(ctx context.Context) []Tag {
	return loadCollection[Tag](ctx, r, r.key(tagsKey))
}

// SaveTag inserts or updates a tag by id. Names are trimmed and lower-cased;
// creating a tag whose name collides case-insensitively with another tag is
// rejected before any storage call.
func (r *Repository) SaveTag(ctx context.Context, tag Tag) error {
	tag.Name = strings.ToLower(strings.TrimSpace(tag.Name))
	if tag.Name == "" {
		return ErrTagInvalid
	}
	if !ValidTagColor(tag.Color) {
		tag.Color = TagColors[0]
	}

	tags := r.ListTags(ctx)
	for _, t := range tags {
		if t.ID != tag.ID && strings.EqualFold(t.Name, tag.Name) {
			return ErrDuplicateTag
		}
	}

	updated := false
	for i := range tags {
		if tags[i].ID == tag.ID {
			tag.CreatedAt = tags[i].CreatedAt
			tags[i] = tag
			updated = true
			break
		}
	}
	if !updated {
		if tag.CreatedAt == 0 {
			tag.CreatedAt = r.now().UnixMilli()
		}
		tags = append(tags, tag)
	}
	return saveCollection(ctx, r, r.key(tagsKey), tags)
}

// DeleteTag removes the tag and then rewrites every deck that referenced it,
// normalizing now-empty tag lists to absent. The two writes are independent.
func (r *Repository) DeleteTag(ctx context.Context, tagID string) error {
	tags := r.ListTags(ctx)
	remaining := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if t.ID != tagID {
			remaining = append(remaining, t)
		}
	}
	if err := saveCollection(ctx, r, r.key(tagsKey), remaining); err != nil {
		return err
	}

	decks := r.ListDecks(ctx)
	for i := range decks {
		if len(decks[i].TagIDs) == 0 {
			continue
		}
		kept := make([]string, 0, len(decks[i].TagIDs))
		for _, id := range decks[i].TagIDs {
			if id != tagID {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			kept = nil
		}
		decks[i].TagIDs = kept
	}
	return saveCollection(ctx, r, r.key(decksKey), decks)
}
