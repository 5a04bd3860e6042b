package flashcard

import (
	"math/rand"
	"strings"
)

// Derived views: pure functions over in-memory snapshots of the collections.
// None of them mutate their input, and none of them treat a dangling deck or
// tag reference as an error.

// CardCounts maps deckId to the number of cards it owns. Decks with zero
// cards are absent from the map.
func CardCounts(cards []Card) map[string]int {
	counts := make(map[string]int)
	for _, c := range cards {
		counts[c.DeckID]++
	}
	return counts
}

// CardsForDeck filters cards by owning deck. An empty deckID selects
// nothing.
func CardsForDeck(cards []Card, deckID string) []Card {
	if deckID == "" {
		return nil
	}
	matched := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.DeckID == deckID {
			matched = append(matched, c)
		}
	}
	return matched
}

// FilterDecks applies the deck browser predicates: a free-text query matched
// case-insensitively against name or description (a blank query matches all
// decks), ANDed with a tag filter that requires the deck's tagIds to be a
// superset of every selected tag.
func FilterDecks(decks []Deck, query string, tagIDs []string) []Deck {
	query = strings.ToLower(strings.TrimSpace(query))

	matched := make([]Deck, 0, len(decks))
	for _, d := range decks {
		if query != "" &&
			!strings.Contains(strings.ToLower(d.Name), query) &&
			!strings.Contains(strings.ToLower(d.Description), query) {
			continue
		}
		if !hasAllTags(d, tagIDs) {
			continue
		}
		matched = append(matched, d)
	}
	return matched
}

func hasAllTags(d Deck, tagIDs []string) bool {
	if len(tagIDs) == 0 {
		return true
	}
	if len(d.TagIDs) == 0 {
		return false
	}
	for _, want := range tagIDs {
		found := false
		for _, have := range d.TagIDs {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ShufflePractice returns a uniformly random permutation of cards, leaving
// the input untouched. rand.Shuffle runs the Fisher-Yates walk from the last
// index down, picking a uniform j in [0,i] each step, so every permutation
// is equally likely. A nil rng falls back to the shared source.
func ShufflePractice(cards []Card, rng *rand.Rand) []Card {
	shuffled := append([]Card(nil), cards...)
	swap := func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	if rng != nil {
		rng.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}
	return shuffled
}
