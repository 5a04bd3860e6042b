package flashcard

import (
	"fmt"
	"math/rand"
	"testing"
)

func TestCardCountsSkipsEmptyDecks(t *testing.T) {
	cards := []Card{
		{ID: "c1", DeckID: "d1"},
		{ID: "c2", DeckID: "d1"},
		{ID: "c3", DeckID: "d2"},
	}
	counts := CardCounts(cards)
	if counts["d1"] != 2 || counts["d2"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	if _, ok := counts["d3"]; ok {
		t.Fatal("zero-card decks must be absent from the map")
	}
}

func TestCardsForDeckEmptySelection(t *testing.T) {
	cards := []Card{{ID: "c1", DeckID: "d1"}}
	if got := CardsForDeck(cards, ""); len(got) != 0 {
		t.Fatalf("expected no cards without a selection, got %d", len(got))
	}
	if got := CardsForDeck(cards, "d1"); len(got) != 1 {
		t.Fatalf("expected 1 card for d1, got %d", len(got))
	}
}

func TestFilterDecksQuery(t *testing.T) {
	decks := []Deck{
		{ID: "d1", Name: "Spanish Basics"},
		{ID: "d2", Name: "French", Description: "spanish loanwords"},
		{ID: "d3", Name: "Geography"},
	}

	got := FilterDecks(decks, "  SPANISH ", nil)
	if len(got) != 2 {
		t.Fatalf("expected name and description matches, got %d decks", len(got))
	}

	if got := FilterDecks(decks, "   ", nil); len(got) != 3 {
		t.Fatalf("blank query must match all decks, got %d", len(got))
	}

	if got := FilterDecks(decks, "latin", nil); len(got) != 0 {
		t.Fatalf("expected no matches, got %d", len(got))
	}
}

func TestFilterDecksTagAndSemantics(t *testing.T) {
	decks := []Deck{
		{ID: "both", TagIDs: []string{"A", "B"}, Name: "both"},
		{ID: "onlyA", TagIDs: []string{"A"}, Name: "onlyA"},
		{ID: "onlyB", TagIDs: []string{"B"}, Name: "onlyB"},
		{ID: "untagged", Name: "untagged"},
	}

	got := FilterDecks(decks, "", []string{"A", "B"})
	if len(got) != 1 || got[0].ID != "both" {
		t.Fatalf("expected only the deck tagged with both, got %+v", got)
	}

	got = FilterDecks(decks, "", []string{"A"})
	if len(got) != 2 {
		t.Fatalf("expected two decks tagged A, got %d", len(got))
	}
}

func TestFilterDecksDoesNotMutateInput(t *testing.T) {
	decks := []Deck{
		{ID: "d1", Name: "Spanish"},
		{ID: "d2", Name: "French"},
	}
	FilterDecks(decks, "french", nil)
	if decks[0].ID != "d1" || decks[1].ID != "d2" {
		t.Fatal("filtering must not reorder or mutate the input")
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	cards := make([]Card, 10)
	for i := range cards {
		cards[i] = Card{ID: fmt.Sprintf("c%d", i)}
	}
	rng := rand.New(rand.NewSource(7))

	shuffled := ShufflePractice(cards, rng)
	if len(shuffled) != len(cards) {
		t.Fatalf("expected %d cards, got %d", len(cards), len(shuffled))
	}

	seen := make(map[string]int)
	for _, c := range shuffled {
		seen[c.ID]++
	}
	for _, c := range cards {
		if seen[c.ID] != 1 {
			t.Fatalf("card %s appears %d times after shuffle", c.ID, seen[c.ID])
		}
	}

	for i := range cards {
		if cards[i].ID != fmt.Sprintf("c%d", i) {
			t.Fatal("shuffle must not mutate the input slice")
		}
	}
}

func TestShuffleReachesEveryPermutation(t *testing.T) {
	cards := []Card{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	rng := rand.New(rand.NewSource(1))

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		shuffled := ShufflePractice(cards, rng)
		key := shuffled[0].ID + shuffled[1].ID + shuffled[2].ID
		seen[key] = true
	}
	if len(seen) != 6 {
		t.Fatalf("expected all 6 permutations of 3 cards, saw %d", len(seen))
	}
}
