package practice

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/vpetrenko/tg-flashdecks/pkg/flashcard"
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time {
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestManager() (*Manager, *testClock) {
	clock := &testClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	return NewManager(clock.Now, rand.New(rand.NewSource(3))), clock
}

func fiveCards() []flashcard.Card {
	cards := make([]flashcard.Card, 5)
	for i := range cards {
		cards[i] = flashcard.Card{ID: fmt.Sprintf("c%d", i), DeckID: "d1", Front: "q", Back: "a"}
	}
	return cards
}

func TestStartRequiresCards(t *testing.T) {
	manager, _ := newTestManager()
	_, err := manager.Start(1, 2, "d1", nil)
	if !errors.Is(err, ErrNoCards) {
		t.Fatalf("expected ErrNoCards, got %v", err)
	}
	if _, ok := manager.Snapshot(1, 2); ok {
		t.Fatal("no session must be created for an empty deck")
	}
}

func TestStartShufflesOnceAndKeepsPermutation(t *testing.T) {
	manager, _ := newTestManager()
	cards := fiveCards()

	snap, err := manager.Start(1, 2, "d1", cards)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if snap.Index != 0 || snap.Total != 5 || snap.Flipped {
		t.Fatalf("unexpected initial snapshot: %+v", snap)
	}

	// Walk the whole session and verify the order is a permutation that
	// stays stable while navigating back and forth.
	seen := make(map[string]bool)
	order := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		snap, ok := manager.Snapshot(1, 2)
		if !ok {
			t.Fatal("session disappeared")
		}
		seen[snap.Card.ID] = true
		order = append(order, snap.Card.ID)
		manager.Next(1, 2)
	}
	if len(seen) != 5 {
		t.Fatalf("expected 5 distinct cards, saw %d", len(seen))
	}

	for i := 4; i >= 0; i-- {
		snap, _ := manager.Snapshot(1, 2)
		if snap.Card.ID != order[snap.Index] {
			t.Fatalf("order changed on re-visit: %q at %d, want %q", snap.Card.ID, snap.Index, order[snap.Index])
		}
		manager.Prev(1, 2)
	}
}

func TestCursorClampsAtBoundaries(t *testing.T) {
	manager, _ := newTestManager()
	if _, err := manager.Start(1, 2, "d1", fiveCards()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	snap, ok := manager.Prev(1, 2)
	if !ok || snap.Index != 0 {
		t.Fatalf("previous at the first card must stay at 0, got %d", snap.Index)
	}

	for i := 0; i < 4; i++ {
		snap, _ = manager.Next(1, 2)
	}
	if snap.Index != 4 {
		t.Fatalf("expected cursor 4 after four next calls, got %d", snap.Index)
	}
	snap, _ = manager.Next(1, 2)
	if snap.Index != 4 {
		t.Fatalf("next at the last card must stay clamped at 4, got %d", snap.Index)
	}
}

func TestFlipTogglesAndNavigationResets(t *testing.T) {
	manager, _ := newTestManager()
	if _, err := manager.Start(1, 2, "d1", fiveCards()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	snap, ok := manager.Flip(1, 2)
	if !ok || !snap.Flipped {
		t.Fatalf("expected flipped snapshot, got %+v", snap)
	}
	snap, _ = manager.Flip(1, 2)
	if snap.Flipped {
		t.Fatal("second flip must return to the question side")
	}

	manager.Flip(1, 2)
	snap, _ = manager.Next(1, 2)
	if snap.Flipped {
		t.Fatal("moving the cursor must reset to the question side")
	}

	manager.Flip(1, 2)
	snap, _ = manager.Prev(1, 2)
	if snap.Flipped {
		t.Fatal("moving back must reset to the question side")
	}
}

func TestClampedMoveKeepsFlip(t *testing.T) {
	manager, _ := newTestManager()
	if _, err := manager.Start(1, 2, "d1", fiveCards()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	manager.Flip(1, 2)
	snap, _ := manager.Prev(1, 2)
	if snap.Index != 0 {
		t.Fatalf("expected clamped cursor, got %d", snap.Index)
	}
	if !snap.Flipped {
		t.Fatal("a clamped no-op move is not a cursor move and must keep the flip")
	}
}

func TestEndForDeckOnlyDropsMatchingSession(t *testing.T) {
	manager, _ := newTestManager()
	if _, err := manager.Start(1, 2, "d1", fiveCards()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	manager.EndForDeck(1, 2, "other")
	if _, ok := manager.Snapshot(1, 2); !ok {
		t.Fatal("session for a different deck must survive")
	}

	manager.EndForDeck(1, 2, "d1")
	if _, ok := manager.Snapshot(1, 2); ok {
		t.Fatal("session for the deleted deck must be dropped")
	}
}

func TestSweepInactive(t *testing.T) {
	manager, clock := newTestManager()
	if _, err := manager.Start(1, 2, "d1", fiveCards()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	clock.Advance(InactivityTimeout / 2)
	manager.SweepInactive(clock.Now())
	if _, ok := manager.Snapshot(1, 2); !ok {
		t.Fatal("active session must survive the sweep")
	}

	clock.Advance(InactivityTimeout * 2)
	manager.SweepInactive(clock.Now())
	if _, ok := manager.Snapshot(1, 2); ok {
		t.Fatal("inactive session must be swept")
	}
}
