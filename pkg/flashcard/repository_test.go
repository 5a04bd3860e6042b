package flashcard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vpetrenko/tg-flashdecks/pkg/kvstore"
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

type brokenStore struct {
	getErr error
	setErr error
}

func (s *brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, s.getErr
}

func (s *brokenStore) Set(context.Context, string, string) error {
	return s.setErr
}

func newTestRepository(t *testing.T) (*Repository, *kvstore.MemoryStore, *testClock) {
	t.Helper()
	store := kvstore.NewMemoryStore()
	clock := &testClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewRepository(store, "", clock.Now), store, clock
}

func TestListCardsEmptyWhenKeyAbsent(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	if cards := repo.ListCards(context.Background()); len(cards) != 0 {
		t.Fatalf("expected no cards, got %d", len(cards))
	}
}

func TestListCardsCorruptValueDegradesToEmpty(t *testing.T) {
	repo, store, _ := newTestRepository(t)
	ctx := context.Background()
	if err := store.Set(ctx, "cards", "{not json"); err != nil {
		t.Fatalf("failed to seed corrupt value: %v", err)
	}
	if cards := repo.ListCards(ctx); len(cards) != 0 {
		t.Fatalf("expected corrupt value to read as empty, got %d cards", len(cards))
	}
}

func TestListCardsStorageFailureDegradesToEmpty(t *testing.T) {
	repo := NewRepository(&brokenStore{getErr: errors.New("disk gone")}, "", nil)
	if cards := repo.ListCards(context.Background()); len(cards) != 0 {
		t.Fatalf("expected read failure to degrade to empty, got %d cards", len(cards))
	}
}

func TestSaveCardValidation(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()

	cases := []Card{
		{ID: "c1", Front: "  ", Back: "hello", DeckID: "d1"},
		{ID: "c2", Front: "hola", Back: "", DeckID: "d1"},
		{ID: "c3", Front: "hola", Back: "hello", DeckID: ""},
	}
	for _, card := range cases {
		if err := repo.SaveCard(ctx, card); !errors.Is(err, ErrCardInvalid) {
			t.Fatalf("expected ErrCardInvalid for %+v, got %v", card, err)
		}
	}
	if cards := repo.ListCards(ctx); len(cards) != 0 {
		t.Fatalf("rejected saves must not write, found %d cards", len(cards))
	}
}

func TestSaveCardInsertOverridesTimestamps(t *testing.T) {
	repo, _, clock := newTestRepository(t)
	ctx := context.Background()

	card := NewCard("hola", "hello", "d1")
	card.CreatedAt = 42 // caller-supplied values must be overridden
	card.UpdatedAt = 42
	if err := repo.SaveCard(ctx, card); err != nil {
		t.Fatalf("SaveCard returned error: %v", err)
	}

	cards := repo.ListCards(ctx)
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	want := clock.Now().UnixMilli()
	if cards[0].CreatedAt != want || cards[0].UpdatedAt != want {
		t.Fatalf("expected timestamps %d, got createdAt=%d updatedAt=%d", want, cards[0].CreatedAt, cards[0].UpdatedAt)
	}
}

func TestSaveCardUpdatePreservesCreatedAt(t *testing.T) {
	repo, _, clock := newTestRepository(t)
	ctx := context.Background()

	card := NewCard("hola", "hello", "d1")
	if err := repo.SaveCard(ctx, card); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	created := clock.Now().UnixMilli()

	clock.Advance(time.Hour)
	card.Back = "hi"
	if err := repo.SaveCard(ctx, card); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	cards := repo.ListCards(ctx)
	if len(cards) != 1 {
		t.Fatalf("expected 1 card after update, got %d", len(cards))
	}
	if cards[0].Back != "hi" {
		t.Fatalf("expected updated back, got %q", cards[0].Back)
	}
	if cards[0].CreatedAt != created {
		t.Fatalf("createdAt changed on update: %d != %d", cards[0].CreatedAt, created)
	}
	if cards[0].UpdatedAt < created {
		t.Fatalf("updatedAt went backwards: %d < %d", cards[0].UpdatedAt, created)
	}
	if cards[0].UpdatedAt != clock.Now().UnixMilli() {
		t.Fatalf("updatedAt not refreshed: %d", cards[0].UpdatedAt)
	}
}

func TestDeleteDeckCascadesToCards(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()

	spanish := NewDeck("Spanish", "", nil)
	french := NewDeck("French", "", nil)
	if err := repo.SaveDeck(ctx, spanish); err != nil {
		t.Fatalf("SaveDeck failed: %v", err)
	}
	if err := repo.SaveDeck(ctx, french); err != nil {
		t.Fatalf("SaveDeck failed: %v", err)
	}
	if err := repo.SaveCard(ctx, NewCard("hola", "hello", spanish.ID)); err != nil {
		t.Fatalf("SaveCard failed: %v", err)
	}
	if err := repo.SaveCard(ctx, NewCard("adios", "bye", spanish.ID)); err != nil {
		t.Fatalf("SaveCard failed: %v", err)
	}
	if err := repo.SaveCard(ctx, NewCard("bonjour", "hello", french.ID)); err != nil {
		t.Fatalf("SaveCard failed: %v", err)
	}

	if counts := CardCounts(repo.ListCards(ctx)); counts[spanish.ID] != 2 {
		t.Fatalf("expected 2 spanish cards before delete, got %d", counts[spanish.ID])
	}

	if err := repo.DeleteDeck(ctx, spanish.ID); err != nil {
		t.Fatalf("DeleteDeck failed: %v", err)
	}

	decks := repo.ListDecks(ctx)
	if len(decks) != 1 || decks[0].ID != french.ID {
		t.Fatalf("expected only the french deck to remain, got %+v", decks)
	}
	cards := repo.ListCards(ctx)
	if len(cards) != 1 || cards[0].DeckID != french.ID {
		t.Fatalf("expected only french cards to remain, got %+v", cards)
	}
}

func TestDeleteDeckScenarioSingleDeck(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()

	deck := NewDeck("Spanish", "", nil)
	if err := repo.SaveDeck(ctx, deck); err != nil {
		t.Fatalf("SaveDeck failed: %v", err)
	}
	if err := repo.SaveCard(ctx, NewCard("hola", "hello", deck.ID)); err != nil {
		t.Fatalf("SaveCard failed: %v", err)
	}
	if got := len(repo.ListCards(ctx)); got != 1 {
		t.Fatalf("expected 1 card, got %d", got)
	}
	if counts := CardCounts(repo.ListCards(ctx)); counts[deck.ID] != 1 {
		t.Fatalf("expected count 1 for deck, got %d", counts[deck.ID])
	}

	if err := repo.DeleteDeck(ctx, deck.ID); err != nil {
		t.Fatalf("DeleteDeck failed: %v", err)
	}
	if got := len(repo.ListCards(ctx)); got != 0 {
		t.Fatalf("expected no cards after cascade, got %d", got)
	}
	if got := len(repo.ListDecks(ctx)); got != 0 {
		t.Fatalf("expected no decks after delete, got %d", got)
	}
}

func TestSaveDeckNormalizesEmptyTagList(t *testing.T) {
	repo, store, _ := newTestRepository(t)
	ctx := context.Background()

	deck := NewDeck("Spanish", "", []string{})
	if err := repo.SaveDeck(ctx, deck); err != nil {
		t.Fatalf("SaveDeck failed: %v", err)
	}

	raw, ok, err := store.Get(ctx, "decks")
	if err != nil || !ok {
		t.Fatalf("failed to read stored decks: ok=%v err=%v", ok, err)
	}
	if strings.Contains(raw, "tagIds") {
		t.Fatalf("empty tag list must be absent in stored JSON, got %s", raw)
	}
}

func TestSaveTagRejectsCaseInsensitiveDuplicate(t *testing.T) {
	repo, _, clock := newTestRepository(t)
	ctx := context.Background()

	if err := repo.SaveTag(ctx, NewTag("easy", TagColors[1], clock.Now())); err != nil {
		t.Fatalf("SaveTag failed: %v", err)
	}
	if err := repo.SaveTag(ctx, NewTag("hard", TagColors[2], clock.Now())); err != nil {
		t.Fatalf("SaveTag failed: %v", err)
	}

	err := repo.SaveTag(ctx, NewTag("EASY", TagColors[0], clock.Now()))
	if !errors.Is(err, ErrDuplicateTag) {
		t.Fatalf("expected ErrDuplicateTag, got %v", err)
	}
	if tags := repo.ListTags(ctx); len(tags) != 2 {
		t.Fatalf("expected tag count to stay 2, got %d", len(tags))
	}
}

func TestSaveTagLowercasesAndDefaultsColor(t *testing.T) {
	repo, _, clock := newTestRepository(t)
	ctx := context.Background()

	tag := NewTag("  GRAMMAR  ", "#123456", clock.Now())
	if err := repo.SaveTag(ctx, tag); err != nil {
		t.Fatalf("SaveTag failed: %v", err)
	}

	tags := repo.ListTags(ctx)
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
	if tags[0].Name != "grammar" {
		t.Fatalf("expected lower-cased trimmed name, got %q", tags[0].Name)
	}
	if tags[0].Color != TagColors[0] {
		t.Fatalf("expected default palette color, got %q", tags[0].Color)
	}
}

func TestDeleteTagCleansDeckReferences(t *testing.T) {
	repo, store, clock := newTestRepository(t)
	ctx := context.Background()

	easy := NewTag("easy", TagColors[0], clock.Now())
	hard := NewTag("hard", TagColors[1], clock.Now())
	if err := repo.SaveTag(ctx, easy); err != nil {
		t.Fatalf("SaveTag failed: %v", err)
	}
	if err := repo.SaveTag(ctx, hard); err != nil {
		t.Fatalf("SaveTag failed: %v", err)
	}

	both := NewDeck("Both", "", []string{easy.ID, hard.ID})
	onlyEasy := NewDeck("OnlyEasy", "", []string{easy.ID})
	if err := repo.SaveDeck(ctx, both); err != nil {
		t.Fatalf("SaveDeck failed: %v", err)
	}
	if err := repo.SaveDeck(ctx, onlyEasy); err != nil {
		t.Fatalf("SaveDeck failed: %v", err)
	}

	if err := repo.DeleteTag(ctx, easy.ID); err != nil {
		t.Fatalf("DeleteTag failed: %v", err)
	}

	tags := repo.ListTags(ctx)
	if len(tags) != 1 || tags[0].ID != hard.ID {
		t.Fatalf("expected only hard tag to remain, got %+v", tags)
	}

	for _, d := range repo.ListDecks(ctx) {
		for _, id := range d.TagIDs {
			if id == easy.ID {
				t.Fatalf("deck %q still references the deleted tag", d.Name)
			}
		}
		if d.ID == both.ID && len(d.TagIDs) != 1 {
			t.Fatalf("expected deck %q to keep one tag, got %v", d.Name, d.TagIDs)
		}
	}

	// The deck whose tag list became empty must store tagIds as absent.
	raw, ok, err := store.Get(ctx, "decks")
	if err != nil || !ok {
		t.Fatalf("failed to read stored decks: ok=%v err=%v", ok, err)
	}
	if strings.Count(raw, "tagIds") != 1 {
		t.Fatalf("expected exactly one deck with tagIds in stored JSON, got %s", raw)
	}
}

func TestWriteErrorPropagates(t *testing.T) {
	storeErr := errors.New("write refused")
	repo := NewRepository(&brokenStore{setErr: storeErr}, "", nil)

	err := repo.SaveDeck(context.Background(), NewDeck("Spanish", "", nil))
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestForUserKeyspacesAreIsolated(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()

	alice := ForUser(store, 100)
	bob := ForUser(store, 200)

	if err := alice.SaveDeck(ctx, NewDeck("Spanish", "", nil)); err != nil {
		t.Fatalf("SaveDeck failed: %v", err)
	}
	if decks := bob.ListDecks(ctx); len(decks) != 0 {
		t.Fatalf("expected bob's keyspace to be empty, got %d decks", len(decks))
	}
	if decks := alice.ListDecks(ctx); len(decks) != 1 {
		t.Fatalf("expected alice's deck to persist, got %d", len(decks))
	}
}
