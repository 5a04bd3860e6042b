// Package practice tracks active practice runs: an immutable shuffled card
// sequence per chat/user with a cursor and a question/answer flip flag.
package practice

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/vpetrenko/tg-flashdecks/pkg/flashcard"
)

const (
	InactivityTimeout = time.Hour
	SweeperInterval   = 5 * time.Minute
)

// ErrNoCards is returned when a deck has nothing to practice. Callers must
// check for it instead of entering an empty session.
var ErrNoCards = errors.New("deck has no cards to practice")

// Session is one user's practice run. The card order is fixed at start and
// never reshuffled; only the cursor and flip flag change.
type Session struct {
	chatID int64
	userID int64
	deckID string

	cards   []flashcard.Card
	cursor  int
	flipped bool

	currentMessageID int
	lastActivityAt   time.Time
}

// Snapshot is the render-ready view of a session's current position.
type Snapshot struct {
	Card      flashcard.Card
	DeckID    string
	Index     int
	Total     int
	Flipped   bool
	MessageID int
}

// Manager manages active practice sessions with thread-safe access.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
	rng      *rand.Rand
}

// NewManager initializes a manager with an injectable clock and random
// source. Nil values fall back to time.Now and the shared rand source.
func NewManager(now func() time.Time, rng *rand.Rand) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		sessions: make(map[string]*Session),
		now:      now,
		rng:      rng,
	}
}

var DefaultManager = NewManager(nil, nil)

func ResetDefaultManager(now func() time.Time, rng *rand.Rand) {
	DefaultManager = NewManager(now, rng)
}

// StartPracticeSweeper starts the inactivity sweeper for practice sessions.
func StartPracticeSweeper(ctx context.Context) {
	DefaultManager.StartSweeper(ctx)
}

func getSessionKey(chatID, userID int64) string {
	return fmt.Sprintf("%d:%d", chatID, userID)
}

// Start shuffles the deck's cards once and replaces any existing session for
// the user. The shuffled order is stable for the life of the session.
// Starting with no cards is a blocking condition, not an empty session.
func (m *Manager) Start(chatID, userID int64, deckID string, cards []flashcard.Card) (Snapshot, error) {
	if len(cards) == 0 {
		return Snapshot{}, ErrNoCards
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	session := &Session{
		chatID:         chatID,
		userID:         userID,
		deckID:         deckID,
		cards:          flashcard.ShufflePractice(cards, m.rng),
		lastActivityAt: m.now(),
	}
	m.sessions[getSessionKey(chatID, userID)] = session
	return m.snapshotLocked(session), nil
}

// Snapshot returns the current card view, if a session is active.
func (m *Manager) Snapshot(chatID, userID int64) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session := m.sessions[getSessionKey(chatID, userID)]
	if session == nil {
		return Snapshot{}, false
	}
	return m.snapshotLocked(session), true
}

// Flip toggles between question and answer side.
func (m *Manager) Flip(chatID, userID int64) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session := m.sessions[getSessionKey(chatID, userID)]
	if session == nil {
		return Snapshot{}, false
	}
	session.flipped = !session.flipped
	session.lastActivityAt = m.now()
	return m.snapshotLocked(session), true
}

// Next advances the cursor by one. At the last card it is a no-op (no
// wraparound). Any cursor move resets the view to the question side.
func (m *Manager) Next(chatID, userID int64) (Snapshot, bool) {
	return m.move(chatID, userID, 1)
}

// Prev moves the cursor back by one, clamped at the first card.
func (m *Manager) Prev(chatID, userID int64) (Snapshot, bool) {
	return m.move(chatID, userID, -1)
}

func (m *Manager) move(chatID, userID int64, delta int) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session := m.sessions[getSessionKey(chatID, userID)]
	if session == nil {
		return Snapshot{}, false
	}
	next := session.cursor + delta
	if next >= 0 && next < len(session.cards) {
		session.cursor = next
		session.flipped = false
	}
	session.lastActivityAt = m.now()
	return m.snapshotLocked(session), true
}

// SetCurrentMessageID stores the Telegram message ID showing the session.
func (m *Manager) SetCurrentMessageID(chatID, userID int64, messageID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session := m.sessions[getSessionKey(chatID, userID)]
	if session == nil {
		return
	}
	session.currentMessageID = messageID
}

// End drops the session, if any.
func (m *Manager) End(chatID, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, getSessionKey(chatID, userID))
}

// EndForDeck drops the user's session when it practices the given deck.
// Used when the deck disappears underneath an active session.
func (m *Manager) EndForDeck(chatID, userID int64, deckID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := getSessionKey(chatID, userID)
	if session := m.sessions[key]; session != nil && session.deckID == deckID {
		delete(m.sessions, key)
	}
}

// StartSweeper periodically expires inactive sessions until ctx is canceled.
func (m *Manager) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(SweeperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SweepInactive(m.now())
		}
	}
}

func (m *Manager) SweepInactive(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, session := range m.sessions {
		if session == nil || now.Sub(session.lastActivityAt) > InactivityTimeout {
			delete(m.sessions, key)
		}
	}
}

func (m *Manager) snapshotLocked(session *Session) Snapshot {
	return Snapshot{
		Card:      session.cards[session.cursor],
		DeckID:    session.deckID,
		Index:     session.cursor,
		Total:     len(session.cards),
		Flipped:   session.flipped,
		MessageID: session.currentMessageID,
	}
}
