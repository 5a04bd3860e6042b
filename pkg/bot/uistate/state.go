// Package uistate tracks per-chat UI state for the deck browser: the
// selected deck, the current view mode, search and tag filters, and pending
// form input captured from the next text message.
package uistate

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Mode is the coarse view-mode state machine. Browse covers both
// "no selection" and "deck selected"; the selection itself lives in
// State.SelectedDeckID.
type Mode string

const (
	ModeBrowse   Mode = "browse"
	ModeDeckForm Mode = "deck-form"
	ModeCardForm Mode = "card-form"
	ModeTagForm  Mode = "tag-form"
	ModePractice Mode = "practice"
)

const FormTimeout = 10 * time.Minute

// State is one chat's UI state snapshot.
type State struct {
	Mode           Mode
	SelectedDeckID string
	EditingDeckID  string // set when the deck form edits an existing deck
	EditingCardID  string // set when the card form edits an existing card
	SearchQuery    string
	TagFilter      []string
	TagFormColor   string
	FormExpiresAt  time.Time
}

// Manager guards per-chat/user UI state with a mutex, like the session
// managers. Zero state means browse mode with nothing selected.
type Manager struct {
	mu     sync.Mutex
	states map[string]*State
	now    func() time.Time
}

func NewManager(now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		states: make(map[string]*State),
		now:    now,
	}
}

var DefaultManager = NewManager(nil)

func ResetDefaultManager(now func() time.Time) {
	DefaultManager = NewManager(now)
}

func getStateKey(chatID, userID int64) string {
	return fmt.Sprintf("%d:%d", chatID, userID)
}

func (m *Manager) stateLocked(chatID, userID int64) *State {
	key := getStateKey(chatID, userID)
	state := m.states[key]
	if state == nil {
		state = &State{Mode: ModeBrowse}
		m.states[key] = state
	}
	return state
}

// Get returns a copy of the chat's current state.
func (m *Manager) Get(chatID, userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.stateLocked(chatID, userID)
	copied := *state
	copied.TagFilter = append([]string(nil), state.TagFilter...)
	return copied
}

// ToggleDeck selects the deck, or clears the selection when the same deck is
// toggled again. Returns the resulting selection.
func (m *Manager) ToggleDeck(chatID, userID int64, deckID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.stateLocked(chatID, userID)
	if state.SelectedDeckID == deckID {
		state.SelectedDeckID = ""
	} else {
		state.SelectedDeckID = deckID
	}
	return state.SelectedDeckID
}

// ClearSelectionIfDeck drops the selection when it references the given
// deck. Run after a deck delete so the selection never points at a deck that
// no longer exists.
func (m *Manager) ClearSelectionIfDeck(chatID, userID int64, deckID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.stateLocked(chatID, userID)
	if state.SelectedDeckID == deckID {
		state.SelectedDeckID = ""
	}
	if state.Mode == ModePractice {
		state.Mode = ModeBrowse
	}
}

// SetSearchQuery stores the deck browser's free-text query.
func (m *Manager) SetSearchQuery(chatID, userID int64, query string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateLocked(chatID, userID).SearchQuery = query
}

// ToggleTagFilter adds or removes a tag from the browser filter and returns
// the resulting filter set.
func (m *Manager) ToggleTagFilter(chatID, userID int64, tagID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.stateLocked(chatID, userID)
	for i, id := range state.TagFilter {
		if id == tagID {
			state.TagFilter = append(state.TagFilter[:i], state.TagFilter[i+1:]...)
			return append([]string(nil), state.TagFilter...)
		}
	}
	state.TagFilter = append(state.TagFilter, tagID)
	return append([]string(nil), state.TagFilter...)
}

// RemoveTagFilter drops the tag from the filter, if present. Run after a tag
// delete so the filter never references a tag that no longer exists.
func (m *Manager) RemoveTagFilter(chatID, userID int64, tagID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.stateLocked(chatID, userID)
	for i, id := range state.TagFilter {
		if id == tagID {
			state.TagFilter = append(state.TagFilter[:i], state.TagFilter[i+1:]...)
			return
		}
	}
}

// ClearTagFilter empties the browser tag filter.
func (m *Manager) ClearTagFilter(chatID, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateLocked(chatID, userID).TagFilter = nil
}

// BeginDeckForm arms capture of the next text message as a deck form.
// editingDeckID is empty for a new deck.
func (m *Manager) BeginDeckForm(chatID, userID int64, editingDeckID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.stateLocked(chatID, userID)
	state.Mode = ModeDeckForm
	state.EditingDeckID = editingDeckID
	state.FormExpiresAt = m.now().Add(FormTimeout)
}

// BeginCardForm arms capture of the next text message as a card form for the
// selected deck. editingCardID is empty for a new card.
func (m *Manager) BeginCardForm(chatID, userID int64, editingCardID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.stateLocked(chatID, userID)
	state.Mode = ModeCardForm
	state.EditingCardID = editingCardID
	state.FormExpiresAt = m.now().Add(FormTimeout)
}

// BeginTagForm arms capture of the next text message as a tag name, with the
// palette color already chosen.
func (m *Manager) BeginTagForm(chatID, userID int64, color string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.stateLocked(chatID, userID)
	state.Mode = ModeTagForm
	state.TagFormColor = color
	state.FormExpiresAt = m.now().Add(FormTimeout)
}

// ConsumeForm claims the pending form capture, if one is armed and not
// expired, and returns the mode it was armed for plus the prior state. The
// chat returns to browse mode either way.
func (m *Manager) ConsumeForm(chatID, userID int64) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.stateLocked(chatID, userID)
	switch state.Mode {
	case ModeDeckForm, ModeCardForm, ModeTagForm:
	default:
		return State{}, false
	}
	captured := *state
	state.Mode = ModeBrowse
	state.EditingDeckID = ""
	state.EditingCardID = ""
	state.TagFormColor = ""
	state.FormExpiresAt = time.Time{}
	if !m.now().Before(captured.FormExpiresAt) {
		return State{}, false
	}
	return captured, true
}

// CancelForm disarms any pending form capture.
func (m *Manager) CancelForm(chatID, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.stateLocked(chatID, userID)
	state.Mode = ModeBrowse
	state.EditingDeckID = ""
	state.EditingCardID = ""
	state.TagFormColor = ""
	state.FormExpiresAt = time.Time{}
}

// EnterPractice flips the mode; the practice manager owns the run itself.
func (m *Manager) EnterPractice(chatID, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateLocked(chatID, userID).Mode = ModePractice
}

// ExitPractice returns the chat to the deck browser.
func (m *Manager) ExitPractice(chatID, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.stateLocked(chatID, userID)
	if state.Mode == ModePractice {
		state.Mode = ModeBrowse
	}
}

// SweepExpired disarms form captures whose window has passed.
func (m *Manager) SweepExpired(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, state := range m.states {
		switch state.Mode {
		case ModeDeckForm, ModeCardForm, ModeTagForm:
			if !now.Before(state.FormExpiresAt) {
				state.Mode = ModeBrowse
				state.EditingDeckID = ""
				state.EditingCardID = ""
				state.TagFormColor = ""
				state.FormExpiresAt = time.Time{}
			}
		}
	}
}

// StartSweeper expires stale form captures until ctx is canceled.
func (m *Manager) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SweepExpired(m.now())
		}
	}
}
