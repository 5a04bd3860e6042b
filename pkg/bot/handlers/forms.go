package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/vpetrenko/tg-flashdecks/pkg/bot/uistate"
	"github.com/vpetrenko/tg-flashdecks/pkg/flashcard"
	"github.com/vpetrenko/tg-flashdecks/pkg/logger"
)

// DefaultHandler receives every text message that is not a command. When a
// form capture is armed for the chat the text is parsed as that form,
// otherwise the user gets the command list.
func DefaultHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return
	}

	captured, ok := uistate.DefaultManager.ConsumeForm(chatID, userID)
	if !ok {
		sendText(ctx, b, chatID, helpText)
		return
	}

	switch captured.Mode {
	case uistate.ModeDeckForm:
		handleDeckForm(ctx, b, chatID, userID, captured.EditingDeckID, text)
	case uistate.ModeCardForm:
		handleCardForm(ctx, b, chatID, userID, captured, text)
	case uistate.ModeTagForm:
		handleTagForm(ctx, b, chatID, userID, captured.TagFormColor, text)
	}
}

// splitFormFields splits "a | b | c" into trimmed fields.
func splitFormFields(text string) []string {
	parts := strings.Split(text, "|")
	fields := make([]string, len(parts))
	for i, part := range parts {
		fields[i] = strings.TrimSpace(part)
	}
	return fields
}

func handleDeckForm(ctx context.Context, b *bot.Bot, chatID, userID int64, editingDeckID, text string) {
	fields := splitFormFields(text)
	name := fields[0]
	description := ""
	if len(fields) > 1 {
		description = fields[1]
	}

	repo := repoFor(userID)
	var tagIDs []string
	var unknown []string
	if len(fields) > 2 && fields[2] != "" {
		tagIDs, unknown = resolveTagNames(repo.ListTags(ctx), fields[2])
	}

	var deck flashcard.Deck
	if editingDeckID != "" {
		existing, found := deckByID(repo.ListDecks(ctx), editingDeckID)
		if !found {
			sendText(ctx, b, chatID, "This deck no longer exists.")
			return
		}
		deck = existing
		deck.Name = name
		deck.Description = description
		deck.TagIDs = tagIDs
	} else {
		deck = flashcard.NewDeck(name, description, tagIDs)
	}

	if err := repo.SaveDeck(ctx, deck); err != nil {
		if errors.Is(err, flashcard.ErrDeckInvalid) {
			sendText(ctx, b, chatID, "The deck name cannot be empty. Run /newdeck and try again.")
			return
		}
		logger.Error("failed to save deck", "deck_id", deck.ID, "error", err)
		sendText(ctx, b, chatID, "Could not save the deck, try again.")
		return
	}

	confirmation := "Deck saved: " + deck.Name
	if len(unknown) > 0 {
		confirmation += "\nUnknown tags skipped: " + strings.Join(unknown, ", ") + ". Create them with /tags first."
	}
	sendText(ctx, b, chatID, confirmation)
	sendDeckBrowser(ctx, b, chatID, userID)
}

// resolveTagNames maps a comma-separated tag name list to tag ids,
// case-insensitively. Names that match no tag are reported back, not created.
func resolveTagNames(tags []flashcard.Tag, list string) ([]string, []string) {
	byName := make(map[string]string, len(tags))
	for _, tag := range tags {
		byName[tag.Name] = tag.ID
	}

	var ids []string
	var unknown []string
	seen := make(map[string]bool)
	for _, raw := range strings.Split(list, ",") {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		id, ok := byName[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, unknown
}

func handleCardForm(ctx context.Context, b *bot.Bot, chatID, userID int64, captured uistate.State, text string) {
	fields := splitFormFields(text)
	if len(fields) < 2 {
		sendText(ctx, b, chatID, "A card needs both sides: front | back. Run /newcard and try again.")
		return
	}

	repo := repoFor(userID)
	var card flashcard.Card
	if captured.EditingCardID != "" {
		existing, found := cardByID(repo.ListCards(ctx), captured.EditingCardID)
		if !found {
			sendText(ctx, b, chatID, "This card no longer exists.")
			return
		}
		card = existing
		card.Front = fields[0]
		card.Back = fields[1]
	} else {
		if captured.SelectedDeckID == "" {
			sendText(ctx, b, chatID, "Select a deck first: /decks, then tap the deck name.")
			return
		}
		card = flashcard.NewCard(fields[0], fields[1], captured.SelectedDeckID)
	}

	if err := repo.SaveCard(ctx, card); err != nil {
		if errors.Is(err, flashcard.ErrCardInvalid) {
			sendText(ctx, b, chatID, "Both sides must be non-empty: front | back. Run /newcard and try again.")
			return
		}
		logger.Error("failed to save card", "deck_id", card.DeckID, "error", err)
		sendText(ctx, b, chatID, "Could not save the card, try again.")
		return
	}
	if captured.EditingCardID != "" {
		sendText(ctx, b, chatID, "Card updated.")
		return
	}
	sendText(ctx, b, chatID, "Card added. Send /newcard to add another, or /practice to start practicing.")
}

func handleTagForm(ctx context.Context, b *bot.Bot, chatID, userID int64, color, text string) {
	tag := flashcard.NewTag(text, color, time.Now())
	if err := repoFor(userID).SaveTag(ctx, tag); err != nil {
		switch {
		case errors.Is(err, flashcard.ErrTagInvalid):
			sendText(ctx, b, chatID, "The tag name cannot be empty. Run /tags and try again.")
		case errors.Is(err, flashcard.ErrDuplicateTag):
			sendText(ctx, b, chatID, "A tag with this name already exists.")
		default:
			logger.Error("failed to save tag", "error", err)
			sendText(ctx, b, chatID, "Could not save the tag, try again.")
		}
		return
	}
	sendText(ctx, b, chatID, "Tag created: "+tag.Name)
	sendTagManager(ctx, b, chatID, userID)
}
