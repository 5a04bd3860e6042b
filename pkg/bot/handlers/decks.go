package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/vpetrenko/tg-flashdecks/pkg/bot/practice"
	"github.com/vpetrenko/tg-flashdecks/pkg/bot/uistate"
	"github.com/vpetrenko/tg-flashdecks/pkg/logger"
	"github.com/vpetrenko/tg-flashdecks/pkg/ui"
)

// HandleDecks shows the deck browser. Anything after the command becomes the
// search query; a bare /decks clears it.
func HandleDecks(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		logger.Error("invalid update structure in HandleDecks")
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	query := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/decks"))
	uistate.DefaultManager.SetSearchQuery(chatID, userID, query)

	sendDeckBrowser(ctx, b, chatID, userID)
}

// HandleNewDeck arms the deck form: the next text message is parsed as
// "name | description | tag, tag".
func HandleNewDeck(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		logger.Error("invalid update structure in HandleNewDeck")
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	uistate.DefaultManager.BeginDeckForm(chatID, userID, "")
	sendText(ctx, b, chatID, "Send the new deck as:\nname | description | tag1, tag2\n\nDescription and tags are optional.")
}

// HandleNewCard arms the card form for the selected deck.
func HandleNewCard(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		logger.Error("invalid update structure in HandleNewCard")
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	state := uistate.DefaultManager.Get(chatID, userID)
	if state.SelectedDeckID == "" {
		sendText(ctx, b, chatID, "Select a deck first: /decks, then tap the deck name.")
		return
	}

	uistate.DefaultManager.BeginCardForm(chatID, userID, "")
	sendText(ctx, b, chatID, "Send the new card as:\nfront | back")
}

// HandleDeckCallback routes deck browser button presses.
func HandleDeckCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		logger.Error("invalid update structure in HandleDeckCallback")
		return
	}
	answerCallback := answerCallbackFunc(ctx, b, update.CallbackQuery.ID)
	message, ok := callbackMessage(update)
	if !ok {
		answerCallback("This message is too old, run /decks again.")
		return
	}
	chatID := message.Chat.ID
	userID := update.CallbackQuery.From.ID

	action, err := ui.ParseDeckCallback(update.CallbackQuery.Data)
	if err != nil {
		logger.Error("failed to parse deck callback", "data", update.CallbackQuery.Data, "error", err)
		answerCallback("Unknown action.")
		return
	}

	repo := repoFor(userID)
	switch action.Op {
	case ui.DeckOpSelect:
		uistate.DefaultManager.ToggleDeck(chatID, userID, action.ID)
		answerCallback("")
		editDeckBrowser(ctx, b, chatID, userID, message.ID)

	case ui.DeckOpPractice:
		answerCallback("")
		startPractice(ctx, b, chatID, userID, action.ID)

	case ui.DeckOpNewCard:
		state := uistate.DefaultManager.Get(chatID, userID)
		if state.SelectedDeckID != action.ID {
			uistate.DefaultManager.ToggleDeck(chatID, userID, action.ID)
		}
		uistate.DefaultManager.BeginCardForm(chatID, userID, "")
		answerCallback("")
		sendText(ctx, b, chatID, "Send the new card as:\nfront | back")

	case ui.DeckOpEdit:
		deck, found := deckByID(repo.ListDecks(ctx), action.ID)
		if !found {
			answerCallback("This deck no longer exists.")
			editDeckBrowser(ctx, b, chatID, userID, message.ID)
			return
		}
		uistate.DefaultManager.BeginDeckForm(chatID, userID, deck.ID)
		answerCallback("")
		prompt := "Send the updated deck as:\nname | description | tag1, tag2\n\nCurrent: " + deck.Name
		if deck.Description != "" {
			prompt += " | " + deck.Description
		}
		sendText(ctx, b, chatID, prompt)

	case ui.DeckOpDelete:
		deck, found := deckByID(repo.ListDecks(ctx), action.ID)
		if !found {
			answerCallback("This deck no longer exists.")
			editDeckBrowser(ctx, b, chatID, userID, message.ID)
			return
		}
		cardCount := len(repo.CardsByDeck(ctx, deck.ID))
		text, keyboard, err := ui.RenderDeleteDeckConfirm(deck, cardCount)
		if err != nil {
			logger.Error("failed to render delete confirmation", "deck_id", deck.ID, "error", err)
			return
		}
		answerCallback("")
		if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   message.ID,
			Text:        text,
			ReplyMarkup: keyboard,
		}); err != nil {
			logger.Error("failed to show delete confirmation", "user_id", userID, "error", err)
		}

	case ui.DeckOpDeleteConfirm:
		if err := repo.DeleteDeck(ctx, action.ID); err != nil {
			logger.Error("failed to delete deck", "deck_id", action.ID, "error", err)
			answerCallback("Could not delete the deck, try again.")
			return
		}
		uistate.DefaultManager.ClearSelectionIfDeck(chatID, userID, action.ID)
		practice.DefaultManager.EndForDeck(chatID, userID, action.ID)
		answerCallback("Deck deleted.")
		editDeckBrowser(ctx, b, chatID, userID, message.ID)

	case ui.DeckOpDeleteCancel:
		answerCallback("")
		editDeckBrowser(ctx, b, chatID, userID, message.ID)

	case ui.DeckOpTagFilter:
		uistate.DefaultManager.ToggleTagFilter(chatID, userID, action.ID)
		answerCallback("")
		editDeckBrowser(ctx, b, chatID, userID, message.ID)

	case ui.DeckOpTagClear:
		uistate.DefaultManager.ClearTagFilter(chatID, userID)
		answerCallback("")
		editDeckBrowser(ctx, b, chatID, userID, message.ID)
	}
}
