package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/vpetrenko/tg-flashdecks/pkg/bot/uistate"
	"github.com/vpetrenko/tg-flashdecks/pkg/flashcard"
	"github.com/vpetrenko/tg-flashdecks/pkg/logger"
	"github.com/vpetrenko/tg-flashdecks/pkg/ui"
)

// HandleCards shows the card manager for the selected deck.
func HandleCards(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		logger.Error("invalid update structure in HandleCards")
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	state := uistate.DefaultManager.Get(chatID, userID)
	if state.SelectedDeckID == "" {
		sendText(ctx, b, chatID, "Select a deck first: /decks, then tap the deck name.")
		return
	}
	sendCardList(ctx, b, chatID, userID, state.SelectedDeckID)
}

func cardListView(ctx context.Context, userID int64, deckID string) (string, *models.InlineKeyboardMarkup, bool) {
	repo := repoFor(userID)
	deck, found := deckByID(repo.ListDecks(ctx), deckID)
	if !found {
		return "", nil, false
	}
	text, keyboard, err := ui.RenderCardList(deck, repo.CardsByDeck(ctx, deckID))
	if err != nil {
		logger.Error("failed to render card list", "deck_id", deckID, "error", err)
		return "", nil, false
	}
	return text, keyboard, true
}

func sendCardList(ctx context.Context, b *bot.Bot, chatID, userID int64, deckID string) {
	text, keyboard, ok := cardListView(ctx, userID, deckID)
	if !ok {
		sendText(ctx, b, chatID, "This deck no longer exists.")
		return
	}
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to send card list", "user_id", userID, "error", err)
	}
}

func editCardList(ctx context.Context, b *bot.Bot, chatID, userID int64, deckID string, messageID int) {
	text, keyboard, ok := cardListView(ctx, userID, deckID)
	if !ok {
		return
	}
	if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to edit card list", "user_id", userID, "error", err)
	}
}

// HandleCardCallback routes card manager button presses.
func HandleCardCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		logger.Error("invalid update structure in HandleCardCallback")
		return
	}
	answerCallback := answerCallbackFunc(ctx, b, update.CallbackQuery.ID)
	message, ok := callbackMessage(update)
	if !ok {
		answerCallback("This message is too old, run /cards again.")
		return
	}
	chatID := message.Chat.ID
	userID := update.CallbackQuery.From.ID

	action, err := ui.ParseCardCallback(update.CallbackQuery.Data)
	if err != nil {
		logger.Error("failed to parse card callback", "data", update.CallbackQuery.Data, "error", err)
		answerCallback("Unknown action.")
		return
	}

	repo := repoFor(userID)
	switch action.Op {
	case ui.CardOpEdit:
		card, found := cardByID(repo.ListCards(ctx), action.CardID)
		if !found {
			answerCallback("This card no longer exists.")
			return
		}
		uistate.DefaultManager.BeginCardForm(chatID, userID, card.ID)
		answerCallback("")
		sendText(ctx, b, chatID, "Send the updated card as:\nfront | back\n\nCurrent: "+card.Front+" | "+card.Back)

	case ui.CardOpDelete:
		card, found := cardByID(repo.ListCards(ctx), action.CardID)
		if !found {
			answerCallback("This card no longer exists.")
			return
		}
		if err := repo.DeleteCard(ctx, card.ID); err != nil {
			logger.Error("failed to delete card", "card_id", card.ID, "error", err)
			answerCallback("Could not delete the card, try again.")
			return
		}
		answerCallback("Card deleted.")
		editCardList(ctx, b, chatID, userID, card.DeckID, message.ID)
	}
}

func cardByID(cards []flashcard.Card, cardID string) (flashcard.Card, bool) {
	for _, card := range cards {
		if card.ID == cardID {
			return card, true
		}
	}
	return flashcard.Card{}, false
}
