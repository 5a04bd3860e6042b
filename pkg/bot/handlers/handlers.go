// Package handlers wires Telegram updates to the flashcard repository, the
// derived views and the per-chat UI state.
package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/vpetrenko/tg-flashdecks/pkg/bot/uistate"
	"github.com/vpetrenko/tg-flashdecks/pkg/flashcard"
	"github.com/vpetrenko/tg-flashdecks/pkg/kvstore"
	"github.com/vpetrenko/tg-flashdecks/pkg/logger"
	"github.com/vpetrenko/tg-flashdecks/pkg/ui"
)

// Store is the process-wide key-value store behind every repository.
// main wires it at startup; tests swap in a memory store.
var Store kvstore.Store

func repoFor(userID int64) *flashcard.Repository {
	return flashcard.ForUser(Store, userID)
}

func sendText(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}); err != nil {
		logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

// deckBrowserView loads the collections and renders the deck browser for the
// chat's current search query, tag filter and selection.
func deckBrowserView(ctx context.Context, chatID, userID int64) (string, *models.InlineKeyboardMarkup, error) {
	repo := repoFor(userID)
	state := uistate.DefaultManager.Get(chatID, userID)

	decks := flashcard.FilterDecks(repo.ListDecks(ctx), state.SearchQuery, state.TagFilter)
	tags := repo.ListTags(ctx)
	counts := flashcard.CardCounts(repo.ListCards(ctx))

	return ui.RenderDeckList(decks, tags, counts, state.SelectedDeckID, state.SearchQuery, state.TagFilter)
}

func sendDeckBrowser(ctx context.Context, b *bot.Bot, chatID, userID int64) {
	text, keyboard, err := deckBrowserView(ctx, chatID, userID)
	if err != nil {
		logger.Error("failed to render deck browser", "user_id", userID, "error", err)
		return
	}
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to send deck browser", "user_id", userID, "error", err)
	}
}

func editDeckBrowser(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int) {
	text, keyboard, err := deckBrowserView(ctx, chatID, userID)
	if err != nil {
		logger.Error("failed to render deck browser", "user_id", userID, "error", err)
		return
	}
	if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to edit deck browser", "user_id", userID, "error", err)
	}
}

func deckByID(decks []flashcard.Deck, deckID string) (flashcard.Deck, bool) {
	for _, deck := range decks {
		if deck.ID == deckID {
			return deck, true
		}
	}
	return flashcard.Deck{}, false
}

// callbackMessage extracts the accessible message a callback was attached
// to. Callbacks on inaccessible messages are ignored.
func callbackMessage(update *models.Update) (*models.Message, bool) {
	message := update.CallbackQuery.Message
	if message.Type != models.MaybeInaccessibleMessageTypeMessage || message.Message == nil {
		return nil, false
	}
	if message.Message.Chat.ID == 0 {
		return nil, false
	}
	return message.Message, true
}

func answerCallbackFunc(ctx context.Context, b *bot.Bot, callbackID string) func(string) {
	return func(text string) {
		if callbackID == "" {
			return
		}
		if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: callbackID,
			Text:            text,
		}); err != nil {
			logger.Error("failed to answer callback query", "error", err)
		}
	}
}
