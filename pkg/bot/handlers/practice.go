package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/vpetrenko/tg-flashdecks/pkg/bot/practice"
	"github.com/vpetrenko/tg-flashdecks/pkg/bot/uistate"
	"github.com/vpetrenko/tg-flashdecks/pkg/logger"
	"github.com/vpetrenko/tg-flashdecks/pkg/ui"
)

// HandlePractice starts a practice run over the selected deck.
func HandlePractice(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		logger.Error("invalid update structure in HandlePractice")
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	state := uistate.DefaultManager.Get(chatID, userID)
	if state.SelectedDeckID == "" {
		sendText(ctx, b, chatID, "Select a deck first: /decks, then tap the deck name.")
		return
	}
	startPractice(ctx, b, chatID, userID, state.SelectedDeckID)
}

// startPractice shuffles the deck once, sends the first card and remembers
// the message id so the run can be edited in place.
func startPractice(ctx context.Context, b *bot.Bot, chatID, userID int64, deckID string) {
	repo := repoFor(userID)
	cards := repo.CardsByDeck(ctx, deckID)

	snapshot, err := practice.DefaultManager.Start(chatID, userID, deckID, cards)
	if err != nil {
		if errors.Is(err, practice.ErrNoCards) {
			sendText(ctx, b, chatID, "This deck has no cards yet. Add some with /newcard.")
			return
		}
		logger.Error("failed to start practice", "deck_id", deckID, "error", err)
		return
	}
	uistate.DefaultManager.EnterPractice(chatID, userID)

	text, keyboard, err := ui.RenderPracticeCard(snapshot.Card, snapshot.Index, snapshot.Total, snapshot.Flipped)
	if err != nil {
		logger.Error("failed to render practice card", "deck_id", deckID, "error", err)
		return
	}
	message, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: keyboard,
	})
	if err != nil {
		logger.Error("failed to send practice card", "user_id", userID, "error", err)
		return
	}
	practice.DefaultManager.SetCurrentMessageID(chatID, userID, message.ID)
}

// HandlePracticeCallback routes flip/next/prev/exit presses on the practice
// message.
func HandlePracticeCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		logger.Error("invalid update structure in HandlePracticeCallback")
		return
	}
	answerCallback := answerCallbackFunc(ctx, b, update.CallbackQuery.ID)
	message, ok := callbackMessage(update)
	if !ok {
		answerCallback("This practice run has expired, start a new one with /practice.")
		return
	}
	chatID := message.Chat.ID
	userID := update.CallbackQuery.From.ID

	op, err := ui.ParsePracticeCallback(update.CallbackQuery.Data)
	if err != nil {
		logger.Error("failed to parse practice callback", "data", update.CallbackQuery.Data, "error", err)
		answerCallback("Unknown action.")
		return
	}

	if op == ui.PracticeOpExit {
		practice.DefaultManager.End(chatID, userID)
		uistate.DefaultManager.ExitPractice(chatID, userID)
		answerCallback("")
		if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: message.ID,
			Text:      "Practice finished. Run /decks to pick another deck.",
		}); err != nil {
			logger.Error("failed to close practice message", "user_id", userID, "error", err)
		}
		return
	}

	var snapshot practice.Snapshot
	var active bool
	switch op {
	case ui.PracticeOpFlip:
		snapshot, active = practice.DefaultManager.Flip(chatID, userID)
	case ui.PracticeOpNext:
		snapshot, active = practice.DefaultManager.Next(chatID, userID)
	case ui.PracticeOpPrev:
		snapshot, active = practice.DefaultManager.Prev(chatID, userID)
	}
	if !active {
		answerCallback("This practice run has expired, start a new one with /practice.")
		return
	}

	text, keyboard, err := ui.RenderPracticeCard(snapshot.Card, snapshot.Index, snapshot.Total, snapshot.Flipped)
	if err != nil {
		logger.Error("failed to render practice card", "error", err)
		return
	}
	answerCallback("")
	if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   message.ID,
		Text:        text,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to update practice card", "user_id", userID, "error", err)
	}
}
