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

// HandleTags shows the tag manager.
func HandleTags(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		logger.Error("invalid update structure in HandleTags")
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	sendTagManager(ctx, b, chatID, userID)
}

func sendTagManager(ctx context.Context, b *bot.Bot, chatID, userID int64) {
	text, keyboard, err := ui.RenderTagManager(repoFor(userID).ListTags(ctx))
	if err != nil {
		logger.Error("failed to render tag manager", "user_id", userID, "error", err)
		return
	}
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to send tag manager", "user_id", userID, "error", err)
	}
}

func editTagManager(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int) {
	text, keyboard, err := ui.RenderTagManager(repoFor(userID).ListTags(ctx))
	if err != nil {
		logger.Error("failed to render tag manager", "user_id", userID, "error", err)
		return
	}
	if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to edit tag manager", "user_id", userID, "error", err)
	}
}

// HandleTagCallback routes tag manager button presses: picking a palette
// color arms the tag name prompt, the trash buttons delete.
func HandleTagCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		logger.Error("invalid update structure in HandleTagCallback")
		return
	}
	answerCallback := answerCallbackFunc(ctx, b, update.CallbackQuery.ID)
	message, ok := callbackMessage(update)
	if !ok {
		answerCallback("This message is too old, run /tags again.")
		return
	}
	chatID := message.Chat.ID
	userID := update.CallbackQuery.From.ID

	action, err := ui.ParseTagCallback(update.CallbackQuery.Data)
	if err != nil {
		logger.Error("failed to parse tag callback", "data", update.CallbackQuery.Data, "error", err)
		answerCallback("Unknown action.")
		return
	}

	switch action.Op {
	case ui.TagOpNew:
		if action.ColorIndex >= len(flashcard.TagColors) {
			answerCallback("Unknown color.")
			return
		}
		uistate.DefaultManager.BeginTagForm(chatID, userID, flashcard.TagColors[action.ColorIndex])
		answerCallback("")
		sendText(ctx, b, chatID, "Send the tag name. Names are lower-cased and must be unique.")

	case ui.TagOpDelete:
		if err := repoFor(userID).DeleteTag(ctx, action.TagID); err != nil {
			logger.Error("failed to delete tag", "tag_id", action.TagID, "error", err)
			answerCallback("Could not delete the tag, try again.")
			return
		}
		uistate.DefaultManager.RemoveTagFilter(chatID, userID, action.TagID)
		answerCallback("Tag deleted.")
		editTagManager(ctx, b, chatID, userID, message.ID)
	}
}
