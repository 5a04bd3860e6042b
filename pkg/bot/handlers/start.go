package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/vpetrenko/tg-flashdecks/pkg/logger"
)

const helpText = `Welcome to FlashDecks! Build card decks and practice them right here.

Commands:
/decks [query] - browse your decks, optionally filtered by name or description
/newdeck - create a deck
/newcard - add a card to the selected deck
/cards - list, edit or delete the selected deck's cards
/practice - practice the selected deck
/tags - manage deck tags`

// HandleStart greets the user and shows the command list.
func HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		logger.Error("invalid update structure in HandleStart")
		return
	}
	sendText(ctx, b, update.Message.Chat.ID, helpText)
}
