package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/go-telegram/bot"
	"github.com/vpetrenko/tg-flashdecks/pkg/bot/handlers"
	"github.com/vpetrenko/tg-flashdecks/pkg/bot/practice"
	"github.com/vpetrenko/tg-flashdecks/pkg/bot/uistate"
	"github.com/vpetrenko/tg-flashdecks/pkg/config"
	"github.com/vpetrenko/tg-flashdecks/pkg/kvstore"
	"github.com/vpetrenko/tg-flashdecks/pkg/logger"
	"github.com/vpetrenko/tg-flashdecks/pkg/ui"
)

func main() {
	if err := config.LoadConfig("config.json"); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := logger.Configure(logger.Options{
		Level: config.AppConfig.Logging.Level,
		File:  config.AppConfig.Logging.File,
	}); err != nil {
		logger.Error("failed to configure logger", "error", err)
	}

	store, err := kvstore.Open(config.AppConfig.Storage)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	handlers.Store = store

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	opts := []bot.Option{
		bot.WithDefaultHandler(handlers.DefaultHandler),
	}
	b, err := bot.New(config.AppConfig.Telegram.Token, opts...)
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, handlers.HandleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/decks", bot.MatchTypePrefix, handlers.HandleDecks)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/newdeck", bot.MatchTypeExact, handlers.HandleNewDeck)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/newcard", bot.MatchTypeExact, handlers.HandleNewCard)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/cards", bot.MatchTypeExact, handlers.HandleCards)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/practice", bot.MatchTypeExact, handlers.HandlePractice)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/tags", bot.MatchTypeExact, handlers.HandleTags)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, ui.DeckCallbackPrefix, bot.MatchTypePrefix, handlers.HandleDeckCallback)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, ui.PracticeCallbackPrefix, bot.MatchTypePrefix, handlers.HandlePracticeCallback)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, ui.TagCallbackPrefix, bot.MatchTypePrefix, handlers.HandleTagCallback)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, ui.CardCallbackPrefix, bot.MatchTypePrefix, handlers.HandleCardCallback)

	go practice.StartPracticeSweeper(ctx)
	go uistate.DefaultManager.StartSweeper(ctx)

	logger.Info("Starting bot...")
	b.Start(ctx)
}
