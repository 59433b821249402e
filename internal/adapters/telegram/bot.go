// Package telegram is the Telegram transport: commands, conversation text,
// inline search and RSVP buttons.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"eventbot/internal/ports/input"
)

const updateTimeout = 60

// Bot polls Telegram for updates and hands them to the Handler.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
}

// NewBot authorizes token against the Bot API.
func NewBot(token string, events input.EventCoordinator, t Translate) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	slog.Info("telegram authorized", slog.String("account", api.Self.UserName))
	return &Bot{
		api:     api,
		handler: NewHandler(api, events, t, api.Self.UserName),
	}, nil
}

// Notifier returns the reminder sink backed by this bot.
func (b *Bot) Notifier() *Notifier {
	return NewNotifier(b.api)
}

// Run processes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout
	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("telegram: get updates: %w", err)
	}
	slog.Info("telegram bot online")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			// Updates are handled in arrival order so a user's draft steps
			// never overtake each other.
			b.handler.HandleUpdate(ctx, update)
		}
	}
}
