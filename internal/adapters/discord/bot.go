package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"eventbot/internal/ports/input"
)

// Bot is the Discord adapter.
type Bot struct {
	session *discordgo.Session
	guildID string
	handler *Handler
}

// NewBot creates the session and wires the handler. Commands are registered
// on guildID, or globally when it is empty.
func NewBot(token, guildID string, events input.EventCoordinator, t Translate) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	bot := &Bot{
		session: s,
		guildID: guildID,
		handler: NewHandler(s, events, t),
	}
	bot.setupHandlers()
	return bot, nil
}

// Notifier returns the reminder sink backed by this session.
func (b *Bot) Notifier() *Notifier {
	return NewNotifier(b.session)
}

func (b *Bot) setupHandlers() {
	b.session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		b.handler.HandleInteraction(context.Background(), i)
	})
	b.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		b.handler.HandleMessage(context.Background(), m)
	})
}

// Run opens the gateway, registers the slash commands and blocks until ctx
// is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer b.session.Close()

	for _, cmd := range commands {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.guildID, cmd); err != nil {
			slog.Warn("discord: register command", slog.String("command", cmd.Name), slog.String("error", err.Error()))
		}
	}

	slog.Info("discord bot online", slog.String("account", b.session.State.User.Username))
	<-ctx.Done()
	return nil
}
