package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"eventbot/internal/ports/input"
)

// Translate renders a catalog message in the bot's locale.
type Translate func(key string, data map[string]any) string

// session is the part of *discordgo.Session the handler uses.
type session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Handler handles Discord interactions using the event coordinator.
type Handler struct {
	s      session
	events input.EventCoordinator
	t      Translate
}

// NewHandler creates a Handler.
func NewHandler(s session, events input.EventCoordinator, t Translate) *Handler {
	return &Handler{s: s, events: events, t: t}
}

func (h *Handler) HandleInteraction(ctx context.Context, i *discordgo.InteractionCreate) {
	if interactionUser(i.Interaction) == nil {
		return
	}
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.HandleCommand(ctx, i)
	case discordgo.InteractionMessageComponent:
		h.HandleButton(ctx, i)
	}
}
