package discord

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// HandleMessage feeds channel text to the author's open draft.
func (h *Handler) HandleMessage(ctx context.Context, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Content == "" {
		return
	}
	if !h.events.InDraft(ctx, m.Author.ID) {
		return
	}
	reply := h.events.SubmitText(ctx, m.Author.ID, m.Content)
	if len(reply.Buttons) == 0 {
		if _, err := h.s.ChannelMessageSend(m.ChannelID, reply.Text); err != nil {
			slog.Error("discord: send", slog.String("channel_id", m.ChannelID), slog.String("error", err.Error()))
		}
		return
	}
	if _, err := h.s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:    reply.Text,
		Components: buildComponents(reply.Buttons),
	}); err != nil {
		slog.Error("discord: send", slog.String("channel_id", m.ChannelID), slog.String("error", err.Error()))
	}
}
