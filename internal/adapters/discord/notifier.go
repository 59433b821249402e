package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"eventbot/internal/ports/output"
)

var _ output.Notifier = (*Notifier)(nil)

// Notifier pushes reminder summaries to Discord channels.
type Notifier struct {
	s session
}

func NewNotifier(s session) *Notifier {
	return &Notifier{s: s}
}

func (n *Notifier) Notify(ctx context.Context, channelID, text string, buttons []output.Button) error {
	_, err := n.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    text,
		Components: buildComponents(buttons),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: send to %s: %w", channelID, err)
	}
	return nil
}
